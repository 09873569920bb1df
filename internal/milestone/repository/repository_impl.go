package repository

import (
	"context"

	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/milestone/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, m *domain.Milestone) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO milestones (page_owner, position, title, target_amount, metadata_reference, completed, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.PageOwner,
		m.Position,
		m.Title,
		m.TargetAmount,
		m.MetadataReference,
		m.Completed,
		m.CompletedAt,
	).Error
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, owner host.Identity) (uint64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Milestone{}).
		Where("page_owner = ?", owner).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, owner host.Identity, position uint64) (*domain.Milestone, error) {
	var items []domain.Milestone
	err := db.WithContext(ctx).
		Model(&domain.Milestone{}).
		Where("page_owner = ? AND position = ?", owner, position).
		Limit(1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, owner host.Identity) ([]domain.Milestone, error) {
	items := []domain.Milestone{}
	err := db.WithContext(ctx).
		Model(&domain.Milestone{}).
		Where("page_owner = ?", owner).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MarkCompleted(ctx context.Context, db *gorm.DB, owner host.Identity, position uint64, at uint64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE milestones SET completed = ?, completed_at = ? WHERE page_owner = ? AND position = ?`,
		true,
		at,
		owner,
		position,
	).Error
}
