package repository

import (
	"context"

	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/money"
	"github.com/smallbiznis/onclick/internal/page/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, page *domain.Page) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO pages (owner, handle, role, display_name, metadata_reference, funding_goal, amount_raised, supporter_count, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		page.Owner,
		page.Handle,
		page.Role,
		page.DisplayName,
		page.MetadataReference,
		page.FundingGoal,
		page.AmountRaised,
		page.SupporterCount,
		page.Active,
		page.CreatedAt,
	).Error
}

func (r *repo) FindByOwner(ctx context.Context, db *gorm.DB, owner host.Identity) (*domain.Page, error) {
	return r.findOne(ctx, db, "owner = ?", owner)
}

func (r *repo) FindByHandle(ctx context.Context, db *gorm.DB, handle string) (*domain.Page, error) {
	return r.findOne(ctx, db, "handle = ?", handle)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, arg any) (*domain.Page, error) {
	var pages []domain.Page
	err := db.WithContext(ctx).
		Model(&domain.Page{}).
		Where(query, arg).
		Limit(1).
		Find(&pages).Error
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}
	return &pages[0], nil
}

func (r *repo) UpdateInfo(ctx context.Context, db *gorm.DB, owner host.Identity, displayName, metadataReference string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE pages SET display_name = ?, metadata_reference = ? WHERE owner = ?`,
		displayName,
		metadataReference,
		owner,
	).Error
}

func (r *repo) UpdateFundingGoal(ctx context.Context, db *gorm.DB, owner host.Identity, goal money.Amount) error {
	return db.WithContext(ctx).Exec(
		`UPDATE pages SET funding_goal = ? WHERE owner = ?`,
		goal,
		owner,
	).Error
}

func (r *repo) UpdateFunds(ctx context.Context, db *gorm.DB, owner host.Identity, raised money.Amount, supporters uint64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE pages SET amount_raised = ?, supporter_count = ? WHERE owner = ?`,
		raised,
		supporters,
		owner,
	).Error
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, owner host.Identity) error {
	return db.WithContext(ctx).Exec(
		`UPDATE pages SET active = ? WHERE owner = ?`,
		false,
		owner,
	).Error
}
