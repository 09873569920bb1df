package repository

import (
	"context"

	"github.com/smallbiznis/onclick/internal/paymentintent/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, intent *domain.PaymentIntent) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payment_intents (id, creator, handle, amount, description, active, created_at, expires_at, usage_count, max_usages, nonce)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		intent.ID,
		intent.Creator,
		intent.Handle,
		intent.Amount,
		intent.Description,
		intent.Active,
		intent.CreatedAt,
		intent.ExpiresAt,
		intent.UsageCount,
		intent.MaxUsages,
		intent.Nonce,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id domain.ID) (*domain.PaymentIntent, error) {
	var items []domain.PaymentIntent
	err := db.WithContext(ctx).
		Model(&domain.PaymentIntent{}).
		Where("id = ?", id).
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

func (r *repo) SetUsageCount(ctx context.Context, db *gorm.DB, id domain.ID, count uint64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_intents SET usage_count = ? WHERE id = ?`,
		count,
		id,
	).Error
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, id domain.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_intents SET active = ? WHERE id = ?`,
		false,
		id,
	).Error
}
