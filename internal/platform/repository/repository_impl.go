package repository

import (
	"context"
	"fmt"

	"github.com/smallbiznis/onclick/internal/money"
	"github.com/smallbiznis/onclick/internal/platform/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Get(ctx context.Context, db *gorm.DB) (*domain.State, error) {
	var states []domain.State
	err := db.WithContext(ctx).
		Model(&domain.State{}).
		Where("id = ?", domain.StateID).
		Limit(1).
		Find(&states).Error
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, nil
	}
	return &states[0], nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, state *domain.State) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO platform_state (id, administrator, fee_basis_points, fees_collected, next_page_id, next_product_id, next_transaction_id, intent_nonce, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		domain.StateID,
		state.Administrator,
		state.FeeBasisPoints,
		state.FeesCollected,
		state.NextPageID,
		state.NextProductID,
		state.NextTransactionID,
		state.IntentNonce,
		state.UpdatedAt,
	).Error
}

func (r *repo) Allocate(ctx context.Context, db *gorm.DB, counter domain.Counter) (uint64, error) {
	column, err := counterColumn(counter)
	if err != nil {
		return 0, err
	}

	var current uint64
	row := db.WithContext(ctx).
		Model(&domain.State{}).
		Select(column).
		Where("id = ?", domain.StateID).
		Row()
	if err := row.Scan(&current); err != nil {
		return 0, fmt.Errorf("read %s: %w", column, err)
	}

	res := db.WithContext(ctx).Exec(
		fmt.Sprintf(`UPDATE platform_state SET %s = ? WHERE id = ?`, column),
		current+1,
		domain.StateID,
	)
	if res.Error != nil {
		return 0, fmt.Errorf("advance %s: %w", column, res.Error)
	}
	return current, nil
}

func (r *repo) SetFeesCollected(ctx context.Context, db *gorm.DB, fees money.Amount, now uint64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE platform_state SET fees_collected = ?, updated_at = ? WHERE id = ?`,
		fees,
		now,
		domain.StateID,
	).Error
}

func (r *repo) SetFeeBasisPoints(ctx context.Context, db *gorm.DB, bps uint64, now uint64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE platform_state SET fee_basis_points = ?, updated_at = ? WHERE id = ?`,
		bps,
		now,
		domain.StateID,
	).Error
}

// counterColumn maps a counter onto its column; counters are never taken
// from input.
func counterColumn(counter domain.Counter) (string, error) {
	switch counter {
	case domain.CounterPage, domain.CounterProduct, domain.CounterTransaction, domain.CounterIntentNonce:
		return string(counter), nil
	default:
		return "", fmt.Errorf("unknown counter %q", counter)
	}
}
