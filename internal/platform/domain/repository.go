package domain

import (
	"context"

	"github.com/smallbiznis/onclick/internal/money"
	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context, db *gorm.DB) (*State, error)
	Insert(ctx context.Context, db *gorm.DB, state *State) error
	// Allocate returns the current value of counter and advances it by one.
	Allocate(ctx context.Context, db *gorm.DB, counter Counter) (uint64, error)
	SetFeesCollected(ctx context.Context, db *gorm.DB, fees money.Amount, now uint64) error
	SetFeeBasisPoints(ctx context.Context, db *gorm.DB, bps uint64, now uint64) error
}
