package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/onclick/internal/apperror"
	"github.com/smallbiznis/onclick/internal/clock"
	"github.com/smallbiznis/onclick/internal/money"
	"github.com/smallbiznis/onclick/internal/platform/domain"
	"gorm.io/gorm"
)

type Treasury struct {
	db    *gorm.DB
	repo  domain.Repository
	clock clock.Clock
}

func NewTreasury(db *gorm.DB, repo domain.Repository, clk clock.Clock) domain.Treasury {
	return &Treasury{db: db, repo: repo, clock: clk}
}

func (t *Treasury) Load(ctx context.Context, tx *gorm.DB) (*domain.State, error) {
	state, err := t.repo.Get(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("load platform state: %w", err)
	}
	if state == nil {
		return nil, apperror.ErrPlatformNotInitialized
	}
	return state, nil
}

func (t *Treasury) Allocate(ctx context.Context, tx *gorm.DB, counter domain.Counter) (uint64, error) {
	if _, err := t.Load(ctx, tx); err != nil {
		return 0, err
	}
	return t.repo.Allocate(ctx, tx, counter)
}

// AccrueFee adds fee to the treasury. A sum past 2^256-1 is InvalidAmount.
func (t *Treasury) AccrueFee(ctx context.Context, tx *gorm.DB, fee money.Amount) error {
	state, err := t.Load(ctx, tx)
	if err != nil {
		return err
	}
	total, overflow := state.FeesCollected.Add(fee)
	if overflow {
		return apperror.ErrInvalidAmount
	}
	if err := t.repo.SetFeesCollected(ctx, tx, total, clock.Unix(t.clock)); err != nil {
		return fmt.Errorf("accrue fee: %w", err)
	}
	return nil
}

// Peek reads the value counter will hand out next.
func (t *Treasury) Peek(ctx context.Context, counter domain.Counter) (uint64, error) {
	state, err := t.Load(ctx, t.db)
	if err != nil {
		return 0, err
	}
	switch counter {
	case domain.CounterPage:
		return state.NextPageID, nil
	case domain.CounterProduct:
		return state.NextProductID, nil
	case domain.CounterTransaction:
		return state.NextTransactionID, nil
	case domain.CounterIntentNonce:
		return state.IntentNonce, nil
	default:
		return 0, fmt.Errorf("unknown counter %q", counter)
	}
}
