package domain

import (
	"context"

	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/money"
	"gorm.io/gorm"
)

type Service interface {
	// Initialize creates the platform state when missing and binds the
	// administrator. Repeated calls keep the stored state.
	Initialize(ctx context.Context, administrator host.Identity, feeBasisPoints uint64) (*State, error)
	SetFeeBasisPoints(ctx context.Context, call host.Call, value uint64) error
	// WithdrawFees sends the whole treasury to the administrator and
	// returns the amount sent.
	WithdrawFees(ctx context.Context, call host.Call) (money.Amount, error)
	State(ctx context.Context) (*State, error)
}

// Treasury is the in-call view other domains use to read the fee rate,
// accrue fees and allocate ids.
type Treasury interface {
	Load(ctx context.Context, tx *gorm.DB) (*State, error)
	Allocate(ctx context.Context, tx *gorm.DB, counter Counter) (uint64, error)
	AccrueFee(ctx context.Context, tx *gorm.DB, fee money.Amount) error
	Peek(ctx context.Context, counter Counter) (uint64, error)
}
