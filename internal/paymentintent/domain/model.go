package domain

import (
	"context"

	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/money"
	"gorm.io/gorm"
)

// PaymentIntent is a reusable payment request against the creator's page.
// MaxUsages of 0 means unlimited.
type PaymentIntent struct {
	ID          ID            `json:"id" gorm:"primaryKey;size:66"`
	Creator     host.Identity `json:"creator" gorm:"size:42;not null;index"`
	Handle      string        `json:"handle" gorm:"size:255;not null;index"`
	Amount      money.Amount  `json:"amount" gorm:"size:80;not null"`
	Description string        `json:"description" gorm:"type:text;not null"`
	Active      bool          `json:"active" gorm:"not null"`
	CreatedAt   uint64        `json:"created_at" gorm:"not null;autoCreateTime:false"`
	ExpiresAt   uint64        `json:"expires_at" gorm:"not null"`
	UsageCount  uint64        `json:"usage_count" gorm:"not null"`
	MaxUsages   uint64        `json:"max_usages" gorm:"not null"`
	Nonce       uint64        `json:"nonce" gorm:"not null"`
}

func (PaymentIntent) TableName() string { return "payment_intents" }

// Unlimited reports whether the intent has no usage cap.
func (p *PaymentIntent) Unlimited() bool { return p.MaxUsages == 0 }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, intent *PaymentIntent) error
	FindByID(ctx context.Context, db *gorm.DB, id ID) (*PaymentIntent, error)
	SetUsageCount(ctx context.Context, db *gorm.DB, id ID, count uint64) error
	Deactivate(ctx context.Context, db *gorm.DB, id ID) error
}

type CreateRequest struct {
	Amount           money.Amount
	Description      string
	ExpiresInSeconds uint64
	MaxUsages        uint64
}

type Service interface {
	Create(ctx context.Context, call host.Call, req CreateRequest) (ID, error)
	// Pay settles the attached value against the intent and returns the
	// ledger transaction id.
	Pay(ctx context.Context, call host.Call, id ID, messageReference string) (uint64, error)
	Cancel(ctx context.Context, call host.Call, id ID) error

	Get(ctx context.Context, id ID) (*PaymentIntent, error)
	ListByHandle(ctx context.Context, handle string) ([]ID, error)
	ListByOwner(ctx context.Context, owner host.Identity) ([]ID, error)
	CountByHandle(ctx context.Context, handle string) (uint64, error)
	CountByOwner(ctx context.Context, owner host.Identity) (uint64, error)
}
