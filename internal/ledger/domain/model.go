package domain

import (
	"context"

	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/money"
	"gorm.io/gorm"
)

// Transaction is one settled transfer. Amount is net of the platform fee.
type Transaction struct {
	ID               uint64        `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Payer            host.Identity `json:"payer" gorm:"size:42;not null;index"`
	Payee            host.Identity `json:"payee" gorm:"size:42;not null;index"`
	Amount           money.Amount  `json:"amount" gorm:"size:80;not null"`
	MessageReference string        `json:"message_reference" gorm:"type:text;not null"`
	PayeeRole        uint8         `json:"payee_role" gorm:"not null"`
	ProductID        *uint64       `json:"product_id,omitempty"`
	Timestamp        uint64        `json:"timestamp" gorm:"not null"`
	Refunded         bool          `json:"refunded" gorm:"not null"`
	CallID           string        `json:"call_id" gorm:"size:32"`
}

func (Transaction) TableName() string { return "ledger_transactions" }

// RecordInput describes a transaction to append. PayeeHandle keys the
// handle index.
type RecordInput struct {
	Payer            host.Identity
	Payee            host.Identity
	PayeeHandle      string
	Amount           money.Amount
	MessageReference string
	PayeeRole        uint8
	ProductID        *uint64
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, txn *Transaction) error
	FindByID(ctx context.Context, db *gorm.DB, id uint64) (*Transaction, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []uint64) ([]Transaction, error)
}

type Service interface {
	// Record appends a transaction and its index entries on tx.
	Record(ctx context.Context, tx *gorm.DB, in RecordInput) (*Transaction, error)

	GetTransaction(ctx context.Context, id uint64) (*Transaction, error)
	ListByOwner(ctx context.Context, owner host.Identity) ([]Transaction, error)
	ListByHandle(ctx context.Context, handle string) ([]Transaction, error)
	NextTransactionID(ctx context.Context) (uint64, error)
}
