package domain

import (
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/money"
)

// StateID is the primary key of the single platform row.
const StateID = 1

// MaxFeeBasisPoints is 100%.
const MaxFeeBasisPoints = money.BasisPointsDenominator

// State is the platform treasury and the global id counters.
type State struct {
	ID                uint8         `json:"-" gorm:"primaryKey;autoIncrement:false"`
	Administrator     host.Identity `json:"administrator" gorm:"size:42;not null"`
	FeeBasisPoints    uint64        `json:"fee_basis_points" gorm:"not null"`
	FeesCollected     money.Amount  `json:"fees_collected" gorm:"size:80;not null"`
	NextPageID        uint64        `json:"next_page_id" gorm:"not null"`
	NextProductID     uint64        `json:"next_product_id" gorm:"not null"`
	NextTransactionID uint64        `json:"next_transaction_id" gorm:"not null"`
	IntentNonce       uint64        `json:"intent_nonce" gorm:"not null"`
	UpdatedAt         uint64        `json:"updated_at" gorm:"not null;autoUpdateTime:false"`
}

func (State) TableName() string { return "platform_state" }

// Counter names one of the monotonic id sequences.
type Counter string

const (
	CounterPage        Counter = "next_page_id"
	CounterProduct     Counter = "next_product_id"
	CounterTransaction Counter = "next_transaction_id"
	CounterIntentNonce Counter = "intent_nonce"
)
