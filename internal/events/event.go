// Package events records ledger events in an outbox table inside the
// mutating call's transaction and delivers them, in order, to a broadcast
// publisher once committed.
package events

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type EventType string

const (
	EventUserRegistered         EventType = "UserRegistered"
	EventPageUpdated            EventType = "PageUpdated"
	EventPageMetadataUpdated    EventType = "PageMetadataUpdated"
	EventGoalUpdated            EventType = "GoalUpdated"
	EventPageDeactivated        EventType = "PageDeactivated"
	EventDonationMade           EventType = "DonationMade"
	EventProductPurchased       EventType = "ProductPurchased"
	EventCampaignContribution   EventType = "CampaignContribution"
	EventProductCreated         EventType = "ProductCreated"
	EventProductUpdated         EventType = "ProductUpdated"
	EventProductDeleted         EventType = "ProductDeleted"
	EventMilestoneAdded         EventType = "MilestoneAdded"
	EventMilestoneCompleted     EventType = "MilestoneCompleted"
	EventFundsWithdrawn         EventType = "FundsWithdrawn"
	EventPlatformFeeUpdated     EventType = "PlatformFeeUpdated"
	EventPlatformFeesWithdrawn  EventType = "PlatformFeesWithdrawn"
	EventPaymentIntentCreated   EventType = "PaymentIntentCreated"
	EventPaymentIntentPaid      EventType = "PaymentIntentPaid"
	EventPaymentIntentCancelled EventType = "PaymentIntentCancelled"
)

// Event is staged by an operation. Payload values must be JSON friendly:
// amounts and identities as strings.
type Event struct {
	Type    EventType
	Payload map[string]any
}

// Record is one outbox row.
type Record struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Type        EventType         `json:"type" gorm:"size:64;not null;index"`
	Payload     datatypes.JSONMap `json:"payload"`
	CallID      string            `json:"call_id" gorm:"size:32;index"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null"`
	PublishedAt *time.Time        `json:"published_at,omitempty" gorm:"index"`
}

func (Record) TableName() string { return "ledger_events" }
