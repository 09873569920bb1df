package domain

import (
	"context"

	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/money"
	"gorm.io/gorm"
)

// Milestone is a funding target on a crowdfunding page. Completion is
// one-way.
type Milestone struct {
	PageOwner         host.Identity `json:"page_owner" gorm:"primaryKey;size:42"`
	Position          uint64        `json:"position" gorm:"primaryKey;autoIncrement:false"`
	Title             string        `json:"title" gorm:"type:text;not null"`
	TargetAmount      money.Amount  `json:"target_amount" gorm:"size:80;not null"`
	MetadataReference string        `json:"metadata_reference" gorm:"type:text;not null"`
	Completed         bool          `json:"completed" gorm:"not null"`
	CompletedAt       *uint64       `json:"completed_at,omitempty"`
}

func (Milestone) TableName() string { return "milestones" }

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, m *Milestone) error
	Count(ctx context.Context, db *gorm.DB, owner host.Identity) (uint64, error)
	Find(ctx context.Context, db *gorm.DB, owner host.Identity, position uint64) (*Milestone, error)
	List(ctx context.Context, db *gorm.DB, owner host.Identity) ([]Milestone, error)
	MarkCompleted(ctx context.Context, db *gorm.DB, owner host.Identity, position uint64, at uint64) error
}

type AddRequest struct {
	Handle            string
	Title             string
	TargetAmount      money.Amount
	MetadataReference string
}

type Service interface {
	AddMilestone(ctx context.Context, call host.Call, req AddRequest) (uint64, error)
	CompleteMilestone(ctx context.Context, call host.Call, handle string, position uint64) error
	ListMilestones(ctx context.Context, handle string) ([]Milestone, error)
}
