package domain

import (
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/money"
)

// Role is the kind of participant a page belongs to.
type Role uint8

const (
	RoleCreator Role = iota
	RoleBusiness
	RoleCrowdfunder
)

func (r Role) Valid() bool { return r <= RoleCrowdfunder }

func (r Role) String() string {
	switch r {
	case RoleCreator:
		return "creator"
	case RoleBusiness:
		return "business"
	case RoleCrowdfunder:
		return "crowdfunder"
	default:
		return "unknown"
	}
}

// HasFundingGoal reports whether pages of this role carry a goal.
func (r Role) HasFundingGoal() bool {
	return r == RoleCreator || r == RoleCrowdfunder
}

const (
	MinHandleLength = 3
	MaxHandleLength = 255
)

type Page struct {
	Owner             host.Identity `json:"owner" gorm:"primaryKey;size:42"`
	Handle            string        `json:"handle" gorm:"size:255;not null;uniqueIndex:ux_pages_handle"`
	Role              Role          `json:"role" gorm:"not null"`
	DisplayName       string        `json:"display_name" gorm:"type:text;not null"`
	MetadataReference string        `json:"metadata_reference" gorm:"type:text;not null"`
	FundingGoal       money.Amount  `json:"funding_goal" gorm:"size:80;not null"`
	AmountRaised      money.Amount  `json:"amount_raised" gorm:"size:80;not null"`
	SupporterCount    uint64        `json:"supporter_count" gorm:"not null"`
	Active            bool          `json:"active" gorm:"not null"`
	CreatedAt         uint64        `json:"created_at" gorm:"not null;autoCreateTime:false"`
}

func (Page) TableName() string { return "pages" }
