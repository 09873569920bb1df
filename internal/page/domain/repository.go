package domain

import (
	"context"

	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/money"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, page *Page) error
	FindByOwner(ctx context.Context, db *gorm.DB, owner host.Identity) (*Page, error)
	FindByHandle(ctx context.Context, db *gorm.DB, handle string) (*Page, error)
	UpdateInfo(ctx context.Context, db *gorm.DB, owner host.Identity, displayName, metadataReference string) error
	UpdateFundingGoal(ctx context.Context, db *gorm.DB, owner host.Identity, goal money.Amount) error
	UpdateFunds(ctx context.Context, db *gorm.DB, owner host.Identity, raised money.Amount, supporters uint64) error
	Deactivate(ctx context.Context, db *gorm.DB, owner host.Identity) error
}
