package domain

import (
	"context"

	"github.com/smallbiznis/onclick/internal/money"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id uint64) (*Product, error)
	Update(ctx context.Context, db *gorm.DB, id uint64, name string, price money.Amount, metadataReference string) error
	Deactivate(ctx context.Context, db *gorm.DB, id uint64) error
	IncrementSold(ctx context.Context, db *gorm.DB, id uint64) error
}
