package repository

import (
	"context"

	"github.com/smallbiznis/onclick/internal/money"
	"github.com/smallbiznis/onclick/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, owner, name, price, metadata_reference, active, total_sold, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Owner,
		product.Name,
		product.Price,
		product.MetadataReference,
		product.Active,
		product.TotalSold,
		product.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uint64) (*domain.Product, error) {
	var items []domain.Product
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Limit(1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, id uint64, name string, price money.Amount, metadataReference string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET name = ?, price = ?, metadata_reference = ?
		 WHERE id = ?`,
		name,
		price,
		metadataReference,
		id,
	).Error
}

func (r *repo) Deactivate(ctx context.Context, db *gorm.DB, id uint64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET active = ? WHERE id = ?`,
		false,
		id,
	).Error
}

func (r *repo) IncrementSold(ctx context.Context, db *gorm.DB, id uint64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET total_sold = total_sold + 1 WHERE id = ?`,
		id,
	).Error
}
