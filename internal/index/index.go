// Package index maintains the append-only secondary indexes: lists of entity
// ids keyed by owner or handle. Entries are written once and never removed.
package index

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Name string

const (
	OwnerProducts      Name = "owner_products"
	OwnerTransactions  Name = "owner_transactions"
	HandleTransactions Name = "handle_transactions"
	HandleIntents      Name = "handle_intents"
	OwnerIntents       Name = "owner_intents"
)

// Entry is one position of one index list.
type Entry struct {
	IndexName Name   `gorm:"primaryKey;size:32"`
	Key       string `gorm:"column:index_key;primaryKey;size:255"`
	Position  uint64 `gorm:"primaryKey;autoIncrement:false"`
	Value     string `gorm:"size:80;not null"`
}

func (Entry) TableName() string { return "entity_indexes" }

type Repository interface {
	Append(ctx context.Context, db *gorm.DB, name Name, key, value string) error
	List(ctx context.Context, db *gorm.DB, name Name, key string) ([]string, error)
	Count(ctx context.Context, db *gorm.DB, name Name, key string) (uint64, error)
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

// Append adds value at the end of the list. Callers hold the call lock, so
// the next position is the current length.
func (r *repo) Append(ctx context.Context, db *gorm.DB, name Name, key, value string) error {
	n, err := r.Count(ctx, db, name, key)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Exec(
		`INSERT INTO entity_indexes (index_name, index_key, position, value) VALUES (?, ?, ?, ?)`,
		name,
		key,
		n,
		value,
	).Error; err != nil {
		return fmt.Errorf("append %s[%s]: %w", name, key, err)
	}
	return nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, name Name, key string) ([]string, error) {
	var values []string
	err := db.WithContext(ctx).
		Model(&Entry{}).
		Where("index_name = ? AND index_key = ?", name, key).
		Order("position ASC").
		Pluck("value", &values).Error
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, name Name, key string) (uint64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&Entry{}).
		Where("index_name = ? AND index_key = ?", name, key).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}
