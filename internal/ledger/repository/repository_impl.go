package repository

import (
	"context"

	"github.com/smallbiznis/onclick/internal/ledger/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, txn *domain.Transaction) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO ledger_transactions (id, payer, payee, amount, message_reference, payee_role, product_id, timestamp, refunded, call_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID,
		txn.Payer,
		txn.Payee,
		txn.Amount,
		txn.MessageReference,
		txn.PayeeRole,
		txn.ProductID,
		txn.Timestamp,
		txn.Refunded,
		txn.CallID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id uint64) (*domain.Transaction, error) {
	var items []domain.Transaction
	err := db.WithContext(ctx).
		Model(&domain.Transaction{}).
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

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []uint64) ([]domain.Transaction, error) {
	items := []domain.Transaction{}
	if len(ids) == 0 {
		return items, nil
	}
	err := db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
