package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/smallbiznis/onclick/internal/apperror"
	"github.com/smallbiznis/onclick/internal/clock"
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/index"
	ledgerdomain "github.com/smallbiznis/onclick/internal/ledger/domain"
	platformdomain "github.com/smallbiznis/onclick/internal/platform/domain"
	"github.com/smallbiznis/onclick/pkg/telemetry/correlation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Repo     ledgerdomain.Repository
	Index    index.Repository
	Treasury platformdomain.Treasury
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	repo     ledgerdomain.Repository
	index    index.Repository
	treasury platformdomain.Treasury
}

func NewService(p Params) ledgerdomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("ledger.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		index:    p.Index,
		treasury: p.Treasury,
	}
}

func (s *Service) Record(ctx context.Context, tx *gorm.DB, in ledgerdomain.RecordInput) (*ledgerdomain.Transaction, error) {
	id, err := s.treasury.Allocate(ctx, tx, platformdomain.CounterTransaction)
	if err != nil {
		return nil, err
	}

	txn := &ledgerdomain.Transaction{
		ID:               id,
		Payer:            in.Payer,
		Payee:            in.Payee,
		Amount:           in.Amount,
		MessageReference: in.MessageReference,
		PayeeRole:        in.PayeeRole,
		ProductID:        in.ProductID,
		Timestamp:        clock.Unix(s.clock),
		CallID:           correlation.ExtractCorrelationID(ctx),
	}
	if err := s.repo.Insert(ctx, tx, txn); err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	value := strconv.FormatUint(id, 10)
	if err := s.index.Append(ctx, tx, index.OwnerTransactions, in.Payer.String(), value); err != nil {
		return nil, err
	}
	if in.Payee != in.Payer {
		if err := s.index.Append(ctx, tx, index.OwnerTransactions, in.Payee.String(), value); err != nil {
			return nil, err
		}
	}
	if err := s.index.Append(ctx, tx, index.HandleTransactions, in.PayeeHandle, value); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *Service) GetTransaction(ctx context.Context, id uint64) (*ledgerdomain.Transaction, error) {
	txn, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, apperror.ErrTransactionNotFound
	}
	return txn, nil
}

// ListByOwner returns transactions the owner paid or received, oldest first.
func (s *Service) ListByOwner(ctx context.Context, owner host.Identity) ([]ledgerdomain.Transaction, error) {
	return s.listIndexed(ctx, index.OwnerTransactions, owner.String())
}

// ListByHandle returns transactions received by the page, oldest first.
func (s *Service) ListByHandle(ctx context.Context, handle string) ([]ledgerdomain.Transaction, error) {
	return s.listIndexed(ctx, index.HandleTransactions, handle)
}

func (s *Service) listIndexed(ctx context.Context, name index.Name, key string) ([]ledgerdomain.Transaction, error) {
	values, err := s.index.List(ctx, s.db, name, key)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("index %s[%s]: %w", name, key, err)
		}
		ids = append(ids, id)
	}
	return s.repo.FindByIDs(ctx, s.db, ids)
}

func (s *Service) NextTransactionID(ctx context.Context) (uint64, error) {
	return s.treasury.Peek(ctx, platformdomain.CounterTransaction)
}
