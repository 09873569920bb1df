package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/onclick/internal/apperror"
	ledgerdomain "github.com/smallbiznis/onclick/internal/ledger/domain"
	"github.com/smallbiznis/onclick/internal/money"
	pagedomain "github.com/smallbiznis/onclick/internal/page/domain"
	platformdomain "github.com/smallbiznis/onclick/internal/platform/domain"
	"github.com/smallbiznis/onclick/internal/settlement/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type SettlerParams struct {
	fx.In

	Pages    pagedomain.Repository
	Ledger   ledgerdomain.Service
	Treasury platformdomain.Treasury
}

type Settler struct {
	pages    pagedomain.Repository
	ledger   ledgerdomain.Service
	treasury platformdomain.Treasury
}

func NewSettler(p SettlerParams) domain.Settler {
	return &Settler{
		pages:    p.Pages,
		ledger:   p.Ledger,
		treasury: p.Treasury,
	}
}

func (s *Settler) Settle(ctx context.Context, tx *gorm.DB, in domain.SettleInput) (*domain.Settlement, error) {
	state, err := s.treasury.Load(ctx, tx)
	if err != nil {
		return nil, err
	}
	fee, net := money.SplitFee(in.Gross, state.FeeBasisPoints)

	if in.CreditPage {
		raised, overflow := in.Page.AmountRaised.Add(net)
		if overflow {
			return nil, apperror.ErrInvalidAmount
		}
		supporters := in.Page.SupporterCount + 1
		if err := s.pages.UpdateFunds(ctx, tx, in.Page.Owner, raised, supporters); err != nil {
			return nil, fmt.Errorf("credit page: %w", err)
		}
		in.Page.AmountRaised = raised
		in.Page.SupporterCount = supporters
	}

	if err := s.treasury.AccrueFee(ctx, tx, fee); err != nil {
		return nil, err
	}

	txn, err := s.ledger.Record(ctx, tx, ledgerdomain.RecordInput{
		Payer:            in.Payer,
		Payee:            in.Page.Owner,
		PayeeHandle:      in.Page.Handle,
		Amount:           net,
		MessageReference: in.MessageReference,
		PayeeRole:        uint8(in.Page.Role),
		ProductID:        in.ProductID,
	})
	if err != nil {
		return nil, err
	}

	return &domain.Settlement{Transaction: txn, Fee: fee, Net: net}, nil
}
