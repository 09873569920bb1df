package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/onclick/internal/apperror"
	"github.com/smallbiznis/onclick/internal/authorization"
	"github.com/smallbiznis/onclick/internal/engine"
	"github.com/smallbiznis/onclick/internal/events"
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/money"
	"github.com/smallbiznis/onclick/internal/observability/metrics"
	pagedomain "github.com/smallbiznis/onclick/internal/page/domain"
	productdomain "github.com/smallbiznis/onclick/internal/product/domain"
	"github.com/smallbiznis/onclick/internal/settlement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Runner   *engine.Runner
	Outbox   *events.Outbox
	Settler  domain.Settler
	Pages    pagedomain.Repository
	Products productdomain.Repository
	Metrics  *metrics.LedgerMetrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	runner   *engine.Runner
	outbox   *events.Outbox
	settler  domain.Settler
	pages    pagedomain.Repository
	products productdomain.Repository
	metrics  *metrics.LedgerMetrics
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("settlement.service"),
		runner:   p.Runner,
		outbox:   p.Outbox,
		settler:  p.Settler,
		pages:    p.Pages,
		products: p.Products,
		metrics:  p.Metrics,
	}
}

func (s *Service) Donate(ctx context.Context, call host.Call, handle, messageReference string) (uint64, error) {
	var txnID uint64
	err := s.runner.Execute(ctx, "settlement.donate", call, func(ctx context.Context, tx *gorm.DB) error {
		if call.Value.IsZero() {
			return apperror.ErrInvalidAmount
		}

		page, err := s.findPage(ctx, tx, handle)
		if err != nil {
			return err
		}
		if !page.Active {
			return apperror.ErrPageNotActive
		}
		if page.Role != pagedomain.RoleCreator {
			return apperror.ErrInvalidRole
		}

		settled, err := s.settler.Settle(ctx, tx, domain.SettleInput{
			Payer:            call.Caller,
			Page:             page,
			Gross:            call.Value,
			MessageReference: messageReference,
			CreditPage:       true,
		})
		if err != nil {
			return err
		}
		txnID = settled.Transaction.ID

		if err := s.outbox.PublishTx(ctx, tx, domain.TransferEvent(events.EventDonationMade, call.Caller, page, settled, messageReference)); err != nil {
			return err
		}
		return s.runner.Transfer(ctx, page.Owner, settled.Net)
	})
	if err != nil {
		return 0, err
	}
	s.metrics.IncSettlement(string(domain.FlowDonation))
	return txnID, nil
}

func (s *Service) Purchase(ctx context.Context, call host.Call, handle string, productID uint64) (uint64, error) {
	var txnID uint64
	err := s.runner.Execute(ctx, "settlement.purchase", call, func(ctx context.Context, tx *gorm.DB) error {
		if call.Value.IsZero() {
			return apperror.ErrInvalidAmount
		}

		page, err := s.findPage(ctx, tx, handle)
		if err != nil {
			return err
		}
		if page.Role != pagedomain.RoleBusiness {
			return apperror.ErrInvalidRole
		}

		product, err := s.products.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if product == nil || product.Owner != page.Owner {
			return apperror.ErrProductNotFound
		}
		if !product.Active {
			return apperror.ErrProductNotActive
		}
		if !call.Value.Eq(product.Price) {
			return apperror.ErrInvalidAmount
		}

		settled, err := s.settler.Settle(ctx, tx, domain.SettleInput{
			Payer:     call.Caller,
			Page:      page,
			Gross:     call.Value,
			ProductID: &product.ID,
		})
		if err != nil {
			return err
		}
		txnID = settled.Transaction.ID

		if err := s.products.IncrementSold(ctx, tx, product.ID); err != nil {
			return fmt.Errorf("count sale: %w", err)
		}

		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventProductPurchased,
			Payload: map[string]any{
				"buyer":          call.Caller.String(),
				"seller":         page.Owner.String(),
				"handle":         page.Handle,
				"product_id":     product.ID,
				"amount":         settled.Net.String(),
				"fee":            settled.Fee.String(),
				"transaction_id": txnID,
			},
		}); err != nil {
			return err
		}
		return s.runner.Transfer(ctx, page.Owner, settled.Net)
	})
	if err != nil {
		return 0, err
	}
	s.metrics.IncSettlement(string(domain.FlowPurchase))
	return txnID, nil
}

func (s *Service) Contribute(ctx context.Context, call host.Call, handle, messageReference string) (uint64, error) {
	var txnID uint64
	err := s.runner.Execute(ctx, "settlement.contribute", call, func(ctx context.Context, tx *gorm.DB) error {
		if call.Value.IsZero() {
			return apperror.ErrInvalidAmount
		}

		page, err := s.findPage(ctx, tx, handle)
		if err != nil {
			return err
		}
		if !page.Active {
			return apperror.ErrCampaignNotActive
		}
		if page.Role != pagedomain.RoleCrowdfunder {
			return apperror.ErrInvalidRole
		}

		settled, err := s.settler.Settle(ctx, tx, domain.SettleInput{
			Payer:            call.Caller,
			Page:             page,
			Gross:            call.Value,
			MessageReference: messageReference,
			CreditPage:       true,
		})
		if err != nil {
			return err
		}
		txnID = settled.Transaction.ID

		if err := s.outbox.PublishTx(ctx, tx, domain.TransferEvent(events.EventCampaignContribution, call.Caller, page, settled, messageReference)); err != nil {
			return err
		}
		return s.runner.Transfer(ctx, page.Owner, settled.Net)
	})
	if err != nil {
		return 0, err
	}
	s.metrics.IncSettlement(string(domain.FlowContribution))
	return txnID, nil
}

// Withdraw pays amount out of the page balance to its owner. No fee applies.
func (s *Service) Withdraw(ctx context.Context, call host.Call, handle string, amount money.Amount) error {
	return s.runner.Execute(ctx, "settlement.withdraw", call, func(ctx context.Context, tx *gorm.DB) error {
		page, err := s.findPage(ctx, tx, handle)
		if err != nil {
			return err
		}
		if err := authorization.RequireOwner(call.Caller, page.Owner); err != nil {
			return err
		}
		remaining, underflow := page.AmountRaised.Sub(amount)
		if underflow {
			return apperror.ErrInsufficientFunds
		}

		if err := s.pages.UpdateFunds(ctx, tx, page.Owner, remaining, page.SupporterCount); err != nil {
			return fmt.Errorf("debit page: %w", err)
		}
		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventFundsWithdrawn,
			Payload: map[string]any{
				"owner":  page.Owner.String(),
				"handle": page.Handle,
				"amount": amount.String(),
			},
		}); err != nil {
			return err
		}
		return s.runner.Transfer(ctx, page.Owner, amount)
	})
}

func (s *Service) findPage(ctx context.Context, tx *gorm.DB, handle string) (*pagedomain.Page, error) {
	page, err := s.pages.FindByHandle(ctx, tx, handle)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, apperror.ErrPageNotFound
	}
	return page, nil
}
