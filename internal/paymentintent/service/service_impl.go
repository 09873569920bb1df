package service

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/smallbiznis/onclick/internal/apperror"
	"github.com/smallbiznis/onclick/internal/authorization"
	"github.com/smallbiznis/onclick/internal/clock"
	"github.com/smallbiznis/onclick/internal/engine"
	"github.com/smallbiznis/onclick/internal/events"
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/index"
	"github.com/smallbiznis/onclick/internal/money"
	"github.com/smallbiznis/onclick/internal/observability/metrics"
	pagedomain "github.com/smallbiznis/onclick/internal/page/domain"
	"github.com/smallbiznis/onclick/internal/paymentintent/domain"
	platformdomain "github.com/smallbiznis/onclick/internal/platform/domain"
	settlementdomain "github.com/smallbiznis/onclick/internal/settlement/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxExpiresAt bounds expiry to what the store's signed integer columns hold.
const maxExpiresAt = math.MaxInt64

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Hasher   host.Hasher
	Repo     domain.Repository
	Pages    pagedomain.Repository
	Index    index.Repository
	Runner   *engine.Runner
	Outbox   *events.Outbox
	Treasury platformdomain.Treasury
	Settler  settlementdomain.Settler
	Metrics  *metrics.LedgerMetrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	hasher   host.Hasher
	repo     domain.Repository
	pages    pagedomain.Repository
	index    index.Repository
	runner   *engine.Runner
	outbox   *events.Outbox
	treasury platformdomain.Treasury
	settler  settlementdomain.Settler
	metrics  *metrics.LedgerMetrics
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("paymentintent.service"),
		clock:    p.Clock,
		hasher:   p.Hasher,
		repo:     p.Repo,
		pages:    p.Pages,
		index:    p.Index,
		runner:   p.Runner,
		outbox:   p.Outbox,
		treasury: p.Treasury,
		settler:  p.Settler,
		metrics:  p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, call host.Call, req domain.CreateRequest) (domain.ID, error) {
	var intentID domain.ID
	err := s.runner.Execute(ctx, "paymentintent.create", call, func(ctx context.Context, tx *gorm.DB) error {
		page, err := s.pages.FindByOwner(ctx, tx, call.Caller)
		if err != nil {
			return err
		}
		if page == nil {
			return apperror.ErrPageNotFound
		}
		if req.Amount.IsZero() {
			return apperror.ErrInvalidAmount
		}

		now := clock.Unix(s.clock)
		if req.ExpiresInSeconds == 0 || req.ExpiresInSeconds > maxExpiresAt-now {
			return apperror.ErrInvalidExpiration
		}

		nonce, err := s.treasury.Allocate(ctx, tx, platformdomain.CounterIntentNonce)
		if err != nil {
			return err
		}
		intentID = s.deriveID(call.Caller, now, req.Amount, nonce)

		intent := &domain.PaymentIntent{
			ID:          intentID,
			Creator:     call.Caller,
			Handle:      page.Handle,
			Amount:      req.Amount,
			Description: req.Description,
			Active:      true,
			CreatedAt:   now,
			ExpiresAt:   now + req.ExpiresInSeconds,
			MaxUsages:   req.MaxUsages,
			Nonce:       nonce,
		}
		if err := s.repo.Insert(ctx, tx, intent); err != nil {
			return fmt.Errorf("insert payment intent: %w", err)
		}
		if err := s.index.Append(ctx, tx, index.HandleIntents, page.Handle, intentID.String()); err != nil {
			return err
		}
		if err := s.index.Append(ctx, tx, index.OwnerIntents, call.Caller.String(), intentID.String()); err != nil {
			return err
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventPaymentIntentCreated,
			Payload: map[string]any{
				"intent_id":  intentID.String(),
				"creator":    call.Caller.String(),
				"handle":     page.Handle,
				"amount":     req.Amount.String(),
				"expires_at": intent.ExpiresAt,
				"max_usages": req.MaxUsages,
			},
		})
	})
	if err != nil {
		return domain.ID{}, err
	}
	return intentID, nil
}

// deriveID hashes caller, time, amount and nonce. Integers are little endian.
func (s *Service) deriveID(caller host.Identity, now uint64, amount money.Amount, nonce uint64) domain.ID {
	buf := make([]byte, 0, host.IdentityLength+8+32+8)
	buf = append(buf, caller[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, now)
	le := amount.LittleEndian32()
	buf = append(buf, le[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, nonce)
	return domain.ID(s.hasher.Sum256(buf))
}

func (s *Service) Pay(ctx context.Context, call host.Call, id domain.ID, messageReference string) (uint64, error) {
	var txnID uint64
	err := s.runner.Execute(ctx, "paymentintent.pay", call, func(ctx context.Context, tx *gorm.DB) error {
		if call.Value.IsZero() {
			return apperror.ErrInvalidAmount
		}

		intent, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if intent == nil {
			return apperror.ErrPaymentIntentNotFound
		}
		if !intent.Active {
			return apperror.ErrPaymentIntentInactive
		}
		if clock.Unix(s.clock) > intent.ExpiresAt {
			return apperror.ErrPaymentIntentExpired
		}
		// Only capped intents count their usages.
		usage := intent.UsageCount
		if !intent.Unlimited() {
			if intent.UsageCount >= intent.MaxUsages {
				return apperror.ErrPaymentIntentMaxUsages
			}
			usage++
			if err := s.repo.SetUsageCount(ctx, tx, intent.ID, usage); err != nil {
				return fmt.Errorf("count intent usage: %w", err)
			}
		}
		if !call.Value.Eq(intent.Amount) {
			return apperror.ErrInvalidAmount
		}

		page, err := s.pages.FindByOwner(ctx, tx, intent.Creator)
		if err != nil {
			return err
		}
		if page == nil {
			return apperror.ErrPageNotFound
		}
		if !page.Active {
			return apperror.ErrPageNotActive
		}

		settled, err := s.settler.Settle(ctx, tx, settlementdomain.SettleInput{
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

		if err := s.outbox.PublishTx(ctx, tx,
			events.Event{
				Type: events.EventPaymentIntentPaid,
				Payload: map[string]any{
					"intent_id":      intent.ID.String(),
					"payer":          call.Caller.String(),
					"amount":         call.Value.String(),
					"usage_count":    usage,
					"transaction_id": txnID,
				},
			},
			settlementdomain.TransferEvent(events.EventDonationMade, call.Caller, page, settled, messageReference),
		); err != nil {
			return err
		}
		return s.runner.Transfer(ctx, page.Owner, settled.Net)
	})
	if err != nil {
		return 0, err
	}
	s.metrics.IncSettlement(string(settlementdomain.FlowIntent))
	return txnID, nil
}

func (s *Service) Cancel(ctx context.Context, call host.Call, id domain.ID) error {
	return s.runner.Execute(ctx, "paymentintent.cancel", call, func(ctx context.Context, tx *gorm.DB) error {
		intent, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if intent == nil {
			return apperror.ErrPaymentIntentNotFound
		}
		if err := authorization.RequireOwner(call.Caller, intent.Creator); err != nil {
			return err
		}

		if err := s.repo.Deactivate(ctx, tx, intent.ID); err != nil {
			return fmt.Errorf("cancel payment intent: %w", err)
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventPaymentIntentCancelled,
			Payload: map[string]any{
				"intent_id": intent.ID.String(),
				"creator":   intent.Creator.String(),
			},
		})
	})
}

func (s *Service) Get(ctx context.Context, id domain.ID) (*domain.PaymentIntent, error) {
	intent, err := s.repo.FindByID(ctx, s.runner.DB(), id)
	if err != nil {
		return nil, err
	}
	if intent == nil {
		return nil, apperror.ErrPaymentIntentNotFound
	}
	return intent, nil
}

func (s *Service) ListByHandle(ctx context.Context, handle string) ([]domain.ID, error) {
	return s.list(ctx, index.HandleIntents, handle)
}

func (s *Service) ListByOwner(ctx context.Context, owner host.Identity) ([]domain.ID, error) {
	return s.list(ctx, index.OwnerIntents, owner.String())
}

func (s *Service) CountByHandle(ctx context.Context, handle string) (uint64, error) {
	return s.index.Count(ctx, s.runner.DB(), index.HandleIntents, handle)
}

func (s *Service) CountByOwner(ctx context.Context, owner host.Identity) (uint64, error) {
	return s.index.Count(ctx, s.runner.DB(), index.OwnerIntents, owner.String())
}

func (s *Service) list(ctx context.Context, name index.Name, key string) ([]domain.ID, error) {
	values, err := s.index.List(ctx, s.runner.DB(), name, key)
	if err != nil {
		return nil, err
	}
	ids := make([]domain.ID, 0, len(values))
	for _, v := range values {
		id, err := domain.ParseID(v)
		if err != nil {
			return nil, fmt.Errorf("index %s[%s]: %w", name, key, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
