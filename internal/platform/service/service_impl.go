package service

import (
	"context"
	"fmt"

	"github.com/smallbiznis/onclick/internal/apperror"
	"github.com/smallbiznis/onclick/internal/authorization"
	"github.com/smallbiznis/onclick/internal/clock"
	"github.com/smallbiznis/onclick/internal/engine"
	"github.com/smallbiznis/onclick/internal/events"
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/money"
	"github.com/smallbiznis/onclick/internal/platform/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Repo     domain.Repository
	Runner   *engine.Runner
	Outbox   *events.Outbox
	Authz    authorization.Service
	Treasury domain.Treasury
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	runner   *engine.Runner
	outbox   *events.Outbox
	authz    authorization.Service
	treasury domain.Treasury
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("platform.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		runner:   p.Runner,
		outbox:   p.Outbox,
		authz:    p.Authz,
		treasury: p.Treasury,
	}
}

func (s *Service) Initialize(ctx context.Context, administrator host.Identity, feeBasisPoints uint64) (*domain.State, error) {
	if feeBasisPoints > domain.MaxFeeBasisPoints {
		return nil, apperror.ErrInvalidAmount
	}

	var state *domain.State
	err := s.runner.Execute(ctx, "platform.initialize", host.NewCall(administrator), func(ctx context.Context, tx *gorm.DB) error {
		existing, err := s.repo.Get(ctx, tx)
		if err != nil {
			return err
		}
		if existing != nil {
			state = existing
			return nil
		}

		state = &domain.State{
			ID:             domain.StateID,
			Administrator:  administrator,
			FeeBasisPoints: feeBasisPoints,
			UpdatedAt:      clock.Unix(s.clock),
		}
		if err := s.repo.Insert(ctx, tx, state); err != nil {
			return fmt.Errorf("insert platform state: %w", err)
		}
		s.log.Info("platform initialized",
			zap.String("administrator", administrator.String()),
			zap.Uint64("fee_basis_points", feeBasisPoints),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.authz.BindAdministrator(ctx, state.Administrator); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *Service) SetFeeBasisPoints(ctx context.Context, call host.Call, value uint64) error {
	return s.runner.Execute(ctx, "platform.set_fee_basis_points", call, func(ctx context.Context, tx *gorm.DB) error {
		if err := s.authz.Authorize(ctx, call.Caller, authorization.ObjectPlatform, authorization.ActionFeeSet); err != nil {
			return err
		}
		if value > domain.MaxFeeBasisPoints {
			return apperror.ErrInvalidAmount
		}

		state, err := s.treasury.Load(ctx, tx)
		if err != nil {
			return err
		}
		if err := s.repo.SetFeeBasisPoints(ctx, tx, value, clock.Unix(s.clock)); err != nil {
			return fmt.Errorf("update fee: %w", err)
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventPlatformFeeUpdated,
			Payload: map[string]any{
				"old_fee_basis_points": state.FeeBasisPoints,
				"new_fee_basis_points": value,
			},
		})
	})
}

func (s *Service) WithdrawFees(ctx context.Context, call host.Call) (money.Amount, error) {
	var withdrawn money.Amount
	err := s.runner.Execute(ctx, "platform.withdraw_fees", call, func(ctx context.Context, tx *gorm.DB) error {
		if err := s.authz.Authorize(ctx, call.Caller, authorization.ObjectPlatform, authorization.ActionFeesWithdraw); err != nil {
			return err
		}

		state, err := s.treasury.Load(ctx, tx)
		if err != nil {
			return err
		}
		withdrawn = state.FeesCollected

		if err := s.repo.SetFeesCollected(ctx, tx, money.Amount{}, clock.Unix(s.clock)); err != nil {
			return fmt.Errorf("reset fees: %w", err)
		}
		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventPlatformFeesWithdrawn,
			Payload: map[string]any{
				"administrator": state.Administrator.String(),
				"amount":        withdrawn.String(),
			},
		}); err != nil {
			return err
		}

		return s.runner.Transfer(ctx, state.Administrator, withdrawn)
	})
	if err != nil {
		return money.Amount{}, err
	}
	return withdrawn, nil
}

func (s *Service) State(ctx context.Context) (*domain.State, error) {
	return s.treasury.Load(ctx, s.runner.DB())
}
