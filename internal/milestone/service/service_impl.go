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
	"github.com/smallbiznis/onclick/internal/milestone/domain"
	pagedomain "github.com/smallbiznis/onclick/internal/page/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log    *zap.Logger
	Clock  clock.Clock
	Repo   domain.Repository
	Pages  pagedomain.Repository
	Runner *engine.Runner
	Outbox *events.Outbox
}

type Service struct {
	log    *zap.Logger
	clock  clock.Clock
	repo   domain.Repository
	pages  pagedomain.Repository
	runner *engine.Runner
	outbox *events.Outbox
}

func New(p Params) domain.Service {
	return &Service{
		log:    p.Log.Named("milestone.service"),
		clock:  p.Clock,
		repo:   p.Repo,
		pages:  p.Pages,
		runner: p.Runner,
		outbox: p.Outbox,
	}
}

func (s *Service) AddMilestone(ctx context.Context, call host.Call, req domain.AddRequest) (uint64, error) {
	var position uint64
	err := s.runner.Execute(ctx, "milestone.add", call, func(ctx context.Context, tx *gorm.DB) error {
		page, err := s.ownedPage(ctx, tx, call.Caller, req.Handle)
		if err != nil {
			return err
		}
		if page.Role != pagedomain.RoleCrowdfunder {
			return apperror.ErrInvalidRole
		}
		if req.TargetAmount.IsZero() {
			return apperror.ErrInvalidAmount
		}

		position, err = s.repo.Count(ctx, tx, page.Owner)
		if err != nil {
			return err
		}
		m := &domain.Milestone{
			PageOwner:         page.Owner,
			Position:          position,
			Title:             req.Title,
			TargetAmount:      req.TargetAmount,
			MetadataReference: req.MetadataReference,
		}
		if err := s.repo.Insert(ctx, tx, m); err != nil {
			return fmt.Errorf("insert milestone: %w", err)
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventMilestoneAdded,
			Payload: map[string]any{
				"owner":         page.Owner.String(),
				"handle":        page.Handle,
				"position":      position,
				"title":         req.Title,
				"target_amount": req.TargetAmount.String(),
			},
		})
	})
	if err != nil {
		return 0, err
	}
	return position, nil
}

func (s *Service) CompleteMilestone(ctx context.Context, call host.Call, handle string, position uint64) error {
	return s.runner.Execute(ctx, "milestone.complete", call, func(ctx context.Context, tx *gorm.DB) error {
		page, err := s.ownedPage(ctx, tx, call.Caller, handle)
		if err != nil {
			return err
		}
		m, err := s.repo.Find(ctx, tx, page.Owner, position)
		if err != nil {
			return err
		}
		if m == nil {
			return apperror.ErrMilestoneNotFound
		}
		if m.Completed {
			return nil
		}
		if page.AmountRaised.Lt(m.TargetAmount) {
			return apperror.ErrInsufficientFunds
		}

		now := clock.Unix(s.clock)
		if err := s.repo.MarkCompleted(ctx, tx, page.Owner, position, now); err != nil {
			return fmt.Errorf("complete milestone: %w", err)
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventMilestoneCompleted,
			Payload: map[string]any{
				"owner":         page.Owner.String(),
				"handle":        page.Handle,
				"position":      position,
				"amount_raised": page.AmountRaised.String(),
			},
		})
	})
}

func (s *Service) ListMilestones(ctx context.Context, handle string) ([]domain.Milestone, error) {
	db := s.runner.DB()
	page, err := s.pages.FindByHandle(ctx, db, handle)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, apperror.ErrPageNotFound
	}
	return s.repo.List(ctx, db, page.Owner)
}

func (s *Service) ownedPage(ctx context.Context, tx *gorm.DB, caller host.Identity, handle string) (*pagedomain.Page, error) {
	page, err := s.pages.FindByHandle(ctx, tx, handle)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, apperror.ErrPageNotFound
	}
	if err := authorization.RequireOwner(caller, page.Owner); err != nil {
		return nil, err
	}
	return page, nil
}
