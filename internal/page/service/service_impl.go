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
	"github.com/smallbiznis/onclick/internal/page/domain"
	platformdomain "github.com/smallbiznis/onclick/internal/platform/domain"
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
	Treasury platformdomain.Treasury
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	runner   *engine.Runner
	outbox   *events.Outbox
	treasury platformdomain.Treasury
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("page.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		runner:   p.Runner,
		outbox:   p.Outbox,
		treasury: p.Treasury,
	}
}

func (s *Service) Register(ctx context.Context, call host.Call, req domain.RegisterRequest) (uint64, error) {
	var pageID uint64
	err := s.runner.Execute(ctx, "page.register", call, func(ctx context.Context, tx *gorm.DB) error {
		if len(req.Handle) < domain.MinHandleLength || len(req.Handle) > domain.MaxHandleLength {
			return apperror.ErrInvalidHandle
		}

		taken, err := s.repo.FindByHandle(ctx, tx, req.Handle)
		if err != nil {
			return err
		}
		if taken != nil {
			return apperror.ErrHandleAlreadyTaken
		}
		owned, err := s.repo.FindByOwner(ctx, tx, call.Caller)
		if err != nil {
			return err
		}
		if owned != nil {
			return apperror.ErrHandleAlreadyTaken
		}

		if !req.Role.Valid() {
			return apperror.ErrInvalidRole
		}

		pageID, err = s.treasury.Allocate(ctx, tx, platformdomain.CounterPage)
		if err != nil {
			return err
		}

		page := &domain.Page{
			Owner:             call.Caller,
			Handle:            req.Handle,
			Role:              req.Role,
			DisplayName:       req.DisplayName,
			MetadataReference: req.MetadataReference,
			Active:            true,
			CreatedAt:         clock.Unix(s.clock),
		}
		if err := s.repo.Insert(ctx, tx, page); err != nil {
			return fmt.Errorf("insert page: %w", err)
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventUserRegistered,
			Payload: map[string]any{
				"owner":   page.Owner.String(),
				"handle":  page.Handle,
				"role":    uint8(page.Role),
				"page_id": pageID,
			},
		})
	})
	if err != nil {
		return 0, err
	}
	return pageID, nil
}

func (s *Service) UpdateInfo(ctx context.Context, call host.Call, handle, displayName, metadataReference string) error {
	return s.runner.Execute(ctx, "page.update_info", call, func(ctx context.Context, tx *gorm.DB) error {
		page, err := s.ownedPage(ctx, tx, call.Caller, handle)
		if err != nil {
			return err
		}

		if err := s.repo.UpdateInfo(ctx, tx, page.Owner, displayName, metadataReference); err != nil {
			return fmt.Errorf("update page: %w", err)
		}

		return s.outbox.PublishTx(ctx, tx,
			events.Event{
				Type: events.EventPageUpdated,
				Payload: map[string]any{
					"owner":        page.Owner.String(),
					"handle":       page.Handle,
					"display_name": displayName,
				},
			},
			events.Event{
				Type: events.EventPageMetadataUpdated,
				Payload: map[string]any{
					"owner":              page.Owner.String(),
					"handle":             page.Handle,
					"metadata_reference": metadataReference,
				},
			},
		)
	})
}

func (s *Service) SetFundingGoal(ctx context.Context, call host.Call, handle string, goal money.Amount) error {
	return s.runner.Execute(ctx, "page.set_funding_goal", call, func(ctx context.Context, tx *gorm.DB) error {
		page, err := s.ownedPage(ctx, tx, call.Caller, handle)
		if err != nil {
			return err
		}
		if !page.Role.HasFundingGoal() {
			return apperror.ErrInvalidRole
		}

		if err := s.repo.UpdateFundingGoal(ctx, tx, page.Owner, goal); err != nil {
			return fmt.Errorf("update funding goal: %w", err)
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventGoalUpdated,
			Payload: map[string]any{
				"owner":  page.Owner.String(),
				"handle": page.Handle,
				"goal":   goal.String(),
			},
		})
	})
}

// Deactivate moves the page to Inactive. It cannot be reactivated.
func (s *Service) Deactivate(ctx context.Context, call host.Call, handle string) error {
	return s.runner.Execute(ctx, "page.deactivate", call, func(ctx context.Context, tx *gorm.DB) error {
		page, err := s.ownedPage(ctx, tx, call.Caller, handle)
		if err != nil {
			return err
		}
		if !page.Active {
			return nil
		}

		if err := s.repo.Deactivate(ctx, tx, page.Owner); err != nil {
			return fmt.Errorf("deactivate page: %w", err)
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventPageDeactivated,
			Payload: map[string]any{
				"owner":  page.Owner.String(),
				"handle": page.Handle,
			},
		})
	})
}

func (s *Service) ownedPage(ctx context.Context, tx *gorm.DB, caller host.Identity, handle string) (*domain.Page, error) {
	page, err := s.repo.FindByHandle(ctx, tx, handle)
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

func (s *Service) GetByHandle(ctx context.Context, handle string) (*domain.Page, error) {
	page, err := s.repo.FindByHandle(ctx, s.runner.DB(), handle)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, apperror.ErrPageNotFound
	}
	return page, nil
}

func (s *Service) GetByOwner(ctx context.Context, owner host.Identity) (*domain.Page, error) {
	page, err := s.repo.FindByOwner(ctx, s.runner.DB(), owner)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, apperror.ErrPageNotFound
	}
	return page, nil
}

func (s *Service) IsHandleAvailable(ctx context.Context, handle string) (bool, error) {
	page, err := s.repo.FindByHandle(ctx, s.runner.DB(), handle)
	if err != nil {
		return false, err
	}
	return page == nil, nil
}

func (s *Service) Balance(ctx context.Context, handle string) (money.Amount, error) {
	page, err := s.GetByHandle(ctx, handle)
	if err != nil {
		return money.Amount{}, err
	}
	return page.AmountRaised, nil
}

func (s *Service) NextPageID(ctx context.Context) (uint64, error) {
	return s.treasury.Peek(ctx, platformdomain.CounterPage)
}
