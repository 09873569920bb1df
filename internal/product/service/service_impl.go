package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/smallbiznis/onclick/internal/apperror"
	"github.com/smallbiznis/onclick/internal/authorization"
	"github.com/smallbiznis/onclick/internal/clock"
	"github.com/smallbiznis/onclick/internal/engine"
	"github.com/smallbiznis/onclick/internal/events"
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/index"
	pagedomain "github.com/smallbiznis/onclick/internal/page/domain"
	platformdomain "github.com/smallbiznis/onclick/internal/platform/domain"
	"github.com/smallbiznis/onclick/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Repo     domain.Repository
	Pages    pagedomain.Repository
	Index    index.Repository
	Runner   *engine.Runner
	Outbox   *events.Outbox
	Treasury platformdomain.Treasury
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	pages    pagedomain.Repository
	index    index.Repository
	runner   *engine.Runner
	outbox   *events.Outbox
	treasury platformdomain.Treasury
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("product.service"),
		clock:    p.Clock,
		repo:     p.Repo,
		pages:    p.Pages,
		index:    p.Index,
		runner:   p.Runner,
		outbox:   p.Outbox,
		treasury: p.Treasury,
	}
}

func (s *Service) Create(ctx context.Context, call host.Call, req domain.CreateRequest) (uint64, error) {
	var productID uint64
	err := s.runner.Execute(ctx, "product.create", call, func(ctx context.Context, tx *gorm.DB) error {
		page, err := s.ownedPage(ctx, tx, call.Caller, req.Handle)
		if err != nil {
			return err
		}
		if page.Role != pagedomain.RoleBusiness {
			return apperror.ErrInvalidRole
		}

		productID, err = s.treasury.Allocate(ctx, tx, platformdomain.CounterProduct)
		if err != nil {
			return err
		}

		product := &domain.Product{
			ID:                productID,
			Owner:             page.Owner,
			Name:              req.Name,
			Price:             req.Price,
			MetadataReference: req.MetadataReference,
			Active:            true,
			CreatedAt:         clock.Unix(s.clock),
		}
		if err := s.repo.Insert(ctx, tx, product); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		if err := s.index.Append(ctx, tx, index.OwnerProducts, page.Owner.String(), strconv.FormatUint(productID, 10)); err != nil {
			return err
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventProductCreated,
			Payload: map[string]any{
				"product_id": productID,
				"owner":      page.Owner.String(),
				"name":       product.Name,
				"price":      product.Price.String(),
			},
		})
	})
	if err != nil {
		return 0, err
	}
	return productID, nil
}

func (s *Service) Update(ctx context.Context, call host.Call, req domain.UpdateRequest) error {
	return s.runner.Execute(ctx, "product.update", call, func(ctx context.Context, tx *gorm.DB) error {
		product, err := s.ownedProduct(ctx, tx, call.Caller, req.Handle, req.ID)
		if err != nil {
			return err
		}

		if err := s.repo.Update(ctx, tx, product.ID, req.Name, req.Price, req.MetadataReference); err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventProductUpdated,
			Payload: map[string]any{
				"product_id": product.ID,
				"name":       req.Name,
				"price":      req.Price.String(),
			},
		})
	})
}

func (s *Service) Delete(ctx context.Context, call host.Call, handle string, id uint64) error {
	return s.runner.Execute(ctx, "product.delete", call, func(ctx context.Context, tx *gorm.DB) error {
		product, err := s.ownedProduct(ctx, tx, call.Caller, handle, id)
		if err != nil {
			return err
		}

		if err := s.repo.Deactivate(ctx, tx, product.ID); err != nil {
			return fmt.Errorf("deactivate product: %w", err)
		}

		return s.outbox.PublishTx(ctx, tx, events.Event{
			Type: events.EventProductDeleted,
			Payload: map[string]any{
				"product_id": product.ID,
			},
		})
	})
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

// ownedProduct reports a product owned by another identity as absent.
func (s *Service) ownedProduct(ctx context.Context, tx *gorm.DB, caller host.Identity, handle string, id uint64) (*domain.Product, error) {
	page, err := s.ownedPage(ctx, tx, caller, handle)
	if err != nil {
		return nil, err
	}
	product, err := s.repo.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.Owner != page.Owner {
		return nil, apperror.ErrProductNotFound
	}
	return product, nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, s.runner.DB(), id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.ErrProductNotFound
	}
	return product, nil
}

func (s *Service) ListByOwner(ctx context.Context, owner host.Identity) ([]uint64, error) {
	values, err := s.index.List(ctx, s.runner.DB(), index.OwnerProducts, owner.String())
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("owner products index: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
