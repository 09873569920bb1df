package domain

import (
	"context"

	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/money"
)

type CreateRequest struct {
	Handle            string
	Name              string
	Price             money.Amount
	MetadataReference string
}

type UpdateRequest struct {
	Handle            string
	ID                uint64
	Name              string
	Price             money.Amount
	MetadataReference string
}

type Service interface {
	Create(ctx context.Context, call host.Call, req CreateRequest) (uint64, error)
	Update(ctx context.Context, call host.Call, req UpdateRequest) error
	// Delete deactivates the product; the id is never reused.
	Delete(ctx context.Context, call host.Call, handle string, id uint64) error
	Get(ctx context.Context, id uint64) (*Product, error)
	ListByOwner(ctx context.Context, owner host.Identity) ([]uint64, error)
}
