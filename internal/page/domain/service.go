package domain

import (
	"context"

	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/money"
)

type RegisterRequest struct {
	Handle            string
	Role              Role
	DisplayName       string
	MetadataReference string
}

type Service interface {
	// Register claims a handle for the caller and returns the page id token.
	Register(ctx context.Context, call host.Call, req RegisterRequest) (uint64, error)
	UpdateInfo(ctx context.Context, call host.Call, handle, displayName, metadataReference string) error
	SetFundingGoal(ctx context.Context, call host.Call, handle string, goal money.Amount) error
	Deactivate(ctx context.Context, call host.Call, handle string) error

	GetByHandle(ctx context.Context, handle string) (*Page, error)
	GetByOwner(ctx context.Context, owner host.Identity) (*Page, error)
	IsHandleAvailable(ctx context.Context, handle string) (bool, error)
	Balance(ctx context.Context, handle string) (money.Amount, error)
	NextPageID(ctx context.Context) (uint64, error)
}
