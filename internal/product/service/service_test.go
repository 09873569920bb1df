package service_test

import (
	"context"
	"testing"

	"github.com/smallbiznis/onclick/internal/apperror"
	"github.com/smallbiznis/onclick/internal/events"
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/ledgertest"
	"github.com/smallbiznis/onclick/internal/money"
	pagedomain "github.com/smallbiznis/onclick/internal/page/domain"
	"github.com/smallbiznis/onclick/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func create(h *ledgertest.Harness, owner host.Identity, handle, name string, price uint64) (uint64, error) {
	return h.Products.Create(context.Background(), host.NewCall(owner), domain.CreateRequest{
		Handle:            handle,
		Name:              name,
		Price:             money.New(price),
		MetadataReference: "ipfs://" + name,
	})
}

func TestCreate(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Bob, "shop", pagedomain.RoleBusiness)

	first, err := create(h, ledgertest.Bob, "shop", "mug", 500)
	require.NoError(t, err)
	second, err := create(h, ledgertest.Bob, "shop", "tee", 1500)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), first)
	assert.Equal(t, uint64(1), second)

	product, err := h.Products.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, ledgertest.Bob, product.Owner)
	assert.Equal(t, "mug", product.Name)
	assert.Equal(t, money.New(500), product.Price)
	assert.True(t, product.Active)
	assert.Zero(t, product.TotalSold)

	ids, err := h.Products.ListByOwner(ctx, ledgertest.Bob)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1}, ids)

	ids, err = h.Products.ListByOwner(ctx, ledgertest.Alice)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCreateValidation(t *testing.T) {
	h := ledgertest.New(t)
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)
	h.Register(t, ledgertest.Bob, "shop", pagedomain.RoleBusiness)

	_, err := create(h, ledgertest.Bob, "missing", "mug", 1)
	require.ErrorIs(t, err, apperror.ErrPageNotFound)
	_, err = create(h, ledgertest.Alice, "shop", "mug", 1)
	require.ErrorIs(t, err, apperror.ErrNotPageOwner)
	_, err = create(h, ledgertest.Alice, "alice", "mug", 1)
	require.ErrorIs(t, err, apperror.ErrInvalidRole)

	state := h.State(t)
	assert.Zero(t, state.NextProductID)
}

func TestUpdateAndDelete(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Bob, "shop", pagedomain.RoleBusiness)
	h.Register(t, ledgertest.Dave, "other", pagedomain.RoleBusiness)
	id, err := create(h, ledgertest.Bob, "shop", "mug", 500)
	require.NoError(t, err)
	foreign, err := create(h, ledgertest.Dave, "other", "hat", 700)
	require.NoError(t, err)

	err = h.Products.Update(ctx, host.NewCall(ledgertest.Bob), domain.UpdateRequest{
		Handle: "shop", ID: id, Name: "big mug", Price: money.New(650), MetadataReference: "ipfs://big",
	})
	require.NoError(t, err)

	product, err := h.Products.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "big mug", product.Name)
	assert.Equal(t, money.New(650), product.Price)
	assert.Equal(t, ledgertest.Bob, product.Owner)

	err = h.Products.Update(ctx, host.NewCall(ledgertest.Bob), domain.UpdateRequest{Handle: "shop", ID: foreign, Name: "x"})
	require.ErrorIs(t, err, apperror.ErrProductNotFound)
	err = h.Products.Update(ctx, host.NewCall(ledgertest.Bob), domain.UpdateRequest{Handle: "shop", ID: 99, Name: "x"})
	require.ErrorIs(t, err, apperror.ErrProductNotFound)
	err = h.Products.Update(ctx, host.NewCall(ledgertest.Dave), domain.UpdateRequest{Handle: "shop", ID: id, Name: "x"})
	require.ErrorIs(t, err, apperror.ErrNotPageOwner)

	err = h.Products.Delete(ctx, host.NewCall(ledgertest.Bob), "shop", foreign)
	require.ErrorIs(t, err, apperror.ErrProductNotFound)
	require.NoError(t, h.Products.Delete(ctx, host.NewCall(ledgertest.Bob), "shop", id))

	product, err = h.Products.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, product.Active)

	ids, err := h.Products.ListByOwner(ctx, ledgertest.Bob)
	require.NoError(t, err)
	assert.Equal(t, []uint64{id}, ids)

	next, err := create(h, ledgertest.Bob, "shop", "new", 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next)

	assert.Equal(t, []events.EventType{
		events.EventUserRegistered,
		events.EventUserRegistered,
		events.EventProductCreated,
		events.EventProductCreated,
		events.EventProductUpdated,
		events.EventProductDeleted,
		events.EventProductCreated,
	}, h.EventTypes(t))
}

func TestGetMissing(t *testing.T) {
	h := ledgertest.New(t)
	_, err := h.Products.Get(context.Background(), 0)
	require.ErrorIs(t, err, apperror.ErrProductNotFound)
}
