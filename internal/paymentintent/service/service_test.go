package service_test

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/smallbiznis/onclick/internal/apperror"
	"github.com/smallbiznis/onclick/internal/events"
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/ledgertest"
	"github.com/smallbiznis/onclick/internal/money"
	pagedomain "github.com/smallbiznis/onclick/internal/page/domain"
	"github.com/smallbiznis/onclick/internal/paymentintent/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntent(t *testing.T, h *ledgertest.Harness, owner host.Identity, amount, expiresIn, maxUsages uint64) domain.ID {
	t.Helper()
	id, err := h.Intents.Create(context.Background(), host.NewCall(owner), domain.CreateRequest{
		Amount:           money.New(amount),
		Description:      "invoice",
		ExpiresInSeconds: expiresIn,
		MaxUsages:        maxUsages,
	})
	require.NoError(t, err)
	return id
}

func TestCreate(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)

	id := newIntent(t, h, ledgertest.Alice, 1000, 3600, 2)

	now := uint64(ledgertest.Epoch.Unix())
	buf := append([]byte{}, ledgertest.Alice[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, now)
	le := money.New(1000).LittleEndian32()
	buf = append(buf, le[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, 0)
	assert.Equal(t, domain.ID(host.Keccak256{}.Sum256(buf)), id)

	intent, err := h.Intents.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, ledgertest.Alice, intent.Creator)
	assert.Equal(t, "alice", intent.Handle)
	assert.Equal(t, money.New(1000), intent.Amount)
	assert.True(t, intent.Active)
	assert.Equal(t, now, intent.CreatedAt)
	assert.Equal(t, now+3600, intent.ExpiresAt)
	assert.Zero(t, intent.UsageCount)
	assert.Equal(t, uint64(2), intent.MaxUsages)

	second := newIntent(t, h, ledgertest.Alice, 1000, 3600, 2)
	assert.NotEqual(t, id, second)

	byHandle, err := h.Intents.ListByHandle(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []domain.ID{id, second}, byHandle)
	byOwner, err := h.Intents.ListByOwner(ctx, ledgertest.Alice)
	require.NoError(t, err)
	assert.Equal(t, byHandle, byOwner)

	n, err := h.Intents.CountByHandle(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
	n, err = h.Intents.CountByOwner(ctx, ledgertest.Bob)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateValidation(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)

	_, err := h.Intents.Create(ctx, host.NewCall(ledgertest.Bob), domain.CreateRequest{Amount: money.New(1), ExpiresInSeconds: 1})
	require.ErrorIs(t, err, apperror.ErrPageNotFound)
	_, err = h.Intents.Create(ctx, host.NewCall(ledgertest.Alice), domain.CreateRequest{Amount: money.New(0), ExpiresInSeconds: 1})
	require.ErrorIs(t, err, apperror.ErrInvalidAmount)
	_, err = h.Intents.Create(ctx, host.NewCall(ledgertest.Alice), domain.CreateRequest{Amount: money.New(1), ExpiresInSeconds: 0})
	require.ErrorIs(t, err, apperror.ErrInvalidExpiration)
	_, err = h.Intents.Create(ctx, host.NewCall(ledgertest.Alice), domain.CreateRequest{Amount: money.New(1), ExpiresInSeconds: ^uint64(0)})
	require.ErrorIs(t, err, apperror.ErrInvalidExpiration)

	n, err := h.Intents.CountByOwner(ctx, ledgertest.Alice)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPay(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)
	id := newIntent(t, h, ledgertest.Alice, 1000, 3600, 0)

	txnID, err := h.Intents.Pay(ctx, ledgertest.Call(ledgertest.Bob, 1000), id, "order-7")
	require.NoError(t, err)

	intent, err := h.Intents.Get(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, intent.UsageCount)

	page := h.Page(t, "alice")
	assert.Equal(t, money.New(975), page.AmountRaised)
	assert.Equal(t, uint64(1), page.SupporterCount)
	assert.Equal(t, money.New(25), h.State(t).FeesCollected)

	txn, err := h.Ledger.GetTransaction(ctx, txnID)
	require.NoError(t, err)
	assert.Equal(t, "order-7", txn.MessageReference)
	assert.Equal(t, money.New(975), h.Transfers.Total(ledgertest.Alice))

	assert.Equal(t, []events.EventType{
		events.EventUserRegistered,
		events.EventPaymentIntentCreated,
		events.EventPaymentIntentPaid,
		events.EventDonationMade,
	}, h.EventTypes(t))
}

func TestPayUnlimitedIntentKeepsUsageCount(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)
	id := newIntent(t, h, ledgertest.Alice, 100, 3600, 0)

	for i := 0; i < 3; i++ {
		_, err := h.Intents.Pay(ctx, ledgertest.Call(ledgertest.Bob, 100), id, "")
		require.NoError(t, err)
	}

	intent, err := h.Intents.Get(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, intent.UsageCount)
	assert.Equal(t, uint64(3), h.Page(t, "alice").SupporterCount)
}

func TestPayUsageCap(t *testing.T) {
	const maxUsages = 3
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)
	id := newIntent(t, h, ledgertest.Alice, 100, 3600, maxUsages)

	for i := 0; i < maxUsages; i++ {
		_, err := h.Intents.Pay(ctx, ledgertest.Call(ledgertest.Bob, 100), id, "")
		require.NoError(t, err)
	}
	_, err := h.Intents.Pay(ctx, ledgertest.Call(ledgertest.Bob, 100), id, "")
	require.ErrorIs(t, err, apperror.ErrPaymentIntentMaxUsages)

	intent, err := h.Intents.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(maxUsages), intent.UsageCount)
	assert.Equal(t, uint64(maxUsages), h.Page(t, "alice").SupporterCount)
}

func TestPayExpiryBoundary(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)
	id := newIntent(t, h, ledgertest.Alice, 100, 60, 0)

	h.Clock.Advance(60 * time.Second)
	_, err := h.Intents.Pay(ctx, ledgertest.Call(ledgertest.Bob, 100), id, "")
	require.NoError(t, err)

	h.Clock.Advance(time.Second)
	_, err = h.Intents.Pay(ctx, ledgertest.Call(ledgertest.Bob, 100), id, "")
	require.ErrorIs(t, err, apperror.ErrPaymentIntentExpired)
}

func TestPayErrorOrder(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)
	h.Register(t, ledgertest.Carol, "carol", pagedomain.RoleCreator)

	open := newIntent(t, h, ledgertest.Alice, 100, 3600, 1)
	cancelled := newIntent(t, h, ledgertest.Alice, 100, 3600, 0)
	require.NoError(t, h.Intents.Cancel(ctx, host.NewCall(ledgertest.Alice), cancelled))
	closedPage := newIntent(t, h, ledgertest.Carol, 100, 3600, 0)
	require.NoError(t, h.Pages.Deactivate(ctx, host.NewCall(ledgertest.Carol), "carol"))

	var missing domain.ID
	missing[0] = 0xff

	_, err := h.Intents.Pay(ctx, ledgertest.Call(ledgertest.Bob, 0), missing, "")
	require.ErrorIs(t, err, apperror.ErrInvalidAmount)
	_, err = h.Intents.Pay(ctx, ledgertest.Call(ledgertest.Bob, 100), missing, "")
	require.ErrorIs(t, err, apperror.ErrPaymentIntentNotFound)
	_, err = h.Intents.Pay(ctx, ledgertest.Call(ledgertest.Bob, 100), cancelled, "")
	require.ErrorIs(t, err, apperror.ErrPaymentIntentInactive)
	_, err = h.Intents.Pay(ctx, ledgertest.Call(ledgertest.Bob, 99), open, "")
	require.ErrorIs(t, err, apperror.ErrInvalidAmount)
	_, err = h.Intents.Pay(ctx, ledgertest.Call(ledgertest.Bob, 100), closedPage, "")
	require.ErrorIs(t, err, apperror.ErrPageNotActive)

	intent, err := h.Intents.Get(ctx, open)
	require.NoError(t, err)
	assert.Zero(t, intent.UsageCount)

	_, err = h.Intents.Pay(ctx, ledgertest.Call(ledgertest.Bob, 100), open, "")
	require.NoError(t, err)
}

func TestCancel(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)
	id := newIntent(t, h, ledgertest.Alice, 100, 3600, 0)

	var missing domain.ID
	err := h.Intents.Cancel(ctx, host.NewCall(ledgertest.Alice), missing)
	require.ErrorIs(t, err, apperror.ErrPaymentIntentNotFound)
	err = h.Intents.Cancel(ctx, host.NewCall(ledgertest.Bob), id)
	require.ErrorIs(t, err, apperror.ErrNotPageOwner)

	require.NoError(t, h.Intents.Cancel(ctx, host.NewCall(ledgertest.Alice), id))
	intent, err := h.Intents.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, intent.Active)

	n, err := h.Intents.CountByHandle(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestIDTextRoundTrip(t *testing.T) {
	var id domain.ID
	for i := range id {
		id[i] = byte(i)
	}
	parsed, err := domain.ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = domain.ParseID("0x1234")
	require.Error(t, err)
}
