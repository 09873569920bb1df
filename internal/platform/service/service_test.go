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
	platformdomain "github.com/smallbiznis/onclick/internal/platform/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeIsIdempotent(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()

	state, err := h.Platform.Initialize(ctx, ledgertest.Alice, 900)
	require.NoError(t, err)
	assert.Equal(t, ledgertest.Admin, state.Administrator)
	assert.Equal(t, uint64(ledgertest.DefaultFeeBasisPoints), state.FeeBasisPoints)

	stored := h.State(t)
	assert.Equal(t, uint64(ledgertest.DefaultFeeBasisPoints), stored.FeeBasisPoints)
	assert.True(t, stored.FeesCollected.IsZero())
	assert.Zero(t, stored.NextPageID)
	assert.Zero(t, stored.NextProductID)
	assert.Zero(t, stored.NextTransactionID)
}

func TestInitializeRejectsFeeAboveCap(t *testing.T) {
	h := ledgertest.New(t, ledgertest.WithoutInitialize())
	_, err := h.Platform.Initialize(context.Background(), ledgertest.Admin, platformdomain.MaxFeeBasisPoints+1)
	require.ErrorIs(t, err, apperror.ErrInvalidAmount)
}

func TestStateBeforeInitialize(t *testing.T) {
	h := ledgertest.New(t, ledgertest.WithoutInitialize())

	_, err := h.Platform.State(context.Background())
	require.ErrorIs(t, err, apperror.ErrPlatformNotInitialized)

	_, err = h.Pages.Register(context.Background(), host.NewCall(ledgertest.Alice), pagedomain.RegisterRequest{Handle: "alice"})
	require.ErrorIs(t, err, apperror.ErrPlatformNotInitialized)
}

func TestSetFeeBasisPoints(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()

	err := h.Platform.SetFeeBasisPoints(ctx, host.NewCall(ledgertest.Alice), 100)
	require.ErrorIs(t, err, apperror.ErrNotPageOwner)

	err = h.Platform.SetFeeBasisPoints(ctx, host.NewCall(ledgertest.Admin), 10_001)
	require.ErrorIs(t, err, apperror.ErrInvalidAmount)

	require.NoError(t, h.Platform.SetFeeBasisPoints(ctx, host.NewCall(ledgertest.Admin), 10_000))
	assert.Equal(t, uint64(10_000), h.State(t).FeeBasisPoints)

	require.NoError(t, h.Platform.SetFeeBasisPoints(ctx, host.NewCall(ledgertest.Admin), 0))
	assert.Zero(t, h.State(t).FeeBasisPoints)

	assert.Equal(t, []events.EventType{
		events.EventPlatformFeeUpdated,
		events.EventPlatformFeeUpdated,
	}, h.EventTypes(t))
}

func TestWithdrawFees(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)

	_, err := h.Settlement.Donate(ctx, ledgertest.Call(ledgertest.Bob, 1000), "alice", "")
	require.NoError(t, err)
	assert.Equal(t, money.New(25), h.State(t).FeesCollected)

	_, err = h.Platform.WithdrawFees(ctx, host.NewCall(ledgertest.Bob))
	require.ErrorIs(t, err, apperror.ErrNotPageOwner)

	withdrawn, err := h.Platform.WithdrawFees(ctx, host.NewCall(ledgertest.Admin))
	require.NoError(t, err)
	assert.Equal(t, money.New(25), withdrawn)
	assert.True(t, h.State(t).FeesCollected.IsZero())
	assert.Equal(t, money.New(25), h.Transfers.Total(ledgertest.Admin))
}

func TestWithdrawFeesTransferFailureKeepsTreasury(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)
	_, err := h.Settlement.Donate(ctx, ledgertest.Call(ledgertest.Bob, 4000), "alice", "")
	require.NoError(t, err)

	h.Transfers.FailWith(assert.AnError)
	_, err = h.Platform.WithdrawFees(ctx, host.NewCall(ledgertest.Admin))
	require.ErrorIs(t, err, apperror.ErrTransferFailed)
	assert.Equal(t, money.New(100), h.State(t).FeesCollected)
}

func TestNextCountersAreReadOnly(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		next, err := h.Treasury.Peek(ctx, platformdomain.CounterPage)
		require.NoError(t, err)
		assert.Zero(t, next)
	}
}
