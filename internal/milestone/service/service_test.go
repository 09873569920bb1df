package service_test

import (
	"context"
	"testing"

	"github.com/smallbiznis/onclick/internal/apperror"
	"github.com/smallbiznis/onclick/internal/events"
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/ledgertest"
	"github.com/smallbiznis/onclick/internal/milestone/domain"
	"github.com/smallbiznis/onclick/internal/money"
	pagedomain "github.com/smallbiznis/onclick/internal/page/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func add(h *ledgertest.Harness, owner host.Identity, handle string, target uint64) (uint64, error) {
	return h.Milestones.AddMilestone(context.Background(), host.NewCall(owner), domain.AddRequest{
		Handle:       handle,
		Title:        "stage",
		TargetAmount: money.New(target),
	})
}

func TestMilestoneLifecycle(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Carol, "campaign", pagedomain.RoleCrowdfunder)

	first, err := add(h, ledgertest.Carol, "campaign", 1000)
	require.NoError(t, err)
	second, err := add(h, ledgertest.Carol, "campaign", 5000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), first)
	assert.Equal(t, uint64(1), second)

	err = h.Milestones.CompleteMilestone(ctx, host.NewCall(ledgertest.Carol), "campaign", first)
	require.ErrorIs(t, err, apperror.ErrInsufficientFunds)

	_, err = h.Settlement.Contribute(ctx, ledgertest.Call(ledgertest.Bob, 2000), "campaign", "")
	require.NoError(t, err)

	require.NoError(t, h.Milestones.CompleteMilestone(ctx, host.NewCall(ledgertest.Carol), "campaign", first))
	require.NoError(t, h.Milestones.CompleteMilestone(ctx, host.NewCall(ledgertest.Carol), "campaign", first))
	err = h.Milestones.CompleteMilestone(ctx, host.NewCall(ledgertest.Carol), "campaign", second)
	require.ErrorIs(t, err, apperror.ErrInsufficientFunds)
	err = h.Milestones.CompleteMilestone(ctx, host.NewCall(ledgertest.Carol), "campaign", 7)
	require.ErrorIs(t, err, apperror.ErrMilestoneNotFound)

	list, err := h.Milestones.ListMilestones(ctx, "campaign")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Completed)
	require.NotNil(t, list[0].CompletedAt)
	assert.Equal(t, uint64(ledgertest.Epoch.Unix()), *list[0].CompletedAt)
	assert.False(t, list[1].Completed)
	assert.Nil(t, list[1].CompletedAt)

	completed := 0
	for _, typ := range h.EventTypes(t) {
		if typ == events.EventMilestoneCompleted {
			completed++
		}
	}
	assert.Equal(t, 1, completed)
}

func TestAddMilestoneValidation(t *testing.T) {
	h := ledgertest.New(t)
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)
	h.Register(t, ledgertest.Carol, "campaign", pagedomain.RoleCrowdfunder)

	_, err := add(h, ledgertest.Carol, "missing", 1)
	require.ErrorIs(t, err, apperror.ErrPageNotFound)
	_, err = add(h, ledgertest.Bob, "campaign", 1)
	require.ErrorIs(t, err, apperror.ErrNotPageOwner)
	_, err = add(h, ledgertest.Alice, "alice", 1)
	require.ErrorIs(t, err, apperror.ErrInvalidRole)
	_, err = add(h, ledgertest.Carol, "campaign", 0)
	require.ErrorIs(t, err, apperror.ErrInvalidAmount)

	_, err = h.Milestones.ListMilestones(context.Background(), "missing")
	require.ErrorIs(t, err, apperror.ErrPageNotFound)
	list, err := h.Milestones.ListMilestones(context.Background(), "campaign")
	require.NoError(t, err)
	assert.Empty(t, list)
}
