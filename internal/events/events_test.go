package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/onclick/internal/events"
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/ledgertest"
	pagedomain "github.com/smallbiznis/onclick/internal/page/domain"
	"github.com/smallbiznis/onclick/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestOutboxRollsBackWithCall(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := h.Runner.Execute(ctx, "test.rollback", host.NewCall(ledgertest.Alice), func(ctx context.Context, tx *gorm.DB) error {
		if err := h.Outbox.PublishTx(ctx, tx, events.Event{Type: events.EventPageUpdated}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, h.EventTypes(t))

	n, err := h.Dispatcher.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, h.Publisher.Records())
}

func TestOutboxStampsCallID(t *testing.T) {
	h := ledgertest.New(t)
	ctx := correlation.ContextWithCorrelationID(context.Background(), "01HZZZZZZZZZZZZZZZZZZZZZZZ")

	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)
	err := h.Runner.Execute(ctx, "test.stamp", host.NewCall(ledgertest.Alice), func(ctx context.Context, tx *gorm.DB) error {
		return h.Outbox.PublishTx(ctx, tx, events.Event{Type: events.EventPageUpdated, Payload: map[string]any{"handle": "alice"}})
	})
	require.NoError(t, err)

	var rec events.Record
	require.NoError(t, h.DB.Where("type = ?", events.EventPageUpdated).First(&rec).Error)
	assert.Equal(t, "01HZZZZZZZZZZZZZZZZZZZZZZZ", rec.CallID)
	assert.Equal(t, "alice", rec.Payload["handle"])
	assert.Nil(t, rec.PublishedAt)
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)
	_, err := h.Settlement.Donate(ctx, ledgertest.Call(ledgertest.Bob, 1000), "alice", "")
	require.NoError(t, err)
	require.NoError(t, h.Pages.UpdateInfo(ctx, host.NewCall(ledgertest.Alice), "alice", "A", "m"))

	n, err := h.Dispatcher.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []events.EventType{
		events.EventUserRegistered,
		events.EventDonationMade,
		events.EventPageUpdated,
		events.EventPageMetadataUpdated,
	}, h.Publisher.Types())

	n, err = h.Dispatcher.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, h.Publisher.Records(), 4)
}

func TestDispatcherStopsAtFailure(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)
	h.Register(t, ledgertest.Bob, "bob", pagedomain.RoleCreator)

	h.Publisher.FailWith(errors.New("stream unavailable"))
	n, err := h.Dispatcher.DispatchPending(ctx)
	require.Error(t, err)
	assert.Zero(t, n)

	h.Publisher.FailWith(nil)
	n, err = h.Dispatcher.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records := h.Publisher.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "alice", records[0].Payload["handle"])
	assert.Equal(t, "bob", records[1].Payload["handle"])
}

func TestDispatcherBatches(t *testing.T) {
	h := ledgertest.New(t)
	ctx := context.Background()
	h.Register(t, ledgertest.Alice, "alice", pagedomain.RoleCreator)
	for i := 0; i < 24; i++ {
		_, err := h.Settlement.Donate(ctx, ledgertest.Call(ledgertest.Bob, 10), "alice", "")
		require.NoError(t, err)
	}

	n, err := h.Dispatcher.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	var pending int64
	require.NoError(t, h.DB.Model(&events.Record{}).Where("published_at IS NULL").Count(&pending).Error)
	assert.Zero(t, pending)
}

func TestFanoutStopsAtFirstError(t *testing.T) {
	first := events.NewMemoryPublisher()
	second := events.NewMemoryPublisher()
	first.FailWith(errors.New("down"))

	err := events.Fanout{first, second}.Publish(context.Background(), events.Record{Type: events.EventPageUpdated})
	require.Error(t, err)
	assert.Empty(t, second.Records())
}
