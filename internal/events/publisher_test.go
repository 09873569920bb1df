package events_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/onclick/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestRedisPublisherRequiresClient(t *testing.T) {
	err := events.NewRedisPublisher(nil, "onclick:events").Publish(context.Background(), events.Record{})
	require.Error(t, err)
}

// Requires a reachable Redis; set ONCLICK_TEST_REDIS_ADDR to run.
func TestRedisPublisherAppendsStreamEntry(t *testing.T) {
	addr := os.Getenv("ONCLICK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ONCLICK_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx := context.Background()
	stream := "onclick:test:" + t.Name()
	require.NoError(t, client.Del(ctx, stream).Err())
	defer client.Del(ctx, stream)

	rec := events.Record{
		ID:     1234567890,
		Type:   events.EventDonationMade,
		CallID: "01HZZZZZZZZZZZZZZZZZZZZZZZ",
		Payload: datatypes.JSONMap{
			"handle": "alice",
			"amount": "975",
		},
	}
	require.NoError(t, events.NewRedisPublisher(client, stream).Publish(ctx, rec))

	entries, err := client.XRange(ctx, stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	values := entries[0].Values
	assert.Equal(t, "1234567890", values["event_id"])
	assert.Equal(t, string(events.EventDonationMade), values["type"])
	assert.Equal(t, "01HZZZZZZZZZZZZZZZZZZZZZZZ", values["call_id"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(values["payload"].(string)), &payload))
	assert.Equal(t, map[string]any{"handle": "alice", "amount": "975"}, payload)
}
