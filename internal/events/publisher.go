package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher broadcasts committed events. Delivery is at least once: a
// publisher may see a record again if marking it delivered fails.
type Publisher interface {
	Publish(ctx context.Context, rec Record) error
}

// LogPublisher writes each event as a structured log line.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log.Named("events.broadcast")}
}

func (p *LogPublisher) Publish(ctx context.Context, rec Record) error {
	p.log.Info("event",
		zap.String("event_id", rec.ID.String()),
		zap.String("type", string(rec.Type)),
		zap.String("call_id", rec.CallID),
		zap.Any("payload", map[string]any(rec.Payload)),
	)
	return nil
}

// RedisPublisher appends events to a Redis stream.
type RedisPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream, maxLen: 100000}
}

func (p *RedisPublisher) Publish(ctx context.Context, rec Record) error {
	if p.client == nil {
		return errors.New("redis publisher not configured")
	}
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			"event_id": rec.ID.String(),
			"type":     string(rec.Type),
			"call_id":  rec.CallID,
			"payload":  string(payload),
		},
	}).Err()
}

// Fanout delivers to every publisher in order and fails on the first error.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, rec Record) error {
	for _, p := range f {
		if err := p.Publish(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// MemoryPublisher keeps delivered events in memory for in-process readers.
type MemoryPublisher struct {
	mu      sync.Mutex
	records []Record
	fail    error
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(ctx context.Context, rec Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.records = append(p.records, rec)
	return nil
}

// FailWith makes subsequent publishes return err until cleared with nil.
func (p *MemoryPublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail = err
}

// Records returns a copy of the delivered events in delivery order.
func (p *MemoryPublisher) Records() []Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Record, len(p.records))
	copy(out, p.records)
	return out
}

// Types lists the delivered event types in delivery order.
func (p *MemoryPublisher) Types() []EventType {
	recs := p.Records()
	out := make([]EventType, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Type)
	}
	return out
}

// Reset drops every delivered event.
func (p *MemoryPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = nil
}
