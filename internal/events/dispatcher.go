package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/smallbiznis/onclick/internal/clock"
	"github.com/smallbiznis/onclick/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultBatchSize = 100
	defaultInterval  = 2 * time.Second
)

// Notifier is told when new events may be waiting.
type Notifier interface {
	Notify()
}

type DispatcherConfig struct {
	BatchSize int
	Interval  time.Duration
}

type DispatcherParams struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	Publisher Publisher
	Config    DispatcherConfig
	Metrics   *telemetry.Metrics `optional:"true"`
}

// Dispatcher delivers committed outbox rows to the publisher in id order. A
// failed delivery stops the batch so later events never overtake it.
type Dispatcher struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	publisher Publisher
	metrics   *telemetry.Metrics
	batchSize int
	interval  time.Duration

	mu   sync.Mutex
	kick chan struct{}
}

func NewDispatcher(p DispatcherParams) *Dispatcher {
	batchSize := p.Config.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	interval := p.Config.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Dispatcher{
		db:        p.DB,
		log:       p.Log.Named("events.dispatcher"),
		clock:     p.Clock,
		publisher: p.Publisher,
		metrics:   p.Metrics,
		batchSize: batchSize,
		interval:  interval,
		kick:      make(chan struct{}, 1),
	}
}

// Notify wakes RunForever without blocking the caller.
func (d *Dispatcher) Notify() {
	select {
	case d.kick <- struct{}{}:
	default:
	}
}

// DispatchPending delivers every undelivered event and returns how many were
// delivered.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delivered := 0
	for {
		start := time.Now()
		n, err := d.dispatchBatch(ctx)
		delivered += n
		if err != nil {
			d.metrics.RecordOutboxBatch("failed", time.Since(start))
			return delivered, err
		}
		if n > 0 {
			d.metrics.RecordOutboxBatch("success", time.Since(start))
		}
		if n < d.batchSize {
			break
		}
	}

	d.updateBacklog(ctx)
	return delivered, nil
}

func (d *Dispatcher) dispatchBatch(ctx context.Context) (int, error) {
	var batch []Record
	if err := d.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("id ASC").
		Limit(d.batchSize).
		Find(&batch).Error; err != nil {
		return 0, fmt.Errorf("load pending events: %w", err)
	}

	for i, rec := range batch {
		if err := d.publisher.Publish(ctx, rec); err != nil {
			d.log.Warn("event delivery failed",
				zap.String("event_id", rec.ID.String()),
				zap.String("type", string(rec.Type)),
				zap.Error(err),
			)
			return i, fmt.Errorf("publish %s: %w", rec.ID, err)
		}
		now := d.clock.Now().UTC()
		if err := d.db.WithContext(ctx).
			Model(&Record{}).
			Where("id = ?", rec.ID).
			Update("published_at", now).Error; err != nil {
			return i, fmt.Errorf("mark event %s delivered: %w", rec.ID, err)
		}
		d.metrics.ObservePublished(string(rec.Type))
	}
	return len(batch), nil
}

func (d *Dispatcher) updateBacklog(ctx context.Context) {
	if d.metrics == nil {
		return
	}
	var pending int64
	if err := d.db.WithContext(ctx).Model(&Record{}).Where("published_at IS NULL").Count(&pending).Error; err != nil {
		return
	}
	d.metrics.SetOutboxBacklog(float64(pending))
}

// RunForever dispatches on every tick and on every Notify until ctx ends.
func (d *Dispatcher) RunForever(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if _, err := d.DispatchPending(ctx); err != nil && ctx.Err() == nil {
			d.log.Warn("event dispatch failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-d.kick:
		}
	}
}
