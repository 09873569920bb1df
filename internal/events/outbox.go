package events

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/onclick/internal/clock"
	"github.com/smallbiznis/onclick/pkg/telemetry/correlation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Outbox stages events in the caller's transaction. Rows become visible to
// the dispatcher only when that transaction commits.
type Outbox struct {
	genID *snowflake.Node
	clock clock.Clock
}

func NewOutbox(genID *snowflake.Node, clk clock.Clock) *Outbox {
	return &Outbox{genID: genID, clock: clk}
}

// PublishTx appends events in the given order.
func (o *Outbox) PublishTx(ctx context.Context, tx *gorm.DB, evts ...Event) error {
	if len(evts) == 0 {
		return nil
	}
	callID := correlation.ExtractCorrelationID(ctx)
	now := o.clock.Now().UTC()

	records := make([]Record, 0, len(evts))
	for _, evt := range evts {
		records = append(records, Record{
			ID:        o.genID.Generate(),
			Type:      evt.Type,
			Payload:   datatypes.JSONMap(evt.Payload),
			CallID:    callID,
			CreatedAt: now,
		})
	}
	if err := tx.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("stage events: %w", err)
	}
	return nil
}
