// Package engine runs every state-changing ledger operation as one atomic
// unit: call lock, one database transaction, native transfer last, commit.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/onclick/internal/apperror"
	"github.com/smallbiznis/onclick/internal/events"
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/lock"
	"github.com/smallbiznis/onclick/internal/money"
	obscontext "github.com/smallbiznis/onclick/internal/observability/context"
	obslogger "github.com/smallbiznis/onclick/internal/observability/logger"
	"github.com/smallbiznis/onclick/internal/observability/metrics"
	"github.com/smallbiznis/onclick/pkg/telemetry/correlation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type callStateKey struct{}

// callState tracks the host transfer of one call.
type callState struct {
	transferred bool
	to          host.Identity
	amount      money.Amount
}

// TxFunc validates and stages one operation's writes on tx.
type TxFunc func(ctx context.Context, tx *gorm.DB) error

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Locker     lock.Locker
	Transferer host.Transferer
	Metrics    *metrics.LedgerMetrics `optional:"true"`
	Notifier   events.Notifier        `optional:"true"`
}

type Runner struct {
	db         *gorm.DB
	log        *zap.Logger
	locker     lock.Locker
	transferer host.Transferer
	metrics    *metrics.LedgerMetrics
	notifier   events.Notifier
	tracer     trace.Tracer
}

func New(p Params) *Runner {
	return &Runner{
		db:         p.DB,
		log:        p.Log.Named("engine"),
		locker:     p.Locker,
		transferer: p.Transferer,
		metrics:    p.Metrics,
		notifier:   p.Notifier,
		tracer:     otel.Tracer("github.com/smallbiznis/onclick/internal/engine"),
	}
}

// DB is the handle for lock-free reads.
func (r *Runner) DB() *gorm.DB { return r.db }

// Execute runs fn under the call lock inside one transaction. Any error from
// fn rolls back every staged write, including outbox events. Subscribers are
// notified only after commit.
func (r *Runner) Execute(ctx context.Context, op string, call host.Call, fn TxFunc) error {
	start := time.Now()

	ctx, callID := correlation.EnsureCorrelationID(ctx)
	ctx = obscontext.WithCall(ctx, callID, op, call.Caller.String())
	ctx, span := r.tracer.Start(ctx, "onclick."+op, trace.WithAttributes(
		attribute.String("onclick.operation", op),
		attribute.String("onclick.caller", call.Caller.String()),
		attribute.String("onclick.value", call.Value.String()),
	))
	defer span.End()
	correlation.AnnotateSpan(ctx, span)

	state := &callState{}
	ctx = context.WithValue(ctx, callStateKey{}, state)

	err := r.execute(ctx, fn)
	if err != nil && state.transferred {
		// The host moved value but the call did not commit; the ledger has no
		// record of it and the transfer needs manual reconciliation.
		obslogger.WithContext(ctx, r.log).Error("transfer completed but call rolled back",
			zap.String("to", state.to.String()),
			zap.String("amount", state.amount.String()),
			zap.Error(err),
		)
	}

	r.metrics.ObserveCall(op, err, time.Since(start))
	log := obslogger.WithContext(ctx, r.log)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperror.CodeOf(err))
		if _, domain := apperror.KindOf(err); domain {
			log.Debug("call rejected", zap.String("code", apperror.CodeOf(err)))
		} else {
			log.Error("call failed", zap.Error(err))
		}
		return err
	}

	span.SetStatus(codes.Ok, "")
	log.Debug("call committed", zap.Duration("duration", time.Since(start)))
	if r.notifier != nil {
		r.notifier.Notify()
	}
	return nil
}

func (r *Runner) execute(ctx context.Context, fn TxFunc) error {
	lockStart := time.Now()
	unlock, err := r.locker.Lock(ctx)
	if err != nil {
		return fmt.Errorf("acquire call lock: %w", err)
	}
	r.metrics.ObserveLockWait(time.Since(lockStart))
	defer func() {
		if err := unlock(ctx); err != nil {
			obslogger.WithContext(ctx, r.log).Warn("release call lock", zap.Error(err))
		}
	}()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, tx)
	})
}

// Transfer sends amount to the identity through the host. It must be the last
// step of a TxFunc: a failure is reported as TransferFailed and rolls the
// whole call back. A commit that fails after a successful transfer cannot undo
// it; Execute logs that case at error level.
func (r *Runner) Transfer(ctx context.Context, to host.Identity, amount money.Amount) error {
	if err := r.transferer.Transfer(ctx, to, amount); err != nil {
		r.metrics.IncTransferFailure(obscontext.OperationFromContext(ctx))
		obslogger.WithContext(ctx, r.log).Warn("transfer failed",
			zap.String("to", to.String()),
			zap.String("amount", amount.String()),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", apperror.ErrTransferFailed, err)
	}
	if state, ok := ctx.Value(callStateKey{}).(*callState); ok {
		state.transferred = true
		state.to = to
		state.amount = amount
	}
	return nil
}
