package metrics

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/onclick/internal/apperror"
	"github.com/smallbiznis/onclick/pkg/db"
)

// Config labels every series with the service and environment.
type Config struct {
	ServiceName string
	Environment string
}

const (
	OutcomeOK                   = "ok"
	OutcomeDeadlineExceeded     = "deadline_exceeded"
	OutcomeSerializationFailure = "serialization_failure"
	OutcomeUniqueViolation      = "unique_violation"
	OutcomeUnknown              = "unknown"
)

// LedgerMetrics captures per-call health of the ledger engine.
type LedgerMetrics struct {
	calls            *prometheus.CounterVec
	callDuration     *prometheus.HistogramVec
	settlements      *prometheus.CounterVec
	transferFailures *prometheus.CounterVec
	lockWait         prometheus.Histogram
}

// New registers the ledger instruments on registerer.
func New(cfg Config, registerer prometheus.Registerer) *LedgerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "onclick"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "onclick_calls_total",
		Help:        "Ledger calls by operation and outcome.",
		ConstLabels: constLabels,
	}, []string{"operation", "outcome"})
	callDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "onclick_call_duration_seconds",
		Help:        "Ledger call latency including lock wait and commit.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"operation"})
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "onclick_settlements_total",
		Help:        "Committed settlements by flow.",
		ConstLabels: constLabels,
	}, []string{"flow"})
	transferFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "onclick_transfer_failures_total",
		Help:        "Native value transfers rejected by the host.",
		ConstLabels: constLabels,
	}, []string{"operation"})
	lockWait := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "onclick_call_lock_wait_seconds",
		Help:        "Time spent acquiring the call lock.",
		Buckets:     []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		ConstLabels: constLabels,
	})

	registerer.MustRegister(calls, callDuration, settlements, transferFailures, lockWait)

	return &LedgerMetrics{
		calls:            calls,
		callDuration:     callDuration,
		settlements:      settlements,
		transferFailures: transferFailures,
		lockWait:         lockWait,
	}
}

// ObserveCall records one finished call.
func (m *LedgerMetrics) ObserveCall(operation string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(operation, ClassifyOutcome(err)).Inc()
	m.callDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// IncSettlement counts a committed value flow.
func (m *LedgerMetrics) IncSettlement(flow string) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(flow).Inc()
}

func (m *LedgerMetrics) IncTransferFailure(operation string) {
	if m == nil {
		return
	}
	m.transferFailures.WithLabelValues(operation).Inc()
}

func (m *LedgerMetrics) ObserveLockWait(duration time.Duration) {
	if m == nil {
		return
	}
	m.lockWait.Observe(duration.Seconds())
}

// ClassifyOutcome maps a call error to a low-cardinality label.
func ClassifyOutcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if _, ok := apperror.KindOf(err); ok {
		return apperror.CodeOf(err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return OutcomeDeadlineExceeded
	}
	if db.IsSerializationFailure(err) {
		return OutcomeSerializationFailure
	}
	if db.IsDuplicateKeyErr(err) {
		return OutcomeUniqueViolation
	}
	return OutcomeUnknown
}
