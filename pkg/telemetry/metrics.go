package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus instruments for the event outbox.
type Metrics struct {
	outboxDispatch     *prometheus.CounterVec
	outboxDispatchTime *prometheus.HistogramVec
	outboxBacklog      prometheus.Gauge
	eventsPublished    *prometheus.CounterVec
}

// NewMetrics registers and returns the outbox metrics.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	outboxDispatch := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "onclick_outbox_dispatch_total",
		Help: "Counts dispatcher batches by status.",
	}, []string{"status"})

	outboxDispatchTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "onclick_outbox_dispatch_duration_seconds",
		Help:    "Dispatcher batch durations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	outboxBacklog := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "onclick_outbox_backlog",
		Help: "Number of undelivered events in the outbox.",
	})

	eventsPublished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "onclick_events_published_total",
		Help: "Events delivered to the broadcast publisher by type.",
	}, []string{"type"})

	registerer.MustRegister(
		outboxDispatch,
		outboxDispatchTime,
		outboxBacklog,
		eventsPublished,
	)

	return &Metrics{
		outboxDispatch:     outboxDispatch,
		outboxDispatchTime: outboxDispatchTime,
		outboxBacklog:      outboxBacklog,
		eventsPublished:    eventsPublished,
	}
}

// RecordOutboxBatch registers dispatch batch metrics.
func (m *Metrics) RecordOutboxBatch(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.outboxDispatch.WithLabelValues(sanitizeLabel(status)).Inc()
	m.outboxDispatchTime.WithLabelValues(sanitizeLabel(status)).Observe(duration.Seconds())
}

// SetOutboxBacklog updates the backlog gauge.
func (m *Metrics) SetOutboxBacklog(value float64) {
	if m == nil {
		return
	}
	m.outboxBacklog.Set(value)
}

// ObservePublished counts delivered events.
func (m *Metrics) ObservePublished(eventType string) {
	if m == nil {
		return
	}
	m.eventsPublished.WithLabelValues(sanitizeLabel(eventType)).Inc()
}

func sanitizeLabel(val string) string {
	if val == "" {
		return "unknown"
	}
	return val
}
