package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smallbiznis/onclick/internal/apperror"
	"gorm.io/gorm"
)

func TestClassifyOutcome(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "ok", err: nil, want: OutcomeOK},
		{name: "domain error", err: apperror.ErrPageNotFound, want: "page_not_found"},
		{name: "wrapped domain error", err: fmt.Errorf("donate: %w", apperror.ErrTransferFailed), want: "transfer_failed"},
		{name: "deadline", err: context.DeadlineExceeded, want: OutcomeDeadlineExceeded},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, want: OutcomeSerializationFailure},
		{name: "unique", err: gorm.ErrDuplicatedKey, want: OutcomeUniqueViolation},
		{name: "unknown", err: errors.New("boom"), want: OutcomeUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyOutcome(tc.err); got != tc.want {
				t.Fatalf("expected outcome %q, got %q", tc.want, got)
			}
		})
	}
}

func TestObserveCall(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(Config{ServiceName: "onclick", Environment: "test"}, registry)

	m.ObserveCall("makeDonation", nil, 10*time.Millisecond)
	m.ObserveCall("makeDonation", apperror.ErrPageNotActive, time.Millisecond)
	m.ObserveCall("makeDonation", nil, time.Millisecond)

	if got := testutil.ToFloat64(m.calls.WithLabelValues("makeDonation", OutcomeOK)); got != 2 {
		t.Fatalf("expected 2 ok calls, got %v", got)
	}
	if got := testutil.ToFloat64(m.calls.WithLabelValues("makeDonation", "page_not_active")); got != 1 {
		t.Fatalf("expected 1 failed call, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *LedgerMetrics
	m.ObserveCall("x", nil, time.Second)
	m.IncSettlement("donation")
	m.IncTransferFailure("x")
	m.ObserveLockWait(time.Second)
}
