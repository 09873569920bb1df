package ledgertest

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/onclick/internal/authorization"
	"github.com/smallbiznis/onclick/internal/clock"
	"github.com/smallbiznis/onclick/internal/engine"
	"github.com/smallbiznis/onclick/internal/events"
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/index"
	ledgerdomain "github.com/smallbiznis/onclick/internal/ledger/domain"
	ledgerrepo "github.com/smallbiznis/onclick/internal/ledger/repository"
	ledgerservice "github.com/smallbiznis/onclick/internal/ledger/service"
	"github.com/smallbiznis/onclick/internal/lock"
	"github.com/smallbiznis/onclick/internal/money"
	"github.com/smallbiznis/onclick/internal/observability/metrics"
	milestonedomain "github.com/smallbiznis/onclick/internal/milestone/domain"
	milestonerepo "github.com/smallbiznis/onclick/internal/milestone/repository"
	milestoneservice "github.com/smallbiznis/onclick/internal/milestone/service"
	pagedomain "github.com/smallbiznis/onclick/internal/page/domain"
	pagerepo "github.com/smallbiznis/onclick/internal/page/repository"
	pageservice "github.com/smallbiznis/onclick/internal/page/service"
	paymentintentdomain "github.com/smallbiznis/onclick/internal/paymentintent/domain"
	paymentintentrepo "github.com/smallbiznis/onclick/internal/paymentintent/repository"
	paymentintentservice "github.com/smallbiznis/onclick/internal/paymentintent/service"
	platformdomain "github.com/smallbiznis/onclick/internal/platform/domain"
	platformrepo "github.com/smallbiznis/onclick/internal/platform/repository"
	platformservice "github.com/smallbiznis/onclick/internal/platform/service"
	productdomain "github.com/smallbiznis/onclick/internal/product/domain"
	productrepo "github.com/smallbiznis/onclick/internal/product/repository"
	productservice "github.com/smallbiznis/onclick/internal/product/service"
	settlementdomain "github.com/smallbiznis/onclick/internal/settlement/domain"
	settlementservice "github.com/smallbiznis/onclick/internal/settlement/service"
	"github.com/smallbiznis/onclick/pkg/telemetry"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	Admin = host.MustParseIdentity("0xad00000000000000000000000000000000000001")
	Alice = host.MustParseIdentity("0xa11ce00000000000000000000000000000000002")
	Bob   = host.MustParseIdentity("0xb0b0000000000000000000000000000000000003")
	Carol = host.MustParseIdentity("0xca40100000000000000000000000000000000004")
	Dave  = host.MustParseIdentity("0xda7e000000000000000000000000000000000005")
)

// Epoch is the harness clock's starting time.
var Epoch = time.Unix(1_700_000_000, 0).UTC()

const DefaultFeeBasisPoints = 250

type options struct {
	transferer     host.Transferer
	feeBasisPoints uint64
	skipInit       bool
}

type Option func(*options)

// WithTransferer replaces the recording transferer.
func WithTransferer(t host.Transferer) Option {
	return func(o *options) { o.transferer = t }
}

func WithFeeBasisPoints(bps uint64) Option {
	return func(o *options) { o.feeBasisPoints = bps }
}

// WithoutInitialize leaves the platform state missing.
func WithoutInitialize() Option {
	return func(o *options) { o.skipInit = true }
}

type Harness struct {
	DB         *gorm.DB
	Clock      *clock.FakeClock
	Transfers  *RecordingTransferer
	Publisher  *events.MemoryPublisher
	Registry   *prometheus.Registry
	Metrics    *metrics.LedgerMetrics
	Runner     *engine.Runner
	Outbox     *events.Outbox
	Dispatcher *events.Dispatcher
	Index      index.Repository

	Authz      authorization.Service
	Treasury   platformdomain.Treasury
	Platform   platformdomain.Service
	Pages      pagedomain.Service
	Products   productdomain.Service
	Ledger     ledgerdomain.Service
	Settlement settlementdomain.Service
	Intents    paymentintentdomain.Service
	Milestones milestonedomain.Service
}

func New(t testing.TB, opts ...Option) *Harness {
	t.Helper()

	o := options{feeBasisPoints: DefaultFeeBasisPoints}
	for _, opt := range opts {
		opt(&o)
	}

	log := zap.NewNop()
	h := &Harness{
		DB:        OpenDB(t),
		Clock:     clock.NewFakeClock(Epoch),
		Transfers: &RecordingTransferer{},
		Publisher: events.NewMemoryPublisher(),
		Registry:  prometheus.NewRegistry(),
		Index:     index.Provide(),
	}
	transferer := o.transferer
	if transferer == nil {
		transferer = h.Transfers
	}

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	h.Metrics = metrics.New(metrics.Config{ServiceName: "onclick", Environment: "test"}, h.Registry)
	h.Outbox = events.NewOutbox(node, h.Clock)
	h.Dispatcher = events.NewDispatcher(events.DispatcherParams{
		DB:        h.DB,
		Log:       log,
		Clock:     h.Clock,
		Publisher: h.Publisher,
		Config:    events.DispatcherConfig{BatchSize: 10},
		Metrics:   telemetry.NewMetrics(h.Registry),
	})
	h.Runner = engine.New(engine.Params{
		DB:         h.DB,
		Log:        log,
		Locker:     lock.NewLocal(),
		Transferer: transferer,
		Metrics:    h.Metrics,
		Notifier:   h.Dispatcher,
	})

	enforcer, err := authorization.NewEnforcer(h.DB)
	require.NoError(t, err)
	h.Authz = authorization.NewService(authorization.Params{Log: log, Enforcer: enforcer})

	platformRepo := platformrepo.Provide()
	h.Treasury = platformservice.NewTreasury(h.DB, platformRepo, h.Clock)
	h.Platform = platformservice.New(platformservice.Params{
		Log:      log,
		Clock:    h.Clock,
		Repo:     platformRepo,
		Runner:   h.Runner,
		Outbox:   h.Outbox,
		Authz:    h.Authz,
		Treasury: h.Treasury,
	})

	pageRepo := pagerepo.Provide()
	h.Pages = pageservice.New(pageservice.Params{
		Log:      log,
		Clock:    h.Clock,
		Repo:     pageRepo,
		Runner:   h.Runner,
		Outbox:   h.Outbox,
		Treasury: h.Treasury,
	})

	productRepo := productrepo.Provide()
	h.Products = productservice.New(productservice.Params{
		Log:      log,
		Clock:    h.Clock,
		Repo:     productRepo,
		Pages:    pageRepo,
		Index:    h.Index,
		Runner:   h.Runner,
		Outbox:   h.Outbox,
		Treasury: h.Treasury,
	})

	h.Ledger = ledgerservice.NewService(ledgerservice.Params{
		DB:       h.DB,
		Log:      log,
		Clock:    h.Clock,
		Repo:     ledgerrepo.Provide(),
		Index:    h.Index,
		Treasury: h.Treasury,
	})

	settler := settlementservice.NewSettler(settlementservice.SettlerParams{
		Pages:    pageRepo,
		Ledger:   h.Ledger,
		Treasury: h.Treasury,
	})
	h.Settlement = settlementservice.New(settlementservice.Params{
		Log:      log,
		Runner:   h.Runner,
		Outbox:   h.Outbox,
		Settler:  settler,
		Pages:    pageRepo,
		Products: productRepo,
		Metrics:  h.Metrics,
	})

	h.Intents = paymentintentservice.New(paymentintentservice.Params{
		Log:      log,
		Clock:    h.Clock,
		Hasher:   host.Keccak256{},
		Repo:     paymentintentrepo.Provide(),
		Pages:    pageRepo,
		Index:    h.Index,
		Runner:   h.Runner,
		Outbox:   h.Outbox,
		Treasury: h.Treasury,
		Settler:  settler,
		Metrics:  h.Metrics,
	})

	h.Milestones = milestoneservice.New(milestoneservice.Params{
		Log:    log,
		Clock:  h.Clock,
		Repo:   milestonerepo.Provide(),
		Pages:  pageRepo,
		Runner: h.Runner,
		Outbox: h.Outbox,
	})

	if !o.skipInit {
		_, err := h.Platform.Initialize(context.Background(), Admin, o.feeBasisPoints)
		require.NoError(t, err)
	}
	return h
}

// Register claims handle for owner and fails the test on error.
func (h *Harness) Register(t testing.TB, owner host.Identity, handle string, role pagedomain.Role) uint64 {
	t.Helper()
	id, err := h.Pages.Register(context.Background(), host.NewCall(owner), pagedomain.RegisterRequest{
		Handle:            handle,
		Role:              role,
		DisplayName:       handle,
		MetadataReference: "ipfs://" + handle,
	})
	require.NoError(t, err)
	return id
}

// Page reads the page behind handle.
func (h *Harness) Page(t testing.TB, handle string) *pagedomain.Page {
	t.Helper()
	page, err := h.Pages.GetByHandle(context.Background(), handle)
	require.NoError(t, err)
	return page
}

// State reads the platform state.
func (h *Harness) State(t testing.TB) *platformdomain.State {
	t.Helper()
	state, err := h.Platform.State(context.Background())
	require.NoError(t, err)
	return state
}

// EventTypes lists committed outbox events in order.
func (h *Harness) EventTypes(t testing.TB) []events.EventType {
	t.Helper()
	var records []events.Record
	require.NoError(t, h.DB.Order("id ASC").Find(&records).Error)
	out := make([]events.EventType, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Type)
	}
	return out
}

// Call builds a host call with an attached decimal value.
func Call(caller host.Identity, value uint64) host.Call {
	return host.NewCall(caller).WithValue(money.New(value))
}
