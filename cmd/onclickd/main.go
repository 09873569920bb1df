package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/onclick/internal/authorization"
	"github.com/smallbiznis/onclick/internal/clock"
	"github.com/smallbiznis/onclick/internal/config"
	"github.com/smallbiznis/onclick/internal/engine"
	"github.com/smallbiznis/onclick/internal/events"
	"github.com/smallbiznis/onclick/internal/host"
	"github.com/smallbiznis/onclick/internal/index"
	"github.com/smallbiznis/onclick/internal/ledger"
	"github.com/smallbiznis/onclick/internal/lock"
	"github.com/smallbiznis/onclick/internal/migration"
	"github.com/smallbiznis/onclick/internal/milestone"
	"github.com/smallbiznis/onclick/internal/observability"
	"github.com/smallbiznis/onclick/internal/page"
	"github.com/smallbiznis/onclick/internal/paymentintent"
	"github.com/smallbiznis/onclick/internal/platform"
	platformdomain "github.com/smallbiznis/onclick/internal/platform/domain"
	"github.com/smallbiznis/onclick/internal/product"
	"github.com/smallbiznis/onclick/internal/settlement"
	"github.com/smallbiznis/onclick/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		fx.Provide(config.Load),
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		lock.Module,
		events.Module,
		index.Module,
		authorization.Module,
		engine.Module,

		// Ledger Domains
		platform.Module,
		page.Module,
		product.Module,
		ledger.Module,
		settlement.Module,
		paymentintent.Module,
		milestone.Module,

		fx.Invoke(InitializePlatform),
		fx.Invoke(RunMetricsServer),
	)
	app.Run()
}

// RegisterSnowflake builds the outbox id generator for this process.
func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.SnowflakeNode, err)
	}
	return node, nil
}

// InitializePlatform seeds the platform state from platform.yml on first boot.
func InitializePlatform(lc fx.Lifecycle, svc platformdomain.Service, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			cfg, err := config.LoadPlatformConfig()
			if err != nil {
				return fmt.Errorf("load platform config: %w", err)
			}
			administrator, err := host.ParseIdentity(cfg.Administrator)
			if err != nil {
				return fmt.Errorf("platform administrator: %w", err)
			}
			state, err := svc.Initialize(ctx, administrator, cfg.FeeBasisPoints)
			if err != nil {
				return err
			}
			log.Info("platform ready",
				zap.String("administrator", state.Administrator.String()),
				zap.Uint64("fee_basis_points", state.FeeBasisPoints),
			)
			return nil
		},
	})
}

func RunMetricsServer(lc fx.Lifecycle, cfg config.Config, gatherer prometheus.Gatherer, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("metrics server stopped", zap.Error(err))
				}
			}()
			log.Info("metrics server listening", zap.String("addr", srv.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
