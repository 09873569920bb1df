package events

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/onclick/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("events",
	fx.Provide(NewOutbox),
	fx.Provide(ProvidePublisher),
	fx.Provide(ProvideDispatcherConfig),
	fx.Provide(NewDispatcher),
	fx.Provide(func(d *Dispatcher) Notifier { return d }),
	fx.Invoke(RunDispatcher),
)

func ProvideDispatcherConfig(cfg config.Config) DispatcherConfig {
	return DispatcherConfig{
		BatchSize: cfg.EventBatchSize,
		Interval:  cfg.EventDispatchEvery,
	}
}

// ProvidePublisher selects the broadcast backend.
func ProvidePublisher(cfg config.Config, client *redis.Client, log *zap.Logger) (Publisher, error) {
	switch cfg.EventPublisher {
	case "", "log":
		return NewLogPublisher(log), nil
	case "redis":
		return NewRedisPublisher(client, cfg.EventStream), nil
	case "both":
		return Fanout{NewRedisPublisher(client, cfg.EventStream), NewLogPublisher(log)}, nil
	default:
		return nil, fmt.Errorf("unsupported event publisher %q", cfg.EventPublisher)
	}
}

func RunDispatcher(lc fx.Lifecycle, d *Dispatcher) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go d.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
