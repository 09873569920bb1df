package lock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/onclick/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("call.lock",
	fx.Provide(NewRedisClient),
	fx.Provide(NewLocker),
)

// NewRedisClient connects to Redis when a component is configured to use it.
// It returns nil otherwise.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config) (*redis.Client, error) {
	if !cfg.UsesRedis() {
		return nil, nil
	}
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

// NewLocker selects the call lock backend.
func NewLocker(cfg config.Config, client *redis.Client, log *zap.Logger) (Locker, error) {
	switch cfg.LockBackend {
	case "", "local":
		log.Info("call lock", zap.String("backend", "local"))
		return NewLocal(), nil
	case "redis":
		if client == nil {
			return nil, errors.New("redis call lock requires a redis client")
		}
		log.Info("call lock", zap.String("backend", "redis"), zap.String("key", cfg.LockKey))
		return NewRedis(client, cfg.LockKey, cfg.LockTTL, cfg.LockWait), nil
	default:
		return nil, fmt.Errorf("unsupported lock backend %q", cfg.LockBackend)
	}
}
