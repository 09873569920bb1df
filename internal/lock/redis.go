package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const lockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Redis is a lock shared by every process pointed at the same Redis. The
// holder is identified by a random token so an expired holder cannot release
// a successor's lock.
type Redis struct {
	client *redis.Client
	script *redis.Script
	key    string
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
}

func NewRedis(client *redis.Client, key string, ttl, wait time.Duration) *Redis {
	if client == nil {
		return nil
	}
	return &Redis{
		client: client,
		script: redis.NewScript(lockReleaseScript),
		key:    key,
		ttl:    ttl,
		wait:   wait,
		poll:   25 * time.Millisecond,
	}
}

// TryLock makes one attempt and reports whether the lock was taken.
func (l *Redis) TryLock(ctx context.Context) (string, bool, error) {
	if l == nil || l.client == nil {
		return "", false, errors.New("lock client not configured")
	}
	if l.key == "" {
		return "", false, errors.New("lock key is empty")
	}
	if l.ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return "", false, err
	}
	return token, ok, nil
}

// Release deletes the key only while it still holds token.
func (l *Redis) Release(ctx context.Context, token string) error {
	if l == nil || l.client == nil || token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{l.key}, token).Err()
}

// Lock polls TryLock until the lock is taken, ctx ends or the wait elapses.
func (l *Redis) Lock(ctx context.Context) (Unlock, error) {
	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		token, ok, err := l.TryLock(waitCtx)
		if err != nil {
			return nil, err
		}
		if ok {
			return func(ctx context.Context) error {
				return l.Release(context.WithoutCancel(ctx), token)
			}, nil
		}

		select {
		case <-waitCtx.Done():
			return nil, errors.Join(ErrNotAcquired, waitCtx.Err())
		case <-ticker.C:
		}
	}
}
