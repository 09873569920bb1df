// Package lock serializes ledger calls. Every state-changing call holds the
// call lock from validation through commit.
package lock

import (
	"context"
	"errors"
)

// ErrNotAcquired is returned when the lock could not be taken before the
// caller's deadline or the configured wait elapsed.
var ErrNotAcquired = errors.New("call_lock_not_acquired")

// Unlock releases a held lock.
type Unlock func(ctx context.Context) error

// Locker hands out the call lock.
type Locker interface {
	Lock(ctx context.Context) (Unlock, error)
}

// Local is an in-process lock. The zero value is not usable; call NewLocal.
type Local struct {
	sem chan struct{}
}

func NewLocal() *Local {
	return &Local{sem: make(chan struct{}, 1)}
}

func (l *Local) Lock(ctx context.Context) (Unlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrNotAcquired, err)
	}
	select {
	case l.sem <- struct{}{}:
		return func(context.Context) error {
			<-l.sem
			return nil
		}, nil
	case <-ctx.Done():
		return nil, errors.Join(ErrNotAcquired, ctx.Err())
	}
}
