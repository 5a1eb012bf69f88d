package lock

import (
	"context"
	"errors"
	"time"
)

var ErrLockTimeout = errors.New("lock: timed out waiting for key")

// Locker serializes work keyed by an arbitrary string (e.g. a session id).
// The returned release func must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type Options struct {
	TTL        time.Duration // how long a held lock survives a crashed holder
	RetryEvery time.Duration
	Wait       time.Duration // give up after this long
}

func DefaultOptions() Options {
	return Options{
		TTL:        10 * time.Second,
		RetryEvery: 25 * time.Millisecond,
		Wait:       3 * time.Second,
	}
}

// spin retries try until it succeeds, ctx ends or the wait budget is spent.
func spin(ctx context.Context, opts Options, try func() (bool, error)) error {
	deadline := time.Now().Add(opts.Wait)
	for {
		ok, err := try()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.RetryEvery):
		}
	}
}
