package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MemoryLocker is an in-process Locker. go-cache's Add only succeeds for
// absent or expired keys, which gives us a test-and-set with expiry.
// Each acquire stores its own token; only that token may delete the key.
type MemoryLocker struct {
	mu    sync.Mutex
	cache *cache.Cache
	opts  Options
}

func NewMemoryLocker(opts Options) *MemoryLocker {
	return &MemoryLocker{
		cache: cache.New(opts.TTL, opts.TTL),
		opts:  opts,
	}
}

func (l *MemoryLocker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	err := spin(ctx, l.opts, func() (bool, error) {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.cache.Add(key, token, l.opts.TTL) == nil, nil
	})
	if err != nil {
		return nil, err
	}
	return func() { l.release(key, token) }, nil
}

// release is a no-op when the lock expired and was taken by someone else.
func (l *MemoryLocker) release(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if held, ok := l.cache.Get(key); ok && held == token {
		l.cache.Delete(key)
	}
}
