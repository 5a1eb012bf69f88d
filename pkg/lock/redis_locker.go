package lock

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Only the holder's token may delete the key.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SET NX PX lock shared by every instance behind the same Redis.
type RedisLocker struct {
	rdb    *redis.Client
	opts   Options
	prefix string
}

func NewRedisLocker(rdb *redis.Client, opts Options) *RedisLocker {
	return &RedisLocker{rdb: rdb, opts: opts, prefix: "wellmate:lock:"}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	err := spin(ctx, l.opts, func() (bool, error) {
		ok, err := l.rdb.SetNX(ctx, fullKey, token, l.opts.TTL).Result()
		if err != nil {
			return false, fmt.Errorf("redis setnx %s: %w", fullKey, err)
		}
		return ok, nil
	})
	if err != nil {
		return nil, err
	}

	return func() {
		// Release with a fresh context; the request context may already be done.
		_ = releaseScript.Run(context.Background(), l.rdb, []string{fullKey}, token).Err()
	}, nil
}
