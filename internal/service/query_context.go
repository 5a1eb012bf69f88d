package service

import (
	"context"
	"time"
)

// queryContext bounds a single repository call. A non-positive timeout leaves
// ctx unchanged.
func queryContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
