package utils

import (
	"context"
	"time"
)

// dbTimeout bounds every repository round trip so a stalled connection cannot
// hold a request open past the HTTP deadline.
const dbTimeout = 5 * time.Second

func WithDBTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, dbTimeout)
}
