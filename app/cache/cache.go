// Package cache provides a small string cache used for resolved metadata
// and search responses. It is not correctness-critical: entries are safe to
// drop and repopulate at any time.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}
