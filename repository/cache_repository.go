package repository

import (
	"context"
	"time"
)

// CacheRepository holds derived values (computed metrics) that are cheap to
// rebuild. Cache misses and cache failures are never fatal.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
