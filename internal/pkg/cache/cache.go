// Package cache stores small JSON-encodable values with a TTL, in process
// memory or in Redis when several instances share one database.
package cache

import (
	"context"
	"time"
)

// Store is a TTL key-value cache. Get reports found=false on a miss or expiry.
type Store interface {
	Get(ctx context.Context, key string, dst interface{}) (found bool, err error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
