package db

import (
	"context"
	"time"
)

// Store is the key-value facade used by the ranking cache.
type Store interface {
	KVStore
	Ping(ctx context.Context) error
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// KVStore provides the key-value operations the ranking cache needs.
// Entries expire by TTL only; there is no explicit invalidation path.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
