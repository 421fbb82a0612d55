// Package cachemanager provides a small in-memory cache layer used to
// avoid re-decoding artefact files on repeated reads.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is the cache contract the store depends on; the concrete
// implementation is swappable in tests.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
