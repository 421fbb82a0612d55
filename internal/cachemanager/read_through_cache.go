package cachemanager

import (
	"context"
	"time"
)

// ReadThroughCache wraps a loader function with a cache. I is the
// loader's input (e.g. a parsed identity), K the cache key derived from
// it, V the decoded value.
type ReadThroughCache[K ~string, V any, I any] struct {
	cache           CacheManager[K, V]
	fn              func(ctx context.Context, input I) (V, error)
	shouldSkipCache bool
}

func NewReadThroughCache[K ~string, V any, I any](
	cache CacheManager[K, V],
	fn func(ctx context.Context, input I) (V, error),
	shouldSkipCache bool,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache:           cache,
		fn:              fn,
		shouldSkipCache: shouldSkipCache,
	}
}

// Get returns the cached value for key, or loads, caches, and returns
// it. Loader errors are never cached.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, key K, input I, ttl time.Duration) (V, error) {
	if r.shouldSkipCache {
		return r.fn(ctx, input)
	}

	if value, ok := r.cache.Get(ctx, key); ok {
		return value, nil
	}

	value, err := r.fn(ctx, input)
	if err != nil {
		return value, err
	}

	r.cache.Set(ctx, key, value, ttl)

	return value, nil
}

// Invalidate drops keys from the underlying cache.
func (r *ReadThroughCache[K, V, I]) Invalidate(ctx context.Context, keys ...K) error {
	if r.shouldSkipCache {
		return nil
	}
	return r.cache.Delete(ctx, keys...)
}

// Flush drops every cached value.
func (r *ReadThroughCache[K, V, I]) Flush(ctx context.Context) error {
	if r.shouldSkipCache {
		return nil
	}
	return r.cache.Flush(ctx)
}
