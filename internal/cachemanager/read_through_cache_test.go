package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReadThroughCache_CachesLoads(t *testing.T) {
	ctx := context.Background()
	calls := 0
	loader := func(ctx context.Context, input string) (string, error) {
		calls++
		return "value-of-" + input, nil
	}

	mgr := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	rtc := NewReadThroughCache(mgr, loader, false)

	v, err := rtc.Get(ctx, "k", "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "value-of-k", v)
	require.Equal(t, 1, calls)

	// Second read is served from cache.
	v, err = rtc.Get(ctx, "k", "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "value-of-k", v)
	require.Equal(t, 1, calls)
}

func TestReadThroughCache_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	calls := 0
	loader := func(ctx context.Context, input string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}

	mgr := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)
	rtc := NewReadThroughCache(mgr, loader, false)

	_, err := rtc.Get(ctx, "k", "k", time.Minute)
	require.Error(t, err)

	v, err := rtc.Get(ctx, "k", "k", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "ok", v)
	require.Equal(t, 2, calls)
}

func TestReadThroughCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	calls := 0
	loader := func(ctx context.Context, input string) (int, error) {
		calls++
		return calls, nil
	}

	mgr := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)
	rtc := NewReadThroughCache(mgr, loader, false)

	v, _ := rtc.Get(ctx, "k", "k", time.Minute)
	require.Equal(t, 1, v)

	require.NoError(t, rtc.Invalidate(ctx, "k"))

	v, _ = rtc.Get(ctx, "k", "k", time.Minute)
	require.Equal(t, 2, v, "invalidated key should reload")
}

func TestReadThroughCache_SkipCache(t *testing.T) {
	ctx := context.Background()
	calls := 0
	loader := func(ctx context.Context, input string) (int, error) {
		calls++
		return calls, nil
	}

	mgr := NewInMemoryCacheManager[string, int]("test", DefaultExpiration, DefaultCleanupInterval)
	rtc := NewReadThroughCache(mgr, loader, true)

	for i := 1; i <= 3; i++ {
		v, err := rtc.Get(ctx, "k", "k", time.Minute)
		require.NoError(t, err)
		require.Equal(t, i, v, "every read should hit the loader")
	}
}
