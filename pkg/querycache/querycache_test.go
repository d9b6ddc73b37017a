package querycache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()

	c, err := New(Options{
		MaxEntries: 128,
		TTLs: map[Class]time.Duration{
			ClassStops:  ttl,
			ClassAlerts: ttl,
		},
	}, nil)
	require.NoError(t, err)

	return c
}

func TestGetOrFetchCachesWithinTTL(t *testing.T) {
	c := newTestCache(t, time.Minute)

	var calls atomic.Int64
	fetch := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte(`{"stops":[]}`), nil
	}

	first, err := c.GetOrFetch(context.Background(), ClassStops, "all", fetch)
	require.NoError(t, err)
	c.waitForWrites()

	second, err := c.GetOrFetch(context.Background(), ClassStops, "all", fetch)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), calls.Load())
}

func TestGetOrFetchRefetchesAfterExpiry(t *testing.T) {
	c := newTestCache(t, 20*time.Millisecond)

	var calls atomic.Int64
	fetch := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("payload"), nil
	}

	_, err := c.GetOrFetch(context.Background(), ClassAlerts, "all", fetch)
	require.NoError(t, err)
	c.waitForWrites()

	time.Sleep(60 * time.Millisecond)

	_, err = c.GetOrFetch(context.Background(), ClassAlerts, "all", fetch)
	require.NoError(t, err)

	assert.Equal(t, int64(2), calls.Load())
}

func TestGetOrFetchIndependentClasses(t *testing.T) {
	c := newTestCache(t, time.Minute)

	var calls atomic.Int64
	fetch := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("x"), nil
	}

	_, err := c.GetOrFetch(context.Background(), ClassStops, "all", fetch)
	require.NoError(t, err)
	_, err = c.GetOrFetch(context.Background(), ClassAlerts, "all", fetch)
	require.NoError(t, err)

	// same key, different classes, separate entries
	assert.Equal(t, int64(2), calls.Load())
}

func TestGetOrFetchCollapsesConcurrentMisses(t *testing.T) {
	c := newTestCache(t, time.Minute)

	var calls atomic.Int64
	release := make(chan struct{})
	fetch := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("slow"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data, err := c.GetOrFetch(context.Background(), ClassStops, "all", fetch)
			assert.NoError(t, err)
			assert.Equal(t, []byte("slow"), data)
		}()
	}

	// let the goroutines pile up on the same key before releasing the fetch
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
}

func TestGetOrFetchErrorNotCached(t *testing.T) {
	c := newTestCache(t, time.Minute)

	var calls atomic.Int64
	failing := func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return nil, assert.AnError
	}

	_, err := c.GetOrFetch(context.Background(), ClassStops, "all", failing)
	require.Error(t, err)

	data, err := c.GetOrFetch(context.Background(), ClassStops, "all", func(ctx context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("ok"), nil
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, int64(2), calls.Load())
}
