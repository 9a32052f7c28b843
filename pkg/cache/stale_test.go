package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiercache/tiercache/pkg/errors"
)

func TestGetStaleMissWaitsForRevalidation(t *testing.T) {
	c := newCache(t, Config{})
	v, err := c.GetStale(context.Background(), "k", func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	cached, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 42, cached)
}

func TestGetStaleExpiredWaitsForRevalidation(t *testing.T) {
	c := newCache(t, Config{})
	c.Set("k", 1, 5*time.Millisecond)
	time.Sleep(10 * time.Millisecond)

	v, err := c.GetStale(context.Background(), "k", func(context.Context) (int, error) {
		return 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestGetStaleFreshEntrySkipsRevalidation(t *testing.T) {
	c := newCache(t, Config{StaleTime: time.Hour})
	c.Set("k", 1)

	var calls atomic.Int32
	v, err := c.GetStale(context.Background(), "k", func(context.Context) (int, error) {
		calls.Add(1)
		return 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Zero(t, calls.Load())
}

func TestGetStaleReturnsStaleAndRevalidatesInBackground(t *testing.T) {
	c := newCache(t, Config{})
	c.Set("k", 1)
	time.Sleep(10 * time.Millisecond)

	v, err := c.GetStale(context.Background(), "k", func(context.Context) (int, error) {
		return 2, nil
	}, 5*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	assert.Eventually(t, func() bool {
		got, _ := c.Get("k")
		return got == 2
	}, time.Second, 5*time.Millisecond)
}

func TestGetStaleSingleFlightPerKey(t *testing.T) {
	c := newCache(t, Config{})
	c.Set("k", 1)
	time.Sleep(10 * time.Millisecond)

	var calls atomic.Int32
	release := make(chan struct{})
	revalidate := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 2, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetStale(context.Background(), "k", revalidate, time.Millisecond)
			assert.NoError(t, err)
			assert.Equal(t, 1, v)
		}()
	}
	wg.Wait()
	close(release)

	assert.Eventually(t, func() bool {
		got, _ := c.Get("k")
		return got == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetStaleLoaderFailurePropagatesOnMiss(t *testing.T) {
	c := newCache(t, Config{})
	_, err := c.GetStale(context.Background(), "k", func(context.Context) (int, error) {
		return 0, fmt.Errorf("backend down")
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeLoaderFailed))

	// Nothing cached on failure; retries hit the loader again.
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestGetStaleBackgroundFailureKeepsStaleValue(t *testing.T) {
	c := newCache(t, Config{})
	c.Set("k", 1)
	time.Sleep(10 * time.Millisecond)

	v, err := c.GetStale(context.Background(), "k", func(context.Context) (int, error) {
		return 0, fmt.Errorf("backend down")
	}, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// The failed revalidation releases the slot so a later call retries.
	assert.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		_, inflight := c.revalidating["k"]
		return !inflight
	}, time.Second, 5*time.Millisecond)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 1, got)
}

func TestEffectiveStaleDefaults(t *testing.T) {
	cases := []struct {
		name   string
		config Config
		arg    []time.Duration
		want   time.Duration
	}{
		{"argument wins", Config{StaleTime: time.Hour}, []time.Duration{time.Minute}, time.Minute},
		{"configured stale time", Config{StaleTime: time.Hour}, nil, time.Hour},
		{"half the default ttl", Config{DefaultTTL: time.Hour}, nil, 30 * time.Minute},
		{"five minute floor", Config{}, nil, defaultStaleFloor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newCache(t, tc.config)
			assert.Equal(t, tc.want, c.effectiveStale(tc.arg))
		})
	}
}
