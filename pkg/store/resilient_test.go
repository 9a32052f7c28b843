package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiercache/tiercache/internal/circuit"
	"github.com/tiercache/tiercache/pkg/errors"
	"github.com/tiercache/tiercache/pkg/retry"
	"github.com/tiercache/tiercache/pkg/types"
)

// flakyStore fails the first failures calls to Get, then delegates.
type flakyStore[V any] struct {
	Store[V]
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyStore[V]) Get(ctx context.Context, key string) (types.Entry[V], bool, error) {
	f.mu.Lock()
	f.calls++
	fail := f.calls <= f.failures
	f.mu.Unlock()
	if fail {
		var zero types.Entry[V]
		return zero, false, errors.New(errors.CodeStoreIO, "transient")
	}
	return f.Store.Get(ctx, key)
}

func fastRetry() retry.Config {
	return retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, Jitter: false}
}

func TestResilientStoreRetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore[string]()
	require.NoError(t, inner.Put(ctx, "k", types.NewEntry("v", 0)))

	flaky := &flakyStore[string]{Store: inner, failures: 2}
	rs := NewResilientStore[string](flaky, ResilienceConfig{Retry: fastRetry()})

	got, ok, err := rs.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", got.Value)
	assert.Equal(t, 3, flaky.calls)
}

func TestResilientStoreTripsBreaker(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore[string]()
	flaky := &flakyStore[string]{Store: inner, failures: 1000}
	rs := NewResilientStore[string](flaky, ResilienceConfig{
		Retry: fastRetry(),
		Breaker: circuit.Config{
			Timeout:     time.Minute,
			ReadyToTrip: func(c circuit.Counts) bool { return c.ConsecutiveFailures >= 3 },
		},
	})

	_, _, err := rs.Get(ctx, "k")
	require.Error(t, err)
	assert.Equal(t, circuit.StateOpen, rs.BreakerState())

	// Fails fast without touching the inner store.
	before := flaky.calls
	_, _, err = rs.Get(ctx, "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, circuit.ErrOpenState)
	assert.Equal(t, before, flaky.calls)
}

func TestResilientStorePassesThroughWrites(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore[string]()
	rs := NewResilientStore[string](inner, ResilienceConfig{Retry: fastRetry()})

	require.NoError(t, rs.Put(ctx, "k", types.NewEntry("v", 0)))
	ok, err := rs.Contains(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	keys, err := rs.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k"}, keys)

	n, err := rs.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, rs.Remove(ctx, "k"))
	require.NoError(t, rs.Clear(ctx))
	require.NoError(t, rs.Close())
}
