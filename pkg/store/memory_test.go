package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiercache/tiercache/pkg/types"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[string]()

	entry := types.NewEntry("hello", time.Minute)
	require.NoError(t, s.Put(ctx, "greeting", entry))

	got, ok, err := s.Get(ctx, "greeting")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hello", got.Value)

	ok, err = s.Contains(ctx, "greeting")
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemoryStoreMissingKey(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[int]()

	_, ok, err := s.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing a missing key is a no-op.
	assert.NoError(t, s.Remove(ctx, "absent"))
}

func TestMemoryStoreRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[int]()

	require.NoError(t, s.Put(ctx, "a", types.NewEntry(1, 0)))
	require.NoError(t, s.Put(ctx, "b", types.NewEntry(2, 0)))

	require.NoError(t, s.Remove(ctx, "a"))
	_, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Clear(ctx))
	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMemoryStoreKeys(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[int]()
	require.NoError(t, s.Put(ctx, "a", types.NewEntry(1, 0)))
	require.NoError(t, s.Put(ctx, "b", types.NewEntry(2, 0)))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestMemoryStoreKeepsExpiredEntries(t *testing.T) {
	// Expiration is the cache layer's concern; stores persist verbatim.
	ctx := context.Background()
	s := NewMemoryStore[string]()
	created := time.Now().Add(-time.Minute)
	expired := created.Add(time.Second)
	require.NoError(t, s.Put(ctx, "k", types.NewEntryAt("v", created, &expired)))

	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.IsExpired(time.Now()))
}
