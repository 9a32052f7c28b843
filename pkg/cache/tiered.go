package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/tiercache/tiercache/pkg/store"
	"github.com/tiercache/tiercache/pkg/types"
)

// TieredOption customizes a TieredCache.
type TieredOption[V any] func(*TieredCache[V])

// WithWriteThrough controls whether Set mirrors writes into L2. On by
// default.
func WithWriteThrough[V any](enabled bool) TieredOption[V] {
	return func(t *TieredCache[V]) { t.writeThrough = enabled }
}

// WithPromoteOnAccess controls whether L2 hits are lifted into L1. On by
// default.
func WithPromoteOnAccess[V any](enabled bool) TieredOption[V] {
	return func(t *TieredCache[V]) { t.promoteOnAccess = enabled }
}

// WithTieredLogger sets the logger for L2 failures handled as misses.
func WithTieredLogger[V any](logger *slog.Logger) TieredOption[V] {
	return func(t *TieredCache[V]) { t.logger = logger }
}

// TieredCache layers a fast in-memory Cache (L1) over a persistent Store
// (L2). Writes go through to L2, and L2 hits are promoted into L1 with
// their remaining TTL preserved. An unreachable L2 degrades reads to L1
// misses instead of failing them.
type TieredCache[V any] struct {
	l1 *Cache[V]
	l2 store.Store[V]

	writeThrough    bool
	promoteOnAccess bool
	logger          *slog.Logger
}

// NewTieredCache assembles a two-tier cache over l1 and l2.
func NewTieredCache[V any](l1 *Cache[V], l2 store.Store[V], opts ...TieredOption[V]) *TieredCache[V] {
	t := &TieredCache[V]{
		l1:              l1,
		l2:              l2,
		writeThrough:    true,
		promoteOnAccess: true,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("component", "tieredcache")
	return t
}

// Get tries L1 first, then L2. An expired L2 entry is deleted from L2
// and counts as a miss; an L2 read error is logged and counts as a miss.
// A valid L2 hit is promoted into L1 with its remaining lifetime.
func (t *TieredCache[V]) Get(ctx context.Context, key string) (V, bool) {
	if v, ok := t.l1.Get(key); ok {
		return v, true
	}

	entry, ok, err := t.l2.Get(ctx, key)
	if err != nil {
		t.logger.Warn("treating L2 read failure as miss", "key", key, "error", err)
		var zero V
		return zero, false
	}
	if !ok {
		var zero V
		return zero, false
	}
	if entry.IsExpired(time.Now()) {
		if err := t.l2.Remove(ctx, key); err != nil {
			t.logger.Warn("failed to reap expired L2 entry", "key", key, "error", err)
		}
		var zero V
		return zero, false
	}

	if t.promoteOnAccess {
		t.l1.PutEntry(key, entry)
	}
	return entry.Value, true
}

// Set writes to L1 and, with write-through enabled, mirrors the same
// entry into L2. The L1 write always happens; an L2 failure is surfaced.
func (t *TieredCache[V]) Set(ctx context.Context, key string, value V, ttl ...time.Duration) error {
	effective := t.l1.config.DefaultTTL
	if len(ttl) > 0 {
		effective = ttl[0]
	}
	entry := types.NewEntry(value, effective)

	t.l1.PutEntry(key, entry)
	if !t.writeThrough {
		return nil
	}
	return t.l2.Put(ctx, key, entry)
}

// Remove deletes key from both layers.
func (t *TieredCache[V]) Remove(ctx context.Context, key string) error {
	t.l1.Remove(key)
	return t.l2.Remove(ctx, key)
}

// Clear empties both layers.
func (t *TieredCache[V]) Clear(ctx context.Context) error {
	t.l1.Clear()
	return t.l2.Clear(ctx)
}

// Keys returns the union of L1 and L2 keys.
func (t *TieredCache[V]) Keys(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string
	for _, k := range t.l1.Keys() {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	l2Keys, err := t.l2.Keys(ctx)
	if err != nil {
		return nil, err
	}
	for _, k := range l2Keys {
		if _, dup := seen[k]; !dup {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// FlushL1ToL2 writes every current L1 entry into L2, then clears L1.
func (t *TieredCache[V]) FlushL1ToL2(ctx context.Context) error {
	for _, key := range t.l1.Keys() {
		entry, ok := t.l1.GetEntry(key)
		if !ok {
			continue
		}
		if err := t.l2.Put(ctx, key, entry); err != nil {
			return err
		}
	}
	t.l1.Clear()
	return nil
}

// WarmUpL1 pre-populates L1 from L2 for the given keys, preserving each
// entry's remaining lifetime. Expired or missing L2 entries are skipped.
func (t *TieredCache[V]) WarmUpL1(ctx context.Context, keys []string) error {
	now := time.Now()
	for _, key := range keys {
		entry, ok, err := t.l2.Get(ctx, key)
		if err != nil {
			return err
		}
		if !ok || entry.IsExpired(now) {
			continue
		}
		t.l1.PutEntry(key, entry)
	}
	return nil
}

// L1 exposes the in-memory layer.
func (t *TieredCache[V]) L1() *Cache[V] {
	return t.l1
}

// L2 exposes the persistent layer.
func (t *TieredCache[V]) L2() store.Store[V] {
	return t.l2
}

// Close closes both layers.
func (t *TieredCache[V]) Close() error {
	if err := t.l1.Close(); err != nil {
		return err
	}
	return t.l2.Close()
}
