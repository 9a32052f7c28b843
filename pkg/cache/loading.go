package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tiercache/tiercache/pkg/errors"
)

// Loader fetches the value for a missing key.
type Loader[V any] func(ctx context.Context, key string) (V, error)

// LoadingCache wraps a Cache with a loader and deduplicates concurrent
// misses: under contention the loader runs at most once per key, and all
// waiters share the result. Failures propagate to every waiter and cache
// nothing, so the next call retries immediately.
type LoadingCache[V any] struct {
	cache  *Cache[V]
	loader Loader[V]
	group  singleflight.Group
}

// NewLoadingCache wraps cache with loader.
func NewLoadingCache[V any](cache *Cache[V], loader Loader[V]) *LoadingCache[V] {
	return &LoadingCache[V]{cache: cache, loader: loader}
}

// Get returns the cached value for key, loading it on a miss. A caller
// whose context expires stops waiting, but the shared load keeps running
// for the remaining waiters.
func (l *LoadingCache[V]) Get(ctx context.Context, key string) (V, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	ch := l.group.DoChan(key, func() (interface{}, error) {
		// Re-check under the flight: another caller may have populated
		// the key between the miss and joining the flight.
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
		v, err := l.loader(context.WithoutCancel(ctx), key)
		if err != nil {
			return nil, errors.Wrap(errors.CodeLoaderFailed, "loader failed", err).WithKey(key)
		}
		l.cache.Set(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// GetAll fans out Get over keys and merges the results. The first load
// failure cancels the remaining fan-out.
func (l *LoadingCache[V]) GetAll(ctx context.Context, keys []string) (map[string]V, error) {
	var mu sync.Mutex
	out := make(map[string]V, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		key := key
		g.Go(func() error {
			v, err := l.Get(ctx, key)
			if err != nil {
				return err
			}
			mu.Lock()
			out[key] = v
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Put stores a value directly, bypassing the loader.
func (l *LoadingCache[V]) Put(key string, value V, ttl ...time.Duration) {
	l.cache.Set(key, value, ttl...)
}

// PutAll stores every pair directly, bypassing the loader.
func (l *LoadingCache[V]) PutAll(values map[string]V, ttl ...time.Duration) {
	l.cache.SetAll(values, ttl...)
}

// Invalidate removes the mapping for key.
func (l *LoadingCache[V]) Invalidate(key string) {
	l.cache.Remove(key)
}

// Refresh invalidates key and forces a reload.
func (l *LoadingCache[V]) Refresh(ctx context.Context, key string) (V, error) {
	l.cache.Remove(key)
	return l.Get(ctx, key)
}

// Cache exposes the inner cache for inspection and direct operations.
func (l *LoadingCache[V]) Cache() *Cache[V] {
	return l.cache
}

// Close closes the inner cache.
func (l *LoadingCache[V]) Close() error {
	return l.cache.Close()
}

// SyncLoader fetches the value for a missing key without a context.
type SyncLoader[V any] func(key string) (V, error)

// SyncLoadingCache is the synchronous sibling of LoadingCache for loaders
// that do no I/O. Produced by Builder.BuildSync.
type SyncLoadingCache[V any] struct {
	cache  *Cache[V]
	loader SyncLoader[V]
	group  singleflight.Group
}

// NewSyncLoadingCache wraps cache with a synchronous loader.
func NewSyncLoadingCache[V any](cache *Cache[V], loader SyncLoader[V]) *SyncLoadingCache[V] {
	return &SyncLoadingCache[V]{cache: cache, loader: loader}
}

// Get returns the cached value for key, loading it once on first use.
func (s *SyncLoadingCache[V]) Get(key string) (V, error) {
	if v, ok := s.cache.Get(key); ok {
		return v, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		if v, ok := s.cache.Get(key); ok {
			return v, nil
		}
		v, err := s.loader(key)
		if err != nil {
			return nil, errors.Wrap(errors.CodeLoaderFailed, "loader failed", err).WithKey(key)
		}
		s.cache.Set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Invalidate removes the mapping for key.
func (s *SyncLoadingCache[V]) Invalidate(key string) {
	s.cache.Remove(key)
}

// Cache exposes the inner cache.
func (s *SyncLoadingCache[V]) Cache() *Cache[V] {
	return s.cache
}

// Close closes the inner cache.
func (s *SyncLoadingCache[V]) Close() error {
	return s.cache.Close()
}
