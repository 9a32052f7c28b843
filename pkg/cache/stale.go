package cache

import (
	"context"
	"time"

	"github.com/tiercache/tiercache/pkg/errors"
)

// defaultStaleFloor is the staleness window used when neither the call,
// the configuration, nor the default TTL provides one.
const defaultStaleFloor = 5 * time.Minute

// GetStale implements stale-while-revalidate. A missing or expired key
// waits for revalidate and caches the result. A present entry is returned
// immediately; when it is older than the staleness window, one background
// revalidation per key is started to replace it.
//
// The window is the first of: the staleTTL argument, the configured
// StaleTime, half the default TTL, five minutes.
func (c *Cache[V]) GetStale(ctx context.Context, key string, revalidate func(context.Context) (V, error), staleTTL ...time.Duration) (V, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	now := time.Now()

	if !ok || entry.IsExpired(now) {
		if ok {
			c.expireLocked(key, entry)
		}
		c.collector.RecordMiss()
		c.mu.Unlock()

		v, err := revalidate(ctx)
		if err != nil {
			var zero V
			return zero, errors.Wrap(errors.CodeLoaderFailed, "revalidation failed", err).WithKey(key)
		}
		c.Set(key, v)
		return v, nil
	}

	c.policy.OnAccess(key)
	c.collector.RecordHit()

	if entry.Age(now) > c.effectiveStale(staleTTL) {
		if _, inflight := c.revalidating[key]; !inflight {
			c.revalidating[key] = struct{}{}
			// Detach from the caller's deadline; the caller already has
			// its value.
			go c.revalidateInBackground(context.WithoutCancel(ctx), key, revalidate)
		}
	}
	c.mu.Unlock()
	return entry.Value, nil
}

func (c *Cache[V]) effectiveStale(staleTTL []time.Duration) time.Duration {
	if len(staleTTL) > 0 && staleTTL[0] > 0 {
		return staleTTL[0]
	}
	if c.config.StaleTime > 0 {
		return c.config.StaleTime
	}
	if c.config.DefaultTTL > 0 {
		return c.config.DefaultTTL / 2
	}
	return defaultStaleFloor
}

func (c *Cache[V]) revalidateInBackground(ctx context.Context, key string, revalidate func(context.Context) (V, error)) {
	v, err := revalidate(ctx)

	c.mu.Lock()
	delete(c.revalidating, key)
	closed := c.closed
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("background revalidation failed", "key", key, "error", err)
		return
	}
	if !closed {
		c.Set(key, v)
	}
}
