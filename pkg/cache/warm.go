package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/tiercache/tiercache/pkg/errors"
)

// WarmUp bulk-populates the cache.
func (c *Cache[V]) WarmUp(values map[string]V, ttl ...time.Duration) {
	c.SetAll(values, ttl...)
}

// WarmUpAsync loads every key in parallel and stores the successes.
// Failed loads are collected and returned together; the rest of the
// warm-up proceeds regardless.
func (c *Cache[V]) WarmUpAsync(ctx context.Context, keys []string, loader func(ctx context.Context, key string) (V, error), ttl ...time.Duration) error {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result *multierror.Error
	)

	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			v, err := loader(ctx, key)
			if err != nil {
				mu.Lock()
				result = multierror.Append(result,
					errors.Wrap(errors.CodeLoaderFailed, "warm-up load failed", err).WithKey(key))
				mu.Unlock()
				return
			}
			c.Set(key, v, ttl...)
		}(key)
	}
	wg.Wait()

	return result.ErrorOrNil()
}
