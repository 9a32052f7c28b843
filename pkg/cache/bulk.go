package cache

import "time"

// GetAll looks up every key and returns the hits.
func (c *Cache[V]) GetAll(keys []string) map[string]V {
	out := make(map[string]V, len(keys))
	for _, k := range keys {
		if v, ok := c.Get(k); ok {
			out[k] = v
		}
	}
	return out
}

// SetAll stores every pair, emitting one event per affected entry.
func (c *Cache[V]) SetAll(values map[string]V, ttl ...time.Duration) {
	for k, v := range values {
		c.Set(k, v, ttl...)
	}
}

// RemoveAll removes every listed key and returns the removal count.
func (c *Cache[V]) RemoveAll(keys []string) int {
	removed := 0
	for _, k := range keys {
		if _, ok := c.Remove(k); ok {
			removed++
		}
	}
	return removed
}
