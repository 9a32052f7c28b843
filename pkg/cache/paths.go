package cache

import (
	"strings"
	"time"
)

// Separator joins path segments and namespace prefixes. Keys containing
// "::" in user input share the flat namespace with composed path keys;
// the collision is documented, not escaped.
const Separator = "::"

// JoinPath composes path segments into a flat key.
func JoinPath(segments ...string) string {
	return strings.Join(segments, Separator)
}

// GetPath looks up the key composed from segments. An empty path is a
// miss.
func (c *Cache[V]) GetPath(segments []string) (V, bool) {
	if len(segments) == 0 {
		var zero V
		return zero, false
	}
	return c.Get(JoinPath(segments...))
}

// SetPath stores value under the key composed from segments. An empty
// path is a no-op.
func (c *Cache[V]) SetPath(segments []string, value V, ttl ...time.Duration) {
	if len(segments) == 0 {
		return
	}
	c.Set(JoinPath(segments...), value, ttl...)
}

// ContainsPath reports whether the composed key holds a valid entry. An
// empty path is absent.
func (c *Cache[V]) ContainsPath(segments []string) bool {
	if len(segments) == 0 {
		return false
	}
	return c.ContainsKey(JoinPath(segments...))
}

// RemovePath removes the composed key. An empty path is a no-op.
func (c *Cache[V]) RemovePath(segments []string) (V, bool) {
	if len(segments) == 0 {
		var zero V
		return zero, false
	}
	return c.Remove(JoinPath(segments...))
}

// KeysWithPrefix returns the valid keys starting with prefix.
func (c *Cache[V]) KeysWithPrefix(prefix string) []string {
	var keys []string
	for _, k := range c.Keys() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

// RemoveWithPrefix removes every key starting with prefix and returns
// the removal count.
func (c *Cache[V]) RemoveWithPrefix(prefix string) int {
	removed := 0
	for _, k := range c.KeysWithPrefix(prefix) {
		if _, ok := c.Remove(k); ok {
			removed++
		}
	}
	return removed
}
