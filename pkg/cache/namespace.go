package cache

import (
	"strings"
	"sync"
	"time"
)

// NamespacedCache hands out prefix-scoped views of one underlying cache.
// Views are memoized per name.
type NamespacedCache[V any] struct {
	cache *Cache[V]

	mu    sync.Mutex
	views map[string]*NamespaceView[V]
}

// NewNamespacedCache wraps cache.
func NewNamespacedCache[V any](cache *Cache[V]) *NamespacedCache[V] {
	return &NamespacedCache[V]{cache: cache, views: make(map[string]*NamespaceView[V])}
}

// Namespace returns the view for name, creating it on first use. The
// name may itself contain "::" to address a nested namespace directly.
func (n *NamespacedCache[V]) Namespace(name string) *NamespaceView[V] {
	n.mu.Lock()
	defer n.mu.Unlock()

	if view, ok := n.views[name]; ok {
		return view
	}
	view := &NamespaceView[V]{parent: n, name: name, prefix: name + Separator}
	n.views[name] = view
	return view
}

// Cache exposes the underlying cache.
func (n *NamespacedCache[V]) Cache() *Cache[V] {
	return n.cache
}

// NamespaceView scopes cache operations under a "<name>::" key prefix.
type NamespaceView[V any] struct {
	parent *NamespacedCache[V]
	name   string
	prefix string
}

// Name returns the namespace name.
func (v *NamespaceView[V]) Name() string {
	return v.name
}

// Namespace returns a nested view; prefixes compose, e.g.
// "users::profiles::".
func (v *NamespaceView[V]) Namespace(name string) *NamespaceView[V] {
	return v.parent.Namespace(v.name + Separator + name)
}

// Get looks up key within the namespace.
func (v *NamespaceView[V]) Get(key string) (V, bool) {
	return v.parent.cache.Get(v.prefix + key)
}

// Set stores value under key within the namespace.
func (v *NamespaceView[V]) Set(key string, value V, ttl ...time.Duration) {
	v.parent.cache.Set(v.prefix+key, value, ttl...)
}

// SetPermanent stores a permanent value under key within the namespace.
func (v *NamespaceView[V]) SetPermanent(key string, value V) {
	v.parent.cache.SetPermanent(v.prefix+key, value)
}

// ContainsKey reports whether the namespaced key holds a valid entry.
func (v *NamespaceView[V]) ContainsKey(key string) bool {
	return v.parent.cache.ContainsKey(v.prefix + key)
}

// Remove deletes the namespaced key.
func (v *NamespaceView[V]) Remove(key string) (V, bool) {
	return v.parent.cache.Remove(v.prefix + key)
}

// Keys enumerates the namespace, with the prefix stripped.
func (v *NamespaceView[V]) Keys() []string {
	raw := v.parent.cache.KeysWithPrefix(v.prefix)
	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, strings.TrimPrefix(k, v.prefix))
	}
	return keys
}

// Len counts the valid entries in the namespace.
func (v *NamespaceView[V]) Len() int {
	return len(v.parent.cache.KeysWithPrefix(v.prefix))
}

// Clear removes every key in the namespace, leaving all other keys of
// the underlying cache untouched.
func (v *NamespaceView[V]) Clear() int {
	return v.parent.cache.RemoveWithPrefix(v.prefix)
}
