package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tiercache/tiercache/pkg/eviction"
	"github.com/tiercache/tiercache/pkg/events"
	"github.com/tiercache/tiercache/pkg/metrics"
	"github.com/tiercache/tiercache/pkg/types"
)

// Cache is the core engine. It owns the entry map, the eviction policy,
// the metrics collector, and the optional event bus. All methods are safe
// for concurrent use.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]types.Entry[V]
	policy  eviction.Policy

	config          Config
	collector       *metrics.Metrics
	bus             *events.Bus[V]
	onEvicted       func(key string, value V)
	removalListener RemovalListener[V]
	logger          *slog.Logger

	// revalidating tracks keys with a background stale revalidation in
	// flight. Guarded by mu.
	revalidating map[string]struct{}

	janitorStop chan struct{}
	closeOnce   sync.Once
	closed      bool
}

// New creates a cache from a configuration.
func New[V any](config Config, opts ...Option[V]) (*Cache[V], error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	policyType := config.EvictionPolicy
	if policyType == "" {
		policyType = eviction.LRU
	}
	policy, err := eviction.New(policyType)
	if err != nil {
		return nil, err
	}

	var o options[V]
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	c := &Cache[V]{
		entries:         make(map[string]types.Entry[V]),
		policy:          policy,
		config:          config,
		onEvicted:       o.onEvicted,
		removalListener: o.removalListener,
		logger:          o.logger.With("component", "cache"),
		revalidating:    make(map[string]struct{}),
	}

	if config.RecordStats {
		c.collector = metrics.New()
	} else {
		c.collector = metrics.NewDisabled()
	}
	if config.EnableEvents {
		c.bus = events.NewBus[V]()
	}

	if config.AutoTrim {
		interval := config.AutoTrimInterval
		if interval <= 0 {
			interval = time.Minute
		}
		c.janitorStop = make(chan struct{})
		go c.janitor(interval)
	}
	return c, nil
}

// MustNew is New for configurations known to be valid, typically literals
// in tests and examples.
func MustNew[V any](config Config, opts ...Option[V]) *Cache[V] {
	c, err := New(config, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Get returns the value for key. An expired mapping is reaped and counts
// as a miss.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	start := time.Now()

	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		c.collector.RecordMiss()
		c.mu.Unlock()
		c.collector.ObserveGet(time.Since(start))
		return zero, false
	}
	if entry.IsExpired(time.Now()) {
		c.expireLocked(key, entry)
		c.collector.RecordMiss()
		c.mu.Unlock()
		c.collector.ObserveGet(time.Since(start))
		return zero, false
	}
	c.policy.OnAccess(key)
	c.collector.RecordHit()
	c.mu.Unlock()

	c.collector.ObserveGet(time.Since(start))
	return entry.Value, true
}

// GetOr returns the value for key, or fallback on a miss.
func (c *Cache[V]) GetOr(key string, fallback V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	return fallback
}

// GetOrSet returns the value for key, computing and storing it on a miss.
// Not single-flight: concurrent callers may each invoke compute. Use
// LoadingCache when deduplication matters.
func (c *Cache[V]) GetOrSet(key string, compute func() V, ttl ...time.Duration) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := compute()
	c.Set(key, v, ttl...)
	return v
}

// GetOrSetContext is GetOrSet with a fallible, context-aware compute.
// If another caller populated the key while compute ran, the cached value
// wins and the computed one is discarded.
func (c *Cache[V]) GetOrSetContext(ctx context.Context, key string, compute func(context.Context) (V, error), ttl ...time.Duration) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	if cached, ok := c.Get(key); ok {
		return cached, nil
	}
	c.Set(key, v, ttl...)
	return v, nil
}

// Set stores value under key. The TTL defaults to the configured
// DefaultTTL; pass an explicit TTL to override it.
func (c *Cache[V]) Set(key string, value V, ttl ...time.Duration) {
	effective := c.config.DefaultTTL
	if len(ttl) > 0 {
		effective = ttl[0]
	}
	c.PutEntry(key, types.NewEntry(value, effective))
}

// SetPermanent stores value under key with no expiration.
func (c *Cache[V]) SetPermanent(key string, value V) {
	c.PutEntry(key, types.NewEntry(value, 0))
}

// PutEntry stores a pre-built entry verbatim, preserving its timestamps.
// Tier promotion and L1 warm-up use it to carry remaining TTLs across
// layers.
func (c *Cache[V]) PutEntry(key string, entry types.Entry[V]) {
	start := time.Now()

	c.mu.Lock()
	prev, existed := c.entries[key]
	c.entries[key] = entry
	c.policy.OnAdd(key)
	c.collector.RecordPut()

	if existed {
		if c.removalListener != nil {
			c.removalListener(key, prev.Value, CauseReplaced)
		}
		c.publishLocked(events.NewUpdated(key, entry.Value, prev.Value))
	} else {
		c.publishLocked(events.NewCreated(key, entry.Value))
	}

	c.enforceCapacityLocked()
	c.mu.Unlock()

	c.collector.ObservePut(time.Since(start))
}

// ContainsKey reports whether a valid mapping exists for key. An expired
// mapping is reaped, without recording a miss.
func (c *Cache[V]) ContainsKey(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	if entry.IsExpired(time.Now()) {
		c.expireLocked(key, entry)
		return false
	}
	return true
}

// Remove deletes the mapping for key and returns its value. Removing a
// missing or expired-and-swept key returns false and emits nothing.
func (c *Cache[V]) Remove(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(c.entries, key)
	c.policy.OnRemove(key)
	c.collector.RecordRemove()
	c.notifyDestroyed(key, entry.Value, CauseExplicit)
	c.publishLocked(events.NewRemoved(key, entry.Value))
	return entry.Value, true
}

// Keys returns the valid keys, sweeping expired entries first.
func (c *Cache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trimExpiredLocked()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// Len returns the number of valid entries, sweeping expired ones first.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trimExpiredLocked()
	return len(c.entries)
}

// IsEmpty reports whether the cache holds no valid entries.
func (c *Cache[V]) IsEmpty() bool {
	return c.Len() == 0
}

// IsNotEmpty reports whether the cache holds at least one valid entry.
func (c *Cache[V]) IsNotEmpty() bool {
	return c.Len() > 0
}

// Clear removes all entries except those whose key is listed in preserve.
// With no preserve set, a single Cleared event is emitted for a non-empty
// cache; with one, each removal emits its own Removed event. The
// on-evicted callback fires for every removed entry either way.
func (c *Cache[V]) Clear(preserve ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(preserve) == 0 {
		wasEmpty := len(c.entries) == 0
		for k, e := range c.entries {
			c.notifyDestroyed(k, e.Value, CauseCleared)
		}
		c.entries = make(map[string]types.Entry[V])
		c.policy.Clear()
		if !wasEmpty {
			c.publishLocked(events.NewCleared[V]())
		}
		return
	}

	keep := make(map[string]struct{}, len(preserve))
	for _, k := range preserve {
		keep[k] = struct{}{}
	}
	for k, e := range c.entries {
		if _, kept := keep[k]; kept {
			continue
		}
		delete(c.entries, k)
		c.policy.OnRemove(k)
		c.notifyDestroyed(k, e.Value, CauseCleared)
		c.publishLocked(events.NewRemoved(k, e.Value))
	}
}

// ClearWhere removes every valid entry matching the predicate.
func (c *Cache[V]) ClearWhere(pred func(key string, value V) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if e.IsExpired(now) || !pred(k, e.Value) {
			continue
		}
		delete(c.entries, k)
		c.policy.OnRemove(k)
		c.collector.RecordRemove()
		c.notifyDestroyed(k, e.Value, CauseExplicit)
		c.publishLocked(events.NewRemoved(k, e.Value))
	}
}

// TrimExpired removes every expired entry and returns the count.
func (c *Cache[V]) TrimExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trimExpiredLocked()
}

// GetEntry returns the full entry for key, or false if absent or expired.
// No side effects.
func (c *Cache[V]) GetEntry(key string) (types.Entry[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || entry.IsExpired(time.Now()) {
		var zero types.Entry[V]
		return zero, false
	}
	return entry, true
}

// TimeToLive returns the remaining TTL for key. The second return is
// false when the key is absent, expired, or permanent.
func (c *Cache[V]) TimeToLive(key string) (time.Duration, bool) {
	entry, ok := c.GetEntry(key)
	if !ok {
		return 0, false
	}
	return entry.TTLRemaining(time.Now())
}

// Age returns the time since the entry for key was created, or false if
// absent or expired.
func (c *Cache[V]) Age(key string) (time.Duration, bool) {
	entry, ok := c.GetEntry(key)
	if !ok {
		return 0, false
	}
	return entry.Age(time.Now()), true
}

// ExtendTTL pushes the expiration of key further out. A permanent entry
// becomes timed at now+additional; a timed entry keeps its creation time
// and gains additional on its expiration. Returns false when the key is
// absent or expired.
func (c *Cache[V]) ExtendTTL(key string, additional time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	now := time.Now()
	if !ok || entry.IsExpired(now) {
		return false
	}

	var expiresAt time.Time
	if entry.ExpiresAt == nil {
		expiresAt = now.Add(additional)
	} else {
		expiresAt = entry.ExpiresAt.Add(additional)
	}
	c.entries[key] = entry.WithExpiresAt(&expiresAt)
	return true
}

// Refresh rebuilds the entry for key with a fresh creation time and a new
// TTL (the configured default when none is given). Returns false when the
// key is absent or expired.
func (c *Cache[V]) Refresh(key string, ttl ...time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || entry.IsExpired(time.Now()) {
		return false
	}

	effective := c.config.DefaultTTL
	if len(ttl) > 0 {
		effective = ttl[0]
	}
	c.entries[key] = types.NewEntry(entry.Value, effective)
	return true
}

// Stats summarizes the current entry census.
type Stats struct {
	Total     int
	Valid     int
	Expired   int
	Permanent int
}

// Stats counts entries by validity without mutating anything.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	s := Stats{Total: len(c.entries)}
	for _, e := range c.entries {
		if e.IsPermanent() {
			s.Permanent++
		}
		if e.IsValid(now) {
			s.Valid++
		} else {
			s.Expired++
		}
	}
	return s
}

// Metrics exposes the collector for snapshots and Prometheus export.
func (c *Cache[V]) Metrics() *metrics.Metrics {
	return c.collector
}

// Events returns the lifecycle event bus, or nil when events are
// disabled.
func (c *Cache[V]) Events() *events.Bus[V] {
	return c.bus
}

// Subscribe subscribes to the lifecycle event stream. Returns nil when
// events are disabled.
func (c *Cache[V]) Subscribe() *events.Subscription[V] {
	if c.bus == nil {
		return nil
	}
	return c.bus.Subscribe()
}

// Close stops the sweep timer, closes the event bus, and drops all
// entries. Entries discarded by Close do not fire callbacks or events.
func (c *Cache[V]) Close() error {
	c.closeOnce.Do(func() {
		if c.janitorStop != nil {
			close(c.janitorStop)
		}
		if c.bus != nil {
			c.bus.Close()
		}
		c.mu.Lock()
		c.closed = true
		c.entries = make(map[string]types.Entry[V])
		c.policy.Clear()
		c.revalidating = make(map[string]struct{})
		c.mu.Unlock()
	})
	return nil
}

// enforceCapacityLocked evicts policy-selected victims until the mapping
// count is back under the ceiling. The ceiling counts expired entries too.
func (c *Cache[V]) enforceCapacityLocked() {
	if c.config.MaxEntries <= 0 {
		return
	}
	for len(c.entries) > c.config.MaxEntries {
		victim, ok := c.policy.EvictionCandidate()
		if !ok {
			return
		}
		entry, present := c.entries[victim]
		c.policy.OnRemove(victim)
		if !present {
			continue
		}
		delete(c.entries, victim)
		c.collector.RecordEviction()
		c.notifyDestroyed(victim, entry.Value, CauseEvicted)
		c.publishLocked(events.NewEvicted(victim, entry.Value))
	}
}

// expireLocked reaps a single entry already known to be expired.
func (c *Cache[V]) expireLocked(key string, entry types.Entry[V]) {
	delete(c.entries, key)
	c.policy.OnRemove(key)
	c.collector.RecordExpiration()
	c.notifyDestroyed(key, entry.Value, CauseExpired)
	c.publishLocked(events.NewExpired(key, entry.Value))
}

func (c *Cache[V]) trimExpiredLocked() int {
	now := time.Now()
	removed := 0
	for k, e := range c.entries {
		if e.IsExpired(now) {
			c.expireLocked(k, e)
			removed++
		}
	}
	return removed
}

func (c *Cache[V]) notifyDestroyed(key string, value V, cause RemovalCause) {
	if c.onEvicted != nil {
		c.onEvicted(key, value)
	}
	if c.removalListener != nil {
		c.removalListener(key, value, cause)
	}
}

func (c *Cache[V]) publishLocked(ev events.Event[V]) {
	if c.bus != nil {
		c.bus.Publish(ev)
	}
}

func (c *Cache[V]) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.TrimExpired()
		case <-c.janitorStop:
			return
		}
	}
}
