package cache

import (
	"log/slog"
	"time"

	"github.com/tiercache/tiercache/pkg/eviction"
)

// Builder assembles a configured Cache or LoadingCache fluently.
//
//	c, err := cache.NewBuilder[string]().
//		MaximumSize(10_000).
//		ExpireAfterWrite(10 * time.Minute).
//		RecordStats().
//		Build()
type Builder[V any] struct {
	maxSize           int
	expireAfterWrite  time.Duration
	expireAfterAccess time.Duration
	policy            eviction.PolicyType
	recordStats       bool
	enableEvents      bool
	autoTrim          bool
	autoTrimInterval  time.Duration
	staleTime         time.Duration
	onEvicted         func(key string, value V)
	removalListener   RemovalListener[V]
	logger            *slog.Logger
}

// NewBuilder creates an empty builder.
func NewBuilder[V any]() *Builder[V] {
	return &Builder[V]{}
}

// MaximumSize caps the entry count.
func (b *Builder[V]) MaximumSize(n int) *Builder[V] {
	b.maxSize = n
	return b
}

// ExpireAfterWrite sets the default TTL applied at write time.
func (b *Builder[V]) ExpireAfterWrite(d time.Duration) *Builder[V] {
	b.expireAfterWrite = d
	return b
}

// ExpireAfterAccess is folded into the default TTL as a fallback when no
// write expiry is set; access-time expiration itself is not supported.
func (b *Builder[V]) ExpireAfterAccess(d time.Duration) *Builder[V] {
	b.expireAfterAccess = d
	return b
}

// EvictionPolicy selects the eviction discipline.
func (b *Builder[V]) EvictionPolicy(p eviction.PolicyType) *Builder[V] {
	b.policy = p
	return b
}

// RecordStats installs a metrics collector.
func (b *Builder[V]) RecordStats() *Builder[V] {
	b.recordStats = true
	return b
}

// EnableEvents installs a lifecycle event bus.
func (b *Builder[V]) EnableEvents() *Builder[V] {
	b.enableEvents = true
	return b
}

// AutoTrim enables the periodic expiration sweep.
func (b *Builder[V]) AutoTrim(interval time.Duration) *Builder[V] {
	b.autoTrim = true
	b.autoTrimInterval = interval
	return b
}

// StaleTime sets the default staleness window for GetStale.
func (b *Builder[V]) StaleTime(d time.Duration) *Builder[V] {
	b.staleTime = d
	return b
}

// OnEvicted installs the destruction callback.
func (b *Builder[V]) OnEvicted(fn func(key string, value V)) *Builder[V] {
	b.onEvicted = fn
	return b
}

// RemovalListener installs a cause-tagged removal listener.
func (b *Builder[V]) RemovalListener(fn RemovalListener[V]) *Builder[V] {
	b.removalListener = fn
	return b
}

// Logger sets the cache logger.
func (b *Builder[V]) Logger(logger *slog.Logger) *Builder[V] {
	b.logger = logger
	return b
}

// Build produces the configured Cache.
func (b *Builder[V]) Build() (*Cache[V], error) {
	defaultTTL := b.expireAfterWrite
	if defaultTTL == 0 {
		defaultTTL = b.expireAfterAccess
	}

	config := Config{
		DefaultTTL:       defaultTTL,
		MaxEntries:       b.maxSize,
		AutoTrim:         b.autoTrim,
		AutoTrimInterval: b.autoTrimInterval,
		EvictionPolicy:   b.policy,
		RecordStats:      b.recordStats,
		EnableEvents:     b.enableEvents,
		StaleTime:        b.staleTime,
	}

	var opts []Option[V]
	if b.onEvicted != nil {
		opts = append(opts, WithOnEvicted[V](b.onEvicted))
	}
	if b.removalListener != nil {
		opts = append(opts, WithRemovalListener[V](b.removalListener))
	}
	if b.logger != nil {
		opts = append(opts, WithLogger[V](b.logger))
	}
	return New(config, opts...)
}

// BuildAsync produces a LoadingCache over the configured Cache.
func (b *Builder[V]) BuildAsync(loader Loader[V]) (*LoadingCache[V], error) {
	c, err := b.Build()
	if err != nil {
		return nil, err
	}
	return NewLoadingCache(c, loader), nil
}

// BuildSync produces a SyncLoadingCache over the configured Cache.
func (b *Builder[V]) BuildSync(loader SyncLoader[V]) (*SyncLoadingCache[V], error) {
	c, err := b.Build()
	if err != nil {
		return nil, err
	}
	return NewSyncLoadingCache(c, loader), nil
}
