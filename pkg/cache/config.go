package cache

import (
	"log/slog"
	"time"

	"github.com/tiercache/tiercache/pkg/errors"
	"github.com/tiercache/tiercache/pkg/eviction"
)

// Config holds the recognized cache options. The zero value is a valid
// configuration: unbounded, no default TTL, LRU bookkeeping, no stats, no
// events.
type Config struct {
	// DefaultTTL is applied when a Set supplies no TTL. Zero means
	// entries are permanent by default.
	DefaultTTL time.Duration `yaml:"default_ttl"`

	// MaxEntries is the capacity ceiling. Zero means unbounded. The
	// ceiling counts every mapping, including expired entries not yet
	// swept.
	MaxEntries int `yaml:"max_entries"`

	// AutoTrim enables the periodic expiration sweep.
	AutoTrim bool `yaml:"auto_trim"`

	// AutoTrimInterval is the sweep period. Defaults to one minute when
	// AutoTrim is set and the interval is zero.
	AutoTrimInterval time.Duration `yaml:"auto_trim_interval"`

	// EvictionPolicy selects the eviction discipline. Empty means LRU.
	EvictionPolicy eviction.PolicyType `yaml:"eviction_policy"`

	// RecordStats installs a metrics collector.
	RecordStats bool `yaml:"record_stats"`

	// EnableEvents installs a lifecycle event bus.
	EnableEvents bool `yaml:"enable_events"`

	// StaleWhileRevalidate marks the cache as serving stale reads; only
	// consulted by GetStale for its default staleness window.
	StaleWhileRevalidate bool `yaml:"stale_while_revalidate"`

	// StaleTime is the default staleness window for GetStale. Zero
	// means derive one from DefaultTTL.
	StaleTime time.Duration `yaml:"stale_time"`
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.DefaultTTL < 0 {
		return errors.New(errors.CodeInvalidConfig, "default_ttl must not be negative")
	}
	if c.MaxEntries < 0 {
		return errors.New(errors.CodeInvalidConfig, "max_entries must not be negative")
	}
	if c.AutoTrimInterval < 0 {
		return errors.New(errors.CodeInvalidConfig, "auto_trim_interval must not be negative")
	}
	if c.StaleTime < 0 {
		return errors.New(errors.CodeInvalidConfig, "stale_time must not be negative")
	}
	if c.EvictionPolicy != "" {
		if _, err := eviction.Parse(string(c.EvictionPolicy)); err != nil {
			return err
		}
	}
	return nil
}

// RemovalCause tags why an entry left the cache.
type RemovalCause int

const (
	// CauseExplicit - removed by Remove, RemoveAll, or ClearWhere.
	CauseExplicit RemovalCause = iota
	// CauseReplaced - overwritten by a Set for the same key.
	CauseReplaced
	// CauseEvicted - removed by capacity enforcement.
	CauseEvicted
	// CauseExpired - removed because its TTL elapsed.
	CauseExpired
	// CauseCleared - removed by Clear.
	CauseCleared
)

func (c RemovalCause) String() string {
	switch c {
	case CauseExplicit:
		return "explicit"
	case CauseReplaced:
		return "replaced"
	case CauseEvicted:
		return "evicted"
	case CauseExpired:
		return "expired"
	case CauseCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// RemovalListener observes every entry removal with its cause. For
// CauseReplaced the value is the replaced (prior) value.
type RemovalListener[V any] func(key string, value V, cause RemovalCause)

// Option customizes a Cache beyond its Config.
type Option[V any] func(*options[V])

type options[V any] struct {
	onEvicted       func(key string, value V)
	removalListener RemovalListener[V]
	logger          *slog.Logger
}

// WithOnEvicted installs a callback invoked synchronously whenever an
// entry is destroyed, regardless of cause. The callback must not re-enter
// the cache.
func WithOnEvicted[V any](fn func(key string, value V)) Option[V] {
	return func(o *options[V]) { o.onEvicted = fn }
}

// WithRemovalListener installs a listener receiving every removal with a
// cause tag, including replacements. The listener must not re-enter the
// cache.
func WithRemovalListener[V any](fn RemovalListener[V]) Option[V] {
	return func(o *options[V]) { o.removalListener = fn }
}

// WithLogger sets the logger for background activity such as failed
// stale revalidations.
func WithLogger[V any](logger *slog.Logger) Option[V] {
	return func(o *options[V]) { o.logger = logger }
}
