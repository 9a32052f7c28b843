// Package config loads tiercache settings from YAML files and converts
// them into the option structs the cache and store packages consume.
package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/tiercache/tiercache/internal/circuit"
	"github.com/tiercache/tiercache/pkg/cache"
	"github.com/tiercache/tiercache/pkg/eviction"
	"github.com/tiercache/tiercache/pkg/retry"
	"github.com/tiercache/tiercache/pkg/store"
)

// Store backend types.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreS3     = "s3"
)

// Configuration is the complete file-level configuration.
type Configuration struct {
	Cache      CacheConfig      `yaml:"cache"`
	Store      StoreConfig      `yaml:"store"`
	Tiered     TieredConfig     `yaml:"tiered"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// CacheConfig configures the in-memory cache layer.
type CacheConfig struct {
	DefaultTTL           time.Duration `yaml:"default_ttl"`
	MaxEntries           int           `yaml:"max_entries"`
	AutoTrim             bool          `yaml:"auto_trim"`
	AutoTrimInterval     time.Duration `yaml:"auto_trim_interval"`
	EvictionPolicy       string        `yaml:"eviction_policy"`
	RecordStats          bool          `yaml:"record_stats"`
	EnableEvents         bool          `yaml:"enable_events"`
	StaleWhileRevalidate bool          `yaml:"stale_while_revalidate"`
	StaleTime            time.Duration `yaml:"stale_time"`
}

// StoreConfig selects and configures the persistent layer.
type StoreConfig struct {
	Type string          `yaml:"type"`
	File FileStoreConfig `yaml:"file"`
	S3   S3StoreConfig   `yaml:"s3"`
}

// FileStoreConfig configures the file backend.
type FileStoreConfig struct {
	Directory string `yaml:"directory"`
	Extension string `yaml:"extension"`
}

// S3StoreConfig configures the S3 backend.
type S3StoreConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	Region string `yaml:"region"`
}

// TieredConfig configures two-tier orchestration.
type TieredConfig struct {
	Enabled         bool  `yaml:"enabled"`
	WriteThrough    *bool `yaml:"write_through"`
	PromoteOnAccess *bool `yaml:"promote_on_access"`
}

// ResilienceConfig configures retry and circuit breaking around the
// persistent layer.
type ResilienceConfig struct {
	Enabled bool         `yaml:"enabled"`
	Retry   retry.Config `yaml:"retry"`
	Breaker struct {
		MaxRequests         uint32        `yaml:"max_requests"`
		Interval            time.Duration `yaml:"interval"`
		Timeout             time.Duration `yaml:"timeout"`
		ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
	} `yaml:"breaker"`
}

// MetricsConfig configures the Prometheus exporter.
type MetricsConfig struct {
	Prefix string `yaml:"prefix"`
}

// NewDefault returns the baseline configuration: an unbounded LRU cache
// with stats on, no persistent layer, default resilience.
func NewDefault() *Configuration {
	return &Configuration{
		Cache: CacheConfig{
			EvictionPolicy:   string(eviction.LRU),
			RecordStats:      true,
			AutoTrimInterval: time.Minute,
		},
		Store: StoreConfig{
			Type: StoreMemory,
			File: FileStoreConfig{Extension: store.DefaultFileExtension},
		},
		Resilience: ResilienceConfig{Retry: retry.DefaultConfig()},
		Metrics:    MetricsConfig{Prefix: "tiercache"},
	}
}

// LoadFromFile overlays settings from a YAML file.
func (c *Configuration) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// SaveToFile writes the configuration as YAML.
func (c *Configuration) SaveToFile(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration.
func (c *Configuration) Validate() error {
	if _, err := eviction.Parse(c.Cache.EvictionPolicy); err != nil {
		return err
	}
	if err := c.CacheConfig().Validate(); err != nil {
		return err
	}

	switch c.Store.Type {
	case "", StoreMemory:
	case StoreFile:
		if c.Store.File.Directory == "" {
			return fmt.Errorf("store type %q requires file.directory", StoreFile)
		}
	case StoreS3:
		if c.Store.S3.Bucket == "" {
			return fmt.Errorf("store type %q requires s3.bucket", StoreS3)
		}
	default:
		return fmt.Errorf("unknown store type %q (must be one of: %s, %s, %s)",
			c.Store.Type, StoreMemory, StoreFile, StoreS3)
	}
	return nil
}

// CacheConfig converts the file-level cache section into a cache.Config.
func (c *Configuration) CacheConfig() cache.Config {
	policy, _ := eviction.Parse(c.Cache.EvictionPolicy)
	return cache.Config{
		DefaultTTL:           c.Cache.DefaultTTL,
		MaxEntries:           c.Cache.MaxEntries,
		AutoTrim:             c.Cache.AutoTrim,
		AutoTrimInterval:     c.Cache.AutoTrimInterval,
		EvictionPolicy:       policy,
		RecordStats:          c.Cache.RecordStats,
		EnableEvents:         c.Cache.EnableEvents,
		StaleWhileRevalidate: c.Cache.StaleWhileRevalidate,
		StaleTime:            c.Cache.StaleTime,
	}
}

// StoreResilience converts the resilience section into the wrapper
// configuration for ResilientStore.
func (c *Configuration) StoreResilience() store.ResilienceConfig {
	cfg := store.ResilienceConfig{Retry: c.Resilience.Retry}
	b := c.Resilience.Breaker
	cfg.Breaker = circuit.Config{
		MaxRequests: b.MaxRequests,
		Interval:    b.Interval,
		Timeout:     b.Timeout,
	}
	if b.ConsecutiveFailures > 0 {
		threshold := b.ConsecutiveFailures
		cfg.Breaker.ReadyToTrip = func(counts circuit.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		}
	}
	return cfg
}

// BuildStore constructs the configured persistent layer, wrapped with
// resilience when enabled.
func BuildStore[V any](ctx context.Context, c *Configuration) (store.Store[V], error) {
	var (
		s   store.Store[V]
		err error
	)
	switch c.Store.Type {
	case "", StoreMemory:
		s = store.NewMemoryStore[V]()
	case StoreFile:
		s, err = store.NewFileStore[V](store.FileConfig{
			Directory: c.Store.File.Directory,
			Extension: c.Store.File.Extension,
		})
	case StoreS3:
		s, err = store.NewS3Store[V](ctx, store.S3Config{
			Bucket: c.Store.S3.Bucket,
			Prefix: c.Store.S3.Prefix,
			Region: c.Store.S3.Region,
		})
	default:
		err = fmt.Errorf("unknown store type %q", c.Store.Type)
	}
	if err != nil {
		return nil, err
	}

	if c.Resilience.Enabled {
		s = store.NewResilientStore(s, c.StoreResilience())
	}
	return s, nil
}

// TieredOptions converts the tiered section into TieredCache options.
func TieredOptions[V any](c *Configuration) []cache.TieredOption[V] {
	var opts []cache.TieredOption[V]
	if c.Tiered.WriteThrough != nil {
		opts = append(opts, cache.WithWriteThrough[V](*c.Tiered.WriteThrough))
	}
	if c.Tiered.PromoteOnAccess != nil {
		opts = append(opts, cache.WithPromoteOnAccess[V](*c.Tiered.PromoteOnAccess))
	}
	return opts
}
