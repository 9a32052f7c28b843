package store

import (
	"context"
	"log/slog"

	"github.com/tiercache/tiercache/internal/circuit"
	"github.com/tiercache/tiercache/pkg/retry"
	"github.com/tiercache/tiercache/pkg/types"
)

// ResilienceConfig configures a ResilientStore.
type ResilienceConfig struct {
	// Retry settings for transient failures. Zero values get defaults.
	Retry retry.Config `yaml:"retry"`

	// Breaker settings. Zero values get defaults.
	Breaker circuit.Config `yaml:"-"`

	// Logger receives breaker state changes. slog.Default when nil.
	Logger *slog.Logger `yaml:"-"`
}

// ResilientStore wraps a Store with retry and a circuit breaker. Transient
// failures are retried with backoff; a store that keeps failing trips the
// breaker so cache operations fail fast until the store recovers.
type ResilientStore[V any] struct {
	inner   Store[V]
	retryer *retry.Retryer
	breaker *circuit.Breaker
}

// NewResilientStore wraps inner with the given resilience settings.
func NewResilientStore[V any](inner Store[V], config ResilienceConfig) *ResilientStore[V] {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	breakerCfg := config.Breaker
	if breakerCfg.Name == "" {
		breakerCfg.Name = "store"
	}
	if breakerCfg.OnStateChange == nil {
		breakerCfg.OnStateChange = func(name string, from, to circuit.State) {
			logger.Warn("store circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		}
	}

	return &ResilientStore[V]{
		inner:   inner,
		retryer: retry.New(config.Retry),
		breaker: circuit.New(breakerCfg),
	}
}

// BreakerState exposes the breaker state for health reporting.
func (s *ResilientStore[V]) BreakerState() circuit.State {
	return s.breaker.State()
}

// Inner returns the wrapped store.
func (s *ResilientStore[V]) Inner() Store[V] {
	return s.inner
}

func (s *ResilientStore[V]) execute(ctx context.Context, fn func(context.Context) error) error {
	return s.retryer.Do(ctx, func(ctx context.Context) error {
		return s.breaker.Execute(func() error {
			return fn(ctx)
		})
	})
}

// Put implements Store.
func (s *ResilientStore[V]) Put(ctx context.Context, key string, entry types.Entry[V]) error {
	return s.execute(ctx, func(ctx context.Context) error {
		return s.inner.Put(ctx, key, entry)
	})
}

// Get implements Store.
func (s *ResilientStore[V]) Get(ctx context.Context, key string) (types.Entry[V], bool, error) {
	var entry types.Entry[V]
	var ok bool
	err := s.execute(ctx, func(ctx context.Context) error {
		var innerErr error
		entry, ok, innerErr = s.inner.Get(ctx, key)
		return innerErr
	})
	if err != nil {
		var zero types.Entry[V]
		return zero, false, err
	}
	return entry, ok, nil
}

// Remove implements Store.
func (s *ResilientStore[V]) Remove(ctx context.Context, key string) error {
	return s.execute(ctx, func(ctx context.Context) error {
		return s.inner.Remove(ctx, key)
	})
}

// Contains implements Store.
func (s *ResilientStore[V]) Contains(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := s.execute(ctx, func(ctx context.Context) error {
		var innerErr error
		ok, innerErr = s.inner.Contains(ctx, key)
		return innerErr
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Keys implements Store.
func (s *ResilientStore[V]) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.execute(ctx, func(ctx context.Context) error {
		var innerErr error
		keys, innerErr = s.inner.Keys(ctx)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Len implements Store.
func (s *ResilientStore[V]) Len(ctx context.Context) (int, error) {
	var n int
	err := s.execute(ctx, func(ctx context.Context) error {
		var innerErr error
		n, innerErr = s.inner.Len(ctx)
		return innerErr
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Clear implements Store.
func (s *ResilientStore[V]) Clear(ctx context.Context) error {
	return s.execute(ctx, func(ctx context.Context) error {
		return s.inner.Clear(ctx)
	})
}

// Close implements Store. Close is not retried.
func (s *ResilientStore[V]) Close() error {
	return s.inner.Close()
}
