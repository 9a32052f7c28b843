package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarmUp(t *testing.T) {
	c := newCache(t, Config{})
	c.WarmUp(map[string]int{"a": 1, "b": 2}, time.Hour)

	assert.Equal(t, 2, c.Len())
	_, hasTTL := c.TimeToLive("a")
	assert.True(t, hasTTL)
}

func TestWarmUpAsyncLoadsAllKeys(t *testing.T) {
	c := newCache(t, Config{})
	err := c.WarmUpAsync(context.Background(), []string{"a", "bb", "ccc"},
		func(_ context.Context, key string) (int, error) {
			return len(key), nil
		})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"a": 1, "bb": 2, "ccc": 3}, c.GetAll([]string{"a", "bb", "ccc"}))
}

func TestWarmUpAsyncCollectsFailures(t *testing.T) {
	c := newCache(t, Config{})
	err := c.WarmUpAsync(context.Background(), []string{"ok", "bad1", "bad2"},
		func(_ context.Context, key string) (int, error) {
			if key == "ok" {
				return 1, nil
			}
			return 0, fmt.Errorf("load %s failed", key)
		})
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)

	// The successful load still landed.
	v, ok := c.Get("ok")
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestGetOrSetContext(t *testing.T) {
	c := newCache(t, Config{})

	v, err := c.GetOrSetContext(context.Background(), "k",
		func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	// Errors cache nothing.
	_, err = c.GetOrSetContext(context.Background(), "bad",
		func(context.Context) (int, error) { return 0, fmt.Errorf("nope") })
	require.Error(t, err)
	_, ok := c.Get("bad")
	assert.False(t, ok)
}
