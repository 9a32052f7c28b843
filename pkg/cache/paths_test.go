package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "users::42::profile", JoinPath("users", "42", "profile"))
	assert.Equal(t, "solo", JoinPath("solo"))
	assert.Equal(t, "", JoinPath())
}

func TestPathOperationsComposeKeys(t *testing.T) {
	c := newCache(t, Config{})
	c.SetPath([]string{"users", "42"}, 7)

	// The composed key and the flat key share one namespace.
	v, ok := c.Get("users::42")
	require.True(t, ok)
	assert.Equal(t, 7, v)

	v, ok = c.GetPath([]string{"users", "42"})
	require.True(t, ok)
	assert.Equal(t, 7, v)

	assert.True(t, c.ContainsPath([]string{"users", "42"}))

	v, ok = c.RemovePath([]string{"users", "42"})
	require.True(t, ok)
	assert.Equal(t, 7, v)
	assert.False(t, c.ContainsPath([]string{"users", "42"}))
}

func TestEmptyPathIsNoOp(t *testing.T) {
	c := newCache(t, Config{})
	c.SetPath(nil, 1)
	assert.True(t, c.IsEmpty())

	_, ok := c.GetPath(nil)
	assert.False(t, ok)
	assert.False(t, c.ContainsPath(nil))

	_, ok = c.RemovePath(nil)
	assert.False(t, ok)
}

func TestKeysWithPrefix(t *testing.T) {
	c := newCache(t, Config{})
	c.Set("users::1", 1)
	c.Set("users::2", 2)
	c.Set("sessions::1", 3)

	assert.ElementsMatch(t, []string{"users::1", "users::2"}, c.KeysWithPrefix("users::"))
	assert.Empty(t, c.KeysWithPrefix("none::"))
}

func TestRemoveWithPrefix(t *testing.T) {
	c := newCache(t, Config{})
	c.Set("users::1", 1)
	c.Set("users::2", 2)
	c.Set("sessions::1", 3)

	assert.Equal(t, 2, c.RemoveWithPrefix("users::"))
	assert.ElementsMatch(t, []string{"sessions::1"}, c.Keys())
}

func TestBulkOperations(t *testing.T) {
	c := newCache(t, Config{})
	c.SetAll(map[string]int{"a": 1, "b": 2, "c": 3})

	got := c.GetAll([]string{"a", "c", "missing"})
	assert.Equal(t, map[string]int{"a": 1, "c": 3}, got)

	assert.Equal(t, 2, c.RemoveAll([]string{"a", "b", "missing"}))
	assert.Equal(t, 1, c.Len())
}
