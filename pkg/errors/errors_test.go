package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeStoreIO, "write failed")
	require.NotNil(t, err)
	assert.Equal(t, CodeStoreIO, err.Code)
	assert.Contains(t, err.Error(), "STORE_IO")
	assert.Contains(t, err.Error(), "write failed")
	assert.False(t, err.Timestamp.IsZero())
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(CodeStoreIO, "put failed", cause).WithKey("user:1")

	assert.Contains(t, err.Error(), `key "user:1"`)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, errors.Is(err, cause))
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(CodeLoaderFailed, "boom")
	b := New(CodeLoaderFailed, "different message")
	c := New(CodeCorrupt, "bad bytes")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestIsCodeThroughWrapping(t *testing.T) {
	inner := Wrap(CodeCorrupt, "undecodable entry", fmt.Errorf("unexpected EOF"))
	outer := fmt.Errorf("reading cache file: %w", inner)

	assert.True(t, IsCode(outer, CodeCorrupt))
	assert.False(t, IsCode(outer, CodeStoreIO))
	assert.Equal(t, CodeCorrupt, GetCode(outer))
	assert.Equal(t, Code(""), GetCode(fmt.Errorf("plain")))
}

func TestRetryable(t *testing.T) {
	assert.True(t, New(CodeLoaderFailed, "m").Retryable())
	assert.True(t, New(CodeStoreIO, "m").Retryable())
	assert.False(t, New(CodeCorrupt, "m").Retryable())
	assert.False(t, New(CodeInvalidConfig, "m").Retryable())
}
