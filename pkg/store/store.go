package store

import (
	"context"

	"github.com/tiercache/tiercache/pkg/types"
)

// Store persists cache entries keyed by string. Implementations must be
// safe for concurrent use.
//
// Stores persist entries verbatim, including expired ones handed to them;
// expiration policy belongs to the cache layer. Get may still report an
// expired entry, and callers decide whether to reap it.
type Store[V any] interface {
	// Put writes an entry, replacing any existing entry for the key.
	Put(ctx context.Context, key string, entry types.Entry[V]) error

	// Get reads the entry for key. The boolean reports presence; a missing
	// key is (zero, false, nil), not an error.
	Get(ctx context.Context, key string) (types.Entry[V], bool, error)

	// Remove deletes the entry for key. Removing a missing key is a no-op.
	Remove(ctx context.Context, key string) error

	// Contains reports whether an entry exists for key.
	Contains(ctx context.Context, key string) (bool, error)

	// Keys returns all stored keys in unspecified order.
	Keys(ctx context.Context) ([]string, error)

	// Len returns the number of stored entries.
	Len(ctx context.Context) (int, error)

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
