package events

import "time"

// Type tags a cache lifecycle event.
type Type string

const (
	// Created - a key was inserted for the first time.
	Created Type = "created"
	// Updated - an existing key was replaced; the event carries the prior value.
	Updated Type = "updated"
	// Removed - a key was removed explicitly.
	Removed Type = "removed"
	// Expired - a key was reclaimed because its TTL elapsed.
	Expired Type = "expired"
	// Evicted - a key was removed by capacity enforcement.
	Evicted Type = "evicted"
	// Cleared - the whole cache was cleared; the key is empty.
	Cleared Type = "cleared"
)

// Event is a single cache change notification. Value and Prev are owned
// copies; subscribers never share state with the cache.
type Event[V any] struct {
	Type  Type
	Key   string
	Value V
	Prev  V

	// HasValue and HasPrev distinguish zero values from absent ones.
	HasValue bool
	HasPrev  bool

	// At is the emission timestamp.
	At time.Time
}

// NewCreated builds a Created event.
func NewCreated[V any](key string, value V) Event[V] {
	return Event[V]{Type: Created, Key: key, Value: value, HasValue: true, At: time.Now()}
}

// NewUpdated builds an Updated event carrying the replaced value.
func NewUpdated[V any](key string, value, prev V) Event[V] {
	return Event[V]{Type: Updated, Key: key, Value: value, HasValue: true, Prev: prev, HasPrev: true, At: time.Now()}
}

// NewRemoved builds a Removed event.
func NewRemoved[V any](key string, value V) Event[V] {
	return Event[V]{Type: Removed, Key: key, Value: value, HasValue: true, At: time.Now()}
}

// NewExpired builds an Expired event.
func NewExpired[V any](key string, value V) Event[V] {
	return Event[V]{Type: Expired, Key: key, Value: value, HasValue: true, At: time.Now()}
}

// NewEvicted builds an Evicted event.
func NewEvicted[V any](key string, value V) Event[V] {
	return Event[V]{Type: Evicted, Key: key, Value: value, HasValue: true, At: time.Now()}
}

// NewCleared builds a Cleared event.
func NewCleared[V any]() Event[V] {
	return Event[V]{Type: Cleared, At: time.Now()}
}
