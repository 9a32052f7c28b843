package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is an immutable cached record: a value plus its creation time and
// optional expiration time. A nil ExpiresAt means the entry is permanent.
type Entry[V any] struct {
	Value     V
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// NewEntry creates an entry stamped at the current time. A ttl <= 0 yields
// a permanent entry.
func NewEntry[V any](value V, ttl time.Duration) Entry[V] {
	now := time.Now()
	e := Entry[V]{Value: value, CreatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		e.ExpiresAt = &exp
	}
	return e
}

// NewEntryAt creates an entry with explicit timestamps. Used when an entry
// crosses layers and its original lifetime must be preserved.
func NewEntryAt[V any](value V, createdAt time.Time, expiresAt *time.Time) Entry[V] {
	e := Entry[V]{Value: value, CreatedAt: createdAt}
	if expiresAt != nil {
		exp := *expiresAt
		e.ExpiresAt = &exp
	}
	return e
}

// IsPermanent reports whether the entry has no expiration.
func (e Entry[V]) IsPermanent() bool {
	return e.ExpiresAt == nil
}

// IsValid reports whether the entry has not expired as of now.
func (e Entry[V]) IsValid(now time.Time) bool {
	return e.ExpiresAt == nil || now.Before(*e.ExpiresAt)
}

// IsExpired is the complement of IsValid.
func (e Entry[V]) IsExpired(now time.Time) bool {
	return !e.IsValid(now)
}

// Age returns the time elapsed since the entry was created.
func (e Entry[V]) Age(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// TTLRemaining returns the time left before expiration, floored at zero.
// The second return is false for permanent entries.
func (e Entry[V]) TTLRemaining(now time.Time) (time.Duration, bool) {
	if e.ExpiresAt == nil {
		return 0, false
	}
	rem := e.ExpiresAt.Sub(now)
	if rem < 0 {
		rem = 0
	}
	return rem, true
}

// WithExpiresAt returns a copy of the entry with a new expiration time.
func (e Entry[V]) WithExpiresAt(expiresAt *time.Time) Entry[V] {
	return NewEntryAt(e.Value, e.CreatedAt, expiresAt)
}

// entryEnvelope is the persisted JSON shape of an Entry.
type entryEnvelope[V any] struct {
	Value     V       `json:"value"`
	CreatedAt string  `json:"createdAt"`
	ExpiresAt *string `json:"expiresAt,omitempty"`
}

// MarshalJSON encodes the entry into the persisted envelope format.
func (e Entry[V]) MarshalJSON() ([]byte, error) {
	env := entryEnvelope[V]{
		Value:     e.Value,
		CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
	}
	if e.ExpiresAt != nil {
		s := e.ExpiresAt.Format(time.RFC3339Nano)
		env.ExpiresAt = &s
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes the persisted envelope format.
func (e *Entry[V]) UnmarshalJSON(data []byte) error {
	var env entryEnvelope[V]
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, env.CreatedAt)
	if err != nil {
		return fmt.Errorf("invalid createdAt %q: %w", env.CreatedAt, err)
	}
	e.Value = env.Value
	e.CreatedAt = createdAt
	e.ExpiresAt = nil
	if env.ExpiresAt != nil {
		expiresAt, err := time.Parse(time.RFC3339Nano, *env.ExpiresAt)
		if err != nil {
			return fmt.Errorf("invalid expiresAt %q: %w", *env.ExpiresAt, err)
		}
		e.ExpiresAt = &expiresAt
	}
	return nil
}
