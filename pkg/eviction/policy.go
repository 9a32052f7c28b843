package eviction

import (
	"fmt"
	"strings"
)

// Policy tracks access and insertion order for cache keys and nominates
// eviction victims on demand.
type Policy interface {
	// OnAccess is called when a key is read.
	OnAccess(key string)

	// OnAdd is called when a key is inserted or replaced.
	OnAdd(key string)

	// OnRemove is called when a key leaves the cache for any reason.
	OnRemove(key string)

	// EvictionCandidate nominates the next key to evict. The second return
	// is false when the policy has nothing to offer.
	EvictionCandidate() (string, bool)

	// Clear drops all bookkeeping.
	Clear()

	// Len returns the number of tracked keys.
	Len() int
}

// PolicyType identifies an eviction discipline.
type PolicyType string

const (
	LRU  PolicyType = "lru"
	LFU  PolicyType = "lfu"
	FIFO PolicyType = "fifo"
	None PolicyType = "none"
)

// New creates the policy for the given type.
func New(t PolicyType) (Policy, error) {
	switch t {
	case LRU:
		return newLRU(), nil
	case LFU:
		return newLFU(), nil
	case FIFO:
		return newFIFO(), nil
	case None, "":
		return newNone(), nil
	default:
		return nil, fmt.Errorf("unknown eviction policy %q", t)
	}
}

// Parse converts a configuration string into a PolicyType.
func Parse(s string) (PolicyType, error) {
	switch PolicyType(strings.ToLower(strings.TrimSpace(s))) {
	case LRU:
		return LRU, nil
	case LFU:
		return LFU, nil
	case FIFO:
		return FIFO, nil
	case None, "":
		return None, nil
	default:
		return "", fmt.Errorf("unknown eviction policy %q", s)
	}
}
