/*
Package eviction implements the pluggable victim-selection policies used by
the cache engine when its entry count exceeds the configured ceiling.

A Policy is pure bookkeeping: the cache tells it about accesses, insertions,
and removals, and asks it to nominate an eviction candidate when space is
needed. The policy never touches stored values.

Four disciplines are provided:

  - LRU: strict access order; the candidate is the least recently used key.
  - LFU: frequency buckets with insertion-ordered ties; the candidate is the
    least frequently used key, oldest first among equals.
  - FIFO: insertion order only; accesses never reorder.
  - None: never nominates a candidate, disabling eviction entirely.

All operations are amortized O(1) except LFU minimum-frequency recomputation
after removing the last key of the minimum bucket.

Policies are not safe for concurrent use; the owning cache serializes calls.
*/
package eviction
