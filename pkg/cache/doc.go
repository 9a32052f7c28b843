// Package cache implements the core in-process cache engine.
//
// A Cache maps string keys to typed entries with optional TTLs, enforces a
// capacity ceiling through a pluggable eviction policy, and surfaces
// operational signals through metrics and a lifecycle event stream.
//
// Wrappers compose the engine for common access patterns:
//
//   - LoadingCache deduplicates concurrent misses through a single loader
//     call per key.
//   - NamespacedCache scopes views of one cache behind key prefixes.
//   - TieredCache layers a Cache over a persistent Store with
//     write-through and read promotion.
//   - Builder assembles a configured Cache or LoadingCache fluently.
//
// The engine serializes all state mutations behind one mutex covering the
// entry map, the eviction policy, the metrics counters, and the
// stale-revalidation table. Synchronous operations never block on I/O;
// loaders and stores are only touched outside the lock.
package cache
