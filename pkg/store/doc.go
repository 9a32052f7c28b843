// Package store provides backing stores for cache entries.
//
// A Store persists entries keyed by string and is used as the second level
// of a tiered cache. Three implementations are provided:
//
//   - MemoryStore: a map guarded by a mutex, mostly useful in tests and as
//     a reference for the Store contract.
//   - FileStore: one file per entry under a directory, JSON encoded.
//     Corrupt files are deleted and reported as absent, so a damaged cache
//     directory degrades to misses instead of failures.
//   - S3Store: entries as S3 objects under a key prefix, for caches shared
//     across process restarts or hosts.
//
// ResilientStore wraps any Store with retry and a circuit breaker so a
// flaky backing store degrades the cache instead of breaking it.
//
// All operations take a context and return structured errors from the
// errors package. Absence is not an error: Get returns (zero, false, nil)
// for a missing key.
package store
