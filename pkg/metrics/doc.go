/*
Package metrics collects cache operation statistics: hit/miss/put/remove/
eviction/expiration counters and get/put latency distributions.

Latency tracking keeps a bounded reservoir of the most recent 1000 samples
per operation. Averages come from running totals over every sample ever
recorded; P50/P95/P99 come from the current reservoir contents.

A disabled collector (NewDisabled) accepts every recording and drops it, so
callers never need nil checks.

The Exporter publishes a snapshot source as Prometheus metrics: hits,
misses, and evictions as counters, hit ratio as a gauge, and get latency as
a summary with 0.5/0.95/0.99 quantiles. It serves both the standard
promhttp scrape handler and plain-text encoding for push-style exports.
*/
package metrics
