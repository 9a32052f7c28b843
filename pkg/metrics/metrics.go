package metrics

import (
	"sync"
	"time"
)

// reservoirSize bounds the number of latency samples kept per operation.
const reservoirSize = 1000

// Metrics is the cache statistics collector. All methods are safe for
// concurrent use. A disabled collector silently drops every recording.
type Metrics struct {
	enabled bool

	mu          sync.Mutex
	hits        uint64
	misses      uint64
	puts        uint64
	removes     uint64
	evictions   uint64
	expirations uint64

	getLatency *reservoir
	putLatency *reservoir
}

// New creates an enabled collector.
func New() *Metrics {
	return &Metrics{
		enabled:    true,
		getLatency: newReservoir(),
		putLatency: newReservoir(),
	}
}

// NewDisabled creates a collector that drops all recordings.
func NewDisabled() *Metrics {
	return &Metrics{
		getLatency: newReservoir(),
		putLatency: newReservoir(),
	}
}

// Enabled reports whether recordings are kept.
func (m *Metrics) Enabled() bool {
	return m.enabled
}

// RecordHit counts a successful lookup.
func (m *Metrics) RecordHit() { m.inc(&m.hits) }

// RecordMiss counts a failed lookup.
func (m *Metrics) RecordMiss() { m.inc(&m.misses) }

// RecordPut counts an insertion or replacement.
func (m *Metrics) RecordPut() { m.inc(&m.puts) }

// RecordRemove counts an explicit removal.
func (m *Metrics) RecordRemove() { m.inc(&m.removes) }

// RecordEviction counts a capacity-driven removal.
func (m *Metrics) RecordEviction() { m.inc(&m.evictions) }

// RecordExpiration counts a TTL-driven removal.
func (m *Metrics) RecordExpiration() { m.inc(&m.expirations) }

// ObserveGet records a lookup latency sample.
func (m *Metrics) ObserveGet(d time.Duration) {
	if !m.enabled {
		return
	}
	m.mu.Lock()
	m.getLatency.observe(d)
	m.mu.Unlock()
}

// ObservePut records a write latency sample.
func (m *Metrics) ObservePut(d time.Duration) {
	if !m.enabled {
		return
	}
	m.mu.Lock()
	m.putLatency.observe(d)
	m.mu.Unlock()
}

// Reset zeroes all counters and drops all latency samples.
func (m *Metrics) Reset() {
	if !m.enabled {
		return
	}
	m.mu.Lock()
	m.hits, m.misses, m.puts = 0, 0, 0
	m.removes, m.evictions, m.expirations = 0, 0, 0
	m.getLatency = newReservoir()
	m.putLatency = newReservoir()
	m.mu.Unlock()
}

// Snapshot returns a consistent copy of all statistics.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	gets := m.hits + m.misses
	hitRatio := 0.0
	if gets > 0 {
		hitRatio = float64(m.hits) / float64(gets)
	}

	return Snapshot{
		Hits:        m.hits,
		Misses:      m.misses,
		Gets:        gets,
		Puts:        m.puts,
		Removes:     m.removes,
		Evictions:   m.evictions,
		Expirations: m.expirations,
		HitRatio:    hitRatio,
		MissRatio:   1 - hitRatio,
		GetLatency:  m.getLatency.summary(),
		PutLatency:  m.putLatency.summary(),
	}
}

func (m *Metrics) inc(counter *uint64) {
	if !m.enabled {
		return
	}
	m.mu.Lock()
	*counter++
	m.mu.Unlock()
}

// Snapshot is a point-in-time view of the collector.
type Snapshot struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Gets        uint64  `json:"gets"`
	Puts        uint64  `json:"puts"`
	Removes     uint64  `json:"removes"`
	Evictions   uint64  `json:"evictions"`
	Expirations uint64  `json:"expirations"`
	HitRatio    float64 `json:"hit_ratio"`
	MissRatio   float64 `json:"miss_ratio"`

	GetLatency LatencySummary `json:"get_latency"`
	PutLatency LatencySummary `json:"put_latency"`
}

// LatencySummary describes one operation's latency distribution. Count and
// Total cover every sample ever recorded; the percentiles cover the
// reservoir of recent samples.
type LatencySummary struct {
	Count   uint64        `json:"count"`
	Total   time.Duration `json:"total"`
	Average time.Duration `json:"average"`
	P50     time.Duration `json:"p50"`
	P95     time.Duration `json:"p95"`
	P99     time.Duration `json:"p99"`
}
