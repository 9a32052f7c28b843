package metrics

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndRatios(t *testing.T) {
	m := New()
	m.RecordHit()
	m.RecordHit()
	m.RecordHit()
	m.RecordMiss()
	m.RecordPut()
	m.RecordRemove()
	m.RecordEviction()
	m.RecordExpiration()

	s := m.Snapshot()
	assert.Equal(t, uint64(3), s.Hits)
	assert.Equal(t, uint64(1), s.Misses)
	assert.Equal(t, uint64(4), s.Gets)
	assert.Equal(t, uint64(1), s.Puts)
	assert.Equal(t, uint64(1), s.Removes)
	assert.Equal(t, uint64(1), s.Evictions)
	assert.Equal(t, uint64(1), s.Expirations)
	assert.InDelta(t, 0.75, s.HitRatio, 1e-9)
	assert.InDelta(t, 0.25, s.MissRatio, 1e-9)
}

func TestHitRatioWithNoLookups(t *testing.T) {
	s := New().Snapshot()
	assert.Equal(t, 0.0, s.HitRatio)
	assert.Equal(t, 1.0, s.MissRatio)
}

func TestDisabledCollectorDropsEverything(t *testing.T) {
	m := NewDisabled()
	m.RecordHit()
	m.RecordMiss()
	m.ObserveGet(time.Millisecond)
	m.ObservePut(time.Millisecond)

	s := m.Snapshot()
	assert.Zero(t, s.Hits)
	assert.Zero(t, s.Misses)
	assert.Zero(t, s.GetLatency.Count)
	assert.False(t, m.Enabled())
}

func TestLatencyAverageAndPercentiles(t *testing.T) {
	m := New()
	for i := 1; i <= 100; i++ {
		m.ObserveGet(time.Duration(i) * time.Millisecond)
	}

	s := m.Snapshot().GetLatency
	assert.Equal(t, uint64(100), s.Count)
	assert.Equal(t, 5050*time.Millisecond, s.Total)
	assert.Equal(t, 5050*time.Millisecond/100, s.Average)

	// round((n-1)*q) over 1..100ms sorted ascending.
	assert.Equal(t, 51*time.Millisecond, s.P50)
	assert.Equal(t, 95*time.Millisecond, s.P95)
	assert.Equal(t, 99*time.Millisecond, s.P99)
}

func TestReservoirBoundedButTotalsRun(t *testing.T) {
	m := New()
	for i := 0; i < reservoirSize+500; i++ {
		m.ObservePut(time.Millisecond)
	}

	s := m.Snapshot().PutLatency
	assert.Equal(t, uint64(reservoirSize+500), s.Count)
	assert.Equal(t, time.Duration(reservoirSize+500)*time.Millisecond, s.Total)
}

func TestReservoirKeepsMostRecentSamples(t *testing.T) {
	r := newReservoir()
	// Fill with 1ms, then overwrite completely with 10ms.
	for i := 0; i < reservoirSize; i++ {
		r.observe(time.Millisecond)
	}
	for i := 0; i < reservoirSize; i++ {
		r.observe(10 * time.Millisecond)
	}

	s := r.summary()
	assert.Equal(t, 10*time.Millisecond, s.P50)
	assert.Equal(t, 10*time.Millisecond, s.P99)
}

func TestReset(t *testing.T) {
	m := New()
	m.RecordHit()
	m.ObserveGet(time.Millisecond)
	m.Reset()

	s := m.Snapshot()
	assert.Zero(t, s.Hits)
	assert.Zero(t, s.GetLatency.Count)
}

func TestExporterWritesTextExposition(t *testing.T) {
	m := New()
	m.RecordHit()
	m.RecordHit()
	m.RecordMiss()
	m.RecordEviction()
	m.ObserveGet(5 * time.Millisecond)

	e, err := NewExporter("testcache", m.Snapshot)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.WriteText(&buf))
	text := buf.String()

	assert.Contains(t, text, "testcache_hits_total 2")
	assert.Contains(t, text, "testcache_misses_total 1")
	assert.Contains(t, text, "testcache_evictions_total 1")
	assert.Contains(t, text, "testcache_hit_ratio")
	assert.Contains(t, text, `testcache_get_latency_seconds{quantile="0.5"}`)
	assert.Contains(t, text, `quantile="0.95"`)
	assert.Contains(t, text, `quantile="0.99"`)
}

func TestExporterDefaultPrefixAndHandler(t *testing.T) {
	m := New()
	m.RecordHit()

	e, err := NewExporter("", m.Snapshot)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "tiercache_hits_total"))
}

func TestExporterRequiresSource(t *testing.T) {
	_, err := NewExporter("x", nil)
	assert.Error(t, err)
}
