package metrics

import (
	"math"
	"sort"
	"time"
)

// reservoir is a ring buffer of the most recent latency samples plus
// running totals over all samples ever observed. Not safe for concurrent
// use; the owning Metrics serializes access.
type reservoir struct {
	samples []time.Duration
	next    int
	filled  bool

	count uint64
	sum   time.Duration
}

func newReservoir() *reservoir {
	return &reservoir{samples: make([]time.Duration, 0, reservoirSize)}
}

func (r *reservoir) observe(d time.Duration) {
	if r.filled {
		r.samples[r.next] = d
		r.next = (r.next + 1) % reservoirSize
	} else {
		r.samples = append(r.samples, d)
		if len(r.samples) == reservoirSize {
			r.filled = true
		}
	}
	r.count++
	r.sum += d
}

func (r *reservoir) summary() LatencySummary {
	s := LatencySummary{Count: r.count, Total: r.sum}
	if r.count > 0 {
		s.Average = time.Duration(int64(r.sum) / int64(r.count))
	}
	if len(r.samples) == 0 {
		return s
	}

	sorted := make([]time.Duration, len(r.samples))
	copy(sorted, r.samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	s.P50 = percentile(sorted, 0.50)
	s.P95 = percentile(sorted, 0.95)
	s.P99 = percentile(sorted, 0.99)
	return s
}

// percentile indexes the sorted reservoir at round((n-1)*q).
func percentile(sorted []time.Duration, q float64) time.Duration {
	idx := int(math.Round(float64(len(sorted)-1) * q))
	return sorted[idx]
}
