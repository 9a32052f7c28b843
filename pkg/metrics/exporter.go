package metrics

import (
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// Exporter publishes cache statistics as Prometheus metrics. It reads a
// Snapshot on every scrape, so it carries no state of its own beyond the
// metric descriptors.
type Exporter struct {
	source   func() Snapshot
	registry *prometheus.Registry

	hits       *prometheus.Desc
	misses     *prometheus.Desc
	evictions  *prometheus.Desc
	hitRatio   *prometheus.Desc
	getLatency *prometheus.Desc
}

// NewExporter creates an exporter over the given snapshot source. The
// prefix defaults to "tiercache" when empty.
func NewExporter(prefix string, source func() Snapshot) (*Exporter, error) {
	if source == nil {
		return nil, fmt.Errorf("exporter requires a snapshot source")
	}
	if prefix == "" {
		prefix = "tiercache"
	}

	e := &Exporter{
		source:   source,
		registry: prometheus.NewRegistry(),
		hits: prometheus.NewDesc(
			prefix+"_hits_total", "Total number of cache hits.", nil, nil),
		misses: prometheus.NewDesc(
			prefix+"_misses_total", "Total number of cache misses.", nil, nil),
		evictions: prometheus.NewDesc(
			prefix+"_evictions_total", "Total number of capacity evictions.", nil, nil),
		hitRatio: prometheus.NewDesc(
			prefix+"_hit_ratio", "Ratio of hits to lookups.", nil, nil),
		getLatency: prometheus.NewDesc(
			prefix+"_get_latency_seconds", "Cache lookup latency.", nil, nil),
	}

	if err := e.registry.Register(e); err != nil {
		return nil, fmt.Errorf("registering cache collector: %w", err)
	}
	return e, nil
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.hits
	ch <- e.misses
	ch <- e.evictions
	ch <- e.hitRatio
	ch <- e.getLatency
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	s := e.source()

	ch <- prometheus.MustNewConstMetric(e.hits, prometheus.CounterValue, float64(s.Hits))
	ch <- prometheus.MustNewConstMetric(e.misses, prometheus.CounterValue, float64(s.Misses))
	ch <- prometheus.MustNewConstMetric(e.evictions, prometheus.CounterValue, float64(s.Evictions))
	ch <- prometheus.MustNewConstMetric(e.hitRatio, prometheus.GaugeValue, s.HitRatio)

	ch <- prometheus.MustNewConstSummary(
		e.getLatency,
		s.GetLatency.Count,
		s.GetLatency.Total.Seconds(),
		map[float64]float64{
			0.5:  s.GetLatency.P50.Seconds(),
			0.95: s.GetLatency.P95.Seconds(),
			0.99: s.GetLatency.P99.Seconds(),
		},
	)
}

// Registry exposes the underlying registry for callers that mount their
// own scrape endpoints.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Handler returns an HTTP handler serving the scrape endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// WriteText encodes the current metrics in the Prometheus text exposition
// format.
func (e *Exporter) WriteText(w io.Writer) error {
	families, err := e.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encoding metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
