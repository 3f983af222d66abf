// Package metrics exposes scanlens counters on a private Prometheus
// registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vulntor/scanlens/pkg/aggregate"
	"github.com/vulntor/scanlens/pkg/service"
)

const namespace = "scanlens"

// Metrics implements service.Observer.
type Metrics struct {
	registry  *prometheus.Registry
	parses    *prometheus.CounterVec
	fetches   *prometheus.CounterVec
	duration  prometheus.Histogram
	requests  *prometheus.CounterVec
	latestAge prometheus.Gauge
}

var _ service.Observer = (*Metrics)(nil)

// New creates and registers every collector. Runtime collectors are added
// when withRuntime is set.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		reg.MustRegister(collectors.NewGoCollector())
	}

	m := &Metrics{
		registry: reg,
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_total",
			Help:      "Tool parse attempts by outcome.",
		}, []string{"tool", "outcome"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Blob downloads by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregate_duration_seconds",
			Help:      "Time spent parsing and merging one scan folder.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		latestAge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "latest_scan_timestamp_seconds",
			Help:      "Unix time of the newest scan folder seen by the watcher.",
		}),
	}
	reg.MustRegister(m.parses, m.fetches, m.duration, m.requests, m.latestAge)
	return m
}

// ObserveParse implements aggregate.Observer.
func (m *Metrics) ObserveParse(tool string, outcome aggregate.Outcome) {
	m.parses.WithLabelValues(tool, string(outcome)).Inc()
}

// ObserveFetch counts one blob download.
func (m *Metrics) ObserveFetch(outcome string) {
	m.fetches.WithLabelValues(outcome).Inc()
}

// ObserveAggregate records one aggregation.
func (m *Metrics) ObserveAggregate(d time.Duration) {
	m.duration.Observe(d.Seconds())
}

// ObserveRequest counts one served HTTP request.
func (m *Metrics) ObserveRequest(method string, code int) {
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// SetLatestScan records the instant of the newest scan folder.
func (m *Metrics) SetLatestScan(t time.Time) {
	m.latestAge.Set(float64(t.Unix()))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
