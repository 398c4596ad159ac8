// Package telemetry exposes the monitor's Prometheus instruments.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the instruments the cache and collector report into.
// A nil *Metrics is valid and drops every observation, so tests can wire
// components without a registry.
type Metrics struct {
	registry *prometheus.Registry

	refreshTotal     prometheus.Counter
	refreshFailures  prometheus.Counter
	refreshDuration  prometheus.Histogram
	proclistFailures prometheus.Counter
	cacheReads       *prometheus.CounterVec
}

// NewMetrics builds the instrument set on its own registry. Each call gets
// a fresh registry, so constructing twice never collides.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		refreshTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "monitor_refresh_total",
			Help: "Cache refresh attempts, successful or not.",
		}),
		refreshFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "monitor_refresh_failures_total",
			Help: "Cache refreshes that left the previous snapshot in place.",
		}),
		refreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "monitor_refresh_duration_seconds",
			Help:    "Wall time of successful cache refreshes.",
			Buckets: prometheus.DefBuckets,
		}),
		proclistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "monitor_proclist_failures_total",
			Help: "Process listings that degraded to synthetic records.",
		}),
		cacheReads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_cache_reads_total",
			Help: "Cache reads by snapshot kind and freshness outcome.",
		}, []string{"kind", "result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RefreshSucceeded records one completed refresh and its duration.
func (m *Metrics) RefreshSucceeded(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.refreshTotal.Inc()
	m.refreshDuration.Observe(elapsed.Seconds())
}

// RefreshFailed records one refresh that errored out.
func (m *Metrics) RefreshFailed() {
	if m == nil {
		return
	}
	m.refreshTotal.Inc()
	m.refreshFailures.Inc()
}

// ProcessListFailed records a listing command failure.
func (m *Metrics) ProcessListFailed() {
	if m == nil {
		return
	}
	m.proclistFailures.Inc()
}

// CacheRead records one read against a snapshot kind; hit means the TTL had
// not expired.
func (m *Metrics) CacheRead(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "stale"
	if hit {
		result = "hit"
	}
	m.cacheReads.WithLabelValues(kind, result).Inc()
}
