/*
Package metrics implements Prometheus collection for the routing
engine: decisions by kind, redirects by reason, and routing duration.

The collectors live in a private registry; Handler exposes them for
scraping on whatever mux the host runs.
*/
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace       = "edgegate"
	routerSubsystem = "router"
)

// Options for the metrics backend.
type Options struct {
	// Prefix replaces the default metric namespace when set.
	Prefix string

	// HistogramBuckets for the routing duration histogram; the
	// Prometheus defaults when nil.
	HistogramBuckets []float64

	// EnableGoCollector adds the standard Go runtime collectors.
	EnableGoCollector bool
}

// Metrics is the Prometheus metrics backend. It satisfies the
// router's Metrics interface.
type Metrics struct {
	decisionsM *prometheus.CounterVec
	redirectsM *prometheus.CounterVec
	durationM  prometheus.Histogram

	registry *prometheus.Registry
	handler  http.Handler
}

// New creates the backend and registers its collectors.
func New(o Options) *Metrics {
	ns := namespace
	if o.Prefix != "" {
		ns = o.Prefix
	}

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: routerSubsystem,
		Name:      "decisions_total",
		Help:      "The total of routing decisions by kind.",
	}, []string{"kind"})

	redirects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Subsystem: routerSubsystem,
		Name:      "redirects_total",
		Help:      "The total of issued redirects by reason.",
	}, []string{"reason"})

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: ns,
		Subsystem: routerSubsystem,
		Name:      "route_duration_seconds",
		Help:      "Duration in seconds of routing one request.",
		Buckets:   o.HistogramBuckets,
	})

	m := &Metrics{
		decisionsM: decisions,
		redirectsM: redirects,
		durationM:  duration,
		registry:   prometheus.NewRegistry(),
	}

	m.registry.MustRegister(decisions, redirects, duration)
	if o.EnableGoCollector {
		m.registry.MustRegister(collectors.NewGoCollector())
	}

	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return m
}

// IncDecision counts one terminal decision.
func (m *Metrics) IncDecision(kind string) {
	m.decisionsM.WithLabelValues(kind).Inc()
}

// IncRedirect counts one issued redirect.
func (m *Metrics) IncRedirect(reason string) {
	m.redirectsM.WithLabelValues(reason).Inc()
}

// MeasureRoute records the elapsed time of one routing run.
func (m *Metrics) MeasureRoute(start time.Time) {
	m.durationM.Observe(time.Since(start).Seconds())
}

// Handler returns the scrape endpoint for the private registry.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}
