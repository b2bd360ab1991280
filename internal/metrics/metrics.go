package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "appscore"

// Metrics holds the service collectors on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	reportsBuilt   *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	comparisons    *prometheus.CounterVec
	securityScores *prometheus.HistogramVec
	httpRequests   *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reportsBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reports",
				Name:      "built_total",
				Help:      "reports built, by score mode",
			},
			[]string{"mode"}),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reports",
				Name:      "cache_lookups_total",
				Help:      "report cache lookups, by result",
			},
			[]string{"result"}),
		comparisons: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "reports",
				Name:      "comparisons_total",
				Help:      "report comparisons, by trend",
			},
			[]string{"trend"}),
		securityScores: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "score",
				Name:      "security_score",
				Help:      "computed security scores",
				Buckets:   prometheus.LinearBuckets(10, 10, 10),
			},
			[]string{"mode"}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "http requests, by method and status",
			},
			[]string{"method", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.reportsBuilt,
		m.cacheLookups,
		m.comparisons,
		m.securityScores,
		m.httpRequests,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for gathering in tests
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ReportBuilt counts a freshly built report
func (m *Metrics) ReportBuilt(mode string) {
	if m == nil {
		return
	}
	m.reportsBuilt.WithLabelValues(mode).Inc()
}

// CacheHit counts a report served from cache
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("hit").Inc()
}

// CacheMiss counts a cache lookup that required a rebuild
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// Compared counts a comparison by its trend label
func (m *Metrics) Compared(trend string) {
	if m == nil {
		return
	}
	m.comparisons.WithLabelValues(trend).Inc()
}

// ObserveScore records a computed score
func (m *Metrics) ObserveScore(mode string, score int) {
	if m == nil {
		return
	}
	m.securityScores.WithLabelValues(mode).Observe(float64(score))
}

// HTTPRequest counts a served request
func (m *Metrics) HTTPRequest(method, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, status).Inc()
}
