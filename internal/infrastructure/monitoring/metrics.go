package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Catalog metrics
	CoursesAdded prometheus.Counter
	CatalogSize  prometheus.Gauge
	CatalogLoads *prometheus.CounterVec

	// Span pipeline metrics
	SpansExported *prometheus.CounterVec
	SpansDropped  prometheus.Counter

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates and registers all metrics on a private registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,

		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coursecat_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coursecat_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		CoursesAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "coursecat_courses_added_total",
			Help: "Total number of courses added to the catalog",
		}),

		CatalogSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "coursecat_catalog_size",
			Help: "Number of course records in the catalog file",
		}),

		CatalogLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coursecat_catalog_loads_total",
			Help: "Catalog file loads by outcome",
		}, []string{"outcome"}),

		SpansExported: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "coursecat_spans_exported_total",
			Help: "Spans exported per exporter",
		}, []string{"exporter"}),

		SpansDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "coursecat_spans_dropped_total",
			Help: "Spans dropped because the export queue was full",
		}),

		Uptime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "coursecat_uptime_seconds",
			Help: "Process uptime in seconds",
		}),

		startTime: time.Now(),
	}

	return m
}

// RecordHTTPRequest records metrics for one HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordCourseAdded counts a new catalog entry
func (m *Metrics) RecordCourseAdded() {
	m.CoursesAdded.Inc()
}

// SetCatalogSize tracks the current catalog length
func (m *Metrics) SetCatalogSize(n int) {
	m.CatalogSize.Set(float64(n))
}

// RecordCatalogLoad counts a catalog file load by outcome
func (m *Metrics) RecordCatalogLoad(outcome string) {
	m.CatalogLoads.WithLabelValues(outcome).Inc()
}

// RecordSpanExport counts spans exported through one exporter
func (m *Metrics) RecordSpanExport(exporter string, count int) {
	m.SpansExported.WithLabelValues(exporter).Add(float64(count))
}

// RecordSpanDrop counts spans dropped by the pipeline
func (m *Metrics) RecordSpanDrop(count int) {
	m.SpansDropped.Add(float64(count))
}

// Handler returns the Prometheus exposition handler for this registry
func (m *Metrics) Handler() http.Handler {
	inner := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
		inner.ServeHTTP(w, r)
	})
}
