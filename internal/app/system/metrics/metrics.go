// Package metrics owns the Prometheus registry and the counters LearnHub
// exports on /metrics.
//
// All recording methods accept a nil *Metrics so components can be built
// without instrumentation in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "learnhub"

// Metrics holds the registry and every collector registered on it.
type Metrics struct {
	Registry *prometheus.Registry

	RequestLatency     *prometheus.HistogramVec
	Uploads            *prometheus.CounterVec
	DuplicatesRejected *prometheus.CounterVec
	EnrollmentsCreated prometheus.Counter
	CatalogCache       *prometheus.CounterVec
	EventsPublished    *prometheus.CounterVec
}

// New builds a Metrics on a fresh registry, including Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by method, route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Upload attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		DuplicatesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_rejected_total",
			Help:      "Writes rejected by a unique index, by kind.",
		}, []string{"kind"}),
		EnrollmentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrollments_created_total",
			Help:      "Enrollments created.",
		}),
		CatalogCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_requests_total",
			Help:      "Catalog cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events published by subject and outcome.",
		}, []string{"subject", "outcome"}),
	}

	reg.MustRegister(
		m.RequestLatency,
		m.Uploads,
		m.DuplicatesRejected,
		m.EnrollmentsCreated,
		m.CatalogCache,
		m.EventsPublished,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware times every request. The route label is the chi pattern
// ("/api/courses/{id}") so ids do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestLatency.WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

// UploadAttempt matches the mediaupload observer signature.
func (m *Metrics) UploadAttempt(provider, outcome string) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(provider, outcome).Inc()
}

// DuplicateRejected counts a write refused by a unique index.
func (m *Metrics) DuplicateRejected(kind string) {
	if m == nil {
		return
	}
	m.DuplicatesRejected.WithLabelValues(kind).Inc()
}

func (m *Metrics) EnrollmentCreated() {
	if m == nil {
		return
	}
	m.EnrollmentsCreated.Inc()
}

// CacheResult counts a catalog cache lookup ("hit", "miss" or "error").
func (m *Metrics) CacheResult(result string) {
	if m == nil {
		return
	}
	m.CatalogCache.WithLabelValues(result).Inc()
}

// EventPublished counts a publish attempt.
func (m *Metrics) EventPublished(subject string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.EventsPublished.WithLabelValues(subject, outcome).Inc()
}
