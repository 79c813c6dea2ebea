// Package metrics exposes Prometheus metrics for yatube.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	PageCacheHits   *prometheus.CounterVec
	PageCacheMisses *prometheus.CounterVec
	PostsCreated    prometheus.Counter
	CommentsCreated prometheus.Counter
	FollowsCreated  prometheus.Counter
	UsersCreated    prometheus.Counter
}

// New creates and registers all metrics on a fresh registry that also
// carries the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "yatube_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "yatube_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PageCacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "yatube_page_cache_hits_total",
			Help: "Page cache hits by page",
		}, []string{"page"}),
		PageCacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "yatube_page_cache_misses_total",
			Help: "Page cache misses by page",
		}, []string{"page"}),
		PostsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "yatube_posts_created_total",
			Help: "Total number of posts published",
		}),
		CommentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "yatube_comments_created_total",
			Help: "Total number of comments written",
		}),
		FollowsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "yatube_follows_created_total",
			Help: "Total number of follow subscriptions",
		}),
		UsersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "yatube_users_created_total",
			Help: "Total number of registered users",
		}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CacheHit implements pagecache.Observer.
func (m *Metrics) CacheHit(page string) {
	m.PageCacheHits.WithLabelValues(page).Inc()
}

// CacheMiss implements pagecache.Observer.
func (m *Metrics) CacheMiss(page string) {
	m.PageCacheMisses.WithLabelValues(page).Inc()
}

// PostCreated implements service.Recorder.
func (m *Metrics) PostCreated() { m.PostsCreated.Inc() }

// CommentCreated implements service.Recorder.
func (m *Metrics) CommentCreated() { m.CommentsCreated.Inc() }

// FollowCreated implements service.Recorder.
func (m *Metrics) FollowCreated() { m.FollowsCreated.Inc() }

// UserCreated implements service.Recorder.
func (m *Metrics) UserCreated() { m.UsersCreated.Inc() }

// =============================================================================
// HTTP Middleware
// =============================================================================

// Middleware records request counts and latency labelled by chi route
// pattern, so that path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
