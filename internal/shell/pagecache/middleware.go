package pagecache

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/artpar/yatube/internal/core/auth"
)

// Observer is notified about cache lookups.
type Observer interface {
	CacheHit(page string)
	CacheMiss(page string)
}

type nopObserver struct{}

func (nopObserver) CacheHit(string)  {}
func (nopObserver) CacheMiss(string) {}

// Middleware serves GET requests from the cache and stores successful
// responses for ttl. page labels the cached route in metrics.
type Middleware struct {
	cache    Cache
	ttl      time.Duration
	page     string
	observer Observer
	logger   *slog.Logger
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*Middleware)

// WithObserver reports hits and misses to o.
func WithObserver(o Observer) MiddlewareOption {
	return func(m *Middleware) {
		if o != nil {
			m.observer = o
		}
	}
}

// WithLogger sets the logger for cache backend failures.
func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(m *Middleware) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMiddleware creates a caching middleware for one page.
func NewMiddleware(cache Cache, page string, ttl time.Duration, opts ...MiddlewareOption) *Middleware {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Middleware{
		cache:    cache,
		ttl:      ttl,
		page:     page,
		observer: nopObserver{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Key returns the cache key for r. Rendered pages carry the viewer's
// navbar, so the key includes the user ID; anonymous viewers share user 0.
func Key(r *http.Request) string {
	viewer := auth.FromContext(r.Context()).UserID
	return r.Method + " " + r.URL.RequestURI() + " #" + strconv.FormatInt(viewer, 10)
}

// Handler wraps next with the cache.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		key := Key(r)

		entry, ok, err := m.cache.Get(ctx, key)
		if err != nil {
			m.logger.Warn("page cache lookup failed", "key", key, "error", err)
		}
		if ok {
			m.observer.CacheHit(m.page)
			if entry.ContentType != "" {
				w.Header().Set("Content-Type", entry.ContentType)
			}
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(entry.Status)
			w.Write(entry.Body)
			return
		}
		m.observer.CacheMiss(m.page)

		rec := &recorder{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Cache", "MISS")
		next.ServeHTTP(rec, r)

		if rec.status != http.StatusOK {
			return
		}
		stored := Entry{
			Status:      rec.status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        rec.body.Bytes(),
		}
		if err := m.cache.Set(ctx, key, stored, m.ttl); err != nil {
			m.logger.Warn("page cache store failed", "key", key, "error", err)
		}
	})
}

// recorder copies the response body while writing it through.
type recorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status = status
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
