package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.PostCreated()
	a.PostCreated()
	b.PostCreated()

	assert.Equal(t, 2.0, testutil.ToFloat64(a.PostsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.PostsCreated))
}

func TestCacheObserver(t *testing.T) {
	m := New()
	m.CacheHit("index")
	m.CacheHit("index")
	m.CacheMiss("index")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PageCacheHits.WithLabelValues("index")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageCacheMisses.WithLabelValues("index")))
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/{username}/{post_id}/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, path := range []string{"/leo/1/", "/ann/2/"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/{username}/{post_id}/", "404")))
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.CommentCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "yatube_comments_created_total 1"))
}
