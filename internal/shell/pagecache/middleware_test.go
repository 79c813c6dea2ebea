package pagecache_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/artpar/yatube/internal/core/auth"
	"github.com/artpar/yatube/internal/shell/pagecache"
	"github.com/artpar/yatube/internal/shell/pagecache/mocks"
)

//go:generate mockgen -source=cache.go -destination=mocks/mocks.go -package=mocks Cache

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) CacheHit(string)  { o.hits++ }
func (o *countingObserver) CacheMiss(string) { o.misses++ }

func indexHandler(calls *int, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		io.WriteString(w, "posts")
	})
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMiddleware_MissStoresResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)
	obs := &countingObserver{}

	cache.EXPECT().Get(gomock.Any(), "GET /?page=2 #0").Return(pagecache.Entry{}, false, nil)
	cache.EXPECT().Set(gomock.Any(), "GET /?page=2 #0", pagecache.Entry{
		Status:      http.StatusOK,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte("posts"),
	}, 20*time.Second).Return(nil)

	calls := 0
	mw := pagecache.NewMiddleware(cache, "index", 20*time.Second, pagecache.WithObserver(obs))
	rec := httptest.NewRecorder()
	mw.Handler(indexHandler(&calls, http.StatusOK)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?page=2", nil))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "posts", rec.Body.String())
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, obs.misses)
}

func TestMiddleware_HitSkipsHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)
	obs := &countingObserver{}

	cache.EXPECT().Get(gomock.Any(), "GET / #0").Return(pagecache.Entry{
		Status:      http.StatusOK,
		ContentType: "text/html",
		Body:        []byte("cached posts"),
	}, true, nil)

	calls := 0
	mw := pagecache.NewMiddleware(cache, "index", time.Second, pagecache.WithObserver(obs))
	rec := httptest.NewRecorder()
	mw.Handler(indexHandler(&calls, http.StatusOK)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Zero(t, calls)
	assert.Equal(t, "cached posts", rec.Body.String())
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, obs.hits)
}

func TestMiddleware_NonOKNotStored(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)

	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pagecache.Entry{}, false, nil)
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	calls := 0
	mw := pagecache.NewMiddleware(cache, "index", time.Second)
	rec := httptest.NewRecorder()
	mw.Handler(indexHandler(&calls, http.StatusInternalServerError)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMiddleware_PostBypassesCache(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)

	calls := 0
	mw := pagecache.NewMiddleware(cache, "index", time.Second)
	rec := httptest.NewRecorder()
	mw.Handler(indexHandler(&calls, http.StatusOK)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, 1, calls)
}

func TestMiddleware_BackendErrorFallsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCache(ctrl)

	cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(pagecache.Entry{}, false, errors.New("connection refused"))
	cache.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	calls := 0
	mw := pagecache.NewMiddleware(cache, "index", time.Second, pagecache.WithLogger(quietLogger()))
	rec := httptest.NewRecorder()
	mw.Handler(indexHandler(&calls, http.StatusOK)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "posts", rec.Body.String())
}

func TestKey_SeparatesViewers(t *testing.T) {
	anon := httptest.NewRequest(http.MethodGet, "/?page=2", nil)
	leo := anon.WithContext(auth.WithContext(anon.Context(), auth.Context{UserID: 7, Username: "leo", Authenticated: true}))

	assert.Equal(t, "GET /?page=2 #0", pagecache.Key(anon))
	assert.Equal(t, "GET /?page=2 #7", pagecache.Key(leo))
}

func TestMiddleware_WithMemoryBackend(t *testing.T) {
	cache := pagecache.NewMemory(time.Hour)
	defer cache.Close()

	calls := 0
	h := pagecache.NewMiddleware(cache, "index", time.Minute).Handler(indexHandler(&calls, http.StatusOK))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, "posts", rec.Body.String())
	}
	assert.Equal(t, 1, calls)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?page=2", nil))
	assert.Equal(t, 2, calls)
}
