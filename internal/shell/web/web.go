// Package web serves the server-rendered yatube site.
package web

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/artpar/yatube/internal/core/auth"
	"github.com/artpar/yatube/internal/shell/pagecache"
	"github.com/artpar/yatube/internal/shell/service"
	"github.com/artpar/yatube/internal/shell/session"
	"github.com/artpar/yatube/internal/shell/web/middleware"
)

// =============================================================================
// Handler
// =============================================================================

// Config wires the site handler.
type Config struct {
	Service  *service.Service
	Sessions *session.Manager

	// IndexCache caches the index page when set.
	IndexCache *pagecache.Middleware

	// Throttle limits failed logins when set.
	Throttle *middleware.LoginThrottle

	// MaxUploadBytes bounds multipart form bodies.
	MaxUploadBytes int64

	Logger *slog.Logger
}

// Handler provides the HTML pages.
type Handler struct {
	svc        *service.Service
	sessions   *session.Manager
	indexCache *pagecache.Middleware
	throttle   *middleware.LoginThrottle
	templates  *Templates
	maxUpload  int64
	logger     *slog.Logger
}

// New creates the site handler and parses its templates.
func New(cfg Config) (*Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5 << 20
	}
	return &Handler{
		svc:        cfg.Service,
		sessions:   cfg.Sessions,
		indexCache: cfg.IndexCache,
		throttle:   cfg.Throttle,
		templates:  templates,
		maxUpload:  cfg.MaxUploadBytes,
		logger:     cfg.Logger,
	}, nil
}

// Routes returns the site router. It expects the session middleware to run
// before it.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.recoverer)
	r.NotFound(h.notFound)

	listing := middleware.LoginRequiredFor("/follow/")(http.HandlerFunc(h.handlePostList))
	index := listing
	if h.indexCache != nil {
		index = h.indexCache.Handler(listing)
	}

	r.Method(http.MethodGet, "/", index)
	r.Method(http.MethodGet, "/follow/", listing)
	r.Method(http.MethodGet, "/group/{slug}/", listing)

	r.Get("/about/author/", h.handleAboutAuthor)
	r.Get("/about/tech/", h.handleAboutTech)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/signup/", h.handleSignupForm)
		r.Post("/signup/", h.handleSignup)
		r.Get("/login/", h.handleLoginForm)
		r.Post("/login/", h.handleLogin)
		r.HandleFunc("/logout/", h.handleLogout)
		r.Group(func(r chi.Router) {
			r.Use(middleware.LoginRequired)
			r.Get("/password_change/", h.handlePasswordChangeForm)
			r.Post("/password_change/", h.handlePasswordChange)
			r.Get("/password_change/done/", h.handlePasswordChangeDone)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoginRequired)
		r.Get("/new/", h.handleNewPostForm)
		r.Post("/new/", h.handleNewPost)
		r.Get("/{username}/follow/", h.handleFollow)
		r.Get("/{username}/unfollow/", h.handleUnfollow)
		r.Post("/{username}/{post_id}/comment", h.handleAddComment)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthorRequired(h.svc))
			r.Get("/{username}/{post_id}/edit/", h.handleEditPostForm)
			r.Post("/{username}/{post_id}/edit/", h.handleEditPost)
		})
	})

	r.Method(http.MethodGet, "/{username}/", listing)
	r.Get("/{username}/{post_id}/", h.handlePostDetail)

	return r
}

// =============================================================================
// Rendering
// =============================================================================

// layout carries the values every page template uses.
type layout struct {
	Auth auth.Context
	Path string
	Year int
}

func (h *Handler) layout(r *http.Request) layout {
	return layout{
		Auth: auth.FromContext(r.Context()),
		Path: r.URL.Path,
		Year: time.Now().Year(),
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := h.templates.Render(w, status, name, data); err != nil {
		h.logger.Error("failed to render template", "template", name, "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// =============================================================================
// Error Pages
// =============================================================================

type pageView struct {
	layout
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, tmplNotFound, pageView{layout: h.layout(r)})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	h.render(w, r, http.StatusInternalServerError, tmplServerError, pageView{layout: h.layout(r)})
}

// serviceError renders the page matching a service failure.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch service.HTTPStatus(err) {
	case http.StatusNotFound:
		h.notFound(w, r)
	case http.StatusUnauthorized:
		http.Redirect(w, r, auth.LoginURL(middleware.LoginPath, r.URL.RequestURI()), http.StatusFound)
	case http.StatusForbidden:
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	default:
		h.serverError(w, r, err)
	}
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.logger.Error("panic serving request", "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				h.render(w, r, http.StatusInternalServerError, tmplServerError, pageView{layout: h.layout(r)})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Helpers
// =============================================================================

// postID parses the {post_id} URL parameter.
func postID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "post_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid post id")
	}
	return id, nil
}
