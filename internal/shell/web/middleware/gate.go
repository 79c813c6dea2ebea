// Package middleware provides the access gates and request plumbing for
// the HTML site.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/artpar/yatube/internal/core/auth"
	"github.com/artpar/yatube/internal/core/domain"
)

// LoginPath is where anonymous users are sent to sign in.
const LoginPath = "/auth/login/"

// =============================================================================
// Login Gates
// =============================================================================

// LoginRequired redirects anonymous requests to the login page, carrying
// the requested path in ?next=.
func LoginRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.FromContext(r.Context()).Authenticated {
			http.Redirect(w, r, auth.LoginURL(LoginPath, r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginRequiredFor applies LoginRequired only when the request path is one
// of paths. Other paths pass through untouched.
func LoginRequiredFor(paths ...string) func(http.Handler) http.Handler {
	gated := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		gated[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		protected := LoginRequired(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := gated[r.URL.Path]; ok {
				protected.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// =============================================================================
// Author Gate
// =============================================================================

// PostLoader fetches a post by ID.
type PostLoader interface {
	Post(ctx context.Context, id int64) (*domain.Post, error)
}

// AuthorRequired lets a request through only when the signed-in user wrote
// the post named by the {post_id} URL parameter. Everyone else is sent to
// the post page at /{username}/{post_id}/.
func AuthorRequired(posts PostLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := chi.URLParam(r, "username")
			rawID := chi.URLParam(r, "post_id")
			detail := fmt.Sprintf("/%s/%s/", username, rawID)

			id, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil {
				http.NotFound(w, r)
				return
			}

			post, err := posts.Post(r.Context(), id)
			if err != nil || !auth.CanEditPost(auth.FromContext(r.Context()), *post) {
				http.Redirect(w, r, detail, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
