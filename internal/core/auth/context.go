// Package auth provides the request authentication context and the pure
// authorization rules for posts, follows and groups.
package auth

import (
	"context"
	"net/url"
	"strings"
)

// =============================================================================
// Context Key
// =============================================================================

type contextKey string

const authContextKey contextKey = "auth"

// =============================================================================
// Types
// =============================================================================

// Context represents who is making a request.
// It is built by the session middleware and stored in the request context.
type Context struct {
	// UserID is the users table primary key.
	UserID int64

	// Username is the author handle used in URLs.
	Username string

	// IsStaff marks site administrators (group management, cache control).
	IsStaff bool

	// Authenticated indicates whether the request carries a valid session.
	Authenticated bool
}

// Anonymous returns an unauthenticated context.
func Anonymous() Context {
	return Context{Authenticated: false}
}

// =============================================================================
// Header Extraction
// =============================================================================

// HeaderAuthorization carries "Bearer <token>" for API clients.
const HeaderAuthorization = "Authorization"

// HeaderGetter is an interface for getting header values.
// This allows testing without requiring an http.Request.
type HeaderGetter interface {
	Get(key string) string
}

// BearerToken returns the token from an "Authorization: Bearer" header, or "".
func BearerToken(headers HeaderGetter) string {
	value := headers.Get(HeaderAuthorization)
	const prefix = "Bearer "
	if len(value) <= len(prefix) || !strings.EqualFold(value[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(value[len(prefix):])
}

// MapHeaderGetter wraps a map to implement HeaderGetter interface.
type MapHeaderGetter map[string]string

func (m MapHeaderGetter) Get(key string) string {
	return m[key]
}

// =============================================================================
// Redirect Helpers
// =============================================================================

// LoginURL builds the login redirect target carrying the originally requested path.
//
// Example:
//
//	LoginURL("/auth/login/", "/new/") // returns "/auth/login/?next=/new/"
func LoginURL(loginPath, next string) string {
	if next == "" {
		return loginPath
	}
	return loginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// SafeRedirect returns next when it is a local absolute path, otherwise fallback.
// Protocol-relative ("//host") and absolute URLs are rejected.
func SafeRedirect(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return next
}

// =============================================================================
// Context Storage
// =============================================================================

// WithContext stores the auth context in the request context.
func WithContext(ctx context.Context, authCtx Context) context.Context {
	return context.WithValue(ctx, authContextKey, authCtx)
}

// FromContext retrieves the auth context from the request context.
// If no auth context is found, returns an unauthenticated context.
func FromContext(ctx context.Context) Context {
	if authCtx, ok := ctx.Value(authContextKey).(Context); ok {
		return authCtx
	}
	return Anonymous()
}
