// Package middleware provides HTTP middleware for the JSON API.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/artpar/yatube/internal/core/auth"
	"github.com/artpar/yatube/internal/core/domain"
)

// =============================================================================
// Require Auth Middleware
// =============================================================================

// RequireAuth rejects anonymous requests with a 401 JSON error.
// The session middleware must run first so the auth context is populated.
func RequireAuth(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.FromContext(r.Context())

			if !ctx.Authenticated {
				logger.Warn("unauthenticated request to protected endpoint",
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
				)
				WriteError(w, http.StatusUnauthorized, "authentication required", "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireStaff rejects anonymous requests with 401 and non-staff users with 403.
func RequireStaff(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return RequireAuth(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.FromContext(r.Context())
			if !ctx.IsStaff {
				logger.Warn("non-staff request to staff endpoint",
					"user", ctx.Username,
					"path", r.URL.Path,
				)
				WriteError(w, http.StatusForbidden, "staff access required", "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// =============================================================================
// JSON Error Response
// =============================================================================

// ErrorResponse is the error body of every failed API call.
type ErrorResponse struct {
	Error  string                  `json:"error"`
	Code   string                  `json:"code"`
	Fields domain.ValidationErrors `json:"fields,omitempty"`
}

// WriteError writes an ErrorResponse with the given status.
func WriteError(w http.ResponseWriter, status int, message, code string) {
	WriteErrorResponse(w, status, ErrorResponse{Error: message, Code: code})
}

// WriteErrorResponse writes resp as JSON with the given status.
func WriteErrorResponse(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
