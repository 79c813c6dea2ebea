package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/artpar/yatube/internal/core/auth"
	"github.com/artpar/yatube/internal/core/domain"
)

// UserLoader resolves the user a session token was issued to.
type UserLoader interface {
	User(ctx context.Context, id int64) (*domain.User, error)
}

// Middleware installs an auth.Context for every request. Requests without
// a valid token, whose user no longer exists, or whose password changed
// since the token was issued proceed anonymously and have a stale cookie
// cleared.
func (m *Manager) Middleware(users UserLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := m.TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			authCtx, ok := m.resolve(r.Context(), token, users, logger)
			if !ok {
				if fromCookie {
					m.ClearCookie(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithContext(r.Context(), authCtx)))
		})
	}
}

func (m *Manager) resolve(ctx context.Context, token string, users UserLoader, logger *slog.Logger) (auth.Context, bool) {
	claims, err := m.Parse(token)
	if err != nil {
		logger.Debug("rejected session token", "error", err)
		return auth.Anonymous(), false
	}

	user, err := users.User(ctx, claims.UserID)
	if err != nil {
		logger.Debug("session user not loaded", "user_id", claims.UserID, "error", err)
		return auth.Anonymous(), false
	}
	if !m.Matches(claims, *user) {
		logger.Debug("session predates password change", "user_id", user.ID)
		return auth.Anonymous(), false
	}

	return auth.Context{
		UserID:        user.ID,
		Username:      user.Username,
		IsStaff:       user.IsStaff,
		Authenticated: true,
	}, true
}

// Login issues a token for user and sets the session cookie.
func (m *Manager) Login(w http.ResponseWriter, user domain.User) error {
	token, expires, err := m.Issue(user)
	if err != nil {
		return err
	}
	m.SetCookie(w, token, expires)
	return nil
}
