// Package session issues and verifies signed session tokens and hashes
// account passwords.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/artpar/yatube/internal/core/auth"
	"github.com/artpar/yatube/internal/core/domain"
)

var (
	// ErrInvalidToken is returned for malformed or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid session token")

	// ErrExpiredToken is returned once a token is past its expiry.
	ErrExpiredToken = errors.New("session token expired")

	// ErrNoSecret is returned when the manager is built without a signing key.
	ErrNoSecret = errors.New("session secret is required")
)

const issuer = "yatube"

// =============================================================================
// Claims
// =============================================================================

// Claims is the payload of a session token.
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"usr"`
	IsStaff  bool   `json:"stf,omitempty"`

	// Credential is a keyed digest of the password hash at issue time.
	// Changing the password invalidates every token issued before.
	Credential string `json:"crd"`
	jwt.RegisteredClaims
}

// AuthContext converts verified claims into a request auth context.
func (c *Claims) AuthContext() auth.Context {
	return auth.Context{
		UserID:        c.UserID,
		Username:      c.Username,
		IsStaff:       c.IsStaff,
		Authenticated: true,
	}
}

// =============================================================================
// Manager
// =============================================================================

// Config holds session settings.
type Config struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Manager signs session tokens with HS256 and carries them in a cookie.
type Manager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
}

// NewManager creates a session manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, ErrNoSecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 14 * 24 * time.Hour
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "yatube_session"
	}
	return &Manager{
		secret:     []byte(cfg.Secret),
		ttl:        cfg.TTL,
		cookieName: cfg.CookieName,
		secure:     cfg.Secure,
		now:        time.Now,
	}, nil
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// Issue signs a token for user and returns it with its expiry.
func (m *Manager) Issue(user domain.User) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := Claims{
		UserID:     user.ID,
		Username:   user.Username,
		IsStaff:    user.IsStaff,
		Credential: m.credential(user.PasswordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies a token and returns its claims.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Matches reports whether claims were issued for user's current password.
func (m *Manager) Matches(claims *Claims, user domain.User) bool {
	return hmac.Equal([]byte(claims.Credential), []byte(m.credential(user.PasswordHash)))
}

func (m *Manager) credential(passwordHash string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte("yatube.session.credential:"))
	mac.Write([]byte(passwordHash))
	return hex.EncodeToString(mac.Sum(nil)[:16])
}

// =============================================================================
// Cookie Transport
// =============================================================================

// SetCookie stores token in the session cookie.
func (m *Manager) SetCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest returns the session token from the cookie, falling back
// to an Authorization bearer token for API clients.
func (m *Manager) TokenFromRequest(r *http.Request) (token string, fromCookie bool) {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return auth.BearerToken(r.Header), false
}
