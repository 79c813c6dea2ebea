package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginThrottle limits failed sign-in attempts per client address. Only
// failures spend tokens; a successful sign-in resets the client.
type LoginThrottle struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// NewLoginThrottle allows perMinute failures per minute with the given burst.
func NewLoginThrottle(perMinute, burst int) *LoginThrottle {
	if perMinute <= 0 {
		perMinute = 5
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &LoginThrottle{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
	}
}

func (t *LoginThrottle) limiter(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limiters[key]
	if !ok {
		l = rate.NewLimiter(t.rate, t.burst)
		t.limiters[key] = l
	}
	return l
}

// Blocked reports whether key has no attempts left.
func (t *LoginThrottle) Blocked(key string) bool {
	return t.limiter(key).Tokens() < 1
}

// Fail records a failed attempt for key.
func (t *LoginThrottle) Fail(key string) {
	t.limiter(key).Allow()
}

// Reset forgets key after a successful sign-in.
func (t *LoginThrottle) Reset(key string) {
	t.mu.Lock()
	delete(t.limiters, key)
	t.mu.Unlock()
}

// Cleanup drops every limiter once the table grows past max entries.
func (t *LoginThrottle) Cleanup(max int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.limiters) > max {
		t.limiters = make(map[string]*rate.Limiter)
	}
}

// ClientKey identifies the client of r by remote address without port.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
