// Package pagecache caches whole rendered responses for listing pages.
package pagecache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// DefaultTTL is how long a cached page is served before it is rebuilt.
const DefaultTTL = 20 * time.Second

// ErrUnknownBackend is returned by New for unsupported backends.
var ErrUnknownBackend = errors.New("unknown page cache backend")

// Entry is a stored response.
type Entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Cache stores rendered pages by key.
type Cache interface {
	// Get returns the entry for key. ok is false on a miss.
	Get(ctx context.Context, key string) (entry Entry, ok bool, err error)

	// Set stores entry for ttl.
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error

	// Clear drops every cached page.
	Clear(ctx context.Context) error

	// Close releases background resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend  string
	RedisURL string
}

// New builds the configured cache backend.
func New(ctx context.Context, cfg Config) (Cache, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(time.Minute), nil
	case BackendRedis:
		return DialRedis(ctx, cfg.RedisURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
