// Package service implements yatube's use cases on top of the store. The
// HTML site and the JSON API both call into it.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/artpar/yatube/internal/core/domain"
	"github.com/artpar/yatube/internal/shell/media"
	"github.com/artpar/yatube/internal/shell/pagecache"
	"github.com/artpar/yatube/internal/shell/store"
)

// Recorder counts created content.
type Recorder interface {
	PostCreated()
	CommentCreated()
	FollowCreated()
	UserCreated()
}

type nopRecorder struct{}

func (nopRecorder) PostCreated()    {}
func (nopRecorder) CommentCreated() {}
func (nopRecorder) FollowCreated()  {}
func (nopRecorder) UserCreated()    {}

// Service holds the dependencies shared by all use cases.
type Service struct {
	store    store.Store
	media    *media.Storage
	pages    pagecache.Cache
	recorder Recorder
	logger   *slog.Logger
	pageSize int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMedia enables image and avatar uploads.
func WithMedia(m *media.Storage) Option {
	return func(s *Service) {
		s.media = m
	}
}

// WithPageCache lets staff clear the cached listing pages.
func WithPageCache(c pagecache.Cache) Option {
	return func(s *Service) {
		s.pages = c
	}
}

// WithRecorder reports created content to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithPageSize sets the number of posts per listing page.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// New creates a Service.
func New(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:    st,
		recorder: nopRecorder{},
		logger:   slog.Default(),
		pageSize: domain.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PageSize returns the listing page size.
func (s *Service) PageSize() int {
	return s.pageSize
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
