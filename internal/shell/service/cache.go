package service

import (
	"context"

	"github.com/artpar/yatube/internal/core/auth"
)

// ClearPageCache drops every cached listing page. Only staff may do this.
func (s *Service) ClearPageCache(ctx context.Context, actor auth.Context) error {
	if !actor.Authenticated {
		return ErrUnauthorized
	}
	if !auth.CanClearCache(actor) {
		return ErrForbidden
	}
	if s.pages == nil {
		return ErrUnavailable
	}
	if err := s.pages.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("page cache cleared", "by", actor.Username)
	return nil
}
