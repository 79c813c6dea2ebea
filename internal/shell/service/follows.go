package service

import (
	"context"

	"github.com/artpar/yatube/internal/core/auth"
	"github.com/artpar/yatube/internal/core/domain"
	"github.com/artpar/yatube/internal/shell/store"
)

// =============================================================================
// Follows
// =============================================================================

// Follow subscribes actor to username's posts. It reports whether a new
// subscription was made; following twice is not an error.
func (s *Service) Follow(ctx context.Context, actor auth.Context, username string) (bool, error) {
	if !actor.Authenticated {
		return false, ErrUnauthorized
	}
	author, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return false, notFound(err)
	}
	if !auth.CanFollow(actor, *author) {
		return false, domain.ErrSelfFollow
	}

	follow, err := domain.NewFollow(actor.UserID, author.ID)
	if err != nil {
		return false, err
	}
	if err := s.store.CreateFollow(ctx, follow); err != nil {
		if store.IsDuplicate(err) {
			return false, nil
		}
		return false, err
	}

	s.recorder.FollowCreated()
	s.logger.Info("follow created", "user", actor.Username, "author", author.Username)
	return true, nil
}

// Unfollow removes actor's subscription to username, if any.
func (s *Service) Unfollow(ctx context.Context, actor auth.Context, username string) error {
	if !actor.Authenticated {
		return ErrUnauthorized
	}
	author, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return notFound(err)
	}
	return s.store.DeleteFollow(ctx, actor.UserID, author.ID)
}
