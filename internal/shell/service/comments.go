package service

import (
	"context"

	"github.com/artpar/yatube/internal/core/auth"
	"github.com/artpar/yatube/internal/core/domain"
	"github.com/artpar/yatube/internal/core/validation"
)

// =============================================================================
// Comments
// =============================================================================

// Comments lists a post's comments, newest first.
func (s *Service) Comments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, notFound(err)
	}
	return s.store.ListCommentsByPost(ctx, postID)
}

// AddComment adds actor's comment to the post. The form is checked before
// the post is looked up, so an invalid comment on any post is a validation
// error.
func (s *Service) AddComment(ctx context.Context, actor auth.Context, postID int64, text string) (*domain.Comment, error) {
	if !auth.CanComment(actor) {
		return nil, ErrUnauthorized
	}
	clean, errs := validation.ValidateCommentForm(text)
	if errs != nil {
		return nil, errs
	}
	if _, err := s.store.GetPost(ctx, postID); err != nil {
		return nil, notFound(err)
	}
	return s.addComment(ctx, actor, postID, clean)
}

// CommentOnAuthoredPost adds a comment to the post by username with postID.
func (s *Service) CommentOnAuthoredPost(ctx context.Context, actor auth.Context, username string, postID int64, text string) (*domain.Comment, error) {
	if !auth.CanComment(actor) {
		return nil, ErrUnauthorized
	}
	clean, errs := validation.ValidateCommentForm(text)
	if errs != nil {
		return nil, errs
	}
	if _, err := s.authoredPost(ctx, username, postID); err != nil {
		return nil, err
	}
	return s.addComment(ctx, actor, postID, clean)
}

func (s *Service) addComment(ctx context.Context, actor auth.Context, postID int64, text string) (*domain.Comment, error) {
	comment, err := domain.NewComment(postID, actor.UserID, text)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, notFound(err)
	}
	comment.Author = domain.User{ID: actor.UserID, Username: actor.Username}

	s.recorder.CommentCreated()
	s.logger.Info("comment added", "comment_id", comment.ID, "post_id", postID, "author", actor.Username)
	return comment, nil
}
