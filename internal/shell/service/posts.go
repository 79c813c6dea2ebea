package service

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/artpar/yatube/internal/core/auth"
	"github.com/artpar/yatube/internal/core/domain"
	"github.com/artpar/yatube/internal/core/validation"
	"github.com/artpar/yatube/internal/shell/media"
	"github.com/artpar/yatube/internal/shell/store"
)

// =============================================================================
// Views
// =============================================================================

// PostPage is one page of a post listing.
type PostPage struct {
	Posts []domain.Post
	Page  domain.Page
}

// ProfileView is an author's page.
type ProfileView struct {
	Author    domain.AuthorProfile
	Following bool
	PostPage
}

// PostView is a single post with its author's profile.
type PostView struct {
	Post      domain.Post
	Author    domain.AuthorProfile
	Following bool
}

// =============================================================================
// Listings
// =============================================================================

// listPosts counts, resolves the requested page and fetches it.
func (s *Service) listPosts(ctx context.Context, filter store.PostFilter, rawPage string) (*PostPage, error) {
	count, err := s.store.CountPosts(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := domain.NewPaginator(count, s.pageSize).Page(rawPage)
	posts, err := s.store.ListPosts(ctx, filter, store.PageOptions(page))
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Page: page}, nil
}

// IndexPosts lists every post.
func (s *Service) IndexPosts(ctx context.Context, rawPage string) (*PostPage, error) {
	return s.listPosts(ctx, store.PostFilter{}, rawPage)
}

// GroupPosts lists the posts of the group with slug.
func (s *Service) GroupPosts(ctx context.Context, slug, rawPage string) (*domain.Group, *PostPage, error) {
	group, err := s.Group(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	page, err := s.listPosts(ctx, store.PostFilter{GroupSlug: slug}, rawPage)
	if err != nil {
		return nil, nil, err
	}
	return group, page, nil
}

// FollowFeed lists posts by the authors actor follows.
func (s *Service) FollowFeed(ctx context.Context, actor auth.Context, rawPage string) (*PostPage, error) {
	if !actor.Authenticated {
		return nil, ErrUnauthorized
	}
	return s.listPosts(ctx, store.PostFilter{FollowerID: actor.UserID}, rawPage)
}

// Profile returns an author's counters, their posts and whether actor follows them.
func (s *Service) Profile(ctx context.Context, actor auth.Context, username, rawPage string) (*ProfileView, error) {
	profile, err := s.store.GetAuthorProfile(ctx, username)
	if err != nil {
		return nil, notFound(err)
	}

	view := &ProfileView{Author: *profile}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.listPosts(gctx, store.PostFilter{AuthorUsername: username}, rawPage)
		if err != nil {
			return err
		}
		view.PostPage = *page
		return nil
	})
	g.Go(func() error {
		following, err := s.store.IsFollowing(gctx, actor.UserID, profile.ID)
		view.Following = following
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// PostDetail returns the post with ID postID, which must be by username.
func (s *Service) PostDetail(ctx context.Context, actor auth.Context, username string, postID int64) (*PostView, error) {
	post, err := s.authoredPost(ctx, username, postID)
	if err != nil {
		return nil, err
	}

	view := &PostView{Post: *post}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profile, err := s.store.GetAuthorProfile(gctx, username)
		if err != nil {
			return notFound(err)
		}
		view.Author = *profile
		return nil
	})
	g.Go(func() error {
		following, err := s.store.IsFollowing(gctx, actor.UserID, post.AuthorID)
		view.Following = following
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// Post returns a post by ID with author, group and comments.
func (s *Service) Post(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.store.GetPost(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return post, nil
}

// authoredPost loads a post and checks that username wrote it.
func (s *Service) authoredPost(ctx context.Context, username string, postID int64) (*domain.Post, error) {
	post, err := s.Post(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Author.Username != username {
		return nil, ErrNotFound
	}
	return post, nil
}

// =============================================================================
// Writing
// =============================================================================

// PostInput is a post create or edit submission.
type PostInput struct {
	Text string

	// Group is the raw group ID; empty means no group.
	Group string

	// Image replaces the post image when set.
	Image io.Reader

	// ClearImage removes the current image.
	ClearImage bool
}

// CreatePost publishes a post by actor.
func (s *Service) CreatePost(ctx context.Context, actor auth.Context, in PostInput) (*domain.Post, error) {
	if !actor.Authenticated {
		return nil, ErrUnauthorized
	}

	form, err := s.validatePost(ctx, in)
	if err != nil {
		return nil, err
	}

	post, err := domain.NewPost(actor.UserID, form.Text, form.GroupID)
	if err != nil {
		return nil, err
	}
	if in.Image != nil {
		if post.Image, err = s.saveImage(in.Image); err != nil {
			return nil, err
		}
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		s.dropImage(post.Image)
		return nil, err
	}

	s.recorder.PostCreated()
	s.logger.Info("post created", "post_id", post.ID, "author", actor.Username)
	return s.Post(ctx, post.ID)
}

// UpdatePost edits a post. Only its author may do this.
func (s *Service) UpdatePost(ctx context.Context, actor auth.Context, postID int64, in PostInput) (*domain.Post, error) {
	post, err := s.editablePost(ctx, actor, postID, auth.CanEditPost)
	if err != nil {
		return nil, err
	}

	form, err := s.validatePost(ctx, in)
	if err != nil {
		return nil, err
	}

	oldImage := post.Image
	post.Text = form.Text
	post.GroupID = form.GroupID
	switch {
	case in.Image != nil:
		if post.Image, err = s.saveImage(in.Image); err != nil {
			return nil, err
		}
	case in.ClearImage:
		post.Image = ""
	}

	if err := s.store.UpdatePost(ctx, post); err != nil {
		if post.Image != oldImage {
			s.dropImage(post.Image)
		}
		return nil, notFound(err)
	}
	if post.Image != oldImage {
		s.dropImage(oldImage)
	}

	s.logger.Info("post updated", "post_id", post.ID, "author", actor.Username)
	return s.Post(ctx, post.ID)
}

// DeletePost removes a post. Only its author may do this.
func (s *Service) DeletePost(ctx context.Context, actor auth.Context, postID int64) error {
	post, err := s.editablePost(ctx, actor, postID, auth.CanDeletePost)
	if err != nil {
		return err
	}
	if err := s.store.DeletePost(ctx, post.ID); err != nil {
		return notFound(err)
	}
	s.dropImage(post.Image)

	s.logger.Info("post deleted", "post_id", post.ID, "author", actor.Username)
	return nil
}

func (s *Service) editablePost(ctx context.Context, actor auth.Context, postID int64, allowed func(auth.Context, domain.Post) bool) (*domain.Post, error) {
	if !actor.Authenticated {
		return nil, ErrUnauthorized
	}
	post, err := s.Post(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !allowed(actor, *post) {
		return nil, ErrForbidden
	}
	return post, nil
}

func (s *Service) validatePost(ctx context.Context, in PostInput) (validation.PostForm, error) {
	form, errs := validation.ValidatePostForm(in.Text, in.Group)
	if errs == nil {
		errs = domain.ValidationErrors{}
	}
	if form.GroupID != nil {
		if _, err := s.store.GetGroup(ctx, *form.GroupID); err != nil {
			if !store.IsNotFound(err) {
				return form, err
			}
			errs.Add("group", "select a valid choice")
		}
	}
	if err := errs.Err(); err != nil {
		return form, err
	}
	return form, nil
}

func (s *Service) saveImage(r io.Reader) (string, error) {
	if s.media == nil {
		return "", ErrUnavailable
	}
	name, err := s.media.Save(media.DirPosts, r)
	if err != nil {
		return "", imageError("image", err)
	}
	return name, nil
}

func (s *Service) dropImage(name string) {
	if name == "" || s.media == nil {
		return
	}
	if err := s.media.Delete(name); err != nil {
		s.logger.Warn("failed to delete image", "image", name, "error", err)
	}
}
