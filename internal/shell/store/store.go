package store

import (
	"context"

	"github.com/artpar/yatube/internal/core/domain"
)

// =============================================================================
// Store Interface
// =============================================================================

// Store defines the persistence interface for yatube entities.
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
	UpdateUserAvatar(ctx context.Context, id int64, avatar string) error
	SetUserStaff(ctx context.Context, id int64, staff bool) error
	DeleteUser(ctx context.Context, id int64) error
	GetAuthorProfile(ctx context.Context, username string) (*domain.AuthorProfile, error)

	// Group operations
	CreateGroup(ctx context.Context, group *domain.Group) error
	GetGroup(ctx context.Context, id int64) (*domain.Group, error)
	GetGroupBySlug(ctx context.Context, slug string) (*domain.Group, error)
	UpdateGroup(ctx context.Context, group *domain.Group) error
	DeleteGroup(ctx context.Context, id int64) error
	ListGroups(ctx context.Context) ([]domain.Group, error)

	// Post operations
	CreatePost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	UpdatePost(ctx context.Context, post *domain.Post) error
	DeletePost(ctx context.Context, id int64) error
	CountPosts(ctx context.Context, filter PostFilter) (int, error)
	ListPosts(ctx context.Context, filter PostFilter, opts ListOptions) ([]domain.Post, error)

	// Comment operations
	CreateComment(ctx context.Context, comment *domain.Comment) error
	ListCommentsByPost(ctx context.Context, postID int64) ([]domain.Comment, error)

	// Follow operations
	CreateFollow(ctx context.Context, follow *domain.Follow) error
	DeleteFollow(ctx context.Context, userID, authorID int64) error
	IsFollowing(ctx context.Context, userID, authorID int64) (bool, error)

	// Transaction support
	WithTx(ctx context.Context, fn func(Store) error) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// =============================================================================
// Options
// =============================================================================

// ListOptions defines pagination options.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultListOptions returns default list options.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  domain.DefaultPageSize,
		Offset: 0,
	}
}

// Normalize ensures list options have valid values.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = domain.DefaultPageSize
	}
	if o.Limit > 1000 {
		o.Limit = 1000
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// PageOptions converts a resolved page into list options.
func PageOptions(page domain.Page) ListOptions {
	return ListOptions{Limit: page.Limit(), Offset: page.Offset()}
}

// PostFilter narrows a post listing. Zero value lists every post.
type PostFilter struct {
	// GroupSlug restricts to posts in the group.
	GroupSlug string

	// AuthorUsername restricts to posts by the author.
	AuthorUsername string

	// FollowerID restricts to posts by authors this user follows.
	FollowerID int64
}
