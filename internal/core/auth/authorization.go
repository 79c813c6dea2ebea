package auth

import (
	"github.com/artpar/yatube/internal/core/domain"
)

// =============================================================================
// Post Authorization
// =============================================================================

// CanEditPost checks if the user can edit a post.
// Only the author can edit their posts.
func CanEditPost(ctx Context, post domain.Post) bool {
	return ctx.Authenticated && ctx.UserID == post.AuthorID
}

// CanDeletePost checks if the user can delete a post.
// Only the author can delete their posts.
func CanDeletePost(ctx Context, post domain.Post) bool {
	return ctx.Authenticated && ctx.UserID == post.AuthorID
}

// CanComment checks if the user can comment. Any signed-in user may.
func CanComment(ctx Context) bool {
	return ctx.Authenticated
}

// =============================================================================
// Follow Authorization
// =============================================================================

// CanFollow checks if the user may subscribe to author.
// Anonymous users cannot follow and nobody can follow themselves.
func CanFollow(ctx Context, author domain.User) bool {
	return ctx.Authenticated && ctx.UserID != author.ID
}

// IsSelf reports whether the request user is the given user.
func IsSelf(ctx Context, user domain.User) bool {
	return ctx.Authenticated && ctx.UserID == user.ID
}

// =============================================================================
// Staff Authorization
// =============================================================================

// CanManageGroups checks if the user can create groups.
func CanManageGroups(ctx Context) bool {
	return ctx.Authenticated && ctx.IsStaff
}

// CanClearCache checks if the user can clear the page cache.
func CanClearCache(ctx Context) bool {
	return ctx.Authenticated && ctx.IsStaff
}
