package auth

import (
	"testing"

	"github.com/artpar/yatube/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

var (
	author    = Context{UserID: 1, Username: "author", Authenticated: true}
	stranger  = Context{UserID: 2, Username: "stranger", Authenticated: true}
	staff     = Context{UserID: 3, Username: "admin", IsStaff: true, Authenticated: true}
	anonymous = Anonymous()
)

func TestCanEditPost(t *testing.T) {
	post := domain.Post{ID: 10, AuthorID: 1}

	assert.True(t, CanEditPost(author, post))
	assert.False(t, CanEditPost(stranger, post))
	assert.False(t, CanEditPost(anonymous, post))
}

func TestCanEditPost_AnonymousWithZeroAuthor(t *testing.T) {
	// A zero UserID on an anonymous context must never match.
	assert.False(t, CanEditPost(anonymous, domain.Post{AuthorID: 0}))
}

func TestCanDeletePost(t *testing.T) {
	post := domain.Post{ID: 10, AuthorID: 1}

	assert.True(t, CanDeletePost(author, post))
	assert.False(t, CanDeletePost(staff, post))
}

func TestCanComment(t *testing.T) {
	assert.True(t, CanComment(stranger))
	assert.False(t, CanComment(anonymous))
}

func TestCanFollow(t *testing.T) {
	writer := domain.User{ID: 1, Username: "author"}

	assert.True(t, CanFollow(stranger, writer))
	assert.False(t, CanFollow(author, writer))
	assert.False(t, CanFollow(anonymous, writer))
}

func TestIsSelf(t *testing.T) {
	assert.True(t, IsSelf(author, domain.User{ID: 1}))
	assert.False(t, IsSelf(stranger, domain.User{ID: 1}))
}

func TestStaffPermissions(t *testing.T) {
	assert.True(t, CanManageGroups(staff))
	assert.False(t, CanManageGroups(author))
	assert.True(t, CanClearCache(staff))
	assert.False(t, CanClearCache(anonymous))
}
