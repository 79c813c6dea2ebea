//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/artpar/yatube/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupPostgresStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("yatube"),
		tcpostgres.WithUsername("yatube"),
		tcpostgres.WithPassword("yatube"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := Open(DriverPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestPostgres_RoundTrip(t *testing.T) {
	s := setupPostgresStore(t)
	ctx := context.Background()

	leo := createTestUser(t, s, "leo")
	ann := createTestUser(t, s, "ann")
	cats := createTestGroup(t, s, "cats")
	post := createTestPost(t, s, leo, cats, "first")
	createTestPost(t, s, ann, nil, "second")

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "leo", got.Author.Username)
	require.NotNil(t, got.Group)
	assert.Equal(t, "cats", got.Group.Slug)

	count, err := s.CountPosts(ctx, PostFilter{GroupSlug: "cats"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	posts, err := s.ListPosts(ctx, PostFilter{}, DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "second", posts[0].Text)
}

func TestPostgres_ErrorClassification(t *testing.T) {
	s := setupPostgresStore(t)
	ctx := context.Background()

	leo := createTestUser(t, s, "leo")
	ann := createTestUser(t, s, "ann")

	dup, err := s.GetUser(ctx, leo.ID)
	require.NoError(t, err)
	dup.ID = 0
	assert.ErrorIs(t, s.CreateUser(ctx, dup), ErrDuplicate)

	require.NoError(t, s.CreateFollow(ctx, mustFollow(t, ann.ID, leo.ID)))
	assert.ErrorIs(t, s.CreateFollow(ctx, mustFollow(t, ann.ID, leo.ID)), ErrDuplicate)

	following, err := s.IsFollowing(ctx, ann.ID, leo.ID)
	require.NoError(t, err)
	assert.True(t, following)

	require.NoError(t, s.DeleteUser(ctx, leo.ID))
	following, err = s.IsFollowing(ctx, ann.ID, leo.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func mustFollow(t *testing.T, userID, authorID int64) *domain.Follow {
	t.Helper()
	f, err := domain.NewFollow(userID, authorID)
	require.NoError(t, err)
	return f
}
