package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/yatube/internal/core/domain"
)

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func createTestUser(t *testing.T, store Store, username string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(username, username+"@example.com", "Test", "User")
	require.NoError(t, err)
	user.PasswordHash = "hash"
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func createTestGroup(t *testing.T, store Store, slug string) *domain.Group {
	t.Helper()
	group, err := domain.NewGroup("Group "+slug, slug, "about "+slug)
	require.NoError(t, err)
	require.NoError(t, store.CreateGroup(context.Background(), group))
	return group
}

func createTestPost(t *testing.T, store Store, author *domain.User, group *domain.Group, text string) *domain.Post {
	t.Helper()
	var groupID *int64
	if group != nil {
		groupID = &group.ID
	}
	post, err := domain.NewPost(author.ID, text, groupID)
	require.NoError(t, err)
	require.NoError(t, store.CreatePost(context.Background(), post))
	return post
}

// =============================================================================
// Open Tests
// =============================================================================

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestOpen_MigrationsAreIdempotent(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, runMigrations(store.db.DB, DriverSQLite))
	assert.NoError(t, store.Ping(context.Background()))
	assert.Equal(t, DriverSQLite, store.Driver())
}

// =============================================================================
// User Tests
// =============================================================================

func TestCreateUser_AssignsID(t *testing.T) {
	store := setupTestStore(t)
	user := createTestUser(t, store, "leo")

	assert.NotZero(t, user.ID)

	got, err := store.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "leo", got.Username)
	assert.Equal(t, "leo@example.com", got.Email)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.False(t, got.IsStaff)
	assert.WithinDuration(t, user.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	store := setupTestStore(t)
	createTestUser(t, store, "leo")

	dup, err := domain.NewUser("leo", "", "", "")
	require.NoError(t, err)
	err = store.CreateUser(context.Background(), dup)

	assert.True(t, IsDuplicate(err))
}

func TestGetUserByUsername_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetUserByUsername(context.Background(), "ghost")

	assert.True(t, IsNotFound(err))
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "ghost", storeErr.ID)
}

func TestUpdateUser_Fields(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "leo")

	require.NoError(t, store.UpdateUserPassword(ctx, user.ID, "new-hash"))
	require.NoError(t, store.UpdateUserAvatar(ctx, user.ID, "avatars/leo.png"))
	require.NoError(t, store.SetUserStaff(ctx, user.ID, true))

	got, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
	assert.Equal(t, "avatars/leo.png", got.Avatar)
	assert.True(t, got.IsStaff)

	assert.True(t, IsNotFound(store.UpdateUserPassword(ctx, 9999, "x")))
}

func TestGetAuthorProfile_Counts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	leo := createTestUser(t, store, "leo")
	ann := createTestUser(t, store, "ann")
	bob := createTestUser(t, store, "bob")

	createTestPost(t, store, leo, nil, "first")
	createTestPost(t, store, leo, nil, "second")
	require.NoError(t, store.CreateFollow(ctx, &domain.Follow{UserID: ann.ID, AuthorID: leo.ID}))
	require.NoError(t, store.CreateFollow(ctx, &domain.Follow{UserID: bob.ID, AuthorID: leo.ID}))
	require.NoError(t, store.CreateFollow(ctx, &domain.Follow{UserID: leo.ID, AuthorID: ann.ID}))

	profile, err := store.GetAuthorProfile(ctx, "leo")
	require.NoError(t, err)
	assert.Equal(t, leo.ID, profile.ID)
	assert.Equal(t, 2, profile.PostsCount)
	assert.Equal(t, 2, profile.FollowersCount)
	assert.Equal(t, 1, profile.FollowingCount)
}

// =============================================================================
// Group Tests
// =============================================================================

func TestGroupCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	group := createTestGroup(t, store, "cats")

	got, err := store.GetGroupBySlug(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, group.ID, got.ID)
	assert.Equal(t, "Group cats", got.Title)

	got.Title = "Cats"
	require.NoError(t, store.UpdateGroup(ctx, got))
	byID, err := store.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cats", byID.Title)

	err = store.CreateGroup(ctx, &domain.Group{Title: "Other", Slug: "cats", Description: "d"})
	assert.True(t, IsDuplicate(err))

	createTestGroup(t, store, "birds")
	groups, err := store.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "cats", groups[0].Slug)

	require.NoError(t, store.DeleteGroup(ctx, group.ID))
	_, err = store.GetGroupBySlug(ctx, "cats")
	assert.True(t, IsNotFound(err))
}

func TestDeleteGroup_KeepsPosts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	leo := createTestUser(t, store, "leo")
	group := createTestGroup(t, store, "cats")
	post := createTestPost(t, store, leo, group, "meow")

	require.NoError(t, store.DeleteGroup(ctx, group.ID))

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GroupID)
	assert.Nil(t, got.Group)
}

// =============================================================================
// Post Tests
// =============================================================================

func TestGetPost_LoadsRelations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	leo := createTestUser(t, store, "leo")
	ann := createTestUser(t, store, "ann")
	group := createTestGroup(t, store, "cats")
	post := createTestPost(t, store, leo, group, "hello world")

	comment, err := domain.NewComment(post.ID, ann.ID, "nice")
	require.NoError(t, err)
	require.NoError(t, store.CreateComment(ctx, comment))

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Text)
	assert.Equal(t, "leo", got.Author.Username)
	require.NotNil(t, got.Group)
	assert.Equal(t, "cats", got.Group.Slug)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "ann", got.Comments[0].Author.Username)
}

func TestCreatePost_UnknownGroup(t *testing.T) {
	store := setupTestStore(t)
	leo := createTestUser(t, store, "leo")
	missing := int64(42)

	err := store.CreatePost(context.Background(), &domain.Post{Text: "x", AuthorID: leo.ID, GroupID: &missing})

	assert.ErrorIs(t, err, ErrForeignKey)
}

func TestUpdatePost(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	leo := createTestUser(t, store, "leo")
	group := createTestGroup(t, store, "cats")
	post := createTestPost(t, store, leo, nil, "draft")

	post.Text = "final"
	post.GroupID = &group.ID
	post.Image = "posts/a.png"
	require.NoError(t, store.UpdatePost(ctx, post))

	got, err := store.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Text)
	require.NotNil(t, got.GroupID)
	assert.Equal(t, group.ID, *got.GroupID)
	assert.Equal(t, "posts/a.png", got.Image)

	assert.True(t, IsNotFound(store.UpdatePost(ctx, &domain.Post{ID: 999, Text: "x"})))
}

func TestListPosts_OrderAndPaging(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	leo := createTestUser(t, store, "leo")
	for i := 0; i < 13; i++ {
		createTestPost(t, store, leo, nil, "post")
	}

	count, err := store.CountPosts(ctx, PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, 13, count)

	first, err := store.ListPosts(ctx, PostFilter{}, ListOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, first, 10)
	for i := 1; i < len(first); i++ {
		assert.Greater(t, first[i-1].ID, first[i].ID)
	}

	second, err := store.ListPosts(ctx, PostFilter{}, ListOptions{Limit: 10, Offset: 10})
	require.NoError(t, err)
	assert.Len(t, second, 3)
}

func TestListPosts_Filters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	leo := createTestUser(t, store, "leo")
	ann := createTestUser(t, store, "ann")
	bob := createTestUser(t, store, "bob")
	cats := createTestGroup(t, store, "cats")

	createTestPost(t, store, leo, cats, "leo in cats")
	createTestPost(t, store, leo, nil, "leo alone")
	createTestPost(t, store, ann, cats, "ann in cats")
	require.NoError(t, store.CreateFollow(ctx, &domain.Follow{UserID: bob.ID, AuthorID: ann.ID}))

	tests := []struct {
		name   string
		filter PostFilter
		want   int
	}{
		{"all", PostFilter{}, 3},
		{"group", PostFilter{GroupSlug: "cats"}, 2},
		{"author", PostFilter{AuthorUsername: "leo"}, 2},
		{"feed", PostFilter{FollowerID: bob.ID}, 1},
		{"empty feed", PostFilter{FollowerID: leo.ID}, 0},
		{"group and author", PostFilter{GroupSlug: "cats", AuthorUsername: "ann"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := store.ListPosts(ctx, tt.filter, DefaultListOptions())
			require.NoError(t, err)
			assert.Len(t, posts, tt.want)

			count, err := store.CountPosts(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, count)
		})
	}
}

func TestListPosts_AttachesComments(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	leo := createTestUser(t, store, "leo")
	a := createTestPost(t, store, leo, nil, "a")
	createTestPost(t, store, leo, nil, "b")

	for _, text := range []string{"one", "two"} {
		c, err := domain.NewComment(a.ID, leo.ID, text)
		require.NoError(t, err)
		require.NoError(t, store.CreateComment(ctx, c))
	}

	posts, err := store.ListPosts(ctx, PostFilter{}, DefaultListOptions())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Empty(t, posts[0].Comments)
	require.Len(t, posts[1].Comments, 2)
	assert.Equal(t, "two", posts[1].Comments[0].Text)
}

func TestDeleteUser_Cascades(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	leo := createTestUser(t, store, "leo")
	ann := createTestUser(t, store, "ann")
	post := createTestPost(t, store, leo, nil, "bye")
	other := createTestPost(t, store, ann, nil, "stay")
	c, err := domain.NewComment(other.ID, leo.ID, "leo was here")
	require.NoError(t, err)
	require.NoError(t, store.CreateComment(ctx, c))
	require.NoError(t, store.CreateFollow(ctx, &domain.Follow{UserID: leo.ID, AuthorID: ann.ID}))

	require.NoError(t, store.DeleteUser(ctx, leo.ID))

	_, err = store.GetPost(ctx, post.ID)
	assert.True(t, IsNotFound(err))

	comments, err := store.ListCommentsByPost(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	profile, err := store.GetAuthorProfile(ctx, "ann")
	require.NoError(t, err)
	assert.Zero(t, profile.FollowersCount)
}

func TestDeletePost(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	leo := createTestUser(t, store, "leo")
	post := createTestPost(t, store, leo, nil, "gone")

	require.NoError(t, store.DeletePost(ctx, post.ID))
	assert.True(t, IsNotFound(store.DeletePost(ctx, post.ID)))
}

// =============================================================================
// Follow Tests
// =============================================================================

func TestFollows(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	leo := createTestUser(t, store, "leo")
	ann := createTestUser(t, store, "ann")

	following, err := store.IsFollowing(ctx, leo.ID, ann.ID)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, store.CreateFollow(ctx, &domain.Follow{UserID: leo.ID, AuthorID: ann.ID}))
	err = store.CreateFollow(ctx, &domain.Follow{UserID: leo.ID, AuthorID: ann.ID})
	assert.True(t, IsDuplicate(err))

	following, err = store.IsFollowing(ctx, leo.ID, ann.ID)
	require.NoError(t, err)
	assert.True(t, following)

	require.NoError(t, store.DeleteFollow(ctx, leo.ID, ann.ID))
	require.NoError(t, store.DeleteFollow(ctx, leo.ID, ann.ID))

	following, err = store.IsFollowing(ctx, leo.ID, ann.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestIsFollowing_Anonymous(t *testing.T) {
	store := setupTestStore(t)
	following, err := store.IsFollowing(context.Background(), 0, 1)
	require.NoError(t, err)
	assert.False(t, following)
}

// =============================================================================
// Transaction Tests
// =============================================================================

func TestWithTx_RollsBackOnError(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx Store) error {
		if err := tx.CreateUser(ctx, &domain.User{Username: "temp"}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = store.GetUserByUsername(ctx, "temp")
	assert.True(t, IsNotFound(err))
}

func TestWithTx_Commits(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx Store) error {
		user := &domain.User{Username: "kept"}
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.WithTx(ctx, func(inner Store) error {
			return inner.CreatePost(ctx, &domain.Post{Text: "in tx", AuthorID: user.ID})
		})
	})
	require.NoError(t, err)

	count, err := store.CountPosts(ctx, PostFilter{AuthorUsername: "kept"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "yatube.db")

	s, err := NewSQLiteStore(dsn)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dsn)
	assert.NoError(t, err)
}

func TestTimeArg_PerDriver(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 0, 5000, time.UTC)

	sqlite := &SQLStore{driver: DriverSQLite}
	assert.Equal(t, "2024-03-01 12:30:00.000005", sqlite.timeArg(at))

	postgres := &SQLStore{driver: DriverPostgres}
	assert.Equal(t, at, postgres.timeArg(at))
}

func TestDBTime_Scan(t *testing.T) {
	want := time.Date(2024, 3, 1, 12, 30, 0, 5000, time.UTC)

	tests := []struct {
		name string
		src  any
	}{
		{"sqlite text", "2024-03-01 12:30:00.000005"},
		{"sqlite bytes", []byte("2024-03-01 12:30:00.000005")},
		{"rfc3339", "2024-03-01T15:30:00.000005+03:00"},
		{"native", want.In(time.FixedZone("MSK", 3*60*60))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got dbTime
			require.NoError(t, got.Scan(tt.src))
			assert.True(t, want.Equal(got.Time))
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	var bad dbTime
	assert.Error(t, bad.Scan("yesterday"))
	assert.Error(t, bad.Scan(42))
}
