package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/artpar/yatube/internal/core/domain"
)

// =============================================================================
// User Operations
// =============================================================================

const userColumns = `id, username, email, first_name, last_name, password_hash, avatar, is_staff, created_at`

func (s *SQLStore) CreateUser(ctx context.Context, user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := s.exec.Rebind(`
		INSERT INTO users (username, email, first_name, last_name, password_hash, avatar, is_staff, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)

	var id int64
	err := s.exec.GetContext(ctx, &id, query,
		user.Username, user.Email, user.FirstName, user.LastName,
		user.PasswordHash, user.Avatar, user.IsStaff, s.timeArg(user.CreatedAt))
	if err != nil {
		if errors.Is(classify(err), ErrDuplicate) {
			return NewStoreError("CreateUser", "user", user.Username, "username already taken", ErrDuplicate)
		}
		return NewStoreError("CreateUser", "user", user.Username, err.Error(), classify(err))
	}

	user.ID = id
	return nil
}

func (s *SQLStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var row userRow
	err := s.exec.GetContext(ctx, &row, s.exec.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("GetUser", "user", strconv.FormatInt(id, 10), "user not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("GetUser", "user", strconv.FormatInt(id, 10), err.Error(), err)
	}

	user := userFromRow(row)
	return &user, nil
}

func (s *SQLStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var row userRow
	err := s.exec.GetContext(ctx, &row, s.exec.Rebind(`SELECT `+userColumns+` FROM users WHERE username = ?`), username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("GetUserByUsername", "user", username, "user not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("GetUserByUsername", "user", username, err.Error(), err)
	}

	user := userFromRow(row)
	return &user, nil
}

func (s *SQLStore) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	return s.updateUser(ctx, "UpdateUserPassword", id, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
}

func (s *SQLStore) UpdateUserAvatar(ctx context.Context, id int64, avatar string) error {
	return s.updateUser(ctx, "UpdateUserAvatar", id, `UPDATE users SET avatar = ? WHERE id = ?`, avatar, id)
}

func (s *SQLStore) SetUserStaff(ctx context.Context, id int64, staff bool) error {
	return s.updateUser(ctx, "SetUserStaff", id, `UPDATE users SET is_staff = ? WHERE id = ?`, staff, id)
}

func (s *SQLStore) updateUser(ctx context.Context, op string, id int64, query string, args ...any) error {
	result, err := s.exec.ExecContext(ctx, s.exec.Rebind(query), args...)
	if err != nil {
		return NewStoreError(op, "user", strconv.FormatInt(id, 10), err.Error(), classify(err))
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NewStoreError(op, "user", strconv.FormatInt(id, 10), "user not found", ErrNotFound)
	}
	return nil
}

// DeleteUser removes the user; posts, comments and follows cascade.
func (s *SQLStore) DeleteUser(ctx context.Context, id int64) error {
	result, err := s.exec.ExecContext(ctx, s.exec.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return NewStoreError("DeleteUser", "user", strconv.FormatInt(id, 10), err.Error(), classify(err))
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NewStoreError("DeleteUser", "user", strconv.FormatInt(id, 10), "user not found", ErrNotFound)
	}
	return nil
}

func (s *SQLStore) GetAuthorProfile(ctx context.Context, username string) (*domain.AuthorProfile, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	var counts struct {
		Posts     int `db:"posts_count"`
		Followers int `db:"followers_count"`
		Following int `db:"following_count"`
	}
	query := s.exec.Rebind(`
		SELECT
			(SELECT COUNT(*) FROM posts WHERE author_id = ?) AS posts_count,
			(SELECT COUNT(*) FROM follows WHERE author_id = ?) AS followers_count,
			(SELECT COUNT(*) FROM follows WHERE user_id = ?) AS following_count`)
	if err := s.exec.GetContext(ctx, &counts, query, user.ID, user.ID, user.ID); err != nil {
		return nil, NewStoreError("GetAuthorProfile", "user", username, err.Error(), err)
	}

	return &domain.AuthorProfile{
		User:           *user,
		PostsCount:     counts.Posts,
		FollowersCount: counts.Followers,
		FollowingCount: counts.Following,
	}, nil
}
