package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/artpar/yatube/internal/core/domain"
)

// =============================================================================
// Post Operations
// =============================================================================

const postSelect = `
	SELECT
		p.id, p.text, p.pub_date, p.author_id, p.group_id, p.image,
		u.username AS author_username,
		u.first_name AS author_first_name,
		u.last_name AS author_last_name,
		u.avatar AS author_avatar,
		g.title AS group_title,
		g.slug AS group_slug,
		g.description AS group_description
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN post_groups g ON g.id = p.group_id`

func (s *SQLStore) CreatePost(ctx context.Context, post *domain.Post) error {
	if post.PubDate.IsZero() {
		post.PubDate = time.Now().UTC()
	}

	query := s.exec.Rebind(`
		INSERT INTO posts (text, pub_date, author_id, group_id, image)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)

	var id int64
	err := s.exec.GetContext(ctx, &id, query,
		post.Text, s.timeArg(post.PubDate), post.AuthorID, nullInt64(post.GroupID), post.Image)
	if err != nil {
		return NewStoreError("CreatePost", "post", "", err.Error(), classify(err))
	}

	post.ID = id
	return nil
}

// GetPost returns the post with author, group and comments loaded.
func (s *SQLStore) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	var row postRow
	err := s.exec.GetContext(ctx, &row, s.exec.Rebind(postSelect+` WHERE p.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("GetPost", "post", strconv.FormatInt(id, 10), "post not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("GetPost", "post", strconv.FormatInt(id, 10), err.Error(), err)
	}

	post := postFromRow(row)
	comments, err := s.ListCommentsByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Comments = comments
	return &post, nil
}

// UpdatePost writes text, group and image. Author and pub date never change.
func (s *SQLStore) UpdatePost(ctx context.Context, post *domain.Post) error {
	query := s.exec.Rebind(`UPDATE posts SET text = ?, group_id = ?, image = ? WHERE id = ?`)
	result, err := s.exec.ExecContext(ctx, query, post.Text, nullInt64(post.GroupID), post.Image, post.ID)
	if err != nil {
		return NewStoreError("UpdatePost", "post", strconv.FormatInt(post.ID, 10), err.Error(), classify(err))
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NewStoreError("UpdatePost", "post", strconv.FormatInt(post.ID, 10), "post not found", ErrNotFound)
	}
	return nil
}

func (s *SQLStore) DeletePost(ctx context.Context, id int64) error {
	result, err := s.exec.ExecContext(ctx, s.exec.Rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return NewStoreError("DeletePost", "post", strconv.FormatInt(id, 10), err.Error(), classify(err))
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NewStoreError("DeletePost", "post", strconv.FormatInt(id, 10), "post not found", ErrNotFound)
	}
	return nil
}

func (s *SQLStore) CountPosts(ctx context.Context, filter PostFilter) (int, error) {
	where, args := filter.where()
	query := `SELECT COUNT(*) FROM posts p JOIN users u ON u.id = p.author_id LEFT JOIN post_groups g ON g.id = p.group_id` + where

	var count int
	if err := s.exec.GetContext(ctx, &count, s.exec.Rebind(query), args...); err != nil {
		return 0, NewStoreError("CountPosts", "post", "", err.Error(), err)
	}
	return count, nil
}

// ListPosts returns a page of posts, newest first, with comments attached.
func (s *SQLStore) ListPosts(ctx context.Context, filter PostFilter, opts ListOptions) ([]domain.Post, error) {
	opts = opts.Normalize()
	where, args := filter.where()
	query := postSelect + where + ` ORDER BY p.pub_date DESC, p.id DESC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	var rows []postRow
	if err := s.exec.SelectContext(ctx, &rows, s.exec.Rebind(query), args...); err != nil {
		return nil, NewStoreError("ListPosts", "post", "", err.Error(), err)
	}

	posts := make([]domain.Post, 0, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		posts = append(posts, postFromRow(r))
		ids = append(ids, r.ID)
	}

	if err := s.attachComments(ctx, posts, ids); err != nil {
		return nil, err
	}
	return posts, nil
}

// attachComments loads comments for every listed post in one query.
func (s *SQLStore) attachComments(ctx context.Context, posts []domain.Post, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(commentSelect+` WHERE c.post_id IN (?) ORDER BY c.created DESC, c.id DESC`, ids)
	if err != nil {
		return NewStoreError("ListPosts", "comment", "", err.Error(), err)
	}

	var rows []commentRow
	if err := s.exec.SelectContext(ctx, &rows, s.exec.Rebind(query), args...); err != nil {
		return NewStoreError("ListPosts", "comment", "", err.Error(), err)
	}

	byPost := make(map[int64][]domain.Comment, len(ids))
	for _, r := range rows {
		byPost[r.PostID] = append(byPost[r.PostID], commentFromRow(r))
	}
	for i := range posts {
		posts[i].Comments = byPost[posts[i].ID]
	}
	return nil
}

func (f PostFilter) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.GroupSlug != "" {
		clauses = append(clauses, "g.slug = ?")
		args = append(args, f.GroupSlug)
	}
	if f.AuthorUsername != "" {
		clauses = append(clauses, "u.username = ?")
		args = append(args, f.AuthorUsername)
	}
	if f.FollowerID != 0 {
		clauses = append(clauses, "p.author_id IN (SELECT author_id FROM follows WHERE user_id = ?)")
		args = append(args, f.FollowerID)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
