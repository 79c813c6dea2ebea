package store

import (
	"context"
	"strconv"
	"time"

	"github.com/artpar/yatube/internal/core/domain"
)

// =============================================================================
// Comment Operations
// =============================================================================

const commentSelect = `
	SELECT
		c.id, c.post_id, c.author_id, c.text, c.created,
		u.username AS author_username,
		u.first_name AS author_first_name,
		u.last_name AS author_last_name,
		u.avatar AS author_avatar
	FROM comments c
	JOIN users u ON u.id = c.author_id`

func (s *SQLStore) CreateComment(ctx context.Context, comment *domain.Comment) error {
	if comment.Created.IsZero() {
		comment.Created = time.Now().UTC()
	}

	query := s.exec.Rebind(`
		INSERT INTO comments (post_id, author_id, text, created)
		VALUES (?, ?, ?, ?)
		RETURNING id`)

	var id int64
	err := s.exec.GetContext(ctx, &id, query, comment.PostID, comment.AuthorID, comment.Text, s.timeArg(comment.Created))
	if err != nil {
		return NewStoreError("CreateComment", "comment", strconv.FormatInt(comment.PostID, 10), err.Error(), classify(err))
	}

	comment.ID = id
	return nil
}

// ListCommentsByPost returns a post's comments, newest first.
func (s *SQLStore) ListCommentsByPost(ctx context.Context, postID int64) ([]domain.Comment, error) {
	var rows []commentRow
	query := s.exec.Rebind(commentSelect + ` WHERE c.post_id = ? ORDER BY c.created DESC, c.id DESC`)
	if err := s.exec.SelectContext(ctx, &rows, query, postID); err != nil {
		return nil, NewStoreError("ListCommentsByPost", "comment", strconv.FormatInt(postID, 10), err.Error(), err)
	}

	comments := make([]domain.Comment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, commentFromRow(r))
	}
	return comments, nil
}
