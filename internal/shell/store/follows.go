package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/artpar/yatube/internal/core/domain"
)

// =============================================================================
// Follow Operations
// =============================================================================

func (s *SQLStore) CreateFollow(ctx context.Context, follow *domain.Follow) error {
	key := fmt.Sprintf("%d->%d", follow.UserID, follow.AuthorID)
	query := s.exec.Rebind(`INSERT INTO follows (user_id, author_id) VALUES (?, ?) RETURNING id`)

	var id int64
	if err := s.exec.GetContext(ctx, &id, query, follow.UserID, follow.AuthorID); err != nil {
		if errors.Is(classify(err), ErrDuplicate) {
			return NewStoreError("CreateFollow", "follow", key, "already following", ErrDuplicate)
		}
		return NewStoreError("CreateFollow", "follow", key, err.Error(), classify(err))
	}

	follow.ID = id
	return nil
}

// DeleteFollow removes the subscription. A missing row is not an error.
func (s *SQLStore) DeleteFollow(ctx context.Context, userID, authorID int64) error {
	query := s.exec.Rebind(`DELETE FROM follows WHERE user_id = ? AND author_id = ?`)
	if _, err := s.exec.ExecContext(ctx, query, userID, authorID); err != nil {
		return NewStoreError("DeleteFollow", "follow", fmt.Sprintf("%d->%d", userID, authorID), err.Error(), err)
	}
	return nil
}

func (s *SQLStore) IsFollowing(ctx context.Context, userID, authorID int64) (bool, error) {
	if userID == 0 || authorID == 0 {
		return false, nil
	}

	var count int
	query := s.exec.Rebind(`SELECT COUNT(*) FROM follows WHERE user_id = ? AND author_id = ?`)
	if err := s.exec.GetContext(ctx, &count, query, userID, authorID); err != nil {
		return false, NewStoreError("IsFollowing", "follow", fmt.Sprintf("%d->%d", userID, authorID), err.Error(), err)
	}
	return count > 0, nil
}
