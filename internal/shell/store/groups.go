package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/artpar/yatube/internal/core/domain"
)

// =============================================================================
// Group Operations
// =============================================================================

func (s *SQLStore) CreateGroup(ctx context.Context, group *domain.Group) error {
	query := s.exec.Rebind(`
		INSERT INTO post_groups (title, slug, description)
		VALUES (?, ?, ?)
		RETURNING id`)

	var id int64
	if err := s.exec.GetContext(ctx, &id, query, group.Title, group.Slug, group.Description); err != nil {
		if errors.Is(classify(err), ErrDuplicate) {
			return NewStoreError("CreateGroup", "group", group.Slug, "group with this slug already exists", ErrDuplicate)
		}
		return NewStoreError("CreateGroup", "group", group.Slug, err.Error(), classify(err))
	}

	group.ID = id
	return nil
}

func (s *SQLStore) GetGroup(ctx context.Context, id int64) (*domain.Group, error) {
	var row groupRow
	err := s.exec.GetContext(ctx, &row, s.exec.Rebind(`SELECT id, title, slug, description FROM post_groups WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("GetGroup", "group", strconv.FormatInt(id, 10), "group not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("GetGroup", "group", strconv.FormatInt(id, 10), err.Error(), err)
	}

	group := groupFromRow(row)
	return &group, nil
}

func (s *SQLStore) GetGroupBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	var row groupRow
	err := s.exec.GetContext(ctx, &row, s.exec.Rebind(`SELECT id, title, slug, description FROM post_groups WHERE slug = ?`), slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewStoreError("GetGroupBySlug", "group", slug, "group not found", ErrNotFound)
	}
	if err != nil {
		return nil, NewStoreError("GetGroupBySlug", "group", slug, err.Error(), err)
	}

	group := groupFromRow(row)
	return &group, nil
}

func (s *SQLStore) UpdateGroup(ctx context.Context, group *domain.Group) error {
	query := s.exec.Rebind(`UPDATE post_groups SET title = ?, slug = ?, description = ? WHERE id = ?`)
	result, err := s.exec.ExecContext(ctx, query, group.Title, group.Slug, group.Description, group.ID)
	if err != nil {
		return NewStoreError("UpdateGroup", "group", group.Slug, err.Error(), classify(err))
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NewStoreError("UpdateGroup", "group", group.Slug, "group not found", ErrNotFound)
	}
	return nil
}

// DeleteGroup removes the group; its posts stay with a null group.
func (s *SQLStore) DeleteGroup(ctx context.Context, id int64) error {
	result, err := s.exec.ExecContext(ctx, s.exec.Rebind(`DELETE FROM post_groups WHERE id = ?`), id)
	if err != nil {
		return NewStoreError("DeleteGroup", "group", strconv.FormatInt(id, 10), err.Error(), classify(err))
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return NewStoreError("DeleteGroup", "group", strconv.FormatInt(id, 10), "group not found", ErrNotFound)
	}
	return nil
}

func (s *SQLStore) ListGroups(ctx context.Context) ([]domain.Group, error) {
	var rows []groupRow
	if err := s.exec.SelectContext(ctx, &rows, `SELECT id, title, slug, description FROM post_groups ORDER BY title, id`); err != nil {
		return nil, NewStoreError("ListGroups", "group", "", err.Error(), err)
	}

	groups := make([]domain.Group, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, groupFromRow(r))
	}
	return groups, nil
}
