package service

import (
	"context"

	"github.com/artpar/yatube/internal/core/auth"
	"github.com/artpar/yatube/internal/core/domain"
	"github.com/artpar/yatube/internal/shell/store"
)

// =============================================================================
// Groups
// =============================================================================

// Groups lists every group by title.
func (s *Service) Groups(ctx context.Context) ([]domain.Group, error) {
	return s.store.ListGroups(ctx)
}

// Group returns the group with slug.
func (s *Service) Group(ctx context.Context, slug string) (*domain.Group, error) {
	group, err := s.store.GetGroupBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	return group, nil
}

// CreateGroup adds a group. Only staff may do this.
func (s *Service) CreateGroup(ctx context.Context, actor auth.Context, title, slug, description string) (*domain.Group, error) {
	if !actor.Authenticated {
		return nil, ErrUnauthorized
	}
	if !auth.CanManageGroups(actor) {
		return nil, ErrForbidden
	}

	group, err := domain.NewGroup(title, slug, description)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		if store.IsDuplicate(err) {
			return nil, domain.ValidationErrors{"slug": "group with this slug already exists"}
		}
		return nil, err
	}

	s.logger.Info("group created", "group_id", group.ID, "slug", group.Slug, "by", actor.Username)
	return group, nil
}

// SeedResult counts what SeedGroups changed.
type SeedResult struct {
	Created int
	Updated int
}

// SeedGroups creates or updates groups by slug in one transaction.
func (s *Service) SeedGroups(ctx context.Context, groups []domain.Group) (SeedResult, error) {
	var result SeedResult

	err := s.store.WithTx(ctx, func(tx store.Store) error {
		for _, g := range groups {
			group, err := domain.NewGroup(g.Title, g.Slug, g.Description)
			if err != nil {
				return err
			}

			existing, err := tx.GetGroupBySlug(ctx, group.Slug)
			switch {
			case err == nil:
				group.ID = existing.ID
				if err := tx.UpdateGroup(ctx, group); err != nil {
					return err
				}
				result.Updated++
			case store.IsNotFound(err):
				if err := tx.CreateGroup(ctx, group); err != nil {
					return err
				}
				result.Created++
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	s.logger.Info("groups seeded", "created", result.Created, "updated", result.Updated)
	return result, nil
}
