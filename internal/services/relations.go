package services

import (
	"context"
	"fmt"

	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/filter"
	"github.com/onlineshop/backend/internal/models"
)

// checkIncludes rejects relations the entity does not define
func checkIncludes(f *filter.Filter, allowed ...string) error {
	if f == nil {
		return nil
	}
	for _, name := range f.Include {
		found := false
		for _, a := range allowed {
			if name == a {
				found = true
				break
			}
		}
		if !found {
			return apperrors.BadRequest(fmt.Sprintf("relation %q is not defined", name))
		}
	}
	return nil
}

// ownerIDs collects the distinct non-nil user references
func ownerIDs(refs ...*int) []int {
	ids := make([]int, 0, len(refs))
	seen := make(map[int]bool, len(refs))
	for _, ref := range refs {
		if ref != nil && !seen[*ref] {
			seen[*ref] = true
			ids = append(ids, *ref)
		}
	}
	return ids
}

// loadOwners fetches the referenced users keyed by ID
func loadOwners(ctx context.Context, users UserRepository, refs ...*int) (map[int]*models.User, error) {
	ids := ownerIDs(refs...)
	owners := make(map[int]*models.User, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load owners: %w", err)
	}
	for i := range found {
		owners[found[i].ID] = &found[i]
	}
	return owners, nil
}

// findOwner returns the user a record belongs to
func findOwner(ctx context.Context, users UserRepository, userID *int) (*models.User, error) {
	if userID == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return users.FindByID(ctx, *userID)
}
