package services

import (
	"context"
	"strings"

	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/filter"
	"github.com/onlineshop/backend/internal/models"
	"go.uber.org/zap"
)

// roleService implements role management
type roleService struct {
	roleRepo RoleRepository
	logger   *zap.Logger
}

// NewRoleService creates a new role service
func NewRoleService(roleRepo RoleRepository, logger *zap.Logger) *roleService {
	return &roleService{
		roleRepo: roleRepo,
		logger:   logger,
	}
}

func roleFromInput(in *models.RoleInput) (*models.Role, error) {
	if strings.TrimSpace(in.NameEn) == "" {
		return nil, apperrors.UnprocessableEntity(apperrors.ErrInvalidProduct.Message, []string{"name_en required"})
	}
	return in.Role()
}

// Create stores a new role
func (s *roleService) Create(ctx context.Context, in *models.RoleInput) (*models.RoleResponse, error) {
	role, err := roleFromInput(in)
	if err != nil {
		return nil, err
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	s.logger.Info("role created", zap.Int("role_id", role.ID), zap.String("name", role.NameEn))
	return role.Response()
}

// Count returns how many roles match the where condition
func (s *roleService) Count(ctx context.Context, where filter.Where) (*models.Count, error) {
	count, err := s.roleRepo.Count(ctx, where)
	if err != nil {
		return nil, err
	}
	return &models.Count{Count: count}, nil
}

// Find returns the roles matching the filter
func (s *roleService) Find(ctx context.Context, f *filter.Filter) ([]models.RoleResponse, error) {
	if err := checkIncludes(f); err != nil {
		return nil, err
	}

	roles, err := s.roleRepo.Find(ctx, f)
	if err != nil {
		return nil, err
	}

	out := make([]models.RoleResponse, 0, len(roles))
	for i := range roles {
		resp, err := roles[i].Response()
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// FindByID returns one role
func (s *roleService) FindByID(ctx context.Context, id int, f *filter.Filter) (*models.RoleResponse, error) {
	if err := checkIncludes(f); err != nil {
		return nil, err
	}

	role, err := s.roleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return role.Response()
}

// checkPermissionsPatch requires patched permissions to be a list of names
func checkPermissionsPatch(patch map[string]any) error {
	raw, ok := patch["permissions"]
	if !ok {
		return nil
	}
	items, ok := raw.([]any)
	if !ok {
		return apperrors.BadRequest("permissions must be a list of names")
	}
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return apperrors.BadRequest("permissions must be a list of names")
		}
	}
	return nil
}

// UpdateAll applies the patch to every role matching where
func (s *roleService) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (*models.Count, error) {
	if err := checkPermissionsPatch(patch); err != nil {
		return nil, err
	}
	count, err := s.roleRepo.UpdateAll(ctx, patch, where)
	if err != nil {
		return nil, err
	}
	return &models.Count{Count: count}, nil
}

// UpdateByID applies the patch to one role
func (s *roleService) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	if err := checkPermissionsPatch(patch); err != nil {
		return err
	}
	return s.roleRepo.UpdateByID(ctx, id, patch)
}

// ReplaceByID overwrites one role
func (s *roleService) ReplaceByID(ctx context.Context, id int, in *models.RoleInput) error {
	role, err := roleFromInput(in)
	if err != nil {
		return err
	}
	return s.roleRepo.ReplaceByID(ctx, id, role)
}

// DeleteByID removes one role; users referencing it keep the dangling reference
func (s *roleService) DeleteByID(ctx context.Context, id int) error {
	return s.roleRepo.DeleteByID(ctx, id)
}
