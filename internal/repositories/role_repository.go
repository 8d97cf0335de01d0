package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/filter"
	"github.com/onlineshop/backend/internal/models"
	"go.uber.org/zap"
)

var rolesTable = &table{
	name:       "roles",
	selectList: "id, name_ar, name_en, description_ar, description_en, permissions, main_role, admin_role",
	columns: filter.Columns{
		"id":             "id",
		"name_ar":        "name_ar",
		"name_en":        "name_en",
		"description_ar": "description_ar",
		"description_en": "description_en",
		"mainRole":       "main_role",
		"adminRole":      "admin_role",
	},
	writable: filter.Columns{
		"name_ar":        "name_ar",
		"name_en":        "name_en",
		"description_ar": "description_ar",
		"description_en": "description_en",
		"permissions":    "permissions",
		"mainRole":       "main_role",
		"adminRole":      "admin_role",
	},
	notFound: apperrors.ErrRoleNotFound,
}

type roleRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db DBTX, logger *zap.Logger) *roleRepository {
	return &roleRepository{
		db:     db,
		logger: logger,
	}
}

func scanRole(row interface{ Scan(...any) error }) (*models.Role, error) {
	var (
		role        models.Role
		permissions sql.NullString
	)
	err := row.Scan(
		&role.ID,
		&role.NameAr,
		&role.NameEn,
		&role.DescriptionAr,
		&role.DescriptionEn,
		&permissions,
		&role.MainRole,
		&role.AdminRole,
	)
	if err != nil {
		return nil, err
	}
	role.Permissions = permissions.String
	return &role, nil
}

func (r *roleRepository) queryRoles(ctx context.Context, query string, args ...any) ([]models.Role, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query roles", zap.Error(err))
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	roles := []models.Role{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			r.logger.Error("failed to scan role", zap.Error(err))
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, *role)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return roles, nil
}

// Create inserts a new role into the database
func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	query := `
		INSERT INTO roles (name_ar, name_en, description_ar, description_en, permissions, main_role, admin_role)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		role.NameAr,
		role.NameEn,
		role.DescriptionAr,
		role.DescriptionEn,
		role.Permissions,
		role.MainRole,
		role.AdminRole,
	)
	if err != nil {
		r.logger.Error("failed to create role", zap.Error(err))
		return fmt.Errorf("failed to create role: %w", constraintError("roles", err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	role.ID = int(id)
	return nil
}

// FindByID retrieves a role by ID
func (r *roleRepository) FindByID(ctx context.Context, id int) (*models.Role, error) {
	query := fmt.Sprintf(`SELECT %s FROM roles WHERE id = ?`, rolesTable.selectList)

	role, err := scanRole(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrRoleNotFound
	}
	if err != nil {
		r.logger.Error("failed to get role by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get role by id: %w", err)
	}

	return role, nil
}

// FindByIDs retrieves the roles with the given IDs; missing IDs are skipped
func (r *roleRepository) FindByIDs(ctx context.Context, ids []int) ([]models.Role, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []models.Role{}, nil
	}
	query, args := rolesTable.inQuery("id", ids)
	return r.queryRoles(ctx, query, args...)
}

// Find retrieves the roles matching the filter
func (r *roleRepository) Find(ctx context.Context, f *filter.Filter) ([]models.Role, error) {
	query, args, err := rolesTable.selectQuery(f)
	if err != nil {
		return nil, err
	}
	return r.queryRoles(ctx, query, args...)
}

// Count returns how many roles match the where condition
func (r *roleRepository) Count(ctx context.Context, where filter.Where) (int64, error) {
	count, err := rolesTable.count(ctx, r.db, where)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to count roles", zap.Error(err))
	}
	return count, err
}

// UpdateAll applies the patch to every role matching where
func (r *roleRepository) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (int64, error) {
	count, err := rolesTable.updateAll(ctx, r.db, patch, where)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to update roles", zap.Error(err))
	}
	return count, err
}

// UpdateByID applies the patch to one role
func (r *roleRepository) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	err := rolesTable.updateByID(ctx, r.db, id, patch)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to update role", zap.Error(err), zap.Int("id", id))
	}
	return err
}

// ReplaceByID overwrites every stored field of one role
func (r *roleRepository) ReplaceByID(ctx context.Context, id int, role *models.Role) error {
	err := rolesTable.replaceByID(ctx, r.db, id, map[string]any{
		"name_ar":        role.NameAr,
		"name_en":        role.NameEn,
		"description_ar": role.DescriptionAr,
		"description_en": role.DescriptionEn,
		"permissions":    role.Permissions,
		"mainRole":       role.MainRole,
		"adminRole":      role.AdminRole,
	})
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to replace role", zap.Error(err), zap.Int("id", id))
	}
	return err
}

// DeleteByID removes one role
func (r *roleRepository) DeleteByID(ctx context.Context, id int) error {
	err := rolesTable.deleteByID(ctx, r.db, id)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to delete role", zap.Error(err), zap.Int("id", id))
	}
	return err
}
