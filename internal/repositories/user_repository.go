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

var usersTable = &table{
	name:       "users",
	selectList: "id, email, password, role_id",
	columns: filter.Columns{
		"id":     "id",
		"email":  "email",
		"roleId": "role_id",
	},
	writable: filter.Columns{
		"email":    "email",
		"password": "password",
		"roleId":   "role_id",
	},
	notFound: apperrors.ErrUserNotFound,
}

// userRepository implements UserRepository
type userRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var (
		user   models.User
		roleID sql.NullInt64
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Password, &roleID); err != nil {
		return nil, err
	}
	user.RoleID = nullInt(roleID)
	return &user, nil
}

func (r *userRepository) queryUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query users", zap.Error(err))
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			r.logger.Error("failed to scan user", zap.Error(err))
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password, role_id)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, user.Email, user.Password, user.RoleID)
	if err != nil {
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", constraintError("users", err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

// FindByEmail retrieves a user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, password, role_id
		FROM users
		WHERE email = ?
		LIMIT 1
	`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// ExistsByEmail checks if a user exists with the given email
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM users WHERE email = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check email existence", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return exists, nil
}

// FindByID retrieves a user by ID
func (r *userRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, email, password, role_id
		FROM users
		WHERE id = ?
	`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// FindByIDs retrieves the users with the given IDs; missing IDs are skipped
func (r *userRepository) FindByIDs(ctx context.Context, ids []int) ([]models.User, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	query, args := usersTable.inQuery("id", ids)
	return r.queryUsers(ctx, query, args...)
}

// Find retrieves the users matching the filter
func (r *userRepository) Find(ctx context.Context, f *filter.Filter) ([]models.User, error) {
	query, args, err := usersTable.selectQuery(f)
	if err != nil {
		return nil, err
	}
	return r.queryUsers(ctx, query, args...)
}

// Count returns how many users match the where condition
func (r *userRepository) Count(ctx context.Context, where filter.Where) (int64, error) {
	count, err := usersTable.count(ctx, r.db, where)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to count users", zap.Error(err))
	}
	return count, err
}

// UpdateAll applies the patch to every user matching where
func (r *userRepository) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (int64, error) {
	count, err := usersTable.updateAll(ctx, r.db, patch, where)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to update users", zap.Error(err))
	}
	return count, err
}

// UpdateByID applies the patch to one user
func (r *userRepository) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	err := usersTable.updateByID(ctx, r.db, id, patch)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to update user", zap.Error(err), zap.Int("id", id))
	}
	return err
}

// ReplaceByID overwrites every stored field of one user
func (r *userRepository) ReplaceByID(ctx context.Context, id int, user *models.User) error {
	err := usersTable.replaceByID(ctx, r.db, id, map[string]any{
		"email":    user.Email,
		"password": user.Password,
		"roleId":   user.RoleID,
	})
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to replace user", zap.Error(err), zap.Int("id", id))
	}
	return err
}

// DeleteByID removes one user
func (r *userRepository) DeleteByID(ctx context.Context, id int) error {
	err := usersTable.deleteByID(ctx, r.db, id)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to delete user", zap.Error(err), zap.Int("id", id))
	}
	return err
}
