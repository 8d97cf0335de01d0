package services

import (
	"context"
	"database/sql"

	"github.com/onlineshop/backend/internal/filter"
	"github.com/onlineshop/backend/internal/models"
)

// TxBeginner starts database transactions; *sql.DB satisfies it
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user. Its ID is set on success.
	Create(ctx context.Context, user *models.User) error
	// Method FindByEmail retrieves a user by email.
	//
	// If user with such email does not exist, apperrors.ErrUserNotFound is returned.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Method ExistsByEmail checks if a user with such email exists.
	//
	// If some error occurs during check, the error will be returned together with "false" value.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// Method FindByID retrieves a user by ID.
	//
	// If user with such ID does not exist, apperrors.ErrUserNotFound is returned.
	FindByID(ctx context.Context, id int) (*models.User, error)
	// Method FindByIDs retrieves the users with the given IDs. Missing IDs are skipped.
	FindByIDs(ctx context.Context, ids []int) ([]models.User, error)
	// Method Find retrieves the users matching the filter's where, order, limit and skip.
	//
	// Unknown fields or operators in the filter are reported as bad request errors.
	Find(ctx context.Context, f *filter.Filter) ([]models.User, error)
	// Method Count returns how many users match the where condition.
	Count(ctx context.Context, where filter.Where) (int64, error)
	// Method UpdateAll applies the patch to every user matching where and returns how many matched.
	UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (int64, error)
	// Method UpdateByID applies the patch to one user.
	//
	// If user with such ID does not exist, apperrors.ErrUserNotFound is returned.
	UpdateByID(ctx context.Context, id int, patch map[string]any) error
	// Method ReplaceByID overwrites every stored field of one user.
	ReplaceByID(ctx context.Context, id int, user *models.User) error
	// Method DeleteByID removes one user.
	DeleteByID(ctx context.Context, id int) error
}

// RoleRepository is the interface that wraps methods for Role table data access
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	// Method FindByID retrieves a role by ID.
	//
	// If role with such ID does not exist, apperrors.ErrRoleNotFound is returned.
	FindByID(ctx context.Context, id int) (*models.Role, error)
	FindByIDs(ctx context.Context, ids []int) ([]models.Role, error)
	Find(ctx context.Context, f *filter.Filter) ([]models.Role, error)
	Count(ctx context.Context, where filter.Where) (int64, error)
	UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (int64, error)
	UpdateByID(ctx context.Context, id int, patch map[string]any) error
	ReplaceByID(ctx context.Context, id int, role *models.Role) error
	DeleteByID(ctx context.Context, id int) error
}

// ProductRepository is the interface that wraps methods for Product table data access
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	// Method CreateTx inserts a new product as part of the caller's transaction.
	//
	// The caller owns the transaction: the product is only visible once it commits.
	CreateTx(ctx context.Context, tx *sql.Tx, product *models.Product) error
	// Method FindByID retrieves a product by ID.
	//
	// If product with such ID does not exist, apperrors.ErrProductNotFound is returned.
	FindByID(ctx context.Context, id int) (*models.Product, error)
	Find(ctx context.Context, f *filter.Filter) ([]models.Product, error)
	FindByUserID(ctx context.Context, userID int) ([]models.Product, error)
	FindByUserIDs(ctx context.Context, userIDs []int) ([]models.Product, error)
	Count(ctx context.Context, where filter.Where) (int64, error)
	UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (int64, error)
	UpdateByID(ctx context.Context, id int, patch map[string]any) error
	ReplaceByID(ctx context.Context, id int, product *models.Product) error
	DeleteByID(ctx context.Context, id int) error
}

// OrderRepository is the interface that wraps methods for Order table data access
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	// Method FindByID retrieves an order by ID.
	//
	// If order with such ID does not exist, apperrors.ErrOrderNotFound is returned.
	FindByID(ctx context.Context, id int) (*models.Order, error)
	Find(ctx context.Context, f *filter.Filter) ([]models.Order, error)
	FindByUserID(ctx context.Context, userID int) ([]models.Order, error)
	FindByUserIDs(ctx context.Context, userIDs []int) ([]models.Order, error)
	Count(ctx context.Context, where filter.Where) (int64, error)
	UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (int64, error)
	UpdateByID(ctx context.Context, id int, patch map[string]any) error
	ReplaceByID(ctx context.Context, id int, order *models.Order) error
	DeleteByID(ctx context.Context, id int) error
}
