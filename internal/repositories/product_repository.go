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

var productsTable = &table{
	name:       "products",
	selectList: "id, title, image, price, user_id",
	columns: filter.Columns{
		"id":     "id",
		"title":  "title",
		"image":  "image",
		"price":  "price",
		"userId": "user_id",
	},
	writable: filter.Columns{
		"title":  "title",
		"image":  "image",
		"price":  "price",
		"userId": "user_id",
	},
	notFound: apperrors.ErrProductNotFound,
}

type productRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db DBTX, logger *zap.Logger) *productRepository {
	return &productRepository{
		db:     db,
		logger: logger,
	}
}

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	var (
		product models.Product
		image   sql.NullString
		userID  sql.NullInt64
	)
	if err := row.Scan(&product.ID, &product.Title, &image, &product.Price, &userID); err != nil {
		return nil, err
	}
	product.Image = image.String
	product.UserID = nullInt(userID)
	return &product, nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query products", zap.Error(err))
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			r.logger.Error("failed to scan product", zap.Error(err))
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// Create inserts a new product into the database
func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.create(ctx, r.db, product)
}

// CreateTx inserts a new product as part of the caller's transaction
func (r *productRepository) CreateTx(ctx context.Context, tx *sql.Tx, product *models.Product) error {
	return r.create(ctx, tx, product)
}

func (r *productRepository) create(ctx context.Context, db DBTX, product *models.Product) error {
	query := `
		INSERT INTO products (title, image, price, user_id)
		VALUES (?, ?, ?, ?)
	`

	var image any
	if product.Image != "" {
		image = product.Image
	}

	result, err := db.ExecContext(ctx, query, product.Title, image, product.Price, product.UserID)
	if err != nil {
		r.logger.Error("failed to create product", zap.Error(err))
		return fmt.Errorf("failed to create product: %w", constraintError("products", err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	product.ID = int(id)
	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id int) (*models.Product, error) {
	query := `
		SELECT id, title, image, price, user_id
		FROM products
		WHERE id = ?
	`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrProductNotFound
	}
	if err != nil {
		r.logger.Error("failed to get product by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}

	return product, nil
}

// Find retrieves the products matching the filter
func (r *productRepository) Find(ctx context.Context, f *filter.Filter) ([]models.Product, error) {
	query, args, err := productsTable.selectQuery(f)
	if err != nil {
		return nil, err
	}
	return r.queryProducts(ctx, query, args...)
}

// FindByUserID retrieves the products owned by a user
func (r *productRepository) FindByUserID(ctx context.Context, userID int) ([]models.Product, error) {
	return r.FindByUserIDs(ctx, []int{userID})
}

// FindByUserIDs retrieves the products owned by any of the users
func (r *productRepository) FindByUserIDs(ctx context.Context, userIDs []int) ([]models.Product, error) {
	userIDs = uniqueIDs(userIDs)
	if len(userIDs) == 0 {
		return []models.Product{}, nil
	}
	query, args := productsTable.inQuery("user_id", userIDs)
	return r.queryProducts(ctx, query, args...)
}

// Count returns how many products match the where condition
func (r *productRepository) Count(ctx context.Context, where filter.Where) (int64, error) {
	count, err := productsTable.count(ctx, r.db, where)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to count products", zap.Error(err))
	}
	return count, err
}

// UpdateAll applies the patch to every product matching where
func (r *productRepository) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (int64, error) {
	count, err := productsTable.updateAll(ctx, r.db, patch, where)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to update products", zap.Error(err))
	}
	return count, err
}

// UpdateByID applies the patch to one product
func (r *productRepository) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	err := productsTable.updateByID(ctx, r.db, id, patch)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to update product", zap.Error(err), zap.Int("id", id))
	}
	return err
}

// ReplaceByID overwrites every stored field of one product
func (r *productRepository) ReplaceByID(ctx context.Context, id int, product *models.Product) error {
	var image any
	if product.Image != "" {
		image = product.Image
	}
	err := productsTable.replaceByID(ctx, r.db, id, map[string]any{
		"title":  product.Title,
		"image":  image,
		"price":  product.Price,
		"userId": product.UserID,
	})
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to replace product", zap.Error(err), zap.Int("id", id))
	}
	return err
}

// DeleteByID removes one product
func (r *productRepository) DeleteByID(ctx context.Context, id int) error {
	err := productsTable.deleteByID(ctx, r.db, id)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to delete product", zap.Error(err), zap.Int("id", id))
	}
	return err
}
