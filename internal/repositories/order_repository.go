package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/filter"
	"github.com/onlineshop/backend/internal/models"
	"go.uber.org/zap"
)

var ordersTable = &table{
	name:       "orders",
	selectList: "id, status, total, shipping_address, products, user_id",
	columns: filter.Columns{
		"id":              "id",
		"status":          "status",
		"total":           "total",
		"shippingAddress": "shipping_address",
		"userId":          "user_id",
	},
	writable: filter.Columns{
		"status":          "status",
		"total":           "total",
		"shippingAddress": "shipping_address",
		"products":        "products",
		"userId":          "user_id",
	},
	notFound: apperrors.ErrOrderNotFound,
}

type orderRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db DBTX, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	var (
		order    models.Order
		total    sql.NullFloat64
		address  sql.NullString
		products sql.NullString
		userID   sql.NullInt64
	)
	if err := row.Scan(&order.ID, &order.Status, &total, &address, &products, &userID); err != nil {
		return nil, err
	}
	if total.Valid {
		order.Total = &total.Float64
	}
	order.ShippingAddress = address.String
	order.UserID = nullInt(userID)
	if products.Valid && products.String != "" {
		if err := json.Unmarshal([]byte(products.String), &order.Products); err != nil {
			return nil, fmt.Errorf("invalid products of order %d: %w", order.ID, err)
		}
	}
	return &order, nil
}

// encodeProducts serializes the product snapshots of an order
func encodeProducts(products []map[string]any) (any, error) {
	if products == nil {
		return nil, nil
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order products: %w", err)
	}
	return string(raw), nil
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query orders", zap.Error(err))
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.logger.Error("failed to scan order", zap.Error(err))
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return orders, nil
}

// Create inserts a new order into the database
func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (status, total, shipping_address, products, user_id)
		VALUES (?, ?, ?, ?, ?)
	`

	products, err := encodeProducts(order.Products)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query, order.Status, order.Total, order.ShippingAddress, products, order.UserID)
	if err != nil {
		r.logger.Error("failed to create order", zap.Error(err))
		return fmt.Errorf("failed to create order: %w", constraintError("orders", err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	order.ID = int(id)
	return nil
}

// FindByID retrieves an order by ID
func (r *orderRepository) FindByID(ctx context.Context, id int) (*models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = ?`, ordersTable.selectList)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrOrderNotFound
	}
	if err != nil {
		r.logger.Error("failed to get order by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get order by id: %w", err)
	}

	return order, nil
}

// Find retrieves the orders matching the filter
func (r *orderRepository) Find(ctx context.Context, f *filter.Filter) ([]models.Order, error) {
	query, args, err := ordersTable.selectQuery(f)
	if err != nil {
		return nil, err
	}
	return r.queryOrders(ctx, query, args...)
}

// FindByUserID retrieves the orders placed by a user
func (r *orderRepository) FindByUserID(ctx context.Context, userID int) ([]models.Order, error) {
	return r.FindByUserIDs(ctx, []int{userID})
}

// FindByUserIDs retrieves the orders placed by any of the users
func (r *orderRepository) FindByUserIDs(ctx context.Context, userIDs []int) ([]models.Order, error) {
	userIDs = uniqueIDs(userIDs)
	if len(userIDs) == 0 {
		return []models.Order{}, nil
	}
	query, args := ordersTable.inQuery("user_id", userIDs)
	return r.queryOrders(ctx, query, args...)
}

// Count returns how many orders match the where condition
func (r *orderRepository) Count(ctx context.Context, where filter.Where) (int64, error) {
	count, err := ordersTable.count(ctx, r.db, where)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to count orders", zap.Error(err))
	}
	return count, err
}

// UpdateAll applies the patch to every order matching where
func (r *orderRepository) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (int64, error) {
	count, err := ordersTable.updateAll(ctx, r.db, patch, where)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to update orders", zap.Error(err))
	}
	return count, err
}

// UpdateByID applies the patch to one order
func (r *orderRepository) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	err := ordersTable.updateByID(ctx, r.db, id, patch)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to update order", zap.Error(err), zap.Int("id", id))
	}
	return err
}

// ReplaceByID overwrites every stored field of one order
func (r *orderRepository) ReplaceByID(ctx context.Context, id int, order *models.Order) error {
	products, err := encodeProducts(order.Products)
	if err != nil {
		return err
	}
	err = ordersTable.replaceByID(ctx, r.db, id, map[string]any{
		"status":          order.Status,
		"total":           order.Total,
		"shippingAddress": order.ShippingAddress,
		"products":        products,
		"userId":          order.UserID,
	})
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to replace order", zap.Error(err), zap.Int("id", id))
	}
	return err
}

// DeleteByID removes one order
func (r *orderRepository) DeleteByID(ctx context.Context, id int) error {
	err := ordersTable.deleteByID(ctx, r.db, id)
	if err != nil && apperrors.KindOf(err) == apperrors.KindInternal {
		r.logger.Error("failed to delete order", zap.Error(err), zap.Int("id", id))
	}
	return err
}
