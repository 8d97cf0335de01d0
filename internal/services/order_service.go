package services

import (
	"context"
	"strings"

	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/filter"
	"github.com/onlineshop/backend/internal/models"
	"go.uber.org/zap"
)

// orderService implements order management
type orderService struct {
	orderRepo OrderRepository
	userRepo  UserRepository
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo OrderRepository, userRepo UserRepository, logger *zap.Logger) *orderService {
	return &orderService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		logger:    logger,
	}
}

func validateOrder(order *models.Order) error {
	if strings.TrimSpace(order.Status) == "" {
		return apperrors.UnprocessableEntity(apperrors.ErrInvalidProduct.Message, []string{"status required"})
	}
	return nil
}

// Create stores a new order
func (s *orderService) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Count returns how many orders match the where condition
func (s *orderService) Count(ctx context.Context, where filter.Where) (*models.Count, error) {
	count, err := s.orderRepo.Count(ctx, where)
	if err != nil {
		return nil, err
	}
	return &models.Count{Count: count}, nil
}

// Find returns the orders matching the filter, with their owners when "user" is included
func (s *orderService) Find(ctx context.Context, f *filter.Filter) ([]models.OrderWithRelations, error) {
	if err := checkIncludes(f, "user"); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.withRelations(ctx, f, orders)
}

// FindByID returns one order, with its owner when "user" is included
func (s *orderService) FindByID(ctx context.Context, id int, f *filter.Filter) (*models.OrderWithRelations, error) {
	if err := checkIncludes(f, "user"); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.withRelations(ctx, f, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *orderService) withRelations(ctx context.Context, f *filter.Filter, orders []models.Order) ([]models.OrderWithRelations, error) {
	out := make([]models.OrderWithRelations, len(orders))
	for i := range orders {
		out[i].Order = orders[i]
	}
	if !f.Includes("user") {
		return out, nil
	}

	refs := make([]*int, len(orders))
	for i := range orders {
		refs[i] = orders[i].UserID
	}
	owners, err := loadOwners(ctx, s.userRepo, refs...)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].UserID != nil {
			out[i].User = owners[*out[i].UserID]
		}
	}
	return out, nil
}

// UpdateAll applies the patch to every order matching where
func (s *orderService) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (*models.Count, error) {
	count, err := s.orderRepo.UpdateAll(ctx, patch, where)
	if err != nil {
		return nil, err
	}
	return &models.Count{Count: count}, nil
}

// UpdateByID applies the patch to one order
func (s *orderService) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	return s.orderRepo.UpdateByID(ctx, id, patch)
}

// ReplaceByID overwrites one order
func (s *orderService) ReplaceByID(ctx context.Context, id int, order *models.Order) error {
	if err := validateOrder(order); err != nil {
		return err
	}
	return s.orderRepo.ReplaceByID(ctx, id, order)
}

// DeleteByID removes one order
func (s *orderService) DeleteByID(ctx context.Context, id int) error {
	return s.orderRepo.DeleteByID(ctx, id)
}

// GetOwner returns the user who placed an order
func (s *orderService) GetOwner(ctx context.Context, id int) (*models.User, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return findOwner(ctx, s.userRepo, order.UserID)
}
