package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/auth/service"
	"github.com/onlineshop/backend/internal/filter"
	"github.com/onlineshop/backend/internal/models"
	"go.uber.org/zap"
)

// userService implements user management and the user's owned collections
type userService struct {
	userRepo    UserRepository
	roleRepo    RoleRepository
	productRepo ProductRepository
	orderRepo   OrderRepository
	hasher      *service.PasswordHasher
	logger      *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo UserRepository,
	roleRepo RoleRepository,
	productRepo ProductRepository,
	orderRepo OrderRepository,
	hasher *service.PasswordHasher,
	logger *zap.Logger,
) *userService {
	return &userService{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		hasher:      hasher,
		logger:      logger,
	}
}

// Count returns how many users match the where condition
func (s *userService) Count(ctx context.Context, where filter.Where) (*models.Count, error) {
	count, err := s.userRepo.Count(ctx, where)
	if err != nil {
		return nil, err
	}
	return &models.Count{Count: count}, nil
}

// Find returns the users matching the filter with the requested relations
func (s *userService) Find(ctx context.Context, f *filter.Filter) ([]models.UserWithRelations, error) {
	if err := checkIncludes(f, "products", "orders", "roles"); err != nil {
		return nil, err
	}

	users, err := s.userRepo.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.withRelations(ctx, f, users)
}

// FindByID returns one user with the requested relations
func (s *userService) FindByID(ctx context.Context, id int, f *filter.Filter) (*models.UserWithRelations, error) {
	if err := checkIncludes(f, "products", "orders", "roles"); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.withRelations(ctx, f, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *userService) withRelations(ctx context.Context, f *filter.Filter, users []models.User) ([]models.UserWithRelations, error) {
	out := make([]models.UserWithRelations, len(users))
	if len(users) == 0 {
		return out, nil
	}
	ids := make([]int, len(users))
	for i := range users {
		out[i].User = users[i]
		ids[i] = users[i].ID
	}
	index := make(map[int]int, len(users))
	for i, id := range ids {
		index[id] = i
	}

	if f.Includes("products") {
		products, err := s.productRepo.FindByUserIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load products: %w", err)
		}
		for i := range out {
			out[i].Products = []models.Product{}
		}
		for _, p := range products {
			if p.UserID != nil {
				if i, ok := index[*p.UserID]; ok {
					out[i].Products = append(out[i].Products, p)
				}
			}
		}
	}

	if f.Includes("orders") {
		orders, err := s.orderRepo.FindByUserIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load orders: %w", err)
		}
		for i := range out {
			out[i].Orders = []models.Order{}
		}
		for _, o := range orders {
			if o.UserID != nil {
				if i, ok := index[*o.UserID]; ok {
					out[i].Orders = append(out[i].Orders, o)
				}
			}
		}
	}

	if f.Includes("roles") {
		refs := make([]*int, len(users))
		for i := range users {
			refs[i] = users[i].RoleID
		}
		roles, err := s.roleRepo.FindByIDs(ctx, ownerIDs(refs...))
		if err != nil {
			return nil, fmt.Errorf("failed to load roles: %w", err)
		}
		byID := make(map[int]*models.RoleResponse, len(roles))
		for i := range roles {
			resp, err := roles[i].Response()
			if err != nil {
				return nil, err
			}
			byID[roles[i].ID] = resp
		}
		for i := range out {
			if out[i].RoleID != nil {
				out[i].Roles = byID[*out[i].RoleID]
			}
		}
	}

	return out, nil
}

// hashPatchPassword replaces a plaintext password in a patch with its hash
func (s *userService) hashPatchPassword(patch map[string]any) (map[string]any, error) {
	raw, ok := patch["password"]
	if !ok {
		return patch, nil
	}
	password, ok := raw.(string)
	if !ok || password == "" {
		return nil, apperrors.BadRequest("password must be a non-empty string")
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	hashed := make(map[string]any, len(patch))
	for k, v := range patch {
		hashed[k] = v
	}
	hashed["password"] = hash
	return hashed, nil
}

// UpdateAll applies the patch to every user matching where; a password is stored hashed
func (s *userService) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (*models.Count, error) {
	patch, err := s.hashPatchPassword(patch)
	if err != nil {
		return nil, err
	}
	count, err := s.userRepo.UpdateAll(ctx, patch, where)
	if err != nil {
		return nil, err
	}
	return &models.Count{Count: count}, nil
}

// UpdateByID applies the patch to one user; a password is stored hashed
func (s *userService) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	patch, err := s.hashPatchPassword(patch)
	if err != nil {
		return err
	}
	return s.userRepo.UpdateByID(ctx, id, patch)
}

// ReplaceByID overwrites one user
func (s *userService) ReplaceByID(ctx context.Context, id int, in *models.UserInput) error {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return apperrors.ErrMissingCredentials
	}

	hash, err := s.hasher.HashPassword(in.Password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return err
	}

	return s.userRepo.ReplaceByID(ctx, id, &models.User{
		Email:    email,
		Password: hash,
		RoleID:   in.RoleID,
	})
}

// DeleteByID removes one user; owned products and orders are left untouched
func (s *userService) DeleteByID(ctx context.Context, id int) error {
	return s.userRepo.DeleteByID(ctx, id)
}

// Products returns the products owned by a user
func (s *userService) Products(ctx context.Context, userID int) ([]models.Product, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.productRepo.FindByUserID(ctx, userID)
}

// Orders returns the orders placed by a user
func (s *userService) Orders(ctx context.Context, userID int) ([]models.Order, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.orderRepo.FindByUserID(ctx, userID)
}

// CreateOrder places an order on behalf of a user
func (s *userService) CreateOrder(ctx context.Context, userID int, order *models.Order) (*models.Order, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(order.Status) == "" {
		return nil, apperrors.UnprocessableEntity(apperrors.ErrInvalidProduct.Message, []string{"status required"})
	}

	order.UserID = &userID
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	s.logger.Info("order created", zap.Int("order_id", order.ID), zap.Int("user_id", userID))
	return order, nil
}
