package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/filter"
	"github.com/onlineshop/backend/internal/models"
)

// fakeTokens accepts "good-token" as the token of buyer@shop.com
type fakeTokens struct{}

func (fakeTokens) ValidateToken(token string) (string, error) {
	if token == "good-token" {
		return "buyer@shop.com", nil
	}
	if token == "guest-token" {
		return "guest@shop.com", nil
	}
	return "", errors.New("token is malformed")
}

type fakeResolver struct{}

func (fakeResolver) ResolveIdentity(ctx context.Context, email string) (*models.Identity, error) {
	switch email {
	case "buyer@shop.com":
		return &models.Identity{ID: 7, Email: email, Role: models.RoleNameUser, Permissions: []string{"users"}}, nil
	case "guest@shop.com":
		return &models.Identity{ID: 8, Email: email, Permissions: []string{}}, nil
	}
	return nil, apperrors.ErrUserNotFound
}

type mockAuthService struct {
	signupUser    *models.User
	signupErr     error
	loginResp     *models.LoginResponse
	loginErr      error
	profileCalled bool
	lastCreds     models.Credentials
}

func (m *mockAuthService) Signup(ctx context.Context, creds models.Credentials) (*models.User, error) {
	m.lastCreds = creds
	return m.signupUser, m.signupErr
}

func (m *mockAuthService) Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error) {
	m.lastCreds = creds
	return m.loginResp, m.loginErr
}

func (m *mockAuthService) GetProfile(ctx context.Context, identity *models.Identity) (*models.ProfileResponse, error) {
	m.profileCalled = true
	return identity.Profile(), nil
}

type mockUserService struct {
	users      []models.UserWithRelations
	err        error
	lastID     int
	lastPatch  map[string]any
	lastWhere  filter.Where
	lastFilter *filter.Filter
	lastInput  *models.UserInput
	lastOrder  *models.Order
}

func (m *mockUserService) Count(ctx context.Context, where filter.Where) (*models.Count, error) {
	m.lastWhere = where
	return &models.Count{Count: int64(len(m.users))}, m.err
}

func (m *mockUserService) Find(ctx context.Context, f *filter.Filter) ([]models.UserWithRelations, error) {
	m.lastFilter = f
	return m.users, m.err
}

func (m *mockUserService) FindByID(ctx context.Context, id int, f *filter.Filter) (*models.UserWithRelations, error) {
	m.lastID = id
	m.lastFilter = f
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *mockUserService) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (*models.Count, error) {
	m.lastPatch = patch
	m.lastWhere = where
	return &models.Count{Count: 2}, m.err
}

func (m *mockUserService) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	m.lastID = id
	m.lastPatch = patch
	return m.err
}

func (m *mockUserService) ReplaceByID(ctx context.Context, id int, in *models.UserInput) error {
	m.lastID = id
	m.lastInput = in
	return m.err
}

func (m *mockUserService) DeleteByID(ctx context.Context, id int) error {
	m.lastID = id
	return m.err
}

func (m *mockUserService) Products(ctx context.Context, userID int) ([]models.Product, error) {
	m.lastID = userID
	return []models.Product{{ID: 1, Title: "Book", Price: 20, UserID: &userID}}, m.err
}

func (m *mockUserService) Orders(ctx context.Context, userID int) ([]models.Order, error) {
	m.lastID = userID
	return []models.Order{}, m.err
}

func (m *mockUserService) CreateOrder(ctx context.Context, userID int, order *models.Order) (*models.Order, error) {
	m.lastID = userID
	m.lastOrder = order
	if m.err != nil {
		return nil, m.err
	}
	order.ID = 1
	order.UserID = &userID
	return order, nil
}

type mockProductService struct {
	product    *models.Product
	err        error
	called     bool
	lastUserID int
	lastID     int
	lastPatch  map[string]any
}

func (m *mockProductService) Create(ctx context.Context, userID int, r *http.Request) (*models.Product, error) {
	m.called = true
	m.lastUserID = userID
	return m.product, m.err
}

func (m *mockProductService) Count(ctx context.Context, where filter.Where) (*models.Count, error) {
	return &models.Count{Count: 1}, m.err
}

func (m *mockProductService) Find(ctx context.Context, f *filter.Filter) ([]models.ProductWithRelations, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.ProductWithRelations{{Product: *m.product}}, nil
}

func (m *mockProductService) FindByID(ctx context.Context, id int, f *filter.Filter) (*models.ProductWithRelations, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &models.ProductWithRelations{Product: *m.product}, nil
}

func (m *mockProductService) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (*models.Count, error) {
	m.lastPatch = patch
	return &models.Count{Count: 1}, m.err
}

func (m *mockProductService) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	m.lastID = id
	m.lastPatch = patch
	return m.err
}

func (m *mockProductService) ReplaceByID(ctx context.Context, id int, product *models.Product) error {
	m.lastID = id
	return m.err
}

func (m *mockProductService) DeleteByID(ctx context.Context, id int) error {
	m.lastID = id
	return m.err
}

func (m *mockProductService) GetOwner(ctx context.Context, id int) (*models.User, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &models.User{ID: 7, Email: "buyer@shop.com", Password: "hash"}, nil
}

type mockOrderService struct {
	err       error
	lastID    int
	lastOrder *models.Order
}

func (m *mockOrderService) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	m.lastOrder = order
	if m.err != nil {
		return nil, m.err
	}
	order.ID = 3
	return order, nil
}

func (m *mockOrderService) Count(ctx context.Context, where filter.Where) (*models.Count, error) {
	return &models.Count{Count: 3}, m.err
}

func (m *mockOrderService) Find(ctx context.Context, f *filter.Filter) ([]models.OrderWithRelations, error) {
	return []models.OrderWithRelations{{Order: models.Order{ID: 1, Status: "pending"}}}, m.err
}

func (m *mockOrderService) FindByID(ctx context.Context, id int, f *filter.Filter) (*models.OrderWithRelations, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &models.OrderWithRelations{Order: models.Order{ID: id, Status: "pending"}}, nil
}

func (m *mockOrderService) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (*models.Count, error) {
	return &models.Count{Count: 3}, m.err
}

func (m *mockOrderService) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	m.lastID = id
	return m.err
}

func (m *mockOrderService) ReplaceByID(ctx context.Context, id int, order *models.Order) error {
	m.lastID = id
	m.lastOrder = order
	return m.err
}

func (m *mockOrderService) DeleteByID(ctx context.Context, id int) error {
	m.lastID = id
	return m.err
}

func (m *mockOrderService) GetOwner(ctx context.Context, id int) (*models.User, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &models.User{ID: 4, Email: "owner@shop.com"}, nil
}

type mockRoleService struct {
	err       error
	lastID    int
	lastInput *models.RoleInput
	lastPatch map[string]any
}

func (m *mockRoleService) Create(ctx context.Context, in *models.RoleInput) (*models.RoleResponse, error) {
	m.lastInput = in
	if m.err != nil {
		return nil, m.err
	}
	return &models.RoleResponse{ID: 4, NameEn: in.NameEn, Permissions: in.Permissions}, nil
}

func (m *mockRoleService) Count(ctx context.Context, where filter.Where) (*models.Count, error) {
	return &models.Count{Count: 3}, m.err
}

func (m *mockRoleService) Find(ctx context.Context, f *filter.Filter) ([]models.RoleResponse, error) {
	return []models.RoleResponse{
		{ID: 1, NameEn: "superAdmin", Permissions: []string{"superAdmin", "admin", "users"}},
	}, m.err
}

func (m *mockRoleService) FindByID(ctx context.Context, id int, f *filter.Filter) (*models.RoleResponse, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return &models.RoleResponse{ID: id, NameEn: "users", Permissions: []string{"users"}}, nil
}

func (m *mockRoleService) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (*models.Count, error) {
	m.lastPatch = patch
	return &models.Count{Count: 3}, m.err
}

func (m *mockRoleService) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	m.lastID = id
	m.lastPatch = patch
	return m.err
}

func (m *mockRoleService) ReplaceByID(ctx context.Context, id int, in *models.RoleInput) error {
	m.lastID = id
	m.lastInput = in
	return m.err
}

func (m *mockRoleService) DeleteByID(ctx context.Context, id int) error {
	m.lastID = id
	return m.err
}
