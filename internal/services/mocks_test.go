package services

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/filter"
	"github.com/onlineshop/backend/internal/models"
	"github.com/onlineshop/backend/internal/upload"
)

func intPtr(i int) *int { return &i }

// mockUserRepository is an in-memory implementation of UserRepository
type mockUserRepository struct {
	users       map[int]*models.User
	nextID      int
	err         error
	lastPatch   map[string]any
	lastReplace *models.User
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: map[int]*models.User{}, nextID: 1}
	for _, u := range users {
		m.users[u.ID] = u
		if u.ID >= m.nextID {
			m.nextID = u.ID + 1
		}
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.err != nil {
		return m.err
	}
	user.ID = m.nextID
	m.nextID++
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	found := *u
	return &found, nil
}

func (m *mockUserRepository) FindByIDs(ctx context.Context, ids []int) ([]models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	users := []models.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (m *mockUserRepository) Find(ctx context.Context, f *filter.Filter) ([]models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	users := []models.User{}
	for id := 1; id < m.nextID; id++ {
		if u, ok := m.users[id]; ok {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (m *mockUserRepository) Count(ctx context.Context, where filter.Where) (int64, error) {
	return int64(len(m.users)), m.err
}

func (m *mockUserRepository) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (int64, error) {
	m.lastPatch = patch
	return int64(len(m.users)), m.err
}

func (m *mockUserRepository) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	m.lastPatch = patch
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (m *mockUserRepository) ReplaceByID(ctx context.Context, id int, user *models.User) error {
	m.lastReplace = user
	if _, ok := m.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	return m.err
}

func (m *mockUserRepository) DeleteByID(ctx context.Context, id int) error {
	if _, ok := m.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(m.users, id)
	return m.err
}

// mockRoleRepository is an in-memory implementation of RoleRepository
type mockRoleRepository struct {
	roles     map[int]*models.Role
	err       error
	lastPatch map[string]any
	created   *models.Role
}

func newMockRoleRepository(roles ...*models.Role) *mockRoleRepository {
	m := &mockRoleRepository{roles: map[int]*models.Role{}}
	for _, r := range roles {
		m.roles[r.ID] = r
	}
	return m
}

func seededRoles() *mockRoleRepository {
	return newMockRoleRepository(
		&models.Role{ID: models.RoleIDSuperAdmin, NameEn: models.RoleNameSuperAdmin, Permissions: `["superAdmin","admin","users"]`, MainRole: 1},
		&models.Role{ID: models.RoleIDAdmin, NameEn: models.RoleNameAdmin, Permissions: `["admin","users"]`, AdminRole: 1},
		&models.Role{ID: models.RoleIDUser, NameEn: models.RoleNameUser, Permissions: `["users"]`},
	)
}

func (m *mockRoleRepository) Create(ctx context.Context, role *models.Role) error {
	if m.err != nil {
		return m.err
	}
	role.ID = len(m.roles) + 1
	m.roles[role.ID] = role
	m.created = role
	return nil
}

func (m *mockRoleRepository) FindByID(ctx context.Context, id int) (*models.Role, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.roles[id]
	if !ok {
		return nil, apperrors.ErrRoleNotFound
	}
	return r, nil
}

func (m *mockRoleRepository) FindByIDs(ctx context.Context, ids []int) ([]models.Role, error) {
	if m.err != nil {
		return nil, m.err
	}
	roles := []models.Role{}
	for _, id := range ids {
		if r, ok := m.roles[id]; ok {
			roles = append(roles, *r)
		}
	}
	return roles, nil
}

func (m *mockRoleRepository) Find(ctx context.Context, f *filter.Filter) ([]models.Role, error) {
	if m.err != nil {
		return nil, m.err
	}
	roles := []models.Role{}
	for id := 1; id <= len(m.roles); id++ {
		if r, ok := m.roles[id]; ok {
			roles = append(roles, *r)
		}
	}
	return roles, nil
}

func (m *mockRoleRepository) Count(ctx context.Context, where filter.Where) (int64, error) {
	return int64(len(m.roles)), m.err
}

func (m *mockRoleRepository) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (int64, error) {
	m.lastPatch = patch
	return int64(len(m.roles)), m.err
}

func (m *mockRoleRepository) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	m.lastPatch = patch
	if _, ok := m.roles[id]; !ok {
		return apperrors.ErrRoleNotFound
	}
	return m.err
}

func (m *mockRoleRepository) ReplaceByID(ctx context.Context, id int, role *models.Role) error {
	if _, ok := m.roles[id]; !ok {
		return apperrors.ErrRoleNotFound
	}
	m.roles[id] = role
	return m.err
}

func (m *mockRoleRepository) DeleteByID(ctx context.Context, id int) error {
	if _, ok := m.roles[id]; !ok {
		return apperrors.ErrRoleNotFound
	}
	delete(m.roles, id)
	return m.err
}

// mockProductRepository is an in-memory implementation of ProductRepository
type mockProductRepository struct {
	products    map[int]*models.Product
	nextID      int
	err         error
	createTxErr error
	createdTx   *sql.Tx
}

func newMockProductRepository(products ...*models.Product) *mockProductRepository {
	m := &mockProductRepository{products: map[int]*models.Product{}, nextID: 1}
	for _, p := range products {
		m.products[p.ID] = p
		if p.ID >= m.nextID {
			m.nextID = p.ID + 1
		}
	}
	return m
}

func (m *mockProductRepository) Create(ctx context.Context, product *models.Product) error {
	if m.err != nil {
		return m.err
	}
	product.ID = m.nextID
	m.nextID++
	stored := *product
	m.products[product.ID] = &stored
	return nil
}

func (m *mockProductRepository) CreateTx(ctx context.Context, tx *sql.Tx, product *models.Product) error {
	m.createdTx = tx
	if m.createTxErr != nil {
		return m.createTxErr
	}
	return m.Create(ctx, product)
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int) (*models.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, apperrors.ErrProductNotFound
	}
	found := *p
	return &found, nil
}

func (m *mockProductRepository) all() []models.Product {
	products := []models.Product{}
	for id := 1; id < m.nextID; id++ {
		if p, ok := m.products[id]; ok {
			products = append(products, *p)
		}
	}
	return products
}

func (m *mockProductRepository) Find(ctx context.Context, f *filter.Filter) ([]models.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.all(), nil
}

func (m *mockProductRepository) FindByUserID(ctx context.Context, userID int) ([]models.Product, error) {
	return m.FindByUserIDs(ctx, []int{userID})
}

func (m *mockProductRepository) FindByUserIDs(ctx context.Context, userIDs []int) ([]models.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	products := []models.Product{}
	for _, p := range m.all() {
		for _, id := range userIDs {
			if p.UserID != nil && *p.UserID == id {
				products = append(products, p)
			}
		}
	}
	return products, nil
}

func (m *mockProductRepository) Count(ctx context.Context, where filter.Where) (int64, error) {
	return int64(len(m.products)), m.err
}

func (m *mockProductRepository) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (int64, error) {
	return int64(len(m.products)), m.err
}

func (m *mockProductRepository) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	if _, ok := m.products[id]; !ok {
		return apperrors.ErrProductNotFound
	}
	return m.err
}

func (m *mockProductRepository) ReplaceByID(ctx context.Context, id int, product *models.Product) error {
	if _, ok := m.products[id]; !ok {
		return apperrors.ErrProductNotFound
	}
	replaced := *product
	replaced.ID = id
	m.products[id] = &replaced
	return m.err
}

func (m *mockProductRepository) DeleteByID(ctx context.Context, id int) error {
	if _, ok := m.products[id]; !ok {
		return apperrors.ErrProductNotFound
	}
	delete(m.products, id)
	return m.err
}

// mockOrderRepository is an in-memory implementation of OrderRepository
type mockOrderRepository struct {
	orders map[int]*models.Order
	nextID int
	err    error
}

func newMockOrderRepository(orders ...*models.Order) *mockOrderRepository {
	m := &mockOrderRepository{orders: map[int]*models.Order{}, nextID: 1}
	for _, o := range orders {
		m.orders[o.ID] = o
		if o.ID >= m.nextID {
			m.nextID = o.ID + 1
		}
	}
	return m
}

func (m *mockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if m.err != nil {
		return m.err
	}
	order.ID = m.nextID
	m.nextID++
	stored := *order
	m.orders[order.ID] = &stored
	return nil
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id int) (*models.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, apperrors.ErrOrderNotFound
	}
	found := *o
	return &found, nil
}

func (m *mockOrderRepository) all() []models.Order {
	orders := []models.Order{}
	for id := 1; id < m.nextID; id++ {
		if o, ok := m.orders[id]; ok {
			orders = append(orders, *o)
		}
	}
	return orders
}

func (m *mockOrderRepository) Find(ctx context.Context, f *filter.Filter) ([]models.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.all(), nil
}

func (m *mockOrderRepository) FindByUserID(ctx context.Context, userID int) ([]models.Order, error) {
	return m.FindByUserIDs(ctx, []int{userID})
}

func (m *mockOrderRepository) FindByUserIDs(ctx context.Context, userIDs []int) ([]models.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	orders := []models.Order{}
	for _, o := range m.all() {
		for _, id := range userIDs {
			if o.UserID != nil && *o.UserID == id {
				orders = append(orders, o)
			}
		}
	}
	return orders, nil
}

func (m *mockOrderRepository) Count(ctx context.Context, where filter.Where) (int64, error) {
	return int64(len(m.orders)), m.err
}

func (m *mockOrderRepository) UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (int64, error) {
	return int64(len(m.orders)), m.err
}

func (m *mockOrderRepository) UpdateByID(ctx context.Context, id int, patch map[string]any) error {
	if _, ok := m.orders[id]; !ok {
		return apperrors.ErrOrderNotFound
	}
	return m.err
}

func (m *mockOrderRepository) ReplaceByID(ctx context.Context, id int, order *models.Order) error {
	if _, ok := m.orders[id]; !ok {
		return apperrors.ErrOrderNotFound
	}
	replaced := *order
	replaced.ID = id
	m.orders[id] = &replaced
	return m.err
}

func (m *mockOrderRepository) DeleteByID(ctx context.Context, id int) error {
	if _, ok := m.orders[id]; !ok {
		return apperrors.ErrOrderNotFound
	}
	delete(m.orders, id)
	return m.err
}

// mockUploader returns a fixed parse result and records discarded files
type mockUploader struct {
	result     *upload.Result
	err        error
	discarded  []upload.File
	discardErr error
}

func (m *mockUploader) Parse(r *http.Request) (*upload.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockUploader) Discard(ctx context.Context, files []upload.File) error {
	m.discarded = append(m.discarded, files...)
	return m.discardErr
}
