package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/auth/middleware"
	"github.com/onlineshop/backend/internal/filter"
	"github.com/onlineshop/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for account and authentication business logic.
type AuthService interface {
	// Method Signup creates a new account with the default role.
	//
	// "creds" parameter contains email and password.
	//
	// If an account with such email already exists, apperrors.ErrEmailExists is returned together with "nil" value.
	Signup(ctx context.Context, creds models.Credentials) (*models.User, error)
	// Method Login checks the credentials and issues an access token.
	//
	// If either field is missing, apperrors.ErrMissingCredentials is returned.
	// If no account matches or the password is wrong, an unauthorized error is returned.
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
	// Method GetProfile returns the public view of the authenticated caller.
	GetProfile(ctx context.Context, identity *models.Identity) (*models.ProfileResponse, error)
}

// UserService is the interface that wraps methods for user management business logic.
type UserService interface {
	// Method Count returns how many users match the where condition.
	Count(ctx context.Context, where filter.Where) (*models.Count, error)
	// Method Find retrieves the users matching the filter.
	//
	// "f" parameter may include "products", "orders" and "roles" relations.
	// Unknown relations are reported as bad request errors.
	Find(ctx context.Context, f *filter.Filter) ([]models.UserWithRelations, error)
	// Method FindByID retrieves one user with the relations requested by "f".
	//
	// If user with such ID does not exist, apperrors.ErrUserNotFound is returned together with "nil" value.
	FindByID(ctx context.Context, id int, f *filter.Filter) (*models.UserWithRelations, error)
	// Method UpdateAll applies the patch to every user matching where and returns how many matched.
	UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (*models.Count, error)
	// Method UpdateByID applies the patch to one user. A patched password is stored hashed.
	UpdateByID(ctx context.Context, id int, patch map[string]any) error
	// Method ReplaceByID overwrites one user.
	ReplaceByID(ctx context.Context, id int, in *models.UserInput) error
	// Method DeleteByID removes one user.
	DeleteByID(ctx context.Context, id int) error
	// Method Products retrieves the products owned by a user.
	Products(ctx context.Context, userID int) ([]models.Product, error)
	// Method Orders retrieves the orders placed by a user.
	Orders(ctx context.Context, userID int) ([]models.Order, error)
	// Method CreateOrder places an order on behalf of a user.
	CreateOrder(ctx context.Context, userID int, order *models.Order) (*models.Order, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	BaseHandler
	authService AuthService
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(authService AuthService, userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
		userService: userService,
	}
}

// RegisterRoutes registers all user handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *UserHandler) RegisterRoutes(r chi.Router, profileMiddleware func(http.Handler) http.Handler) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.With(profileMiddleware).Get("/profile", h.Profile)
		r.Get("/count", h.Count)
		r.Get("/", h.Find)
		r.Patch("/", h.UpdateAll)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Patch("/", h.UpdateByID)
			r.Put("/", h.ReplaceByID)
			r.Delete("/", h.DeleteByID)
			r.Get("/products", h.Products)
			r.Get("/orders", h.Orders)
			r.Post("/orders", h.CreateOrder)
		})
	})
}

// Signup handles POST /users/signup
// @Summary Sign up
// @Description Create an account with the default role
// @Tags users
// @Accept json
// @Produce json
// @Param body body models.Credentials true "Email and password"
// @Success 200 {object} models.User
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Email already exist"
// @Failure 500 {object} ErrorResponse
// @Router /users/signup [post]
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	user, err := h.authService.Signup(r.Context(), creds)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// Login handles POST /users/login
// @Summary Log in
// @Description Check credentials and issue an access token
// @Tags users
// @Accept json
// @Produce json
// @Param body body models.Credentials true "Email and password"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} ErrorResponse "Missing Email or Password"
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /users/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), creds)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// Profile handles GET /users/profile
// @Summary Get profile
// @Description Get the authenticated caller; requires the "users" role
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ProfileResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /users/profile [get]
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.RespondAppError(w, r, apperrors.ErrAuthRequired)
		return
	}

	profile, err := h.authService.GetProfile(r.Context(), identity)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, profile)
}

// Count handles GET /users/count
// @Summary Count users
// @Tags users
// @Produce json
// @Param where query string false "JSON where condition"
// @Success 200 {object} models.Count
// @Failure 400 {object} ErrorResponse
// @Router /users/count [get]
func (h *UserHandler) Count(w http.ResponseWriter, r *http.Request) {
	where, err := parseWhere(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	count, err := h.userService.Count(r.Context(), where)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, count)
}

// Find handles GET /users
// @Summary Find users
// @Tags users
// @Produce json
// @Param filter query string false "JSON filter: where, fields, include (products, orders, roles), order, limit, skip"
// @Success 200 {array} models.UserWithRelations
// @Failure 400 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) Find(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	users, err := h.userService.Find(r.Context(), f)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondProjected(w, r, f, users)
}

// UpdateAll handles PATCH /users
// @Summary Update matching users
// @Tags users
// @Accept json
// @Produce json
// @Param where query string false "JSON where condition"
// @Param body body object true "Fields to update"
// @Success 200 {object} models.Count
// @Failure 400 {object} ErrorResponse
// @Router /users [patch]
func (h *UserHandler) UpdateAll(w http.ResponseWriter, r *http.Request) {
	where, err := parseWhere(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	patch, err := decodePatch(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	count, err := h.userService.UpdateAll(r.Context(), patch, where)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, count)
}

// FindByID handles GET /users/{id}
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Param filter query string false "JSON filter: fields, include"
// @Success 200 {object} models.UserWithRelations
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) FindByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	user, err := h.userService.FindByID(r.Context(), id, f)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondProjected(w, r, f, user)
}

// UpdateByID handles PATCH /users/{id}
// @Summary Update user
// @Tags users
// @Accept json
// @Param id path int true "User ID"
// @Param body body object true "Fields to update"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	patch, err := decodePatch(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	if err := h.userService.UpdateByID(r.Context(), id, patch); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReplaceByID handles PUT /users/{id}
// @Summary Replace user
// @Tags users
// @Accept json
// @Param id path int true "User ID"
// @Param body body models.UserInput true "Full user"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) ReplaceByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	var in models.UserInput
	if err := decodeJSON(r, &in); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	if err := h.userService.ReplaceByID(r.Context(), id, &in); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteByID handles DELETE /users/{id}
// @Summary Delete user
// @Tags users
// @Param id path int true "User ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	if err := h.userService.DeleteByID(r.Context(), id); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Products handles GET /users/{id}/products
// @Summary List the user's products
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.Product
// @Failure 404 {object} ErrorResponse
// @Router /users/{id}/products [get]
func (h *UserHandler) Products(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	products, err := h.userService.Products(r.Context(), id)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, products)
}

// Orders handles GET /users/{id}/orders
// @Summary List the user's orders
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.Order
// @Failure 404 {object} ErrorResponse
// @Router /users/{id}/orders [get]
func (h *UserHandler) Orders(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	orders, err := h.userService.Orders(r.Context(), id)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, orders)
}

// CreateOrder handles POST /users/{id}/orders
// @Summary Place an order for the user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param body body models.Order true "Order"
// @Success 200 {object} models.Order
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /users/{id}/orders [post]
func (h *UserHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	var order models.Order
	if err := decodeJSON(r, &order); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	created, err := h.userService.CreateOrder(r.Context(), id, &order)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, created)
}
