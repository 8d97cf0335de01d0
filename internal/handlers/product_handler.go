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

// ProductService is the interface that wraps methods for product business logic.
type ProductService interface {
	// Method Create stores a product from a multipart request in one transaction.
	//
	// "userID" parameter is the owner of the new product.
	// "r" parameter carries the "title" and "price" fields and an optional image file.
	//
	// If the fields are invalid, an unprocessable entity error with field messages is returned.
	// On any failure the uploaded files are removed and no product is stored.
	Create(ctx context.Context, userID int, r *http.Request) (*models.Product, error)
	// Method Count returns how many products match the where condition.
	Count(ctx context.Context, where filter.Where) (*models.Count, error)
	// Method Find retrieves the products matching the filter; "user" may be included.
	Find(ctx context.Context, f *filter.Filter) ([]models.ProductWithRelations, error)
	// Method FindByID retrieves one product.
	//
	// If product with such ID does not exist, apperrors.ErrProductNotFound is returned together with "nil" value.
	FindByID(ctx context.Context, id int, f *filter.Filter) (*models.ProductWithRelations, error)
	UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (*models.Count, error)
	UpdateByID(ctx context.Context, id int, patch map[string]any) error
	ReplaceByID(ctx context.Context, id int, product *models.Product) error
	DeleteByID(ctx context.Context, id int) error
	// Method GetOwner retrieves the user who owns a product.
	GetOwner(ctx context.Context, id int) (*models.User, error)
}

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	BaseHandler
	productService ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		productService: productService,
	}
}

// RegisterRoutes registers all product handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.With(authMiddleware).Post("/", h.Create)
		r.Get("/count", h.Count)
		r.Get("/", h.Find)
		r.Patch("/", h.UpdateAll)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Patch("/", h.UpdateByID)
			r.Put("/", h.ReplaceByID)
			r.Delete("/", h.DeleteByID)
			r.Get("/user", h.GetOwner)
		})
	})
}

// Create handles POST /products
// @Summary Create product
// @Description Create a product owned by the caller from a multipart form carrying its image
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Product title"
// @Param price formData integer true "Product price"
// @Param image formData file true "Product image"
// @Success 200 {object} models.Product
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "This is errors in data"
// @Failure 504 {object} ErrorResponse "transaction timed out"
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		h.RespondAppError(w, r, apperrors.ErrAuthRequired)
		return
	}

	product, err := h.productService.Create(r.Context(), identity.ID, r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, product)
}

// Count handles GET /products/count
// @Summary Count products
// @Tags products
// @Produce json
// @Param where query string false "JSON where condition"
// @Success 200 {object} models.Count
// @Failure 400 {object} ErrorResponse
// @Router /products/count [get]
func (h *ProductHandler) Count(w http.ResponseWriter, r *http.Request) {
	where, err := parseWhere(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	count, err := h.productService.Count(r.Context(), where)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, count)
}

// Find handles GET /products
// @Summary Find products
// @Tags products
// @Produce json
// @Param filter query string false "JSON filter: where, fields, include (user), order, limit, skip"
// @Success 200 {array} models.ProductWithRelations
// @Failure 400 {object} ErrorResponse
// @Router /products [get]
func (h *ProductHandler) Find(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	products, err := h.productService.Find(r.Context(), f)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondProjected(w, r, f, products)
}

// UpdateAll handles PATCH /products
// @Summary Update matching products
// @Tags products
// @Accept json
// @Produce json
// @Param where query string false "JSON where condition"
// @Param body body object true "Fields to update"
// @Success 200 {object} models.Count
// @Failure 400 {object} ErrorResponse
// @Router /products [patch]
func (h *ProductHandler) UpdateAll(w http.ResponseWriter, r *http.Request) {
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

	count, err := h.productService.UpdateAll(r.Context(), patch, where)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, count)
}

// FindByID handles GET /products/{id}
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Param filter query string false "JSON filter: fields, include"
// @Success 200 {object} models.ProductWithRelations
// @Failure 404 {object} ErrorResponse
// @Router /products/{id} [get]
func (h *ProductHandler) FindByID(w http.ResponseWriter, r *http.Request) {
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

	product, err := h.productService.FindByID(r.Context(), id, f)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondProjected(w, r, f, product)
}

// UpdateByID handles PATCH /products/{id}
// @Summary Update product
// @Tags products
// @Accept json
// @Param id path int true "Product ID"
// @Param body body object true "Fields to update"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /products/{id} [patch]
func (h *ProductHandler) UpdateByID(w http.ResponseWriter, r *http.Request) {
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

	if err := h.productService.UpdateByID(r.Context(), id, patch); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReplaceByID handles PUT /products/{id}
// @Summary Replace product
// @Tags products
// @Accept json
// @Param id path int true "Product ID"
// @Param body body models.Product true "Full product"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /products/{id} [put]
func (h *ProductHandler) ReplaceByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	var product models.Product
	if err := decodeJSON(r, &product); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	if err := h.productService.ReplaceByID(r.Context(), id, &product); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteByID handles DELETE /products/{id}
// @Summary Delete product
// @Tags products
// @Param id path int true "Product ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /products/{id} [delete]
func (h *ProductHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	if err := h.productService.DeleteByID(r.Context(), id); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetOwner handles GET /products/{id}/user
// @Summary Get product owner
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /products/{id}/user [get]
func (h *ProductHandler) GetOwner(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	owner, err := h.productService.GetOwner(r.Context(), id)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, owner)
}
