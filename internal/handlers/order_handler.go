package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/onlineshop/backend/internal/filter"
	"github.com/onlineshop/backend/internal/models"
	"go.uber.org/zap"
)

// OrderService is the interface that wraps methods for order business logic.
type OrderService interface {
	// Method Create stores a new order. An order without a status is rejected as unprocessable.
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	Count(ctx context.Context, where filter.Where) (*models.Count, error)
	// Method Find retrieves the orders matching the filter; "user" may be included.
	Find(ctx context.Context, f *filter.Filter) ([]models.OrderWithRelations, error)
	// Method FindByID retrieves one order.
	//
	// If order with such ID does not exist, apperrors.ErrOrderNotFound is returned together with "nil" value.
	FindByID(ctx context.Context, id int, f *filter.Filter) (*models.OrderWithRelations, error)
	UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (*models.Count, error)
	UpdateByID(ctx context.Context, id int, patch map[string]any) error
	ReplaceByID(ctx context.Context, id int, order *models.Order) error
	DeleteByID(ctx context.Context, id int) error
	// Method GetOwner retrieves the user who placed an order.
	GetOwner(ctx context.Context, id int) (*models.User, error)
}

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	BaseHandler
	orderService OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		orderService: orderService,
	}
}

// RegisterRoutes registers all order handler routes
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.Create)
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

// Create handles POST /orders
// @Summary Create order
// @Tags orders
// @Accept json
// @Produce json
// @Param body body models.Order true "Order"
// @Success 200 {object} models.Order
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var order models.Order
	if err := decodeJSON(r, &order); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	created, err := h.orderService.Create(r.Context(), &order)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, created)
}

// Count handles GET /orders/count
// @Summary Count orders
// @Tags orders
// @Produce json
// @Param where query string false "JSON where condition"
// @Success 200 {object} models.Count
// @Router /orders/count [get]
func (h *OrderHandler) Count(w http.ResponseWriter, r *http.Request) {
	where, err := parseWhere(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	count, err := h.orderService.Count(r.Context(), where)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, count)
}

// Find handles GET /orders
// @Summary Find orders
// @Tags orders
// @Produce json
// @Param filter query string false "JSON filter: where, fields, include (user), order, limit, skip"
// @Success 200 {array} models.OrderWithRelations
// @Router /orders [get]
func (h *OrderHandler) Find(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	orders, err := h.orderService.Find(r.Context(), f)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondProjected(w, r, f, orders)
}

// UpdateAll handles PATCH /orders
// @Summary Update matching orders
// @Tags orders
// @Accept json
// @Produce json
// @Param where query string false "JSON where condition"
// @Param body body object true "Fields to update"
// @Success 200 {object} models.Count
// @Router /orders [patch]
func (h *OrderHandler) UpdateAll(w http.ResponseWriter, r *http.Request) {
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

	count, err := h.orderService.UpdateAll(r.Context(), patch, where)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, count)
}

// FindByID handles GET /orders/{id}
// @Summary Get order by ID
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Param filter query string false "JSON filter: fields, include"
// @Success 200 {object} models.OrderWithRelations
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) FindByID(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.orderService.FindByID(r.Context(), id, f)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondProjected(w, r, f, order)
}

// UpdateByID handles PATCH /orders/{id}
// @Summary Update order
// @Tags orders
// @Accept json
// @Param id path int true "Order ID"
// @Param body body object true "Fields to update"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [patch]
func (h *OrderHandler) UpdateByID(w http.ResponseWriter, r *http.Request) {
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

	if err := h.orderService.UpdateByID(r.Context(), id, patch); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReplaceByID handles PUT /orders/{id}
// @Summary Replace order
// @Tags orders
// @Accept json
// @Param id path int true "Order ID"
// @Param body body models.Order true "Full order"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [put]
func (h *OrderHandler) ReplaceByID(w http.ResponseWriter, r *http.Request) {
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

	if err := h.orderService.ReplaceByID(r.Context(), id, &order); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteByID handles DELETE /orders/{id}
// @Summary Delete order
// @Tags orders
// @Param id path int true "Order ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id} [delete]
func (h *OrderHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	if err := h.orderService.DeleteByID(r.Context(), id); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetOwner handles GET /orders/{id}/user
// @Summary Get order owner
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id}/user [get]
func (h *OrderHandler) GetOwner(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	owner, err := h.orderService.GetOwner(r.Context(), id)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, owner)
}
