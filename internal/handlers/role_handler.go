package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/onlineshop/backend/internal/filter"
	"github.com/onlineshop/backend/internal/models"
	"go.uber.org/zap"
)

// RoleService is the interface that wraps methods for role business logic.
type RoleService interface {
	// Method Create stores a new role; its permissions are kept as a serialized list.
	Create(ctx context.Context, in *models.RoleInput) (*models.RoleResponse, error)
	Count(ctx context.Context, where filter.Where) (*models.Count, error)
	Find(ctx context.Context, f *filter.Filter) ([]models.RoleResponse, error)
	// Method FindByID retrieves one role.
	//
	// If role with such ID does not exist, apperrors.ErrRoleNotFound is returned together with "nil" value.
	FindByID(ctx context.Context, id int, f *filter.Filter) (*models.RoleResponse, error)
	UpdateAll(ctx context.Context, patch map[string]any, where filter.Where) (*models.Count, error)
	UpdateByID(ctx context.Context, id int, patch map[string]any) error
	ReplaceByID(ctx context.Context, id int, in *models.RoleInput) error
	DeleteByID(ctx context.Context, id int) error
}

// RoleHandler handles role-related HTTP requests
type RoleHandler struct {
	BaseHandler
	roleService RoleService
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(roleService RoleService, logger *zap.Logger) *RoleHandler {
	return &RoleHandler{
		BaseHandler: BaseHandler{Logger: logger},
		roleService: roleService,
	}
}

// RegisterRoutes registers all role handler routes
func (h *RoleHandler) RegisterRoutes(r chi.Router) {
	r.Route("/roles", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/count", h.Count)
		r.Get("/", h.Find)
		r.Patch("/", h.UpdateAll)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Patch("/", h.UpdateByID)
			r.Put("/", h.ReplaceByID)
			r.Delete("/", h.DeleteByID)
		})
	})
}

// Create handles POST /roles
// @Summary Create role
// @Tags roles
// @Accept json
// @Produce json
// @Param body body models.RoleInput true "Role"
// @Success 200 {object} models.RoleResponse
// @Failure 422 {object} ErrorResponse
// @Router /roles [post]
func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.RoleInput
	if err := decodeJSON(r, &in); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	role, err := h.roleService.Create(r.Context(), &in)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, role)
}

// Count handles GET /roles/count
// @Summary Count roles
// @Tags roles
// @Produce json
// @Param where query string false "JSON where condition"
// @Success 200 {object} models.Count
// @Router /roles/count [get]
func (h *RoleHandler) Count(w http.ResponseWriter, r *http.Request) {
	where, err := parseWhere(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	count, err := h.roleService.Count(r.Context(), where)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, count)
}

// Find handles GET /roles
// @Summary Find roles
// @Tags roles
// @Produce json
// @Param filter query string false "JSON filter: where, fields, order, limit, skip"
// @Success 200 {array} models.RoleResponse
// @Router /roles [get]
func (h *RoleHandler) Find(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	roles, err := h.roleService.Find(r.Context(), f)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondProjected(w, r, f, roles)
}

// UpdateAll handles PATCH /roles
// @Summary Update matching roles
// @Tags roles
// @Accept json
// @Produce json
// @Param where query string false "JSON where condition"
// @Param body body object true "Fields to update"
// @Success 200 {object} models.Count
// @Router /roles [patch]
func (h *RoleHandler) UpdateAll(w http.ResponseWriter, r *http.Request) {
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

	count, err := h.roleService.UpdateAll(r.Context(), patch, where)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, count)
}

// FindByID handles GET /roles/{id}
// @Summary Get role by ID
// @Tags roles
// @Produce json
// @Param id path int true "Role ID"
// @Success 200 {object} models.RoleResponse
// @Failure 404 {object} ErrorResponse
// @Router /roles/{id} [get]
func (h *RoleHandler) FindByID(w http.ResponseWriter, r *http.Request) {
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

	role, err := h.roleService.FindByID(r.Context(), id, f)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	h.RespondProjected(w, r, f, role)
}

// UpdateByID handles PATCH /roles/{id}
// @Summary Update role
// @Tags roles
// @Accept json
// @Param id path int true "Role ID"
// @Param body body object true "Fields to update"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /roles/{id} [patch]
func (h *RoleHandler) UpdateByID(w http.ResponseWriter, r *http.Request) {
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

	if err := h.roleService.UpdateByID(r.Context(), id, patch); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReplaceByID handles PUT /roles/{id}
// @Summary Replace role
// @Tags roles
// @Accept json
// @Param id path int true "Role ID"
// @Param body body models.RoleInput true "Full role"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /roles/{id} [put]
func (h *RoleHandler) ReplaceByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	var in models.RoleInput
	if err := decodeJSON(r, &in); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	if err := h.roleService.ReplaceByID(r.Context(), id, &in); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteByID handles DELETE /roles/{id}
// @Summary Delete role
// @Tags roles
// @Param id path int true "Role ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /roles/{id} [delete]
func (h *RoleHandler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	if err := h.roleService.DeleteByID(r.Context(), id); err != nil {
		h.RespondAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
