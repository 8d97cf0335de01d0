package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/filter"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, ErrorResponse{Error: message})
}

// RespondAppError maps an error to its status code; internal error text is never exposed
func (h *BaseHandler) RespondAppError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperrors.KindOf(err)
	appErr, ok := apperrors.As(err)
	if !ok || kind == apperrors.KindInternal {
		h.Logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.RespondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.RespondJSON(w, apperrors.HTTPStatus(kind), ErrorResponse{Error: appErr.Message, Details: appErr.Details})
}

// RespondProjected applies the filter's field selection before sending the result
func (h *BaseHandler) RespondProjected(w http.ResponseWriter, r *http.Request, f *filter.Filter, data any) {
	projected, err := f.Project(data)
	if err != nil {
		h.RespondAppError(w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, projected)
}

// parseID reads the {id} path parameter
func parseID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, apperrors.BadRequest("invalid id parameter")
	}
	return id, nil
}

// parseFilter reads the optional "filter" query parameter
func parseFilter(r *http.Request) (*filter.Filter, error) {
	return filter.Parse(r.URL.Query().Get("filter"))
}

// parseWhere reads the optional "where" query parameter
func parseWhere(r *http.Request) (filter.Where, error) {
	return filter.ParseWhere(r.URL.Query().Get("where"))
}

// decodeJSON decodes the request body into v
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.BadRequest("request body is required")
		}
		return apperrors.BadRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// decodePatch decodes a partial update keeping numbers exact
func decodePatch(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var patch map[string]any
	if err := dec.Decode(&patch); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.BadRequest("request body is required")
		}
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	if len(patch) == 0 {
		return nil, apperrors.BadRequest("nothing to update")
	}
	return patch, nil
}
