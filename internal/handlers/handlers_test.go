package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/auth/middleware"
	"github.com/onlineshop/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServices struct {
	auth     *mockAuthService
	users    *mockUserService
	products *mockProductService
	orders   *mockOrderService
	roles    *mockRoleService
}

func newTestRouter(t *testing.T) (http.Handler, *testServices) {
	t.Helper()
	svc := &testServices{
		auth: &mockAuthService{},
		users: &mockUserService{users: []models.UserWithRelations{
			{User: models.User{ID: 1, Email: "admin@shop.com", Password: "hash"}},
			{User: models.User{ID: 2, Email: "buyer@shop.com", Password: "hash"}},
		}},
		products: &mockProductService{product: &models.Product{ID: 1, Title: "Book", Price: 20}},
		orders:   &mockOrderService{},
		roles:    &mockRoleService{},
	}
	logger := zap.NewNop()

	authMiddleware := middleware.AuthMiddleware(fakeTokens{}, fakeResolver{})
	profileMiddleware := middleware.RoleMiddleware(fakeTokens{}, fakeResolver{}, middleware.HasAnyRole, models.RoleNameUser)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		NewUserHandler(svc.auth, svc.users, logger).RegisterRoutes(r, profileMiddleware)
		NewProductHandler(svc.products, logger).RegisterRoutes(r, authMiddleware)
		NewOrderHandler(svc.orders, logger).RegisterRoutes(r)
		NewRoleHandler(svc.roles, logger).RegisterRoutes(r)
	})
	return r, svc
}

func doRequest(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func filterQuery(raw string) string {
	return "filter=" + url.QueryEscape(raw)
}

func TestUserHandler_Auth(t *testing.T) {
	t.Run("signup returns the created user without its hash", func(t *testing.T) {
		h, svc := newTestRouter(t)
		svc.auth.signupUser = &models.User{ID: 3, Email: "new@shop.com", Password: "$2a$hash", RoleID: intPtr(3)}

		w := doRequest(t, h, http.MethodPost, "/api/v1/users/signup", `{"email":"new@shop.com","password":"Secret1!"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody[map[string]any](t, w)
		assert.Equal(t, "new@shop.com", body["email"])
		assert.NotContains(t, body, "password")
		assert.Equal(t, "Secret1!", svc.auth.lastCreds.Password)
	})

	t.Run("signup with existing email", func(t *testing.T) {
		h, svc := newTestRouter(t)
		svc.auth.signupErr = apperrors.ErrEmailExists

		w := doRequest(t, h, http.MethodPost, "/api/v1/users/signup", `{"email":"a@shop.com","password":"x"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Email already exist", decodeBody[ErrorResponse](t, w).Error)
	})

	t.Run("signup with malformed body", func(t *testing.T) {
		h, _ := newTestRouter(t)
		w := doRequest(t, h, http.MethodPost, "/api/v1/users/signup", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("login success", func(t *testing.T) {
		h, svc := newTestRouter(t)
		svc.auth.loginResp = &models.LoginResponse{Token: "jwt", ID: 2, Email: "buyer@shop.com"}

		w := doRequest(t, h, http.MethodPost, "/api/v1/users/login", `{"email":"buyer@shop.com","password":"x"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody[map[string]any](t, w)
		assert.Equal(t, "jwt", body["token"])
		assert.Nil(t, body["roles"])
	})

	t.Run("login failures", func(t *testing.T) {
		tests := []struct {
			err    error
			status int
			msg    string
		}{
			{apperrors.ErrMissingCredentials, http.StatusBadRequest, "Missing Email or Password"},
			{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid email or password"},
			{apperrors.ErrInvalidPassword, http.StatusUnauthorized, "Invalid password"},
			{errors.New("db is down"), http.StatusInternalServerError, "internal server error"},
		}
		for _, tt := range tests {
			h, svc := newTestRouter(t)
			svc.auth.loginErr = tt.err

			w := doRequest(t, h, http.MethodPost, "/api/v1/users/login", `{"email":"a@shop.com"}`)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, decodeBody[ErrorResponse](t, w).Error)
		}
	})
}

func TestUserHandler_Profile(t *testing.T) {
	tests := []struct {
		name           string
		headers        []string
		expectedStatus int
		expectedCalled bool
	}{
		{name: "no token", expectedStatus: http.StatusUnauthorized},
		{name: "invalid token", headers: []string{"Authorization", "Bearer broken"}, expectedStatus: http.StatusUnauthorized},
		{name: "missing role", headers: []string{"Authorization", "Bearer guest-token"}, expectedStatus: http.StatusForbidden},
		{name: "users role", headers: []string{"Authorization", "Bearer good-token"}, expectedStatus: http.StatusOK, expectedCalled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newTestRouter(t)

			w := doRequest(t, h, http.MethodGet, "/api/v1/users/profile", "", tt.headers...)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedCalled, svc.auth.profileCalled)
			if tt.expectedCalled {
				profile := decodeBody[models.ProfileResponse](t, w)
				assert.Equal(t, 7, profile.ID)
				assert.Equal(t, []string{"users"}, profile.Roles)
			}
		})
	}
}

func TestUserHandler_CRUD(t *testing.T) {
	t.Run("count passes where", func(t *testing.T) {
		h, svc := newTestRouter(t)
		w := doRequest(t, h, http.MethodGet, "/api/v1/users/count?where="+url.QueryEscape(`{"email":"a@shop.com"}`), "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(2), decodeBody[models.Count](t, w).Count)
		assert.Equal(t, "a@shop.com", svc.users.lastWhere["email"])
	})

	t.Run("find projects fields", func(t *testing.T) {
		h, _ := newTestRouter(t)
		w := doRequest(t, h, http.MethodGet, "/api/v1/users?"+filterQuery(`{"fields":["email"]}`), "")

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody[[]map[string]any](t, w)
		require.Len(t, body, 2)
		assert.Equal(t, map[string]any{"email": "admin@shop.com"}, body[0])
	})

	t.Run("find with malformed filter", func(t *testing.T) {
		h, _ := newTestRouter(t)
		w := doRequest(t, h, http.MethodGet, "/api/v1/users?filter=%7Bbroken", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("find by id", func(t *testing.T) {
		h, svc := newTestRouter(t)
		w := doRequest(t, h, http.MethodGet, "/api/v1/users/2?"+filterQuery(`{"include":["products"]}`), "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, svc.users.lastID)
		assert.Equal(t, []string{"products"}, svc.users.lastFilter.Include)
	})

	t.Run("find by id not found", func(t *testing.T) {
		h, _ := newTestRouter(t)
		w := doRequest(t, h, http.MethodGet, "/api/v1/users/99", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "user not found", decodeBody[ErrorResponse](t, w).Error)
	})

	t.Run("invalid id", func(t *testing.T) {
		h, _ := newTestRouter(t)
		w := doRequest(t, h, http.MethodGet, "/api/v1/users/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update all returns count", func(t *testing.T) {
		h, svc := newTestRouter(t)
		w := doRequest(t, h, http.MethodPatch, "/api/v1/users?where="+url.QueryEscape(`{"roleId":3}`), `{"roleId":2}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(2), decodeBody[models.Count](t, w).Count)
		assert.Equal(t, json.Number("2"), svc.users.lastPatch["roleId"])
	})

	t.Run("update by id", func(t *testing.T) {
		h, svc := newTestRouter(t)
		w := doRequest(t, h, http.MethodPatch, "/api/v1/users/2", `{"password":"NewPass1!"}`)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Equal(t, 2, svc.users.lastID)
		assert.Equal(t, "NewPass1!", svc.users.lastPatch["password"])
	})

	t.Run("empty patch", func(t *testing.T) {
		h, svc := newTestRouter(t)
		w := doRequest(t, h, http.MethodPatch, "/api/v1/users/2", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, svc.users.lastPatch)
	})

	t.Run("replace by id", func(t *testing.T) {
		h, svc := newTestRouter(t)
		w := doRequest(t, h, http.MethodPut, "/api/v1/users/2", `{"email":"b@shop.com","password":"x","roleId":3}`)

		assert.Equal(t, http.StatusNoContent, w.Code)
		require.NotNil(t, svc.users.lastInput)
		assert.Equal(t, "b@shop.com", svc.users.lastInput.Email)
		assert.Equal(t, 3, *svc.users.lastInput.RoleID)
	})

	t.Run("delete by id", func(t *testing.T) {
		h, svc := newTestRouter(t)
		w := doRequest(t, h, http.MethodDelete, "/api/v1/users/2", "")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, 2, svc.users.lastID)
	})

	t.Run("owned collections", func(t *testing.T) {
		h, svc := newTestRouter(t)

		w := doRequest(t, h, http.MethodGet, "/api/v1/users/7/products", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody[[]models.Product](t, w), 1)

		w = doRequest(t, h, http.MethodGet, "/api/v1/users/7/orders", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "[]\n", w.Body.String())

		w = doRequest(t, h, http.MethodPost, "/api/v1/users/7/orders", `{"status":"new","products":[{"title":"Book"}]}`)
		assert.Equal(t, http.StatusOK, w.Code)
		order := decodeBody[models.Order](t, w)
		assert.Equal(t, 7, *order.UserID)
		assert.Equal(t, "new", svc.users.lastOrder.Status)
	})

	t.Run("internal errors are masked", func(t *testing.T) {
		h, svc := newTestRouter(t)
		svc.users.err = apperrors.Internal("failed to query users", errors.New("dial tcp: refused"))

		w := doRequest(t, h, http.MethodGet, "/api/v1/users", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "dial tcp")
	})
}

func TestProductHandler(t *testing.T) {
	t.Run("create requires authentication before the service runs", func(t *testing.T) {
		h, svc := newTestRouter(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewBufferString("--x--"))
		req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, svc.products.called)
	})

	t.Run("create uses the caller as owner", func(t *testing.T) {
		h, svc := newTestRouter(t)
		w := doRequest(t, h, http.MethodPost, "/api/v1/products", "", "Authorization", "Bearer good-token")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 7, svc.products.lastUserID)
		assert.Equal(t, "Book", decodeBody[models.Product](t, w).Title)
	})

	t.Run("token from cookie", func(t *testing.T) {
		h, svc := newTestRouter(t)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "good-token"})
		w := httptest.NewRecorder()

		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, svc.products.called)
	})

	t.Run("validation errors carry details", func(t *testing.T) {
		h, svc := newTestRouter(t)
		svc.products.err = fmt.Errorf("validating: %w",
			apperrors.UnprocessableEntity("This is errors in data", []string{"title required", "price required"}))

		w := doRequest(t, h, http.MethodPost, "/api/v1/products", "", "Authorization", "Bearer good-token")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := decodeBody[ErrorResponse](t, w)
		assert.Equal(t, "This is errors in data", body.Error)
		assert.Equal(t, []string{"title required", "price required"}, body.Details)
	})

	t.Run("transaction timeout", func(t *testing.T) {
		h, svc := newTestRouter(t)
		svc.products.err = apperrors.Wrap(apperrors.ErrTxTimeout, context.DeadlineExceeded)

		w := doRequest(t, h, http.MethodPost, "/api/v1/products", "", "Authorization", "Bearer good-token")

		assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	})

	t.Run("reads are public", func(t *testing.T) {
		h, svc := newTestRouter(t)

		w := doRequest(t, h, http.MethodGet, "/api/v1/products", "")
		assert.Equal(t, http.StatusOK, w.Code)

		w = doRequest(t, h, http.MethodGet, "/api/v1/products/count", "")
		assert.Equal(t, int64(1), decodeBody[models.Count](t, w).Count)

		w = doRequest(t, h, http.MethodGet, "/api/v1/products/1/user", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, svc.products.lastID)
		assert.NotContains(t, w.Body.String(), "hash")
	})

	t.Run("writes by id", func(t *testing.T) {
		h, svc := newTestRouter(t)

		w := doRequest(t, h, http.MethodPatch, "/api/v1/products/1", `{"price":25}`)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, json.Number("25"), svc.products.lastPatch["price"])

		w = doRequest(t, h, http.MethodPut, "/api/v1/products/1", `{"title":"Pen","price":2}`)
		assert.Equal(t, http.StatusNoContent, w.Code)

		svc.products.err = apperrors.ErrProductNotFound
		w = doRequest(t, h, http.MethodDelete, "/api/v1/products/5", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandler(t *testing.T) {
	h, svc := newTestRouter(t)

	w := doRequest(t, h, http.MethodPost, "/api/v1/orders", `{"status":"new","total":10.5,"shippingAddress":"Main st."}`)
	assert.Equal(t, http.StatusOK, w.Code)
	created := decodeBody[models.Order](t, w)
	assert.Equal(t, 3, created.ID)
	require.NotNil(t, created.Total)
	assert.Equal(t, 10.5, *created.Total)

	w = doRequest(t, h, http.MethodGet, "/api/v1/orders?"+filterQuery(`{"include":"user"}`), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, h, http.MethodGet, "/api/v1/orders/4", "")
	assert.Equal(t, 4, decodeBody[models.Order](t, w).ID)

	w = doRequest(t, h, http.MethodGet, "/api/v1/orders/4/user", "")
	assert.Equal(t, "owner@shop.com", decodeBody[models.User](t, w).Email)

	w = doRequest(t, h, http.MethodPut, "/api/v1/orders/4", `{"status":"delivered"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "delivered", svc.orders.lastOrder.Status)

	w = doRequest(t, h, http.MethodPatch, "/api/v1/orders", `{"status":"closed"}`)
	assert.Equal(t, int64(3), decodeBody[models.Count](t, w).Count)

	svc.orders.err = apperrors.ErrOrderNotFound
	w = doRequest(t, h, http.MethodDelete, "/api/v1/orders/9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 9, svc.orders.lastID)
}

func TestRoleHandler(t *testing.T) {
	h, svc := newTestRouter(t)

	w := doRequest(t, h, http.MethodPost, "/api/v1/roles", `{"name_en":"support","permissions":["users"]}`)
	assert.Equal(t, http.StatusOK, w.Code)
	role := decodeBody[models.RoleResponse](t, w)
	assert.Equal(t, []string{"users"}, role.Permissions)

	w = doRequest(t, h, http.MethodGet, "/api/v1/roles?"+filterQuery(`{"fields":{"name_en":true}}`), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []map[string]any{{"name_en": "superAdmin"}}, decodeBody[[]map[string]any](t, w))

	w = doRequest(t, h, http.MethodGet, "/api/v1/roles/3", "")
	assert.Equal(t, "users", decodeBody[models.RoleResponse](t, w).NameEn)

	w = doRequest(t, h, http.MethodPatch, "/api/v1/roles/3", `{"permissions":["users","admin"]}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []any{"users", "admin"}, svc.roles.lastPatch["permissions"])

	svc.roles.err = apperrors.UnprocessableEntity("This is errors in data", []string{"name_en required"})
	w = doRequest(t, h, http.MethodPut, "/api/v1/roles/3", `{"name_ar":"x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []string{"name_en required"}, decodeBody[ErrorResponse](t, w).Details)
}

func intPtr(i int) *int { return &i }
