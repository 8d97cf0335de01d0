package middleware

import (
	"net/http"

	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/models"
)

// Policy decides whether an identity satisfies a set of required roles
type Policy func(identity *models.Identity, roles []string) bool

// HasAnyRole passes when the identity holds at least one of the roles
func HasAnyRole(identity *models.Identity, roles []string) bool {
	for _, role := range roles {
		if identity.HasRole(role) {
			return true
		}
	}
	return false
}

// HasAllRoles passes when the identity holds every one of the roles
func HasAllRoles(identity *models.Identity, roles []string) bool {
	for _, role := range roles {
		if !identity.HasRole(role) {
			return false
		}
	}
	return true
}

// RoleMiddleware authenticates the request and rejects callers whose roles do not satisfy the policy
func RoleMiddleware(tokens TokenValidator, resolver IdentityResolver, policy Policy, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticate(r, tokens, resolver)
			if err != nil {
				writeError(w, err)
				return
			}

			if !policy(identity, roles) {
				writeError(w, apperrors.ErrInsufficientRole)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}
