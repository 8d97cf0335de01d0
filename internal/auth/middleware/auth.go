// Package middleware authenticates requests and enforces role policies
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/onlineshop/backend/internal/apperrors"
	"github.com/onlineshop/backend/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenValidator verifies an access token and returns the email it was issued for
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// IdentityResolver looks up the current identity of a token subject
type IdentityResolver interface {
	// ResolveIdentity returns the user with the given email together with its role name and permissions.
	// Returns an error of kind NotFound if no such user exists.
	ResolveIdentity(ctx context.Context, email string) (*models.Identity, error)
}

// AuthMiddleware validates the access token and resolves the caller's identity from the store
func AuthMiddleware(tokens TokenValidator, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticate(r, tokens, resolver)
			if err != nil {
				writeError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// authenticate resolves the identity of the request's bearer, fresh on every call
func authenticate(r *http.Request, tokens TokenValidator, resolver IdentityResolver) (*models.Identity, error) {
	token := extractToken(r)
	if token == "" {
		return nil, apperrors.ErrAuthRequired
	}

	email, err := tokens.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}

	identity, err := resolver.ResolveIdentity(r.Context(), email)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.Wrap(apperrors.ErrInvalidToken, err)
		}
		return nil, err
	}

	return identity, nil
}

// extractToken reads the token from the Authorization header, falling back to the access_token cookie
func extractToken(r *http.Request) string {
	// Expected format: "Bearer <token>"
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

func writeError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)
	message := "internal server error"
	if appErr, ok := apperrors.As(err); ok && kind != apperrors.KindInternal {
		message = appErr.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.HTTPStatus(kind))
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// WithIdentity stores the identity in the context
func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity retrieves the authenticated identity from context
func GetIdentity(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*models.Identity)
	return identity, ok && identity != nil
}
