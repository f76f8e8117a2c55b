package auth

import (
	"context"
	"net/http"
	"strings"

	"walletwatch/internal/models"
	pkghttp "walletwatch/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// AdminContextKey is the key for storing admin session claims in context
	AdminContextKey contextKey = "admin"
)

// RequireAdmin validates the bearer session token and injects the admin
// claims into the request context. Unauthenticated callers never reach the
// protected handlers.
func RequireAdmin(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, "invalid authorization header format")
				return
			}

			claims, err := tm.ValidateToken(parts[1])
			if err != nil {
				pkghttp.WriteUnauthorized(w, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), AdminContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdminFromContext extracts admin session claims from the request context.
// Returns nil if the request was not authenticated.
func GetAdminFromContext(r *http.Request) *models.SessionClaims {
	claims, ok := r.Context().Value(AdminContextKey).(*models.SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
