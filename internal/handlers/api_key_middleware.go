package handlers

import (
	"context"
	"net/http"

	"walletwatch/internal/models"
	pkghttp "walletwatch/pkg/http"
)

// APIKeyAuthenticator resolves a presented plaintext key to its record
type APIKeyAuthenticator interface {
	Authenticate(ctx context.Context, plainKey string) (*models.APIKey, error)
}

type apiKeyContextKey string

// APIKeyContextKey is the key for the authenticated API key in the context
const APIKeyContextKey apiKeyContextKey = "api_key"

// RequireAPIKey gates the public read API behind an X-API-Key header.
func RequireAPIKey(authn APIKeyAuthenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			plainKey := r.Header.Get("X-API-Key")
			if plainKey == "" {
				pkghttp.WriteUnauthorized(w, "missing API key")
				return
			}

			key, err := authn.Authenticate(r.Context(), plainKey)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "invalid API key")
				return
			}

			ctx := context.WithValue(r.Context(), APIKeyContextKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAPIKeyFromContext extracts the authenticated API key from the request
// context. Returns nil if the request was not key-authenticated.
func GetAPIKeyFromContext(r *http.Request) *models.APIKey {
	key, ok := r.Context().Value(APIKeyContextKey).(*models.APIKey)
	if !ok {
		return nil
	}
	return key
}
