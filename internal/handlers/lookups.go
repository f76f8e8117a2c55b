package handlers

import (
	"context"
	"net/http"

	"walletwatch/internal/models"
	pkghttp "walletwatch/pkg/http"
)

// LookupServiceInterface defines the interface for the reference lists
type LookupServiceInterface interface {
	ListCategories(ctx context.Context) ([]*models.Category, error)
	ListCryptocurrencies(ctx context.Context) ([]*models.Cryptocurrency, error)
}

// LookupHandler serves the public category and cryptocurrency lists
type LookupHandler struct {
	service LookupServiceInterface
}

// NewLookupHandler creates a new LookupHandler
func NewLookupHandler(service LookupServiceInterface) *LookupHandler {
	return &LookupHandler{service: service}
}

// Categories returns the seeded submission categories
func (h *LookupHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// Cryptocurrencies returns the seeded coin list
func (h *LookupHandler) Cryptocurrencies(w http.ResponseWriter, r *http.Request) {
	coins, err := h.service.ListCryptocurrencies(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"cryptocurrencies": coins})
}
