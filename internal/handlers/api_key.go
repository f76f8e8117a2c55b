package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"walletwatch/internal/models"
	pkghttp "walletwatch/pkg/http"
)

// APIKeyServiceInterface defines the interface for read-API key management
type APIKeyServiceInterface interface {
	Create(ctx context.Context, owner, tier string) (*models.GeneratedAPIKey, error)
	List(ctx context.Context) ([]*models.APIKey, error)
	Delete(ctx context.Context, id string) error
}

// APIKeyHandler handles API key management HTTP requests
type APIKeyHandler struct {
	service APIKeyServiceInterface
}

// NewAPIKeyHandler creates a new APIKeyHandler
func NewAPIKeyHandler(service APIKeyServiceInterface) *APIKeyHandler {
	return &APIKeyHandler{service: service}
}

// CreateAPIKeyRequest represents a key creation body
type CreateAPIKeyRequest struct {
	Owner string `json:"owner" validate:"required,min=1,max=100"`
	Tier  string `json:"tier" validate:"required,oneof=UNLIMITED LIMITED"`
}

// Create mints a new read-API key. The plaintext appears only here.
// @Summary Create API key
// @Security BearerAuth
// @Accept json
// @Param request body CreateAPIKeyRequest true "Key"
// @Produce json
// @Success 201 {object} models.GeneratedAPIKey
// @Failure 400 {object} pkghttp.ErrorResponse
// @Router /admin/api-keys [post]
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAPIKeyRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	generated, err := h.service.Create(r.Context(), req.Owner, req.Tier)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, generated)
}

// List returns all keys (hashes excluded)
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"api_keys": keys})
}

// Delete revokes a key
func (h *APIKeyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
