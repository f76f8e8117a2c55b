package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"walletwatch/internal/models"
	pkghttp "walletwatch/pkg/http"
)

// SettingsServiceInterface defines the interface for policy configuration
type SettingsServiceInterface interface {
	All(ctx context.Context) (models.SystemSettings, error)
	UpdateSettings(ctx context.Context, updates map[string]string) error
	Blocklist(ctx context.Context) models.Blocklist
	UpdateBlocklist(ctx context.Context, rules models.Blocklist) error
}

// SettingsHandler handles admin policy configuration HTTP requests
type SettingsHandler struct {
	service SettingsServiceInterface
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(service SettingsServiceInterface) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// UpdateSettingsRequest represents a settings update body
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" validate:"required,min=1"`
}

// BlocklistRuleRequest represents one blocklist rule in an update body
type BlocklistRuleRequest struct {
	Type  string `json:"type" validate:"required,oneof=keyword phrase domain"`
	Value string `json:"value" validate:"required,min=1,max=200"`
}

// UpdateBlocklistRequest represents a blocklist replacement body
type UpdateBlocklistRequest struct {
	Rules []BlocklistRuleRequest `json:"rules" validate:"dive"`
}

// List returns every stored setting
// @Summary List settings
// @Security BearerAuth
// @Produce json
// @Success 200
// @Router /admin/settings [get]
func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.All(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

// Update upserts policy settings. Changes apply to the next request with no
// restart.
// @Summary Update settings
// @Security BearerAuth
// @Accept json
// @Param request body UpdateSettingsRequest true "Settings"
// @Produce json
// @Success 200
// @Failure 400 {object} pkghttp.ErrorResponse
// @Router /admin/settings [put]
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.UpdateSettings(r.Context(), req.Settings); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"updated": true})
}

// GetBlocklist returns the current auto-reject rules
func (h *SettingsHandler) GetBlocklist(w http.ResponseWriter, r *http.Request) {
	rules := h.service.Blocklist(r.Context())
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

// UpdateBlocklist replaces the auto-reject rule set
func (h *SettingsHandler) UpdateBlocklist(w http.ResponseWriter, r *http.Request) {
	var req UpdateBlocklistRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	rules := make(models.Blocklist, 0, len(req.Rules))
	for _, rule := range req.Rules {
		rules = append(rules, models.BlocklistRule{Type: rule.Type, Value: rule.Value})
	}

	if err := h.service.UpdateBlocklist(r.Context(), rules); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"rules": rules})
}
