package handlers

import (
	"context"
	"net/http"
	"strconv"

	"walletwatch/internal/models"
	pkghttp "walletwatch/pkg/http"
)

// AuditServiceInterface defines the interface for reading the audit trail
type AuditServiceInterface interface {
	ListRecent(ctx context.Context, eventType string, limit int) ([]*models.AuditEvent, error)
}

// AuditHandler handles audit trail HTTP requests
type AuditHandler struct {
	service AuditServiceInterface
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(service AuditServiceInterface) *AuditHandler {
	return &AuditHandler{service: service}
}

// List returns recent audit events, newest first
// @Summary List audit events
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.AuditEvent
// @Router /admin/audit [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		limit = n
	}

	events, err := h.service.ListRecent(r.Context(), q.Get("type"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
