package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"walletwatch/internal/auth"
	"walletwatch/internal/models"
	"walletwatch/internal/services"
	pkghttp "walletwatch/pkg/http"
)

// TwoFactorServiceInterface defines the interface for second-factor enrollment
type TwoFactorServiceInterface interface {
	Setup(ctx context.Context, adminID string) (*services.Enrollment, error)
	VerifyAndEnable(ctx context.Context, adminID, code string) error
	Disable(ctx context.Context, adminID string) error
	Status(ctx context.Context, adminID string) (*services.TwoFactorStatus, error)
}

// TwoFactorHandler handles second-factor enrollment HTTP requests
type TwoFactorHandler struct {
	service TwoFactorServiceInterface
}

// NewTwoFactorHandler creates a new TwoFactorHandler
func NewTwoFactorHandler(service TwoFactorServiceInterface) *TwoFactorHandler {
	return &TwoFactorHandler{service: service}
}

// VerifyTwoFactorRequest represents the enrollment confirmation body
type VerifyTwoFactorRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// Setup generates a fresh enrollment secret and QR code
// @Summary Begin second-factor enrollment
// @Security BearerAuth
// @Produce json
// @Success 200 {object} services.Enrollment
// @Router /admin/2fa/setup [post]
func (h *TwoFactorHandler) Setup(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	enrollment, err := h.service.Setup(r.Context(), claims.AdminID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, enrollment)
}

// Verify confirms the pending secret with a live code
// @Summary Confirm second-factor enrollment
// @Security BearerAuth
// @Accept json
// @Param request body VerifyTwoFactorRequest true "Code"
// @Produce json
// @Success 200
// @Failure 400 {object} pkghttp.ErrorResponse
// @Router /admin/2fa/verify [post]
func (h *TwoFactorHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req VerifyTwoFactorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.VerifyAndEnable(r.Context(), claims.AdminID, req.Code); err != nil {
		if errors.Is(err, models.ErrTwoFactorInvalidCode) {
			pkghttp.WriteError(w, http.StatusBadRequest, "invalid_code", "Invalid two-factor token")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"enabled": true})
}

// Disable turns second-factor enrollment off
// @Summary Disable second factor
// @Security BearerAuth
// @Produce json
// @Success 200
// @Router /admin/2fa [delete]
func (h *TwoFactorHandler) Disable(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	if err := h.service.Disable(r.Context(), claims.AdminID); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"enabled": false})
}

// Status reports the current enrollment state
// @Summary Second-factor status
// @Security BearerAuth
// @Produce json
// @Success 200 {object} services.TwoFactorStatus
// @Router /admin/2fa [get]
func (h *TwoFactorHandler) Status(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	status, err := h.service.Status(r.Context(), claims.AdminID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, status)
}
