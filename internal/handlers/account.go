package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"walletwatch/internal/auth"
	"walletwatch/internal/models"
	pkghttp "walletwatch/pkg/http"
)

// AccountServiceInterface defines the interface for admin credential changes
type AccountServiceInterface interface {
	UpdateUsername(ctx context.Context, adminID, username string) error
	UpdatePassword(ctx context.Context, adminID, currentPassword, newPassword string) error
}

// AccountHandler handles the admin's own account HTTP requests
type AccountHandler struct {
	service AccountServiceInterface
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: service}
}

// UpdateUsernameRequest represents a username change body
type UpdateUsernameRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
}

// UpdatePasswordRequest represents a password change body
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

// UpdateUsername renames the authenticated admin account
// @Summary Change admin username
// @Security BearerAuth
// @Accept json
// @Param request body UpdateUsernameRequest true "Username"
// @Produce json
// @Success 200
// @Failure 409 {object} pkghttp.ErrorResponse
// @Router /admin/account [put]
func (h *AccountHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req UpdateUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.UpdateUsername(r.Context(), claims.AdminID, req.Username); err != nil {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteConflict(w, "Username already taken")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"updated": true})
}

// UpdatePassword replaces the admin password after verifying the current one
// @Summary Change admin password
// @Security BearerAuth
// @Accept json
// @Param request body UpdatePasswordRequest true "Passwords"
// @Produce json
// @Success 200
// @Failure 401 {object} pkghttp.ErrorResponse
// @Router /admin/account/password [put]
func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.UpdatePassword(r.Context(), claims.AdminID, req.CurrentPassword, req.NewPassword); err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			pkghttp.WriteUnauthorized(w, "Current password is incorrect")
			return
		}
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"updated": true})
}
