package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"walletwatch/internal/auth"
	"walletwatch/internal/models"
	"walletwatch/internal/services"
	pkghttp "walletwatch/pkg/http"
)

// LoginGuardInterface defines the interface for admin authentication
type LoginGuardInterface interface {
	AttemptLogin(ctx context.Context, username, password, twoFactorCode, ipAddress, userAgent string) (*services.LoginResult, error)
}

// AuthHandler handles admin authentication HTTP requests
type AuthHandler struct {
	guard    LoginGuardInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(guard LoginGuardInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{guard: guard, ipConfig: ipConfig}
}

// LoginRequest represents the request body for admin login
type LoginRequest struct {
	Username      string `json:"username" validate:"required"`
	Password      string `json:"password" validate:"required"`
	TwoFactorCode string `json:"twoFactorCode" validate:"omitempty,len=6"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Token string `json:"token"`
	Admin AdminResponse `json:"admin"`
}

// AdminResponse represents an administrator in HTTP responses
type AdminResponse struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	TwoFactorEnabled bool   `json:"two_factor_enabled"`
}

// Login handles admin login
// @Summary Admin login
// @Accept json
// @Param request body LoginRequest true "Login request"
// @Produce json
// @Success 200 {object} LoginResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /admin/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	ipAddress := pkghttp.ExtractClientIP(r, h.ipConfig)
	userAgent := r.Header.Get("User-Agent")

	result, err := h.guard.AttemptLogin(r.Context(), req.Username, req.Password, req.TwoFactorCode, ipAddress, userAgent)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			// One generic message for unknown usernames, wrong passwords, and
			// missing second factors alike.
			pkghttp.WriteUnauthorized(w, "Invalid username or password")
		case errors.Is(err, models.ErrAccountLocked):
			pkghttp.WriteTooManyRequests(w, "Account temporarily locked. Please try again later.")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, LoginResponse{
		Token: result.Token,
		Admin: adminModelToResponse(result.Admin),
	})
}

// Me returns the authenticated admin identity
// @Summary Current admin session
// @Security BearerAuth
// @Produce json
// @Success 200 {object} AdminResponse
// @Failure 401 {object} pkghttp.ErrorResponse
// @Router /admin/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetAdminFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"id":       claims.AdminID,
		"username": claims.Username,
	})
}

// Logout acknowledges session end. Sessions are stateless bearer tokens, so
// the client discards the token; nothing is stored server-side to revoke.
// @Summary Admin logout
// @Security BearerAuth
// @Produce json
// @Success 200
// @Router /admin/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func adminModelToResponse(admin *models.AdminUser) AdminResponse {
	return AdminResponse{
		ID:               admin.ID,
		Username:         admin.Username,
		TwoFactorEnabled: admin.TwoFactorEnabled,
	}
}
