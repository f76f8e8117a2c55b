package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"walletwatch/internal/models"
	"walletwatch/internal/services"
	pkghttp "walletwatch/pkg/http"
)

// GatekeeperInterface defines the interface for the submission gate pipeline
type GatekeeperInterface interface {
	Evaluate(ctx context.Context, input services.SubmissionInput) (*services.GatekeeperResult, error)
}

// SubmissionServiceInterface defines the interface for review and listing
type SubmissionServiceInterface interface {
	List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error)
	ListApproved(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error)
	Get(ctx context.Context, id string) (*models.Submission, error)
	GetApproved(ctx context.Context, id string) (*models.Submission, error)
	Review(ctx context.Context, id, status string, adminNotes *string) (*models.Submission, error)
	Delete(ctx context.Context, id string) error
}

// SubmissionHandler handles public report intake and admin review
type SubmissionHandler struct {
	gatekeeper GatekeeperInterface
	service    SubmissionServiceInterface
	ipConfig   *pkghttp.IPConfig
}

// NewSubmissionHandler creates a new SubmissionHandler
func NewSubmissionHandler(gatekeeper GatekeeperInterface, service SubmissionServiceInterface, ipConfig *pkghttp.IPConfig) *SubmissionHandler {
	return &SubmissionHandler{
		gatekeeper: gatekeeper,
		service:    service,
		ipConfig:   ipConfig,
	}
}

// CreateSubmissionRequest represents the public report form. The website
// field is the hidden honeypot input; humans never see it, so any value
// there marks the sender as a bot. Field validation happens inside the gate
// pipeline, not here, so earlier gates decide first.
type CreateSubmissionRequest struct {
	WalletAddress    string  `json:"walletAddress"`
	CategoryID       string  `json:"categoryId"`
	CryptocurrencyID string  `json:"cryptocurrencyId"`
	WebsiteURL       *string `json:"websiteUrl"`
	ReportedOwner    *string `json:"reportedOwner"`
	Reason           *string `json:"reason"`
	Website          string  `json:"website"`
	CaptchaToken     string  `json:"captchaToken"`
}

// ReviewSubmissionRequest represents an admin review decision
type ReviewSubmissionRequest struct {
	Status     string  `json:"status" validate:"required,oneof=pending approved rejected"`
	AdminNotes *string `json:"adminNotes" validate:"omitempty,max=2000"`
}

// submitAcceptedResponse is returned for every persisting outcome, trapped
// and blocklisted included, so the reply never reveals which gate decided.
var submitAcceptedResponse = map[string]any{
	"success": true,
	"message": "Report submitted successfully",
}

// Create handles the public report form
// @Summary Submit a wallet report
// @Accept json
// @Param request body CreateSubmissionRequest true "Report"
// @Produce json
// @Success 201
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 429 {object} pkghttp.ErrorResponse
// @Router /submissions [post]
func (h *SubmissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSubmissionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	input := services.SubmissionInput{
		WalletAddress:    req.WalletAddress,
		CategoryID:       req.CategoryID,
		CryptocurrencyID: req.CryptocurrencyID,
		WebsiteURL:       req.WebsiteURL,
		ReportedOwner:    req.ReportedOwner,
		Reason:           req.Reason,
		Honeypot:         req.Website,
		CaptchaToken:     req.CaptchaToken,
		SubmitterIP:      pkghttp.ExtractClientIP(r, h.ipConfig),
		UserAgent:        r.Header.Get("User-Agent"),
	}

	_, err := h.gatekeeper.Evaluate(r.Context(), input)
	if err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.Is(err, models.ErrCaptchaFailed):
			pkghttp.WriteError(w, http.StatusBadRequest, "captcha_failed", "CAPTCHA verification failed. Please try again.")
		case errors.Is(err, models.ErrRateLimitExceeded):
			message := "Too many submissions. Please try again later."
			var limitErr *models.RateLimitError
			if errors.As(err, &limitErr) {
				w.Header().Set("Retry-After", strconv.Itoa(int(limitErr.RetryAfter.Seconds())))
				message = fmt.Sprintf("Too many submissions. Please try again after %d minutes.", limitErr.RetryAfterMinutes())
			}
			pkghttp.WriteTooManyRequests(w, message)
		case errors.As(err, &verrs):
			pkghttp.WriteErrorWithIssues(w, http.StatusBadRequest, "validation_failed", "Invalid submission", FormatValidationErrors(verrs))
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid submission")
		default:
			pkghttp.WriteInternalError(w, "Could not save the submission")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, submitAcceptedResponse)
}

// ListPublic handles the read API for approved submissions (API key gated)
// @Summary List approved submissions
// @Produce json
// @Success 200 {array} models.Submission
// @Router /api/submissions [get]
func (h *SubmissionHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.service.ListApproved(r.Context(), filterFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"submissions": submissions})
}

// GetPublic returns one approved submission (API key gated). Pending and
// rejected reports read as not found.
func (h *SubmissionHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	submission, err := h.service.GetApproved(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, submission)
}

// List handles the admin dashboard listing
// @Summary List submissions
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Submission
// @Router /admin/submissions [get]
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	filter.Status = r.URL.Query().Get("status")

	submissions, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"submissions": submissions})
}

// Get returns a single submission for review
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	submission, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, submission)
}

// Review applies an admin decision to a submission
// @Summary Review a submission
// @Security BearerAuth
// @Accept json
// @Param request body ReviewSubmissionRequest true "Decision"
// @Produce json
// @Success 200 {object} models.Submission
// @Router /admin/submissions/{id} [patch]
func (h *SubmissionHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewSubmissionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	submission, err := h.service.Review(r.Context(), chi.URLParam(r, "id"), req.Status, req.AdminNotes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, submission)
}

// Delete removes a submission permanently
func (h *SubmissionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func filterFromQuery(r *http.Request) models.SubmissionFilter {
	q := r.URL.Query()

	filter := models.SubmissionFilter{
		CategoryID:       q.Get("categoryId"),
		CryptocurrencyID: q.Get("cryptocurrencyId"),
		SearchTerm:       q.Get("search"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		filter.Offset = offset
	}
	return filter
}

// writeServiceError maps sentinel service errors onto HTTP responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Resource already exists")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}
