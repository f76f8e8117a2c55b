package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletwatch/internal/models"
	"walletwatch/internal/services"
	pkghttp "walletwatch/pkg/http"
)

func validSubmitBody() map[string]any {
	return map[string]any{
		"walletAddress":    "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh",
		"categoryId":       "cat_scam",
		"cryptocurrencyId": "coin_btc",
		"reason":           "Fake exchange that never pays out",
		"captchaToken":     "tok",
	}
}

func TestSubmitAccepted(t *testing.T) {
	gatekeeper := &MockGatekeeper{}
	h := NewSubmissionHandler(gatekeeper, &MockSubmissionService{}, &pkghttp.IPConfig{})

	req := newJSONRequest(t, http.MethodPost, "/submissions", validSubmitBody())
	req.RemoteAddr = "203.0.113.7:4411"
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "203.0.113.7", gatekeeper.LastInput.SubmitterIP)
}

func TestSubmitHoneypotResponseIndistinguishable(t *testing.T) {
	gatekeeper := &MockGatekeeper{
		EvaluateFunc: func(ctx context.Context, input services.SubmissionInput) (*services.GatekeeperResult, error) {
			outcome := services.OutcomeAccepted
			status := models.SubmissionStatusPending
			if input.Honeypot != "" {
				outcome = services.OutcomeTrapped
				status = models.SubmissionStatusRejected
			}
			return &services.GatekeeperResult{
				Submission: &models.Submission{ID: "sub_x", Status: status},
				Outcome:    outcome,
			}, nil
		},
	}
	h := NewSubmissionHandler(gatekeeper, &MockSubmissionService{}, &pkghttp.IPConfig{})

	normal := httptest.NewRecorder()
	h.Create(normal, newJSONRequest(t, http.MethodPost, "/submissions", validSubmitBody()))

	trapped := httptest.NewRecorder()
	body := validSubmitBody()
	body["website"] = "http://bot-filled.example"
	h.Create(trapped, newJSONRequest(t, http.MethodPost, "/submissions", body))

	// A bot reading the response cannot tell it was caught.
	assert.Equal(t, normal.Code, trapped.Code)
	assert.Equal(t, normal.Body.String(), trapped.Body.String())
}

func TestSubmitErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"captcha failed", models.ErrCaptchaFailed, http.StatusBadRequest, "captcha_failed"},
		{"rate limited", models.ErrRateLimitExceeded, http.StatusTooManyRequests, "rate_limit_exceeded"},
		{"persist failed", models.ErrCouldNotSave, http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gatekeeper := &MockGatekeeper{
				EvaluateFunc: func(ctx context.Context, input services.SubmissionInput) (*services.GatekeeperResult, error) {
					return nil, tt.err
				},
			}
			h := NewSubmissionHandler(gatekeeper, &MockSubmissionService{}, &pkghttp.IPConfig{})

			rec := httptest.NewRecorder()
			h.Create(rec, newJSONRequest(t, http.MethodPost, "/submissions", validSubmitBody()))

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantCode, body["error"])
		})
	}
}

func TestSubmitRateLimitReportsRetryAfter(t *testing.T) {
	gatekeeper := &MockGatekeeper{
		EvaluateFunc: func(ctx context.Context, input services.SubmissionInput) (*services.GatekeeperResult, error) {
			return nil, &models.RateLimitError{RetryAfter: 60 * time.Minute}
		},
	}
	h := NewSubmissionHandler(gatekeeper, &MockSubmissionService{}, &pkghttp.IPConfig{})

	rec := httptest.NewRecorder()
	h.Create(rec, newJSONRequest(t, http.MethodPost, "/submissions", validSubmitBody()))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))
	body := decodeBody(t, rec)
	assert.Equal(t, "Too many submissions. Please try again after 60 minutes.", body["message"])
}

func TestSubmitValidationIssues(t *testing.T) {
	v := validator.New()
	gatekeeper := &MockGatekeeper{
		EvaluateFunc: func(ctx context.Context, input services.SubmissionInput) (*services.GatekeeperResult, error) {
			// Produce a real validator error for the handler to format.
			return nil, v.Struct(input).(validator.ValidationErrors)
		},
	}
	h := NewSubmissionHandler(gatekeeper, &MockSubmissionService{}, &pkghttp.IPConfig{})

	body := validSubmitBody()
	body["walletAddress"] = ""
	rec := httptest.NewRecorder()
	h.Create(rec, newJSONRequest(t, http.MethodPost, "/submissions", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "validation_failed", resp["error"])
	assert.NotEmpty(t, resp["issues"])
}

func TestSubmitRejectsMalformedJSON(t *testing.T) {
	h := NewSubmissionHandler(&MockGatekeeper{}, &MockSubmissionService{}, &pkghttp.IPConfig{})

	req := httptest.NewRequest(http.MethodPost, "/submissions", nil)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewValidatesStatus(t *testing.T) {
	h := NewSubmissionHandler(&MockGatekeeper{}, &MockSubmissionService{}, &pkghttp.IPConfig{})

	rec := httptest.NewRecorder()
	h.Review(rec, newJSONRequest(t, http.MethodPatch, "/admin/submissions/sub_1", map[string]any{
		"status": "archived",
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewAppliesDecision(t *testing.T) {
	var gotStatus string
	service := &MockSubmissionService{
		ReviewFunc: func(ctx context.Context, id, status string, adminNotes *string) (*models.Submission, error) {
			gotStatus = status
			return &models.Submission{ID: id, Status: status}, nil
		},
	}
	h := NewSubmissionHandler(&MockGatekeeper{}, service, &pkghttp.IPConfig{})

	rec := httptest.NewRecorder()
	h.Review(rec, newJSONRequest(t, http.MethodPatch, "/admin/submissions/sub_1", map[string]any{
		"status": "approved",
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SubmissionStatusApproved, gotStatus)
}

func TestListPublicForcesApproved(t *testing.T) {
	called := false
	service := &MockSubmissionService{
		ListApprovedFunc: func(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error) {
			called = true
			return []*models.Submission{}, nil
		},
	}
	h := NewSubmissionHandler(&MockGatekeeper{}, service, &pkghttp.IPConfig{})

	rec := httptest.NewRecorder()
	h.ListPublic(rec, httptest.NewRequest(http.MethodGet, "/api/submissions?status=pending", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestRequireAPIKey(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NotNil(t, GetAPIKeyFromContext(r))
		w.WriteHeader(http.StatusOK)
	})

	authn := &MockAPIKeyAuthenticator{
		AuthenticateFunc: func(ctx context.Context, plainKey string) (*models.APIKey, error) {
			if plainKey == "ww_good" {
				return &models.APIKey{ID: "key_1", Tier: models.APIKeyTierLimited}, nil
			}
			return nil, models.ErrAPIKeyInvalid
		},
	}
	mw := RequireAPIKey(authn)(next)

	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/submissions", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/submissions", nil)
	req.Header.Set("X-API-Key", "ww_bad")
	mw.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/submissions", nil)
	req.Header.Set("X-API-Key", "ww_good")
	mw.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
