package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"walletwatch/internal/auth"
	"walletwatch/internal/models"
	"walletwatch/internal/services"
)

// MockGatekeeper implements GatekeeperInterface for testing
type MockGatekeeper struct {
	EvaluateFunc func(ctx context.Context, input services.SubmissionInput) (*services.GatekeeperResult, error)
	LastInput    services.SubmissionInput
}

func (m *MockGatekeeper) Evaluate(ctx context.Context, input services.SubmissionInput) (*services.GatekeeperResult, error) {
	m.LastInput = input
	if m.EvaluateFunc != nil {
		return m.EvaluateFunc(ctx, input)
	}
	return &services.GatekeeperResult{
		Submission: &models.Submission{ID: "sub_test", Status: models.SubmissionStatusPending},
		Outcome:    services.OutcomeAccepted,
	}, nil
}

// MockSubmissionService implements SubmissionServiceInterface for testing
type MockSubmissionService struct {
	ListFunc         func(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error)
	ListApprovedFunc func(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error)
	GetFunc          func(ctx context.Context, id string) (*models.Submission, error)
	GetApprovedFunc  func(ctx context.Context, id string) (*models.Submission, error)
	ReviewFunc       func(ctx context.Context, id, status string, adminNotes *string) (*models.Submission, error)
	DeleteFunc       func(ctx context.Context, id string) error
}

func (m *MockSubmissionService) List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.Submission{}, nil
}

func (m *MockSubmissionService) ListApproved(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error) {
	if m.ListApprovedFunc != nil {
		return m.ListApprovedFunc(ctx, filter)
	}
	return []*models.Submission{}, nil
}

func (m *MockSubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockSubmissionService) GetApproved(ctx context.Context, id string) (*models.Submission, error) {
	if m.GetApprovedFunc != nil {
		return m.GetApprovedFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockSubmissionService) Review(ctx context.Context, id, status string, adminNotes *string) (*models.Submission, error) {
	if m.ReviewFunc != nil {
		return m.ReviewFunc(ctx, id, status, adminNotes)
	}
	return nil, models.ErrNotFound
}

func (m *MockSubmissionService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockLoginGuard implements LoginGuardInterface for testing
type MockLoginGuard struct {
	AttemptLoginFunc func(ctx context.Context, username, password, twoFactorCode, ipAddress, userAgent string) (*services.LoginResult, error)
}

func (m *MockLoginGuard) AttemptLogin(ctx context.Context, username, password, twoFactorCode, ipAddress, userAgent string) (*services.LoginResult, error) {
	if m.AttemptLoginFunc != nil {
		return m.AttemptLoginFunc(ctx, username, password, twoFactorCode, ipAddress, userAgent)
	}
	return nil, models.ErrInvalidCredentials
}

// MockTwoFactorService implements TwoFactorServiceInterface for testing
type MockTwoFactorService struct {
	SetupFunc           func(ctx context.Context, adminID string) (*services.Enrollment, error)
	VerifyAndEnableFunc func(ctx context.Context, adminID, code string) error
	DisableFunc         func(ctx context.Context, adminID string) error
	StatusFunc          func(ctx context.Context, adminID string) (*services.TwoFactorStatus, error)
}

func (m *MockTwoFactorService) Setup(ctx context.Context, adminID string) (*services.Enrollment, error) {
	if m.SetupFunc != nil {
		return m.SetupFunc(ctx, adminID)
	}
	return &services.Enrollment{Secret: "JBSWY3DPEHPK3PXP"}, nil
}

func (m *MockTwoFactorService) VerifyAndEnable(ctx context.Context, adminID, code string) error {
	if m.VerifyAndEnableFunc != nil {
		return m.VerifyAndEnableFunc(ctx, adminID, code)
	}
	return models.ErrTwoFactorInvalidCode
}

func (m *MockTwoFactorService) Disable(ctx context.Context, adminID string) error {
	if m.DisableFunc != nil {
		return m.DisableFunc(ctx, adminID)
	}
	return nil
}

func (m *MockTwoFactorService) Status(ctx context.Context, adminID string) (*services.TwoFactorStatus, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, adminID)
	}
	return &services.TwoFactorStatus{}, nil
}

// MockAccountService implements AccountServiceInterface for testing
type MockAccountService struct {
	UpdateUsernameFunc func(ctx context.Context, adminID, username string) error
	UpdatePasswordFunc func(ctx context.Context, adminID, currentPassword, newPassword string) error
}

func (m *MockAccountService) UpdateUsername(ctx context.Context, adminID, username string) error {
	if m.UpdateUsernameFunc != nil {
		return m.UpdateUsernameFunc(ctx, adminID, username)
	}
	return nil
}

func (m *MockAccountService) UpdatePassword(ctx context.Context, adminID, currentPassword, newPassword string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, adminID, currentPassword, newPassword)
	}
	return nil
}

// MockAPIKeyAuthenticator implements APIKeyAuthenticator for testing
type MockAPIKeyAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, plainKey string) (*models.APIKey, error)
}

func (m *MockAPIKeyAuthenticator) Authenticate(ctx context.Context, plainKey string) (*models.APIKey, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, plainKey)
	}
	return nil, models.ErrAPIKeyInvalid
}

// newJSONRequest builds a request with a JSON body
func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// asAdmin attaches admin session claims to the request context
func asAdmin(r *http.Request, adminID, username string) *http.Request {
	claims := &models.SessionClaims{AdminID: adminID, Username: username}
	ctx := context.WithValue(r.Context(), auth.AdminContextKey, claims)
	return r.WithContext(ctx)
}

// decodeBody decodes a JSON response body into a map
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}
