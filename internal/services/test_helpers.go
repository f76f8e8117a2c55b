package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"walletwatch/internal/auth"
	"walletwatch/internal/models"
	pkglogger "walletwatch/pkg/logger"
)

// MockAdminUserRepository implements AdminUserRepository for testing
type MockAdminUserRepository struct {
	GetByIDFunc          func(ctx context.Context, id string) (*models.AdminUser, error)
	GetByUsernameFunc    func(ctx context.Context, username string) (*models.AdminUser, error)
	CreateFunc           func(ctx context.Context, user *models.AdminUser) (*models.AdminUser, error)
	UpdateLoginStateFunc func(ctx context.Context, id string, failedAttempts int, lockoutUntil *time.Time) error
	UpdateTwoFactorFunc  func(ctx context.Context, id string, enabled bool, secret *string) error
	UpdateUsernameFunc   func(ctx context.Context, id, username string) error
	UpdatePasswordFunc   func(ctx context.Context, id, passwordHash string) error
}

func (m *MockAdminUserRepository) GetByID(ctx context.Context, id string) (*models.AdminUser, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminUserRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockAdminUserRepository) Create(ctx context.Context, user *models.AdminUser) (*models.AdminUser, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockAdminUserRepository) UpdateLoginState(ctx context.Context, id string, failedAttempts int, lockoutUntil *time.Time) error {
	if m.UpdateLoginStateFunc != nil {
		return m.UpdateLoginStateFunc(ctx, id, failedAttempts, lockoutUntil)
	}
	return nil
}

func (m *MockAdminUserRepository) UpdateTwoFactor(ctx context.Context, id string, enabled bool, secret *string) error {
	if m.UpdateTwoFactorFunc != nil {
		return m.UpdateTwoFactorFunc(ctx, id, enabled, secret)
	}
	return nil
}

func (m *MockAdminUserRepository) UpdateUsername(ctx context.Context, id, username string) error {
	if m.UpdateUsernameFunc != nil {
		return m.UpdateUsernameFunc(ctx, id, username)
	}
	return nil
}

func (m *MockAdminUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

// MockSubmissionRepository implements SubmissionRepository for testing
type MockSubmissionRepository struct {
	CreateFunc        func(ctx context.Context, s *models.Submission) (*models.Submission, error)
	GetByIDFunc       func(ctx context.Context, id string) (*models.Submission, error)
	CountByIPSinceFunc func(ctx context.Context, submitterIP string, since time.Time) (int, error)
	ListFunc          func(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error)
	UpdateReviewFunc  func(ctx context.Context, id, status string, adminNotes *string) (*models.Submission, error)
	DeleteFunc        func(ctx context.Context, id string) error

	Created []*models.Submission
}

func (m *MockSubmissionRepository) Create(ctx context.Context, s *models.Submission) (*models.Submission, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	s.ID = "sub_test"
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.Created = append(m.Created, s)
	return s, nil
}

func (m *MockSubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockSubmissionRepository) CountByIPSince(ctx context.Context, submitterIP string, since time.Time) (int, error) {
	if m.CountByIPSinceFunc != nil {
		return m.CountByIPSinceFunc(ctx, submitterIP, since)
	}
	return 0, nil
}

func (m *MockSubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.Submission{}, nil
}

func (m *MockSubmissionRepository) UpdateReview(ctx context.Context, id, status string, adminNotes *string) (*models.Submission, error) {
	if m.UpdateReviewFunc != nil {
		return m.UpdateReviewFunc(ctx, id, status, adminNotes)
	}
	return nil, models.ErrNotFound
}

func (m *MockSubmissionRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockSettingRepository implements SettingRepository for testing
type MockSettingRepository struct {
	AllFunc            func(ctx context.Context) (models.SystemSettings, error)
	GetFunc            func(ctx context.Context, key string) (string, error)
	GetManyFunc        func(ctx context.Context, keys []string) (models.SystemSettings, error)
	SetFunc            func(ctx context.Context, key, value string) error
	SetManyFunc        func(ctx context.Context, settings map[string]string) error
	EnsureDefaultsFunc func(ctx context.Context, defaults map[string]string) error
}

func (m *MockSettingRepository) All(ctx context.Context) (models.SystemSettings, error) {
	if m.AllFunc != nil {
		return m.AllFunc(ctx)
	}
	return models.SystemSettings{}, nil
}

func (m *MockSettingRepository) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	return "", models.ErrNotFound
}

func (m *MockSettingRepository) GetMany(ctx context.Context, keys []string) (models.SystemSettings, error) {
	if m.GetManyFunc != nil {
		return m.GetManyFunc(ctx, keys)
	}
	return models.SystemSettings{}, nil
}

func (m *MockSettingRepository) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	return nil
}

func (m *MockSettingRepository) SetMany(ctx context.Context, settings map[string]string) error {
	if m.SetManyFunc != nil {
		return m.SetManyFunc(ctx, settings)
	}
	return nil
}

func (m *MockSettingRepository) EnsureDefaults(ctx context.Context, defaults map[string]string) error {
	if m.EnsureDefaultsFunc != nil {
		return m.EnsureDefaultsFunc(ctx, defaults)
	}
	return nil
}

// MockAPIKeyRepository implements APIKeyRepository for testing
type MockAPIKeyRepository struct {
	CreateFunc        func(ctx context.Context, key *models.APIKey) (*models.APIKey, error)
	GetByHashFunc     func(ctx context.Context, keyHash string) (*models.APIKey, error)
	ListFunc          func(ctx context.Context) ([]*models.APIKey, error)
	TouchLastUsedFunc func(ctx context.Context, id string) error
	DeleteFunc        func(ctx context.Context, id string) error
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *models.APIKey) (*models.APIKey, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, key)
	}
	key.ID = "key_test"
	key.CreatedAt = time.Now()
	return key, nil
}

func (m *MockAPIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	if m.GetByHashFunc != nil {
		return m.GetByHashFunc(ctx, keyHash)
	}
	return nil, models.ErrNotFound
}

func (m *MockAPIKeyRepository) List(ctx context.Context) ([]*models.APIKey, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []*models.APIKey{}, nil
}

func (m *MockAPIKeyRepository) TouchLastUsed(ctx context.Context, id string) error {
	if m.TouchLastUsedFunc != nil {
		return m.TouchLastUsedFunc(ctx, id)
	}
	return nil
}

func (m *MockAPIKeyRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockAuditEventRepository implements AuditEventRepository for testing
type MockAuditEventRepository struct {
	CreateFunc        func(ctx context.Context, event *models.AuditEvent) (*models.AuditEvent, error)
	ListRecentFunc    func(ctx context.Context, eventType string, limit int) ([]*models.AuditEvent, error)
	DeleteExpiredFunc func(ctx context.Context) (int64, error)

	Recorded []*models.AuditEvent
}

func (m *MockAuditEventRepository) Create(ctx context.Context, event *models.AuditEvent) (*models.AuditEvent, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	m.Recorded = append(m.Recorded, event)
	return event, nil
}

func (m *MockAuditEventRepository) ListRecent(ctx context.Context, eventType string, limit int) ([]*models.AuditEvent, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, eventType, limit)
	}
	return []*models.AuditEvent{}, nil
}

func (m *MockAuditEventRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.DeleteExpiredFunc != nil {
		return m.DeleteExpiredFunc(ctx)
	}
	return 0, nil
}

// MockPolicyReader implements PolicyReader for testing
type MockPolicyReader struct {
	RecaptchaEnabledFunc func(ctx context.Context) bool
	RateLimitPolicyFunc  func(ctx context.Context) RateLimitPolicy
	BlocklistFunc        func(ctx context.Context) models.Blocklist
	LoginPolicyFunc      func(ctx context.Context) LoginPolicy
}

func (m *MockPolicyReader) RecaptchaEnabled(ctx context.Context) bool {
	if m.RecaptchaEnabledFunc != nil {
		return m.RecaptchaEnabledFunc(ctx)
	}
	return false
}

func (m *MockPolicyReader) RateLimitPolicy(ctx context.Context) RateLimitPolicy {
	if m.RateLimitPolicyFunc != nil {
		return m.RateLimitPolicyFunc(ctx)
	}
	return RateLimitPolicy{Window: 15 * time.Minute, MaxSubmissions: 5}
}

func (m *MockPolicyReader) Blocklist(ctx context.Context) models.Blocklist {
	if m.BlocklistFunc != nil {
		return m.BlocklistFunc(ctx)
	}
	return models.Blocklist{}
}

func (m *MockPolicyReader) LoginPolicy(ctx context.Context) LoginPolicy {
	if m.LoginPolicyFunc != nil {
		return m.LoginPolicyFunc(ctx)
	}
	return LoginPolicy{MaxAttempts: 5, LockoutDuration: 15 * time.Minute}
}

// MockCaptchaVerifier implements captcha.Verifier for testing
type MockCaptchaVerifier struct {
	VerifyFunc func(ctx context.Context, token string) (bool, error)
	Calls      int
}

func (m *MockCaptchaVerifier) Verify(ctx context.Context, token string) (bool, error) {
	m.Calls++
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, token)
	}
	return true, nil
}

// MockSessionIssuer implements SessionIssuer for testing
type MockSessionIssuer struct {
	GenerateSessionTokenFunc func(adminID, username string) (string, error)
}

func (m *MockSessionIssuer) GenerateSessionToken(adminID, username string) (string, error) {
	if m.GenerateSessionTokenFunc != nil {
		return m.GenerateSessionTokenFunc(adminID, username)
	}
	return "session_token_" + adminID, nil
}

// MockCodeValidator implements CodeValidator for testing
type MockCodeValidator struct {
	ValidateCodeFunc func(secret, code string) (bool, error)
}

func (m *MockCodeValidator) ValidateCode(secret, code string) (bool, error) {
	if m.ValidateCodeFunc != nil {
		return m.ValidateCodeFunc(secret, code)
	}
	return false, nil
}

// MockTOTPProvider implements TOTPProvider for testing
type MockTOTPProvider struct {
	GenerateSecretFunc func(accountName string) (*auth.EnrollmentKey, error)
	ValidateCodeFunc   func(secret, code string) (bool, error)
}

func (m *MockTOTPProvider) GenerateSecret(accountName string) (*auth.EnrollmentKey, error) {
	if m.GenerateSecretFunc != nil {
		return m.GenerateSecretFunc(accountName)
	}
	return &auth.EnrollmentKey{
		Secret:    "JBSWY3DPEHPK3PXP",
		URL:       "otpauth://totp/WalletWatch:" + accountName + "?secret=JBSWY3DPEHPK3PXP",
		QRDataURL: "data:image/png;base64,",
	}, nil
}

func (m *MockTOTPProvider) ValidateCode(secret, code string) (bool, error) {
	if m.ValidateCodeFunc != nil {
		return m.ValidateCodeFunc(secret, code)
	}
	return false, nil
}

// MockAlertMailer implements AlertMailer for testing
type MockAlertMailer struct {
	SendLockoutAlertFunc func(ctx context.Context, username, ipAddress string, lockedUntil time.Time) error
	Sent                 int
}

func (m *MockAlertMailer) SendLockoutAlert(ctx context.Context, username, ipAddress string, lockedUntil time.Time) error {
	m.Sent++
	if m.SendLockoutAlertFunc != nil {
		return m.SendLockoutAlertFunc(ctx, username, ipAddress, lockedUntil)
	}
	return nil
}

// MockAuditRecorder implements AuditRecorder for testing
type MockAuditRecorder struct {
	Events []models.AuditEvent
}

func (m *MockAuditRecorder) Record(ctx context.Context, event models.AuditEvent) {
	m.Events = append(m.Events, event)
}

// newTestLogger returns a logger that discards output
func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestAuditLogger returns an audit logger that discards output
func newTestAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(newTestLogger())
}

// NewTestAdmin creates an administrator account for tests
func NewTestAdmin(id, username, passwordHash string) *models.AdminUser {
	now := time.Now()
	return &models.AdminUser{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestAdminLocked creates an account locked for the given duration
func NewTestAdminLocked(id, username, passwordHash string, lockedFor time.Duration) *models.AdminUser {
	admin := NewTestAdmin(id, username, passwordHash)
	until := time.Now().Add(lockedFor)
	admin.LockoutUntil = &until
	admin.FailedLoginAttempts = 5
	return admin
}

// NewTestAdminWithTwoFactor creates an account with 2FA enabled
func NewTestAdminWithTwoFactor(id, username, passwordHash, secret string) *models.AdminUser {
	admin := NewTestAdmin(id, username, passwordHash)
	admin.TwoFactorEnabled = true
	admin.TwoFactorSecret = &secret
	return admin
}

// NewTestSubmissionInput creates a valid submission input
func NewTestSubmissionInput() SubmissionInput {
	reason := "This address stole my funds through a fake exchange"
	return SubmissionInput{
		WalletAddress:    "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh",
		CategoryID:       "cat_scam",
		CryptocurrencyID: "coin_btc",
		Reason:           &reason,
		SubmitterIP:      "203.0.113.7",
		UserAgent:        "test-agent",
	}
}
