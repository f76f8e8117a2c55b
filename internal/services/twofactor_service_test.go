package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletwatch/internal/models"
)

func newTwoFactor(repo *MockAdminUserRepository, totp *MockTOTPProvider) (*TwoFactorService, *MockAuditRecorder) {
	recorder := &MockAuditRecorder{}
	svc := NewTwoFactorService(repo, totp, newTestLogger(), newTestAuditLogger(), recorder)
	return svc, recorder
}

func TestTwoFactorSetupStoresPendingSecret(t *testing.T) {
	admin := NewTestAdmin("admin_1", "root", "hash")

	var storedEnabled bool
	var storedSecret *string
	repo := &MockAdminUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.AdminUser, error) {
			return admin, nil
		},
		UpdateTwoFactorFunc: func(ctx context.Context, id string, enabled bool, secret *string) error {
			storedEnabled = enabled
			storedSecret = secret
			return nil
		},
	}
	svc, recorder := newTwoFactor(repo, &MockTOTPProvider{})

	enrollment, err := svc.Setup(context.Background(), "admin_1")

	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", enrollment.Secret)
	assert.Contains(t, enrollment.URL, "otpauth://totp/")
	assert.Contains(t, enrollment.QRDataURL, "data:image/png;base64,")

	// Secret is stored but enrollment stays off until verified.
	assert.False(t, storedEnabled)
	require.NotNil(t, storedSecret)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", *storedSecret)

	require.Len(t, recorder.Events, 1)
	assert.Equal(t, models.AuditEventTwoFactorGenerate, recorder.Events[0].EventType)
}

func TestTwoFactorVerifyWithoutSecretReportsInvalidCode(t *testing.T) {
	admin := NewTestAdmin("admin_1", "root", "hash")

	repo := &MockAdminUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.AdminUser, error) {
			return admin, nil
		},
	}
	svc, _ := newTwoFactor(repo, &MockTOTPProvider{})

	err := svc.VerifyAndEnable(context.Background(), "admin_1", "123456")
	assert.ErrorIs(t, err, models.ErrTwoFactorInvalidCode)
}

func TestTwoFactorVerifyInvalidCode(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	admin := NewTestAdmin("admin_1", "root", "hash")
	admin.TwoFactorSecret = &secret

	repo := &MockAdminUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.AdminUser, error) {
			return admin, nil
		},
	}
	svc, _ := newTwoFactor(repo, &MockTOTPProvider{
		ValidateCodeFunc: func(secret, code string) (bool, error) { return false, nil },
	})

	err := svc.VerifyAndEnable(context.Background(), "admin_1", "000000")
	assert.ErrorIs(t, err, models.ErrTwoFactorInvalidCode)
}

func TestTwoFactorVerifyEnables(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	admin := NewTestAdmin("admin_1", "root", "hash")
	admin.TwoFactorSecret = &secret

	var storedEnabled bool
	var storedSecret *string
	repo := &MockAdminUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.AdminUser, error) {
			return admin, nil
		},
		UpdateTwoFactorFunc: func(ctx context.Context, id string, enabled bool, s *string) error {
			storedEnabled = enabled
			storedSecret = s
			return nil
		},
	}
	svc, recorder := newTwoFactor(repo, &MockTOTPProvider{
		ValidateCodeFunc: func(s, code string) (bool, error) {
			return s == secret && code == "123456", nil
		},
	})

	err := svc.VerifyAndEnable(context.Background(), "admin_1", "123456")

	require.NoError(t, err)
	assert.True(t, storedEnabled)
	require.NotNil(t, storedSecret)
	assert.Equal(t, secret, *storedSecret)

	require.Len(t, recorder.Events, 1)
	assert.Equal(t, models.AuditEventTwoFactorEnable, recorder.Events[0].EventType)
}

func TestTwoFactorDisableIsIdempotent(t *testing.T) {
	var calls int
	repo := &MockAdminUserRepository{
		UpdateTwoFactorFunc: func(ctx context.Context, id string, enabled bool, secret *string) error {
			calls++
			assert.False(t, enabled)
			assert.Nil(t, secret)
			return nil
		},
	}
	svc, _ := newTwoFactor(repo, &MockTOTPProvider{})

	require.NoError(t, svc.Disable(context.Background(), "admin_1"))
	require.NoError(t, svc.Disable(context.Background(), "admin_1"))
	assert.Equal(t, 2, calls)
}

func TestTwoFactorStatus(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"

	tests := []struct {
		name    string
		admin   *models.AdminUser
		enabled bool
		pending bool
	}{
		{
			name:  "never enrolled",
			admin: NewTestAdmin("admin_1", "root", "hash"),
		},
		{
			name: "pending verification",
			admin: func() *models.AdminUser {
				a := NewTestAdmin("admin_1", "root", "hash")
				a.TwoFactorSecret = &secret
				return a
			}(),
			pending: true,
		},
		{
			name:    "enabled",
			admin:   NewTestAdminWithTwoFactor("admin_1", "root", "hash", secret),
			enabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockAdminUserRepository{
				GetByIDFunc: func(ctx context.Context, id string) (*models.AdminUser, error) {
					return tt.admin, nil
				},
			}
			svc, _ := newTwoFactor(repo, &MockTOTPProvider{})

			status, err := svc.Status(context.Background(), "admin_1")
			require.NoError(t, err)
			assert.Equal(t, tt.enabled, status.Enabled)
			assert.Equal(t, tt.pending, status.Pending)
		})
	}
}
