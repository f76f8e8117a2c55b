package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"walletwatch/internal/services"
)

func TestTwoFactorSetupRequiresSession(t *testing.T) {
	h := NewTwoFactorHandler(&MockTwoFactorService{})

	rec := httptest.NewRecorder()
	h.Setup(rec, httptest.NewRequest(http.MethodPost, "/admin/2fa/setup", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTwoFactorSetupReturnsEnrollment(t *testing.T) {
	service := &MockTwoFactorService{
		SetupFunc: func(ctx context.Context, adminID string) (*services.Enrollment, error) {
			assert.Equal(t, "admin_1", adminID)
			return &services.Enrollment{
				Secret:    "JBSWY3DPEHPK3PXP",
				URL:       "otpauth://totp/WalletWatch:root?secret=JBSWY3DPEHPK3PXP",
				QRDataURL: "data:image/png;base64,abc",
			}, nil
		},
	}
	h := NewTwoFactorHandler(service)

	rec := httptest.NewRecorder()
	req := asAdmin(httptest.NewRequest(http.MethodPost, "/admin/2fa/setup", nil), "admin_1", "root")
	h.Setup(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", body["secret"])
	assert.Contains(t, body["qr_code"], "data:image/png;base64,")
}

func TestTwoFactorVerifyInvalidCode(t *testing.T) {
	h := NewTwoFactorHandler(&MockTwoFactorService{})

	rec := httptest.NewRecorder()
	req := asAdmin(newJSONRequest(t, http.MethodPost, "/admin/2fa/verify", map[string]any{
		"code": "000000",
	}), "admin_1", "root")
	h.Verify(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "invalid_code", body["error"])
}

func TestTwoFactorVerifyValidatesFormat(t *testing.T) {
	h := NewTwoFactorHandler(&MockTwoFactorService{})

	for _, code := range []string{"", "12345", "abcdef"} {
		rec := httptest.NewRecorder()
		req := asAdmin(newJSONRequest(t, http.MethodPost, "/admin/2fa/verify", map[string]any{
			"code": code,
		}), "admin_1", "root")
		h.Verify(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestTwoFactorVerifyEnables(t *testing.T) {
	service := &MockTwoFactorService{
		VerifyAndEnableFunc: func(ctx context.Context, adminID, code string) error {
			return nil
		},
	}
	h := NewTwoFactorHandler(service)

	rec := httptest.NewRecorder()
	req := asAdmin(newJSONRequest(t, http.MethodPost, "/admin/2fa/verify", map[string]any{
		"code": "123456",
	}), "admin_1", "root")
	h.Verify(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["enabled"])
}

func TestTwoFactorDisable(t *testing.T) {
	h := NewTwoFactorHandler(&MockTwoFactorService{})

	rec := httptest.NewRecorder()
	req := asAdmin(httptest.NewRequest(http.MethodDelete, "/admin/2fa", nil), "admin_1", "root")
	h.Disable(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["enabled"])
}
