package auth

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
)

// TOTPManager handles second-factor secret generation and code validation
type TOTPManager struct {
	issuer string // Issuer name shown in authenticator apps
}

// NewTOTPManager creates a new TOTP manager
func NewTOTPManager(issuer string) *TOTPManager {
	return &TOTPManager{issuer: issuer}
}

// EnrollmentKey is the result of generating a fresh secret: the base32
// secret for storage, the otpauth provisioning URI, and its rendering as a
// scannable PNG data URL.
type EnrollmentKey struct {
	Secret    string
	URL       string
	QRDataURL string
}

// GenerateSecret creates a fresh TOTP secret for an account and renders the
// enrollment QR code. The secret is returned for persistence; nothing is
// stored here.
func (tm *TOTPManager) GenerateSecret(accountName string) (*EnrollmentKey, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      tm.issuer,
		AccountName: accountName,
		Period:      30,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	return &EnrollmentKey{
		Secret:    key.Secret(),
		URL:       key.URL(),
		QRDataURL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrPNG),
	}, nil
}

// ValidateCode checks a candidate 6-digit code against a stored secret.
// Allows ±1 time step for clock drift.
func (tm *TOTPManager) ValidateCode(secret, code string) (bool, error) {
	valid, err := totp.ValidateCustom(code, secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false, fmt.Errorf("failed to validate TOTP code: %w", err)
	}
	return valid, nil
}
