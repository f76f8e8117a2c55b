// Package captcha verifies reCAPTCHA tokens against the remote siteverify
// endpoint. The gatekeeper consults it only when the CAPTCHA feature flag is
// enabled; verification failures and timeouts fail closed.
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrVerificationTimeout indicates the remote verification exceeded the
// configured deadline.
var ErrVerificationTimeout = errors.New("captcha verification timed out")

// Verifier checks a client-supplied CAPTCHA token.
type Verifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// RecaptchaVerifier verifies tokens against Google's siteverify API.
type RecaptchaVerifier struct {
	secretKey string
	verifyURL string
	client    *http.Client
	timeout   time.Duration
}

// NewRecaptchaVerifier creates a verifier with a bounded per-call timeout.
func NewRecaptchaVerifier(secretKey, verifyURL string, timeout time.Duration) *RecaptchaVerifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RecaptchaVerifier{
		secretKey: secretKey,
		verifyURL: verifyURL,
		client:    &http.Client{},
		timeout:   timeout,
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the token to the verification service. The call is bounded by
// the configured timeout and aborts if the caller's context is cancelled.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("secret", v.secretKey)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return false, ErrVerificationTimeout
		}
		return false, fmt.Errorf("verification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("verification service returned status %d", resp.StatusCode)
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to decode verification response: %w", err)
	}

	return result.Success, nil
}
