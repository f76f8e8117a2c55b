package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Login guard errors. ErrInvalidCredentials covers both unknown usernames
	// and wrong passwords so callers cannot distinguish the two.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountLocked      = errors.New("account is locked")

	// Gatekeeper errors
	ErrCaptchaFailed     = errors.New("captcha verification failed")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrCouldNotSave      = errors.New("could not save the submission")

	// Second-factor errors. A missing secret is reported as an invalid token
	// rather than not-found to avoid leaking enrollment state.
	ErrTwoFactorInvalidCode = errors.New("invalid two-factor token")

	// API key errors
	ErrAPIKeyInvalid = errors.New("invalid API key")
)

// RateLimitError carries the rate-limit window so callers can tell the
// submitter how long to wait. errors.Is matches ErrRateLimitExceeded.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %d minutes", e.RetryAfterMinutes())
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimitExceeded
}

// RetryAfterMinutes reports the wait in whole minutes, never less than one.
func (e *RateLimitError) RetryAfterMinutes() int {
	minutes := int(e.RetryAfter.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
