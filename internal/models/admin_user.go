package models

import "time"

// AdminUser represents an administrator account. Brute-force state
// (FailedLoginAttempts, LockoutUntil) is owned by the login guard; the
// two-factor fields are owned by the second-factor service.
type AdminUser struct {
	ID                  string
	Username            string
	PasswordHash        string
	FailedLoginAttempts int
	LockoutUntil        *time.Time // non-nil and in the future while locked
	TwoFactorEnabled    bool       // true implies TwoFactorSecret is non-nil
	TwoFactorSecret     *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsLockedAt reports whether the account is locked at the given instant.
// The lockout window is fixed when set; it is never extended by attempts
// made while locked.
func (u *AdminUser) IsLockedAt(now time.Time) bool {
	return u.LockoutUntil != nil && now.Before(*u.LockoutUntil)
}
