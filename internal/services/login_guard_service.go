package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"walletwatch/internal/models"
	pkgauth "walletwatch/pkg/auth"
	pkglogger "walletwatch/pkg/logger"
)

// AdminUserRepository defines the interface for administrator persistence
type AdminUserRepository interface {
	GetByID(ctx context.Context, id string) (*models.AdminUser, error)
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) (*models.AdminUser, error)
	UpdateLoginState(ctx context.Context, id string, failedAttempts int, lockoutUntil *time.Time) error
	UpdateTwoFactor(ctx context.Context, id string, enabled bool, secret *string) error
	UpdateUsername(ctx context.Context, id, username string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// SessionIssuer mints admin session tokens
type SessionIssuer interface {
	GenerateSessionToken(adminID, username string) (string, error)
}

// CodeValidator checks second-factor codes against a stored secret
type CodeValidator interface {
	ValidateCode(secret, code string) (bool, error)
}

// LoginPolicyReader supplies the brute-force policy, read fresh per attempt.
type LoginPolicyReader interface {
	LoginPolicy(ctx context.Context) LoginPolicy
}

// LoginResult is a successful authentication.
type LoginResult struct {
	Token string
	Admin *models.AdminUser
}

// LoginGuardService authenticates administrators and enforces the
// failed-attempt lockout. Every attempt reads the policy fresh, so a
// threshold change applies to the very next login. The lockout window is
// fixed when set; attempts while locked never extend it.
type LoginGuardService struct {
	repo        AdminUserRepository
	policies    LoginPolicyReader
	tokens      SessionIssuer
	codes       CodeValidator
	mailer      AlertMailer
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	recorder    AuditRecorder
}

// NewLoginGuardService creates a new LoginGuardService
func NewLoginGuardService(
	repo AdminUserRepository,
	policies LoginPolicyReader,
	tokens SessionIssuer,
	codes CodeValidator,
	mailer AlertMailer,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
	recorder AuditRecorder,
) *LoginGuardService {
	return &LoginGuardService{
		repo:        repo,
		policies:    policies,
		tokens:      tokens,
		codes:       codes,
		mailer:      mailer,
		logger:      logger,
		auditLogger: auditLogger,
		recorder:    recorder,
	}
}

// AttemptLogin authenticates one credential presentation. Unknown usernames
// and wrong passwords both return ErrInvalidCredentials so the caller cannot
// probe for account existence.
func (s *LoginGuardService) AttemptLogin(ctx context.Context, username, password, twoFactorCode, ipAddress, userAgent string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	policy := s.policies.LoginPolicy(ctx)

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logAttempt(ctx, "", ipAddress, userAgent, false, "invalid_credentials")
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get admin by username", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := time.Now()
	if user.IsLockedAt(now) {
		s.logAttempt(ctx, user.ID, ipAddress, userAgent, false, "account_locked")
		return nil, models.ErrAccountLocked
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, s.registerFailure(ctx, user, policy, ipAddress, userAgent, "invalid_credentials")
	}

	if user.TwoFactorEnabled {
		if user.TwoFactorSecret == nil || twoFactorCode == "" {
			return nil, s.registerFailure(ctx, user, policy, ipAddress, userAgent, "two_factor_required")
		}
		valid, err := s.codes.ValidateCode(*user.TwoFactorSecret, twoFactorCode)
		if err != nil {
			s.logger.Error("two-factor validation error", slog.String("admin_id", user.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		if !valid {
			return nil, s.registerFailure(ctx, user, policy, ipAddress, userAgent, "two_factor_invalid")
		}
	}

	// Success clears any accumulated failure state.
	if user.FailedLoginAttempts > 0 || user.LockoutUntil != nil {
		if err := s.repo.UpdateLoginState(ctx, user.ID, 0, nil); err != nil {
			s.logger.Error("failed to reset login state", slog.String("admin_id", user.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
	}

	token, err := s.tokens.GenerateSessionToken(user.ID, user.Username)
	if err != nil {
		s.logger.Error("failed to generate session token", slog.String("admin_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logAttempt(ctx, user.ID, ipAddress, userAgent, true, "")
	s.logger.Info("admin logged in", slog.String("admin_id", user.ID))

	return &LoginResult{Token: token, Admin: user}, nil
}

// registerFailure increments the failure counter and, at the threshold,
// sets the lockout window. The attempt that trips the threshold still
// reports generic invalid credentials; only later attempts see the lock.
func (s *LoginGuardService) registerFailure(ctx context.Context, user *models.AdminUser, policy LoginPolicy, ipAddress, userAgent, reason string) error {
	attempts := user.FailedLoginAttempts + 1

	var lockoutUntil *time.Time
	if attempts >= policy.MaxAttempts {
		until := time.Now().Add(policy.LockoutDuration)
		lockoutUntil = &until
	}

	if err := s.repo.UpdateLoginState(ctx, user.ID, attempts, lockoutUntil); err != nil {
		s.logger.Error("failed to record failed login", slog.String("admin_id", user.ID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logAttempt(ctx, user.ID, ipAddress, userAgent, false, reason)

	if lockoutUntil == nil {
		return models.ErrInvalidCredentials
	}

	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     models.AuditEventLockout,
		AdminID:       user.ID,
		IPAddress:     ipAddress,
		UserAgent:     userAgent,
		Success:       false,
		FailureReason: reason,
	})
	s.recorder.Record(ctx, models.AuditEvent{
		EventType:     models.AuditEventLockout,
		ActorID:       &user.ID,
		IPAddress:     &ipAddress,
		Success:       false,
		FailureReason: &reason,
	})

	if err := s.mailer.SendLockoutAlert(ctx, user.Username, ipAddress, *lockoutUntil); err != nil {
		s.logger.Error("failed to send lockout alert", slog.String("admin_id", user.ID), slog.Any("error", err))
	}

	s.logger.Warn("admin account locked",
		slog.String("admin_id", user.ID),
		slog.Time("locked_until", *lockoutUntil))

	return models.ErrInvalidCredentials
}

func (s *LoginGuardService) logAttempt(ctx context.Context, adminID, ipAddress, userAgent string, success bool, reason string) {
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     models.AuditEventLogin,
		AdminID:       adminID,
		IPAddress:     ipAddress,
		UserAgent:     userAgent,
		Success:       success,
		FailureReason: reason,
	})

	event := models.AuditEvent{
		EventType: models.AuditEventLogin,
		IPAddress: &ipAddress,
		Success:   success,
	}
	if adminID != "" {
		event.ActorID = &adminID
	}
	if reason != "" {
		event.FailureReason = &reason
	}
	s.recorder.Record(ctx, event)
}
