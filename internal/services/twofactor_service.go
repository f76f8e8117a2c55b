package services

import (
	"context"
	"errors"
	"log/slog"

	"walletwatch/internal/auth"
	"walletwatch/internal/models"
	pkglogger "walletwatch/pkg/logger"
)

// TOTPProvider generates enrollment secrets and validates codes
type TOTPProvider interface {
	GenerateSecret(accountName string) (*auth.EnrollmentKey, error)
	ValidateCode(secret, code string) (bool, error)
}

// TwoFactorStatus reports the enrollment state of an account. Pending means
// a secret exists but has not been confirmed with a valid code yet.
type TwoFactorStatus struct {
	Enabled bool `json:"enabled"`
	Pending bool `json:"pending"`
}

// Enrollment is the setup response: the secret for manual entry plus the
// provisioning URI rendered as a scannable QR image.
type Enrollment struct {
	Secret    string `json:"secret"`
	URL       string `json:"url"`
	QRDataURL string `json:"qr_code"`
}

// TwoFactorService manages second-factor enrollment. State moves from
// disabled through pending (secret stored, unconfirmed) to enabled, and
// disable always lands back at disabled regardless of the starting state.
type TwoFactorService struct {
	repo        AdminUserRepository
	totp        TOTPProvider
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	recorder    AuditRecorder
}

// NewTwoFactorService creates a new TwoFactorService
func NewTwoFactorService(
	repo AdminUserRepository,
	totp TOTPProvider,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
	recorder AuditRecorder,
) *TwoFactorService {
	return &TwoFactorService{
		repo:        repo,
		totp:        totp,
		logger:      logger,
		auditLogger: auditLogger,
		recorder:    recorder,
	}
}

// Setup generates a fresh secret and stores it unconfirmed. Calling setup
// again before verification replaces the pending secret; calling it while
// enabled starts re-enrollment with a new secret.
func (s *TwoFactorService) Setup(ctx context.Context, adminID string) (*Enrollment, error) {
	user, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get admin for 2fa setup", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	key, err := s.totp.GenerateSecret(user.Username)
	if err != nil {
		s.logger.Error("failed to generate 2fa secret", slog.String("admin_id", adminID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	secret := key.Secret
	if err := s.repo.UpdateTwoFactor(ctx, adminID, false, &secret); err != nil {
		s.logger.Error("failed to store pending 2fa secret", slog.String("admin_id", adminID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.auditLogger.LogTwoFactorChange(pkglogger.AuditEvent{
		EventType: models.AuditEventTwoFactorGenerate,
		AdminID:   adminID,
		Success:   true,
	})
	s.recorder.Record(ctx, models.AuditEvent{
		EventType: models.AuditEventTwoFactorGenerate,
		ActorID:   &adminID,
		Success:   true,
	})

	return &Enrollment{
		Secret:    key.Secret,
		URL:       key.URL,
		QRDataURL: key.QRDataURL,
	}, nil
}

// VerifyAndEnable confirms the pending secret with a live code and flips
// enrollment on. A missing secret reports as an invalid token so the
// response does not reveal enrollment state.
func (s *TwoFactorService) VerifyAndEnable(ctx context.Context, adminID, code string) error {
	user, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get admin for 2fa verify", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if user.TwoFactorSecret == nil {
		return models.ErrTwoFactorInvalidCode
	}

	valid, err := s.totp.ValidateCode(*user.TwoFactorSecret, code)
	if err != nil {
		s.logger.Error("2fa code validation error", slog.String("admin_id", adminID), slog.Any("error", err))
		return models.ErrInternalServer
	}
	if !valid {
		s.auditLogger.LogTwoFactorChange(pkglogger.AuditEvent{
			EventType:     models.AuditEventTwoFactorEnable,
			AdminID:       adminID,
			Success:       false,
			FailureReason: "invalid_code",
		})
		return models.ErrTwoFactorInvalidCode
	}

	if err := s.repo.UpdateTwoFactor(ctx, adminID, true, user.TwoFactorSecret); err != nil {
		s.logger.Error("failed to enable 2fa", slog.String("admin_id", adminID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogTwoFactorChange(pkglogger.AuditEvent{
		EventType: models.AuditEventTwoFactorEnable,
		AdminID:   adminID,
		Success:   true,
	})
	s.recorder.Record(ctx, models.AuditEvent{
		EventType: models.AuditEventTwoFactorEnable,
		ActorID:   &adminID,
		Success:   true,
	})

	s.logger.Info("two-factor enabled", slog.String("admin_id", adminID))
	return nil
}

// Disable turns enrollment off and discards the secret. Disabling an
// account that was never enrolled is a no-op, not an error.
func (s *TwoFactorService) Disable(ctx context.Context, adminID string) error {
	if err := s.repo.UpdateTwoFactor(ctx, adminID, false, nil); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to disable 2fa", slog.String("admin_id", adminID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogTwoFactorChange(pkglogger.AuditEvent{
		EventType: models.AuditEventTwoFactorDisable,
		AdminID:   adminID,
		Success:   true,
	})
	s.recorder.Record(ctx, models.AuditEvent{
		EventType: models.AuditEventTwoFactorDisable,
		ActorID:   &adminID,
		Success:   true,
	})

	s.logger.Info("two-factor disabled", slog.String("admin_id", adminID))
	return nil
}

// Status reports the current enrollment state.
func (s *TwoFactorService) Status(ctx context.Context, adminID string) (*TwoFactorStatus, error) {
	user, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get admin for 2fa status", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &TwoFactorStatus{
		Enabled: user.TwoFactorEnabled,
		Pending: !user.TwoFactorEnabled && user.TwoFactorSecret != nil,
	}, nil
}
