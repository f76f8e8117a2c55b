package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"walletwatch/internal/models"
	pkgauth "walletwatch/pkg/auth"
)

// AccountService manages the admin's own credentials. Username changes must
// stay unique; password changes re-verify the current password first.
type AccountService struct {
	repo   AdminUserRepository
	logger *slog.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(repo AdminUserRepository, logger *slog.Logger) *AccountService {
	return &AccountService{repo: repo, logger: logger}
}

// UpdateUsername renames the admin account. A taken name surfaces as
// ErrConflict.
func (s *AccountService) UpdateUsername(ctx context.Context, adminID, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.ErrBadRequest
	}

	if err := s.repo.UpdateUsername(ctx, adminID, username); err != nil {
		if errors.Is(err, models.ErrConflict) || errors.Is(err, models.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to update username", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("admin username changed", slog.String("admin_id", adminID))
	return nil
}

// UpdatePassword replaces the admin password after verifying the current one.
func (s *AccountService) UpdatePassword(ctx context.Context, adminID, currentPassword, newPassword string) error {
	user, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to load admin for password change", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return models.ErrInvalidCredentials
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return models.ErrBadRequest
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePassword(ctx, adminID, hash); err != nil {
		s.logger.Error("failed to update password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("admin password changed", slog.String("admin_id", adminID))
	return nil
}
