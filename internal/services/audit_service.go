package services

import (
	"context"
	"log/slog"
	"time"

	"walletwatch/internal/models"
)

// AuditEventRepository defines the interface for audit trail persistence
type AuditEventRepository interface {
	Create(ctx context.Context, event *models.AuditEvent) (*models.AuditEvent, error)
	ListRecent(ctx context.Context, eventType string, limit int) ([]*models.AuditEvent, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

// AuditRecorder is the write side consumed by the other services. Recording
// is best effort; a failed write never fails the guarded operation.
type AuditRecorder interface {
	Record(ctx context.Context, event models.AuditEvent)
}

// AuditService persists the security audit trail alongside the structured
// audit log stream. Rows expire after the retention period and are pruned
// by the background cleanup manager.
type AuditService struct {
	repo      AuditEventRepository
	logger    *slog.Logger
	retention time.Duration
}

const defaultAuditRetention = 90 * 24 * time.Hour

// NewAuditService creates a new AuditService
func NewAuditService(repo AuditEventRepository, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:      repo,
		logger:    logger,
		retention: defaultAuditRetention,
	}
}

// Record persists an audit event, stamping its expiry. Failures are logged
// and swallowed.
func (s *AuditService) Record(ctx context.Context, event models.AuditEvent) {
	event.ExpiresAt = time.Now().Add(s.retention)

	if _, err := s.repo.Create(ctx, &event); err != nil {
		s.logger.Error("failed to record audit event",
			slog.String("event_type", event.EventType),
			slog.Any("error", err))
	}
}

// ListRecent returns the newest audit events, optionally filtered by type.
func (s *AuditService) ListRecent(ctx context.Context, eventType string, limit int) ([]*models.AuditEvent, error) {
	if eventType != "" {
		switch eventType {
		case models.AuditEventLogin, models.AuditEventLockout,
			models.AuditEventTwoFactorGenerate, models.AuditEventTwoFactorEnable, models.AuditEventTwoFactorDisable,
			models.AuditEventSubmissionTrapped, models.AuditEventSubmissionRejected, models.AuditEventSubmissionLimited,
			models.AuditEventAPIKeyOp:
		default:
			return nil, models.ErrBadRequest
		}
	}

	events, err := s.repo.ListRecent(ctx, eventType, limit)
	if err != nil {
		s.logger.Error("failed to list audit events", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return events, nil
}

// PruneExpired deletes events past their retention expiry.
func (s *AuditService) PruneExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx)
}
