package background

import (
	"context"
	"log/slog"
	"time"
)

// AuditPruner is the service method used to delete expired audit rows
type AuditPruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

// CleanupManager periodically removes expired audit events from the database
type CleanupManager struct {
	pruner   AuditPruner
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(pruner AuditPruner, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		pruner:   pruner,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// runCleanup removes audit events past their retention expiry
func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cm.logger.Info("starting expired audit event cleanup")

	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rowsDeleted, err := cm.pruner.PruneExpired(cleanupCtx)
	if err != nil {
		cm.logger.Error("failed to cleanup expired audit events", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("expired audit event cleanup completed", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
