package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"walletwatch/internal/database"
	"walletwatch/internal/models"
)

// AuditEventRepository persists the security audit trail. Rows expire and
// are pruned by the background cleanup manager.
type AuditEventRepository struct {
	pool *pgxpool.Pool
}

func NewAuditEventRepository(db *database.DB) *AuditEventRepository {
	return &AuditEventRepository{pool: db.Pool}
}

const auditEventColumns = `id, event_type, actor_id, ip_address, success, failure_reason, created_at, expires_at`

func scanAuditEventRow(scanner rowScanner) (*models.AuditEvent, error) {
	var e models.AuditEvent

	err := scanner.Scan(
		&e.ID, &e.EventType, &e.ActorID, &e.IPAddress,
		&e.Success, &e.FailureReason, &e.CreatedAt, &e.ExpiresAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &e, nil
}

func (r *AuditEventRepository) Create(ctx context.Context, event *models.AuditEvent) (*models.AuditEvent, error) {
	event.ID = uuid.New().String()
	event.CreatedAt = time.Now()

	query := `
		INSERT INTO audit_events (id, event_type, actor_id, ip_address, success, failure_reason, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + auditEventColumns

	return scanAuditEventRow(r.pool.QueryRow(ctx, query,
		event.ID, event.EventType, event.ActorID, event.IPAddress,
		event.Success, event.FailureReason, event.CreatedAt, event.ExpiresAt,
	))
}

// ListRecent returns the newest events, optionally filtered by type.
func (r *AuditEventRepository) ListRecent(ctx context.Context, eventType string, limit int) ([]*models.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + auditEventColumns + ` FROM audit_events`
	args := make([]interface{}, 0, 2)

	if eventType != "" {
		args = append(args, eventType)
		query += fmt.Sprintf(" WHERE event_type = $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.AuditEvent, 0)
	for rows.Next() {
		e, err := scanAuditEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// DeleteExpired removes events past their expiry, returning the count.
func (r *AuditEventRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM audit_events WHERE expires_at < $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired audit events: %w", err)
	}
	return result.RowsAffected(), nil
}
