package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"walletwatch/internal/database"
	"walletwatch/internal/models"
)

// SubmissionRepository handles wallet-report persistence, including the
// count-by-IP-within-window query the rate limiter is built on.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(db *database.DB) *SubmissionRepository {
	return &SubmissionRepository{pool: db.Pool}
}

const submissionColumns = `id, wallet_address, category_id, cryptocurrency_id, website_url, reported_owner, reason, admin_notes, status, submitter_ip, created_at, updated_at`

func scanSubmissionRow(scanner rowScanner) (*models.Submission, error) {
	var s models.Submission

	err := scanner.Scan(
		&s.ID, &s.WalletAddress, &s.CategoryID, &s.CryptocurrencyID,
		&s.WebsiteURL, &s.ReportedOwner, &s.Reason, &s.AdminNotes,
		&s.Status, &s.SubmitterIP, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &s, nil
}

func scanSubmissionRows(rows pgx.Rows) ([]*models.Submission, error) {
	defer rows.Close()

	submissions := make([]*models.Submission, 0)

	for rows.Next() {
		s, err := scanSubmissionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return submissions, nil
}

func (r *SubmissionRepository) Create(ctx context.Context, s *models.Submission) (*models.Submission, error) {
	s.ID = uuid.New().String()

	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	if s.Status == "" {
		s.Status = models.SubmissionStatusPending
	}

	query := `
		INSERT INTO submissions (id, wallet_address, category_id, cryptocurrency_id, website_url, reported_owner, reason, admin_notes, status, submitter_ip, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + submissionColumns

	return scanSubmissionRow(r.pool.QueryRow(ctx, query,
		s.ID, s.WalletAddress, s.CategoryID, s.CryptocurrencyID,
		s.WebsiteURL, s.ReportedOwner, s.Reason, s.AdminNotes,
		s.Status, s.SubmitterIP, s.CreatedAt, s.UpdatedAt,
	))
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`
	return scanSubmissionRow(r.pool.QueryRow(ctx, query, id))
}

// CountByIPSince counts submissions from an IP created at or after the given
// instant. This is the trailing-window rate-limit state, recomputed fresh
// per request.
func (r *SubmissionRepository) CountByIPSince(ctx context.Context, submitterIP string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM submissions WHERE submitter_ip = $1 AND created_at >= $2`

	var count int
	err := r.pool.QueryRow(ctx, query, submitterIP, since).Scan(&count)
	return count, err
}

// List returns submissions matching the filter, newest first.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE 1=1`
	args := make([]interface{}, 0, 6)

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	if filter.CryptocurrencyID != "" {
		args = append(args, filter.CryptocurrencyID)
		query += fmt.Sprintf(" AND cryptocurrency_id = $%d", len(args))
	}
	if filter.SearchTerm != "" {
		args = append(args, "%"+filter.SearchTerm+"%")
		query += fmt.Sprintf(" AND (wallet_address ILIKE $%d OR reported_owner ILIKE $%d)", len(args), len(args))
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}

	return scanSubmissionRows(rows)
}

// UpdateReview applies an admin review decision (status and/or notes).
func (r *SubmissionRepository) UpdateReview(ctx context.Context, id, status string, adminNotes *string) (*models.Submission, error) {
	query := `
		UPDATE submissions SET status = $1, admin_notes = $2, updated_at = $3
		WHERE id = $4
		RETURNING ` + submissionColumns

	return scanSubmissionRow(r.pool.QueryRow(ctx, query, status, adminNotes, time.Now(), id))
}

func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM submissions WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
