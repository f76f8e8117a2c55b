package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"walletwatch/internal/database"
	"walletwatch/internal/models"
)

// AdminUserRepository handles administrator account persistence
type AdminUserRepository struct {
	pool *pgxpool.Pool
}

func NewAdminUserRepository(db *database.DB) *AdminUserRepository {
	return &AdminUserRepository{pool: db.Pool}
}

// rowScanner interface for scanning rows (supports both single row and multiple rows)
type rowScanner interface {
	Scan(dest ...interface{}) error
}

const adminUserColumns = `id, username, password_hash, failed_login_attempts, lockout_until, two_factor_enabled, two_factor_secret, created_at, updated_at`

// scanAdminUserRow handles nullable fields and populates an AdminUser from a row
func scanAdminUserRow(scanner rowScanner) (*models.AdminUser, error) {
	var user models.AdminUser

	err := scanner.Scan(
		&user.ID, &user.Username, &user.PasswordHash,
		&user.FailedLoginAttempts, &user.LockoutUntil,
		&user.TwoFactorEnabled, &user.TwoFactorSecret,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

func (r *AdminUserRepository) GetByID(ctx context.Context, id string) (*models.AdminUser, error) {
	query := `SELECT ` + adminUserColumns + ` FROM admin_users WHERE id = $1`
	return scanAdminUserRow(r.pool.QueryRow(ctx, query, id))
}

func (r *AdminUserRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	query := `SELECT ` + adminUserColumns + ` FROM admin_users WHERE username = $1`
	return scanAdminUserRow(r.pool.QueryRow(ctx, query, username))
}

func (r *AdminUserRepository) Create(ctx context.Context, user *models.AdminUser) (*models.AdminUser, error) {
	user.ID = uuid.New().String()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO admin_users (id, username, password_hash, failed_login_attempts, lockout_until, two_factor_enabled, two_factor_secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + adminUserColumns

	return scanAdminUserRow(r.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.PasswordHash,
		user.FailedLoginAttempts, user.LockoutUntil,
		user.TwoFactorEnabled, user.TwoFactorSecret,
		user.CreatedAt, user.UpdatedAt,
	))
}

// UpdateLoginState writes the brute-force counters. A nil lockoutUntil
// clears the lock.
func (r *AdminUserRepository) UpdateLoginState(ctx context.Context, id string, failedAttempts int, lockoutUntil *time.Time) error {
	query := `
		UPDATE admin_users
		SET failed_login_attempts = $1, lockout_until = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, failedAttempts, lockoutUntil, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdateTwoFactor writes the second-factor state. Enabling with a nil secret
// is rejected at the service layer; this write is a plain upsert of both
// columns so disable can clear them together.
func (r *AdminUserRepository) UpdateTwoFactor(ctx context.Context, id string, enabled bool, secret *string) error {
	query := `
		UPDATE admin_users
		SET two_factor_enabled = $1, two_factor_secret = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.pool.Exec(ctx, query, enabled, secret, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *AdminUserRepository) UpdateUsername(ctx context.Context, id, username string) error {
	query := `UPDATE admin_users SET username = $1, updated_at = $2 WHERE id = $3`

	result, err := r.pool.Exec(ctx, query, username, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *AdminUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE admin_users SET password_hash = $1, updated_at = $2 WHERE id = $3`

	result, err := r.pool.Exec(ctx, query, passwordHash, time.Now(), id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
