package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"walletwatch/internal/database"
	"walletwatch/internal/models"
	"walletwatch/internal/repositories"
	"walletwatch/pkg/auth"
)

// TestDB manages PostgreSQL testcontainer and database operations
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase creates a PostgreSQL testcontainer, runs migrations, returns TestDB
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("walletwatch"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, connStr); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         &database.DB{Pool: pool},
	}, nil
}

// runMigrations executes all goose migrations over a database/sql connection
func runMigrations(ctx context.Context, connStr string) error {
	migrationsDir, err := filepath.Abs("../../migrations")
	if err != nil {
		return fmt.Errorf("failed to get migrations path: %w", err)
	}

	// Suppress goose logs
	goose.SetLogger(log.New(nil, "", 0))

	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Teardown stops the container and closes the connection pool
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all tables for test isolation
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"submissions",
		"audit_events",
		"api_keys",
		"system_settings",
		"admin_users",
		"cryptocurrencies",
		"categories",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// InitializeRepositories creates all repository instances from database wrapper
func InitializeRepositories(db *database.DB) (
	*repositories.AdminUserRepository,
	*repositories.SubmissionRepository,
	*repositories.SettingRepository,
	*repositories.APIKeyRepository,
	*repositories.LookupRepository,
	*repositories.AuditEventRepository,
) {
	return repositories.NewAdminUserRepository(db),
		repositories.NewSubmissionRepository(db),
		repositories.NewSettingRepository(db),
		repositories.NewAPIKeyRepository(db),
		repositories.NewLookupRepository(db),
		repositories.NewAuditEventRepository(db)
}

// SeedAdmin inserts an admin account with a hashed password
func SeedAdmin(ctx context.Context, pool *pgxpool.Pool, username, password string) (*models.AdminUser, error) {
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO admin_users (id, username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, username, password_hash, failed_login_attempts, lockout_until, two_factor_enabled, two_factor_secret, created_at, updated_at
	`

	var admin models.AdminUser
	err = pool.QueryRow(ctx, query, uuid.New().String(), username, hashedPassword).Scan(
		&admin.ID,
		&admin.Username,
		&admin.PasswordHash,
		&admin.FailedLoginAttempts,
		&admin.LockoutUntil,
		&admin.TwoFactorEnabled,
		&admin.TwoFactorSecret,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert admin: %w", err)
	}

	return &admin, nil
}

// SeedCategory inserts a report category and returns its id
func SeedCategory(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	id := uuid.New().String()

	_, err := pool.Exec(ctx,
		`INSERT INTO categories (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		id, name,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert category: %w", err)
	}

	err = pool.QueryRow(ctx, `SELECT id FROM categories WHERE name = $1`, name).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to read category: %w", err)
	}
	return id, nil
}

// SeedCryptocurrency inserts a cryptocurrency and returns its id
func SeedCryptocurrency(ctx context.Context, pool *pgxpool.Pool, name, symbol string) (string, error) {
	id := uuid.New().String()

	_, err := pool.Exec(ctx,
		`INSERT INTO cryptocurrencies (id, name, symbol) VALUES ($1, $2, $3) ON CONFLICT (symbol) DO NOTHING`,
		id, name, symbol,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert cryptocurrency: %w", err)
	}

	err = pool.QueryRow(ctx, `SELECT id FROM cryptocurrencies WHERE symbol = $1`, symbol).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to read cryptocurrency: %w", err)
	}
	return id, nil
}

// SetSetting upserts a policy setting directly, bypassing the service layer
func SetSetting(ctx context.Context, pool *pgxpool.Pool, key, value string) error {
	query := `
		INSERT INTO system_settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	_, err := pool.Exec(ctx, query, key, value)
	return err
}

// CountSubmissionsByStatus returns how many stored submissions carry a status
func CountSubmissionsByStatus(ctx context.Context, pool *pgxpool.Pool, status string) (int, error) {
	var count int
	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM submissions WHERE status = $1`, status).Scan(&count)
	return count, err
}
