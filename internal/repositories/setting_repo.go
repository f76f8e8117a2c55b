package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"walletwatch/internal/database"
	"walletwatch/internal/models"
)

// SettingRepository manages the key-value system configuration. Policy
// values are read fresh on every evaluation; nothing here caches.
type SettingRepository struct {
	db *database.DB
}

func NewSettingRepository(db *database.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// All returns every setting as a convenience map.
func (r *SettingRepository) All(ctx context.Context) (models.SystemSettings, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT key, value FROM system_settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := make(models.SystemSettings)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

// Get returns a single setting value. Missing keys map to ErrNotFound;
// callers apply their own defaults.
func (r *SettingRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.Pool.QueryRow(ctx, `SELECT value FROM system_settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		return "", database.MapPostgresError(err)
	}
	return value, nil
}

// GetMany returns the requested keys that exist. Absent keys are simply
// omitted from the result map.
func (r *SettingRepository) GetMany(ctx context.Context, keys []string) (models.SystemSettings, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT key, value FROM system_settings WHERE key = ANY($1)`, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	settings := make(models.SystemSettings, len(keys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[k] = v
	}
	return settings, rows.Err()
}

// Set upserts a single setting.
func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO system_settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Pool.Exec(ctx, query, key, value, time.Now())
	return err
}

// SetMany upserts multiple settings in a single transaction so related
// policy pairs (e.g. login max-attempts and lockout-minutes) change
// together.
func (r *SettingRepository) SetMany(ctx context.Context, settings map[string]string) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO system_settings (key, value, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (key)
			DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		`
		now := time.Now()
		for k, v := range settings {
			if _, err := tx.Exec(ctx, query, k, v, now); err != nil {
				return fmt.Errorf("failed to upsert setting %q: %w", k, err)
			}
		}
		return nil
	})
}

// EnsureDefaults inserts any missing policy settings without overwriting
// existing values. Called once at startup.
func (r *SettingRepository) EnsureDefaults(ctx context.Context, defaults map[string]string) error {
	query := `
		INSERT INTO system_settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO NOTHING
	`
	now := time.Now()
	for k, v := range defaults {
		if _, err := r.db.Pool.Exec(ctx, query, k, v, now); err != nil {
			return fmt.Errorf("failed to seed setting %q: %w", k, err)
		}
	}
	return nil
}
