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

// APIKeyRepository handles read-API key persistence. Only key hashes are
// stored; lookup is always by hash.
type APIKeyRepository struct {
	pool *pgxpool.Pool
}

func NewAPIKeyRepository(db *database.DB) *APIKeyRepository {
	return &APIKeyRepository{pool: db.Pool}
}

const apiKeyColumns = `id, key_hash, key_prefix, owner, tier, last_used_at, created_at`

func scanAPIKeyRow(scanner rowScanner) (*models.APIKey, error) {
	var key models.APIKey

	err := scanner.Scan(
		&key.ID, &key.KeyHash, &key.KeyPrefix,
		&key.Owner, &key.Tier, &key.LastUsedAt, &key.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &key, nil
}

func (r *APIKeyRepository) Create(ctx context.Context, key *models.APIKey) (*models.APIKey, error) {
	key.ID = uuid.New().String()
	key.CreatedAt = time.Now()

	query := `
		INSERT INTO api_keys (id, key_hash, key_prefix, owner, tier, last_used_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + apiKeyColumns

	return scanAPIKeyRow(r.pool.QueryRow(ctx, query,
		key.ID, key.KeyHash, key.KeyPrefix,
		key.Owner, key.Tier, key.LastUsedAt, key.CreatedAt,
	))
}

func (r *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE key_hash = $1`
	return scanAPIKeyRow(r.pool.QueryRow(ctx, query, keyHash))
}

func (r *APIKeyRepository) List(ctx context.Context) ([]*models.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query api keys: %w", err)
	}
	defer rows.Close()

	keys := make([]*models.APIKey, 0)
	for rows.Next() {
		key, err := scanAPIKeyRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// TouchLastUsed records a successful use of the key. Best effort; callers
// log failures rather than failing the request.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string) error {
	query := `UPDATE api_keys SET last_used_at = $1 WHERE id = $2`

	_, err := r.pool.Exec(ctx, query, time.Now(), id)
	return err
}

func (r *APIKeyRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM api_keys WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
