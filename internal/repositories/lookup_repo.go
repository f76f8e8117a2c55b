package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"walletwatch/internal/database"
	"walletwatch/internal/models"
)

// LookupRepository serves the seeded category and cryptocurrency reference
// tables. Rows are written only by the startup seeder.
type LookupRepository struct {
	pool *pgxpool.Pool
}

func NewLookupRepository(db *database.DB) *LookupRepository {
	return &LookupRepository{pool: db.Pool}
}

func (r *LookupRepository) ListCategories(ctx context.Context) ([]*models.Category, error) {
	query := `SELECT id, name, description, icon FROM categories ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}

	return categories, rows.Err()
}

func (r *LookupRepository) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	var c models.Category
	err := r.pool.QueryRow(ctx, `SELECT id, name, description, icon FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description, &c.Icon)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}

func (r *LookupRepository) ListCryptocurrencies(ctx context.Context) ([]*models.Cryptocurrency, error) {
	query := `SELECT id, name, symbol, icon FROM cryptocurrencies ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cryptocurrencies: %w", err)
	}
	defer rows.Close()

	coins := make([]*models.Cryptocurrency, 0)
	for rows.Next() {
		var c models.Cryptocurrency
		if err := rows.Scan(&c.ID, &c.Name, &c.Symbol, &c.Icon); err != nil {
			return nil, fmt.Errorf("failed to scan cryptocurrency: %w", err)
		}
		coins = append(coins, &c)
	}

	return coins, rows.Err()
}

func (r *LookupRepository) GetCryptocurrency(ctx context.Context, id string) (*models.Cryptocurrency, error) {
	var c models.Cryptocurrency
	err := r.pool.QueryRow(ctx, `SELECT id, name, symbol, icon FROM cryptocurrencies WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Symbol, &c.Icon)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}

// SeedCategories inserts any missing categories without overwriting edits.
func (r *LookupRepository) SeedCategories(ctx context.Context, categories []models.Category) error {
	query := `
		INSERT INTO categories (id, name, description, icon)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO NOTHING
	`
	for _, c := range categories {
		if _, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Description, c.Icon); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
	}
	return nil
}

// SeedCryptocurrencies inserts any missing coins without overwriting edits.
func (r *LookupRepository) SeedCryptocurrencies(ctx context.Context, coins []models.Cryptocurrency) error {
	query := `
		INSERT INTO cryptocurrencies (id, name, symbol, icon)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol) DO NOTHING
	`
	for _, c := range coins {
		if _, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Symbol, c.Icon); err != nil {
			return fmt.Errorf("failed to seed cryptocurrency %q: %w", c.Symbol, err)
		}
	}
	return nil
}
