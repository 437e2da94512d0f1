package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"tapstampr/internal/domain/repositories"
)

// PostgresKVStore implements repositories.KeyValueStore on a single table
type PostgresKVStore struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewKVStore creates a new key-value store over the configured pool
func NewKVStore(config *RepositoryConfig) *PostgresKVStore {
	return &PostgresKVStore{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

var _ repositories.KeyValueStore = (*PostgresKVStore)(nil)

// EnsureSchema creates the key-value table when it does not exist
func (r *PostgresKVStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, r.tables.KeyValues)

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", r.tables.KeyValues, err)
	}
	return nil
}

// Get reads the value for key. Inside a transaction it first takes an
// advisory lock on the key, held until commit, so concurrent
// read-modify-write cycles on the same key run one after another.
func (r *PostgresKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	executor := GetExecutor(ctx, r.pool)

	if repositories.GetTx(ctx) != nil {
		if _, err := executor.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return "", false, fmt.Errorf("lock key %q: %w", key, err)
		}
	}

	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, r.tables.KeyValues)

	var value string
	err := executor.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if IsPgNoRowsError(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get key %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the value for key
func (r *PostgresKVStore) Set(ctx context.Context, key, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, r.tables.KeyValues)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set key %q: %w", key, err)
	}
	return nil
}

// Remove deletes the row for key
func (r *PostgresKVStore) Remove(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, r.tables.KeyValues)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, key)
	if err != nil {
		return fmt.Errorf("remove key %q: %w", key, err)
	}
	r.logger.Debug("key removed", "key", key, "rows", tag.RowsAffected())
	return nil
}
