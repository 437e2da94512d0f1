// Package sqlite stores key-value pairs in a local SQLite database file.
// It is the default backend for single-device deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"tapstampr/internal/domain/repositories"
)

// KVStore implements repositories.KeyValueStore over a SQLite table
type KVStore struct {
	db   *sql.DB
	path string
}

var _ repositories.KeyValueStore = (*KVStore)(nil)

// Open opens (creating if needed) the database at path and its schema
func Open(path string) (*KVStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps writes ordered and avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)

	s := &KVStore{db: db, path: path}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize kv store: %w", err)
	}

	return s, nil
}

// init creates the database schema
func (s *KVStore) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Path returns the database file location
func (s *KVStore) Path() string {
	return s.path
}

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get key %q: %w", key, err)
	}
	return value, true, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	query := `
	INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("set key %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove key %q: %w", key, err)
	}
	return nil
}

// Close closes the database connection
func (s *KVStore) Close() error {
	return s.db.Close()
}
