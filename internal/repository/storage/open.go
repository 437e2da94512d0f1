// Package storage selects and opens the configured key-value backend.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"tapstampr/internal/config"
	"tapstampr/internal/domain/repositories"
	"tapstampr/internal/repository/memory"
	"tapstampr/internal/repository/mongo"
	"tapstampr/internal/repository/postgres"
	"tapstampr/internal/repository/sqlite"
)

// Backend bundles an opened key-value store with its transaction manager
type Backend struct {
	Name      string
	KV        repositories.KeyValueStore
	TxManager repositories.TransactionManager
	closeFn   func() error
}

// Close releases the backend's connections
func (b *Backend) Close() error {
	if b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

// Open connects to the backend named by cfg.StorageBackend
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return &Backend{
			Name:      config.BackendMemory,
			KV:        memory.NewKVStore(),
			TxManager: repositories.PassthroughTxManager{},
		}, nil

	case config.BackendSQLite:
		kv, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite storage opened", "path", cfg.SQLitePath)
		return &Backend{
			Name:      config.BackendSQLite,
			KV:        kv,
			TxManager: repositories.PassthroughTxManager{},
			closeFn:   kv.Close,
		}, nil

	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the %s backend", config.BackendPostgres)
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		kv := postgres.NewKVStore(&postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		})
		if err := kv.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("postgres storage connected", "table_prefix", cfg.TablePrefix)
		return &Backend{
			Name:      config.BackendPostgres,
			KV:        kv,
			TxManager: postgres.NewTransactionManager(pool, logger),
			closeFn: func() error {
				pool.Close()
				return nil
			},
		}, nil

	case config.BackendMongo:
		client, err := mongo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		logger.Info("mongo storage connected", "database", cfg.MongoDatabase)
		return &Backend{
			Name:      config.BackendMongo,
			KV:        mongo.New(client.Database(cfg.MongoDatabase)),
			TxManager: repositories.PassthroughTxManager{},
			closeFn: func() error {
				return client.Disconnect(context.Background())
			},
		}, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
