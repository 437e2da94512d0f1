package repositories

import "context"

// KeyValueStore is the durable string-to-string map the folder collection
// is persisted in. Implementations exist for memory, SQLite, PostgreSQL and
// MongoDB.
type KeyValueStore interface {
	// Get returns the value stored under key.
	// found is false (with a nil error) when the key has never been set
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set replaces the value stored under key
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error
	Remove(ctx context.Context, key string) error
}
