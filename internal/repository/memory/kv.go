// Package memory provides an in-process key-value store. Data lives only as
// long as the process; it backs tests and the "memory" storage backend.
package memory

import (
	"context"
	"sync"

	"tapstampr/internal/domain/repositories"
)

// KVStore implements repositories.KeyValueStore over a map
type KVStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewKVStore creates an empty store
func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string]string)}
}

var _ repositories.KeyValueStore = (*KVStore)(nil)

func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Keys returns the number of stored keys
func (s *KVStore) Keys() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
