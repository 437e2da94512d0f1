package library

import (
	"log/slog"
	"sync"

	"tapstampr/internal/config"
	"tapstampr/internal/domain/repositories"
	libSvc "tapstampr/internal/domain/services/library"
)

// Namespaces hands out one folder store per user, each under its own
// storage key on a shared key-value store. Stores for the same key share a
// lock that only exists while calls on that key are in flight.
type Namespaces struct {
	kv        repositories.KeyValueStore
	txManager repositories.TransactionManager
	baseKey   string
	logger    *slog.Logger
	locks     *keyLocks
}

// NewNamespaces creates a registry rooted at baseKey
func NewNamespaces(kv repositories.KeyValueStore, txManager repositories.TransactionManager, baseKey string, logger *slog.Logger) *Namespaces {
	if baseKey == "" {
		baseKey = config.DefaultStorageKey
	}
	return &Namespaces{
		kv:        kv,
		txManager: txManager,
		baseKey:   baseKey,
		logger:    logger,
		locks:     newKeyLocks(),
	}
}

// KeyFor returns the storage key used for userID. An empty user id maps to
// the base key.
func (n *Namespaces) KeyFor(userID string) string {
	if userID == "" {
		return n.baseKey
	}
	return n.baseKey + "/" + userID
}

// ForUser returns a folder store for userID
func (n *Namespaces) ForUser(userID string) libSvc.FolderStore {
	return NewFolderStore(&FolderStoreConfig{
		KV:        n.kv,
		TxManager: n.txManager,
		Key:       n.KeyFor(userID),
		Logger:    n.logger,
		locks:     n.locks,
	})
}

// keyLocks is a set of per-key mutexes. An entry is dropped once nobody
// holds or waits on it.
type keyLocks struct {
	mu      sync.Mutex
	entries map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{entries: make(map[string]*keyLock)}
}

// lock blocks until key is free and returns the matching unlock
func (k *keyLocks) lock(key string) func() {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &keyLock{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()

		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}

// size reports how many keys currently have a live lock
func (k *keyLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
