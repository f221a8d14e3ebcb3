// Package storage persists workouts in a small key-value store.
package storage

import (
	"errors"
	"fmt"
	"sync"
)

// KeyValueStore is the durable store the repository writes through
type KeyValueStore interface {
	// Get returns the value for key; ok is false when the key is absent
	Get(key string) (value []byte, ok bool, err error)
	// Set overwrites the value for key
	Set(key string, value []byte) error
	// Remove deletes key; removing an absent key is not an error
	Remove(key string) error
	Close() error
}

// Backend names accepted by Open
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Open creates the store named by backend rooted at dataDir
func Open(backend, dataDir string) (KeyValueStore, error) {
	switch backend {
	case BackendFile:
		return NewFileStore(dataDir)
	case BackendSQLite:
		return OpenSQLiteStore(dataDir)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
}

// MemoryStore keeps values in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryStore) Set(key string, value []byte) error {
	s.mu.Lock()
	s.values[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
