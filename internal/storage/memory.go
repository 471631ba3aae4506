package storage

import (
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

// MemoryStore keeps encoded values in process memory.
// Values are stored as YAML so loads never alias the saved value.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (store *MemoryStore) Load(key string, out any) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	store.mu.Lock()
	rawData, ok := store.values[key]
	store.mu.Unlock()
	if !ok {
		return false, nil
	}

	if err := yaml.Unmarshal(rawData, out); err != nil {
		return false, fmt.Errorf("parse %s yaml: %w", key, err)
	}
	return true, nil
}

func (store *MemoryStore) Save(key string, value any) error {
	if err := validateKey(key); err != nil {
		return err
	}

	serialized, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s yaml: %w", key, err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	store.values[key] = serialized
	return nil
}

// Delete removes key.
func (store *MemoryStore) Delete(key string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.values, key)
}

func (store *MemoryStore) Close() error {
	return nil
}
