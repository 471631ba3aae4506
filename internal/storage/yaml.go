package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// YAMLExt is the file extension of each stored key.
const YAMLExt = ".yaml"

// YAMLStore keeps one YAML document per key inside a directory.
type YAMLStore struct {
	mu  sync.Mutex
	dir string
}

// NewYAMLStore creates dir when needed.
func NewYAMLStore(dir string) (*YAMLStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &YAMLStore{dir: dir}, nil
}

// Dir returns the storage directory.
func (store *YAMLStore) Dir() string {
	return store.dir
}

// Load reads key. A missing file is reported as not found.
func (store *YAMLStore) Load(key string, out any) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	rawData, err := os.ReadFile(store.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", key, err)
	}

	if err := yaml.Unmarshal(rawData, out); err != nil {
		return false, fmt.Errorf("parse %s yaml: %w", key, err)
	}
	return true, nil
}

// Save writes key through a temporary file so readers never see a partial document.
func (store *YAMLStore) Save(key string, value any) error {
	if err := validateKey(key); err != nil {
		return err
	}

	serialized, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s yaml: %w", key, err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	tmp, err := os.CreateTemp(store.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(serialized); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmpName, store.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; files are closed after each operation.
func (store *YAMLStore) Close() error {
	return nil
}

func (store *YAMLStore) path(key string) string {
	return filepath.Join(store.dir, key+YAMLExt)
}
