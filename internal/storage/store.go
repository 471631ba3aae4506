package storage

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	KindYAML   = "yaml"
	KindSQLite = "sqlite"
	KindMemory = "memory"
)

// SQLiteFileName is the database file created inside the storage directory.
const SQLiteFileName = "stretchtime.db"

var (
	// ErrInvalidKey rejects keys that are not lower-case words joined by dashes.
	ErrInvalidKey = errors.New("invalid storage key")
	// ErrUnknownKind rejects an unsupported backend name.
	ErrUnknownKind = errors.New("unknown storage type")
)

// Store is a durable key/value store. Save replaces the previous value atomically.
type Store interface {
	Save(key string, value any) error
	// Load decodes the stored value into out and reports whether the key exists.
	Load(key string, out any) (bool, error)
	Close() error
}

// Open creates the backend named by kind rooted at dir.
func Open(kind, dir string) (Store, error) {
	switch kind {
	case KindYAML, "":
		return NewYAMLStore(dir)
	case KindSQLite:
		return NewSQLiteStore(filepath.Join(dir, SQLiteFileName))
	case KindMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func validateKey(key string) error {
	if key == "" || key[0] == '-' || key[len(key)-1] == '-' {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, r := range key {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
