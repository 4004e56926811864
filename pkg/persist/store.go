// Package persist stores simulated-device snapshots so disk state can
// survive across runs when a persistence location is configured.
package persist

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// Store loads and saves one device snapshot per key. Implementations decide
// what a key means: a file path, a map entry, anything addressable.
type Store interface {
	Load(ctx context.Context, key string) (snapshot []byte, ok bool, err error)
	Save(ctx context.Context, key string, snapshot []byte) error
}

// FileStore persists snapshots directly to the key as a file path.
type FileStore struct{}

// Load reads the snapshot file, reporting ok=false when it does not exist
// yet.
func (FileStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Save writes the snapshot, replacing any previous content.
func (FileStore) Save(_ context.Context, key string, snapshot []byte) error {
	return os.WriteFile(key, snapshot, 0o644)
}
