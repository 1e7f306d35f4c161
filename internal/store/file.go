package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/lox/minicasino/internal/fileutil"
)

// FileStore keeps balances in a small JSON object on disk. Every Save
// rewrites the file atomically.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the JSON file at path. The file is
// created on first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path
func (f *FileStore) Path() string {
	return f.path
}

// Load returns the balance saved under key
func (f *FileStore) Load(_ context.Context, key string) (int64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	balances, err := f.read()
	if err != nil {
		return 0, false, err
	}
	amount, ok := balances[key]
	return amount, ok, nil
}

// Save stores amount under key, keeping the other keys intact
func (f *FileStore) Save(_ context.Context, key string, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	balances, err := f.read()
	if err != nil {
		return err
	}
	balances[key] = amount

	data, err := json.MarshalIndent(balances, "", "  ")
	if err != nil {
		return fmt.Errorf("encode balances: %w", err)
	}
	if err := fileutil.WriteFileAtomic(f.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write balances: %w", err)
	}
	return nil
}

// Close is a no-op
func (f *FileStore) Close() error { return nil }

func (f *FileStore) read() (map[string]int64, error) {
	balances := make(map[string]int64)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return balances, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read balances: %w", err)
	}
	if len(data) == 0 {
		return balances, nil
	}
	if err := json.Unmarshal(data, &balances); err != nil {
		return nil, fmt.Errorf("decode balances %s: %w", f.path, err)
	}
	return balances, nil
}
