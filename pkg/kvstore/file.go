package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File is a Store backed by a single JSON file. A missing or corrupt file
// reads as an empty store.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file-backed store at path. The parent directory is
// created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// Get implements Store.
func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := f.load()
	v, ok := data[key]
	return v, ok, nil
}

// Set implements Store.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := f.load()
	data[key] = value
	return f.flush(data)
}

// Del implements Store.
func (f *File) Del(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := f.load()
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.flush(data)
}

func (f *File) load() map[string]string {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return map[string]string{}
	}
	data := map[string]string{}
	if err := json.Unmarshal(raw, &data); err != nil {
		// Corrupt storage reads as empty rather than failing.
		return map[string]string{}
	}
	return data
}

func (f *File) flush(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
