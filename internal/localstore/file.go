package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists all items as one JSON object on disk, so values survive
// across runs. Writes replace the file atomically.
type FileStore struct {
	path string

	mu     sync.Mutex
	items  map[string]string
	loaded bool
}

// NewFileStore returns a store backed by path. The file is created on the
// first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) GetItem(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return "", false, err
	}
	v, ok := f.items[key]
	return v, ok, nil
}

func (f *FileStore) SetItem(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return err
	}
	prev, had := f.items[key]
	f.items[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.items[key] = prev
		} else {
			delete(f.items, key)
		}
		return err
	}
	return nil
}

func (f *FileStore) RemoveItem(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.load(); err != nil {
		return err
	}
	prev, had := f.items[key]
	if !had {
		return nil
	}
	delete(f.items, key)
	if err := f.flush(); err != nil {
		f.items[key] = prev
		return err
	}
	return nil
}

func (f *FileStore) load() error {
	if f.loaded {
		return nil
	}
	data, err := os.ReadFile(f.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		f.items = make(map[string]string)
	case err != nil:
		return fmt.Errorf("read local store: %w", err)
	default:
		items := make(map[string]string)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &items); err != nil {
				return fmt.Errorf("decode local store %s: %w", f.path, err)
			}
		}
		f.items = items
	}
	f.loaded = true
	return nil
}

func (f *FileStore) flush() error {
	data, err := json.MarshalIndent(f.items, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create local store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".localstore-*")
	if err != nil {
		return fmt.Errorf("write local store: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write local store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write local store: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("write local store: %w", err)
	}
	return nil
}
