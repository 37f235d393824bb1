package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-pos-console/prefs"
)

var _ prefs.Store = (*FileStore)(nil)

// FileStore persists preferences as a flat JSON object in a single file.
// Every write rewrites the file through a temp file and rename.
type FileStore struct {
	path   string
	values map[string]string
	lock   sync.RWMutex
}

// Open loads the file at path, creating its directory if needed. A missing file is an empty store.
func Open(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create preference folder: %w", err)
	}

	fsStore := &FileStore{path: path, values: make(map[string]string)}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fsStore, nil
	case err != nil:
		return nil, fmt.Errorf("read preference file: %w", err)
	}

	if len(raw) == 0 {
		return fsStore, nil
	}
	if err := json.Unmarshal(raw, &fsStore.values); err != nil {
		return nil, fmt.Errorf("parse preference file %s: %w", path, err)
	}
	return fsStore, nil
}

func (f *FileStore) Get(_ context.Context, key string) (string, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	v, ok := f.values[key]
	if !ok {
		return "", prefs.ErrNotFound
	}
	return v, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	prev, had := f.values[key]
	f.values[key] = value
	if err := f.flush(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	prev, had := f.values[key]
	if !had {
		return nil
	}
	delete(f.values, key)
	if err := f.flush(); err != nil {
		f.values[key] = prev
		return err
	}
	return nil
}

// flush must be called with the write lock held.
func (f *FileStore) flush() error {
	raw, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".prefs-*")
	if err != nil {
		return fmt.Errorf("create temp preference file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close preferences: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace preference file: %w", err)
	}
	return nil
}
