package routes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// FileStore serves the configuration kept in a JSON, TOML or YAML file.
// The file is owned by another process; FileStore only reads it, and reads
// it again whenever its modification time or size changes.
type FileStore struct {
	path   string
	format Format

	mu      sync.Mutex
	cfg     Config
	modTime time.Time
	size    int64
}

// NewFileStore loads path, which may not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("routes: file path required")
	}
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}
	store := &FileStore{path: path, format: format}
	if err := store.refreshLocked(); err != nil {
		return nil, err
	}
	return store, nil
}

// Path returns the backing file.
func (f *FileStore) Path() string {
	return f.path
}

// Snapshot returns the configuration, reloading the file first if it changed.
func (f *FileStore) Snapshot(_ context.Context) (Config, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.refreshLocked(); err != nil {
		return Config{}, err
	}
	return f.cfg.Clone(), nil
}

func (f *FileStore) refreshLocked() error {
	info, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.cfg = Config{}
			f.modTime = time.Time{}
			f.size = 0
			return nil
		}
		return fmt.Errorf("routes: stat file: %w", err)
	}
	if info.ModTime().Equal(f.modTime) && info.Size() == f.size {
		return nil
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("routes: read file: %w", err)
	}
	cfg, err := Decode(data, f.format)
	if err != nil {
		return err
	}
	f.cfg = cfg
	f.modTime = info.ModTime()
	f.size = info.Size()
	return nil
}
