package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// File is a single-file JSON KV: one object mapping key → raw blob. It is
// the local analog of the browser storage the routine data originally lived
// in — no server required.
type File struct {
	mu      sync.RWMutex
	path    string
	entries map[string]json.RawMessage
}

// OpenFile loads the state file if present. A missing file starts empty; a
// corrupt file is logged and likewise starts empty.
func OpenFile(path string, logger *slog.Logger) (*File, error) {
	f := &File{
		path:    path,
		entries: make(map[string]json.RawMessage),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	if err := json.Unmarshal(raw, &f.entries); err != nil {
		logger.Warn("State file unreadable, starting empty", "path", path, "error", err)
		f.entries = make(map[string]json.RawMessage)
	}
	return f, nil
}

// Get returns the blob stored at key, or ErrNotFound.
func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Set stores the blob at key and rewrites the file.
func (f *File) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = json.RawMessage(value)
	return f.flushLocked()
}

// Delete removes a key and rewrites the file.
func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[key]; !ok {
		return nil
	}
	delete(f.entries, key)
	return f.flushLocked()
}

// Close is a no-op; every Set/Delete flushes synchronously.
func (f *File) Close() {}

// flushLocked writes the whole map atomically via rename.
func (f *File) flushLocked() error {
	raw, err := json.MarshalIndent(f.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
