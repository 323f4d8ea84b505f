// Package store provides the persistent key-value collaborator: string keys
// mapped to JSON blobs. The daemon reads every blob at startup and writes
// after every mutation. A missing or unreadable blob is never an error for
// the caller — state loaders substitute empty defaults.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/routinelab/routined/internal/config"
)

// ErrNotFound is returned by Get for keys that were never written.
var ErrNotFound = errors.New("store: key not found")

// KV is a string-keyed blob store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close()
}

// Open selects a driver from the configuration: Postgres when DATABASE_URL
// is set, otherwise a local JSON state file.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (KV, error) {
	if cfg.DatabaseURL != "" {
		pg, err := NewPostgres(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		logger.Info("State store opened", "driver", "postgres")
		return pg, nil
	}
	f, err := OpenFile(cfg.StateFile, logger)
	if err != nil {
		return nil, fmt.Errorf("open file store: %w", err)
	}
	logger.Info("State store opened", "driver", "file", "path", cfg.StateFile)
	return f, nil
}

// LoadJSON decodes the blob at key into v. A missing key leaves v untouched;
// a corrupt blob is logged and likewise leaves v untouched, so callers keep
// their empty defaults.
func LoadJSON(ctx context.Context, kv KV, key string, v any, logger *slog.Logger) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("State read failed, using empty default", "key", key, "error", err)
		}
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		logger.Warn("State blob unreadable, using empty default", "key", key, "error", err)
	}
}

// SaveJSON encodes v and writes it at key. Write failures are returned for
// the caller to log; in-memory state stays authoritative for the session.
func SaveJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
