// Package dedup records which occurrence keys have already been notified,
// with a daily rollover that clears the whole key map when the wall-clock
// date advances. New dates prefix new keys anyway, so rollover is a memory
// bound and a re-arming cleanliness guarantee rather than a correctness
// requirement — but it must happen in a long-lived process.
package dedup

import (
	"context"
	"log/slog"
	"sync"

	"github.com/routinelab/routined/internal/config"
	"github.com/routinelab/routined/internal/store"
)

// Store is the persisted dedup state: the sentNotifications key map plus
// lastNotificationDate, the last date for which the map is valid.
type Store struct {
	mu       sync.RWMutex
	kv       store.KV
	logger   *slog.Logger
	sent     map[string]bool
	lastDate string
}

// Load reads the dedup blobs. Missing or corrupt state starts empty.
func Load(ctx context.Context, kv store.KV, logger *slog.Logger) *Store {
	s := &Store{
		kv:     kv,
		logger: logger,
		sent:   make(map[string]bool),
	}
	store.LoadJSON(ctx, kv, config.KeySentNotifications, &s.sent, logger)
	if s.sent == nil {
		s.sent = make(map[string]bool)
	}
	store.LoadJSON(ctx, kv, config.KeyLastNotifyDate, &s.lastDate, logger)
	return s
}

// Rollover clears the key map if today differs from the last valid date,
// and reports whether a reset happened. The cleared map and the new date
// are persisted immediately.
func (s *Store) Rollover(ctx context.Context, today string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastDate == today {
		return false
	}
	s.sent = make(map[string]bool)
	s.lastDate = today
	s.persistLocked(ctx)
	return true
}

// Sent reports whether the occurrence key was already notified.
func (s *Store) Sent(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sent[key]
}

// MarkSent records that the occurrence key was notified and persists.
func (s *Store) MarkSent(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[key] = true
	s.persistLocked(ctx)
}

// LastDate returns the date the key map is valid for ("" before any tick).
func (s *Store) LastDate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastDate
}

// Count returns the number of keys notified on the current date.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sent)
}

// persistLocked writes both blobs. A failed write risks a duplicate
// notification after restart; that is accepted over failing the tick.
func (s *Store) persistLocked(ctx context.Context) {
	if err := store.SaveJSON(ctx, s.kv, config.KeySentNotifications, s.sent); err != nil {
		s.logger.Warn("Dedup write failed, in-memory state kept", "error", err)
	}
	if err := store.SaveJSON(ctx, s.kv, config.KeyLastNotifyDate, s.lastDate); err != nil {
		s.logger.Warn("Dedup date write failed, in-memory state kept", "error", err)
	}
}
