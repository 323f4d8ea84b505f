// Package completion tracks which occurrences the user has marked done,
// keyed by date then occurrence id. Entries are never deleted
// automatically; the map grows for the lifetime of the data and that is
// accepted.
package completion

import (
	"context"
	"log/slog"
	"sync"

	"github.com/routinelab/routined/internal/config"
	"github.com/routinelab/routined/internal/store"
)

// Store is the persisted completion state (the dailyTasks blob).
type Store struct {
	mu     sync.RWMutex
	kv     store.KV
	logger *slog.Logger
	tasks  map[string]map[string]bool
}

// Load reads the dailyTasks blob. Missing or corrupt state starts empty.
func Load(ctx context.Context, kv store.KV, logger *slog.Logger) *Store {
	s := &Store{
		kv:     kv,
		logger: logger,
		tasks:  make(map[string]map[string]bool),
	}
	store.LoadJSON(ctx, kv, config.KeyDailyTasks, &s.tasks, logger)
	if s.tasks == nil {
		s.tasks = make(map[string]map[string]bool)
	}
	return s
}

// Done reports whether the occurrence id is marked complete for the date.
func (s *Store) Done(date, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks[date][id]
}

// Toggle flips the completion flag for (date, id), creating the date entry
// if absent, and returns the new value. The id is not validated against the
// catalog: catalog entries can be deleted without orphaning history into
// errors — stale entries are simply never matched again.
func (s *Store) Toggle(ctx context.Context, date, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := s.tasks[date]
	if day == nil {
		day = make(map[string]bool)
		s.tasks[date] = day
	}
	day[id] = !day[id]
	s.persistLocked(ctx)
	return day[id]
}

// ForDate returns a copy of the completion flags for a date.
func (s *Store) ForDate(date string) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.tasks[date]))
	for id, done := range s.tasks[date] {
		out[id] = done
	}
	return out
}

func (s *Store) persistLocked(ctx context.Context) {
	if err := store.SaveJSON(ctx, s.kv, config.KeyDailyTasks, s.tasks); err != nil {
		s.logger.Warn("Completion write failed, in-memory state kept", "error", err)
	}
}
