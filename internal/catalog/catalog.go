// Package catalog holds the recurring event definitions — built-in daily
// obligations plus the user-editable lists — and expands them into the
// concrete occurrences active on a given date.
//
// Occurrence ids for classes and study entries are positional (class_0,
// class_1, …). Reordering or deleting entries remaps those ids, which can
// orphan or resurrect completion and dedup history; callers editing the
// lists accept that churn.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/routinelab/routined/internal/calendar"
	"github.com/routinelab/routined/internal/config"
	"github.com/routinelab/routined/internal/store"
)

// Kind classifies an event definition and selects its notification copy.
type Kind string

const (
	KindPrayer   Kind = "prayer"
	KindMeal     Kind = "meal"
	KindSport    Kind = "sport"
	KindSkincare Kind = "skincare"
	KindClass    Kind = "class"
	KindStudy    Kind = "study"
)

// Event is one concrete obligation active on a date.
//
// TimeSpec is the exact time string that participates in the occurrence
// key — for classes this is the full "start-end" range, for everything
// else the plain clock time. Hour and Minute are the parsed start time the
// matcher compares against.
type Event struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	Label    string `json:"label"`
	TimeSpec string `json:"time"`
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	Detail   string `json:"detail,omitempty"`
}

// Key returns the occurrence key for this event on a date: the dedup
// identity "date_id_timeSpec". Two occurrences with the same key are the
// same real-world event instance.
func (e Event) Key(date string) string {
	return date + "_" + e.ID + "_" + e.TimeSpec
}

// Title returns the notification title for this event.
func (e Event) Title() string {
	switch e.Kind {
	case KindPrayer:
		return "⏰ Prayer Time: " + e.Label
	case KindMeal:
		return "🍽️ Meal Time: " + e.Label
	case KindSport:
		return "💪 Workout Time"
	case KindSkincare:
		return "💆 Skincare Routine"
	case KindClass:
		return "📚 Class: " + e.Label
	case KindStudy:
		return "📖 Study: " + e.Label
	}
	return e.Label
}

// Body returns the notification body for this event.
func (e Event) Body() string {
	switch e.Kind {
	case KindPrayer:
		return fmt.Sprintf("It's time for %s prayer", e.Label)
	case KindMeal:
		return "Time to have " + strings.ToLower(e.Label)
	case KindSport:
		return "Time for your workout session!"
	case KindSkincare:
		return "Time for your skincare routine!"
	case KindClass:
		return e.Detail
	case KindStudy:
		return "Time to study " + e.Label
	}
	return e.Label
}

// StudyEntry is one row of the user's weekly study timetable.
type StudyEntry struct {
	Weekday string `json:"weekday"`
	Time    string `json:"time"`
	Label   string `json:"label"`
}

// Location is the stored user location (display/collaborator data only).
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Catalog is the full event catalog. All reads and edits are safe for
// concurrent use; edits persist their blob before returning.
type Catalog struct {
	mu     sync.RWMutex
	kv     store.KV
	logger *slog.Logger

	regime   []string
	study    []StudyEntry
	weekly   map[string][]ClassSlot
	location Location
}

// Load reads the catalog blobs from the store. Missing or unreadable blobs
// fall back to the built-in defaults.
func Load(ctx context.Context, kv store.KV, logger *slog.Logger) *Catalog {
	c := &Catalog{
		kv:       kv,
		logger:   logger,
		weekly:   defaultWeeklySchedule,
		location: DefaultLocation,
	}
	store.LoadJSON(ctx, kv, config.KeyRegime, &c.regime, logger)
	store.LoadJSON(ctx, kv, config.KeyStudyTimetable, &c.study, logger)
	store.LoadJSON(ctx, kv, config.KeyLocation, &c.location, logger)

	var override map[string][]ClassSlot
	store.LoadJSON(ctx, kv, config.KeyWeeklySchedule, &override, logger)
	if len(override) > 0 {
		c.weekly = override
	}
	return c
}

// ResolveForDate expands every recurrence rule against the date's weekday
// and returns the ordered occurrence list for that day. Pure with respect
// to the catalog state — no side effects, fully re-evaluable.
func (c *Catalog) ResolveForDate(date time.Time) []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	weekday := calendar.WeekdayName(date)
	var events []Event

	for _, p := range prayerSchedule {
		h, m, _ := calendar.ParseClock(p.Time)
		events = append(events, Event{
			ID: "pray_" + p.Name, Kind: KindPrayer, Label: p.Name,
			TimeSpec: p.Time, Hour: h, Minute: m,
		})
	}

	for _, meal := range mealSchedule {
		h, m, _ := calendar.ParseClock(meal.Time)
		events = append(events, Event{
			ID: strings.ToLower(meal.Name), Kind: KindMeal, Label: meal.Name,
			TimeSpec: meal.Time, Hour: h, Minute: m,
		})
	}

	if sportDays[weekday] {
		h, m, _ := calendar.ParseClock(sportTime)
		events = append(events, Event{
			ID: "sport", Kind: KindSport, Label: "Workout Session",
			TimeSpec: sportTime, Hour: h, Minute: m,
		})
	}

	if weekday == skincareDay {
		h, m, _ := calendar.ParseClock(skincareTime)
		events = append(events, Event{
			ID: "skincare", Kind: KindSkincare, Label: "Skincare Routine",
			TimeSpec: skincareTime, Hour: h, Minute: m,
		})
	}

	for i, slot := range c.weekly[weekday] {
		h, m, err := calendar.ParseClock(calendar.StartOfRange(slot.Time))
		if err != nil {
			c.logger.Warn("Skipping class slot with bad time", "weekday", weekday, "time", slot.Time, "error", err)
			continue
		}
		events = append(events, Event{
			ID: fmt.Sprintf("class_%d", i), Kind: KindClass, Label: slot.Module,
			TimeSpec: slot.Time, Hour: h, Minute: m,
			Detail: fmt.Sprintf("%s - %s at %s", slot.Type, slot.Location, slot.Time),
		})
	}

	for i, entry := range c.study {
		if entry.Weekday != weekday {
			continue
		}
		h, m, err := calendar.ParseClock(entry.Time)
		if err != nil {
			c.logger.Warn("Skipping study entry with bad time", "label", entry.Label, "time", entry.Time, "error", err)
			continue
		}
		events = append(events, Event{
			ID: fmt.Sprintf("study_%d", i), Kind: KindStudy, Label: entry.Label,
			TimeSpec: entry.Time, Hour: h, Minute: m,
		})
	}

	return events
}

// --------------------------------------------------------------------------
// Diet regime (display list — no occurrences)
// --------------------------------------------------------------------------

// Regime returns a copy of the diet regime list.
func (c *Catalog) Regime() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.regime))
	copy(out, c.regime)
	return out
}

// TodayRegimeIndex returns which regime item is highlighted for a date, or
// -1 when the list is empty. The rotation is weekday-index modulo length.
func (c *Catalog) TodayRegimeIndex(date time.Time) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.regime) == 0 {
		return -1
	}
	return calendar.WeekdayIndex(date) % len(c.regime)
}

// AddRegimeItem appends a regime item and persists the list.
func (c *Catalog) AddRegimeItem(ctx context.Context, item string) error {
	item = strings.TrimSpace(item)
	if item == "" {
		return fmt.Errorf("regime item is empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regime = append(c.regime, item)
	return c.saveLocked(ctx, config.KeyRegime, c.regime)
}

// RemoveRegimeItem deletes the item at index. Later items shift down;
// persisted history referencing old indices is not renumbered.
func (c *Catalog) RemoveRegimeItem(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.regime) {
		return fmt.Errorf("regime index %d out of range", index)
	}
	c.regime = append(c.regime[:index], c.regime[index+1:]...)
	return c.saveLocked(ctx, config.KeyRegime, c.regime)
}

// --------------------------------------------------------------------------
// Study timetable
// --------------------------------------------------------------------------

// StudyEntries returns a copy of the user study timetable.
func (c *Catalog) StudyEntries() []StudyEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]StudyEntry, len(c.study))
	copy(out, c.study)
	return out
}

// AddStudyEntry appends a timetable entry and persists the list.
func (c *Catalog) AddStudyEntry(ctx context.Context, entry StudyEntry) error {
	entry.Label = strings.TrimSpace(entry.Label)
	if entry.Label == "" {
		return fmt.Errorf("study label is empty")
	}
	if !calendar.ValidWeekday(entry.Weekday) {
		return fmt.Errorf("invalid weekday %q", entry.Weekday)
	}
	if _, _, err := calendar.ParseClock(entry.Time); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.study = append(c.study, entry)
	return c.saveLocked(ctx, config.KeyStudyTimetable, c.study)
}

// RemoveStudyEntry deletes the entry at index. Later entries shift down and
// take over their study_N ids; persisted history is not renumbered.
func (c *Catalog) RemoveStudyEntry(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.study) {
		return fmt.Errorf("study index %d out of range", index)
	}
	c.study = append(c.study[:index], c.study[index+1:]...)
	return c.saveLocked(ctx, config.KeyStudyTimetable, c.study)
}

// --------------------------------------------------------------------------
// Location / prayer schedule accessors
// --------------------------------------------------------------------------

// Location returns the stored user location.
func (c *Catalog) Location() Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.location
}

// SetLocation stores and persists the user location.
func (c *Catalog) SetLocation(ctx context.Context, loc Location) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.location = loc
	return c.saveLocked(ctx, config.KeyLocation, c.location)
}

// PrayerTimes returns the fixed prayer schedule in order.
func (c *Catalog) PrayerTimes() []Event {
	var out []Event
	for _, p := range prayerSchedule {
		h, m, _ := calendar.ParseClock(p.Time)
		out = append(out, Event{
			ID: "pray_" + p.Name, Kind: KindPrayer, Label: p.Name,
			TimeSpec: p.Time, Hour: h, Minute: m,
		})
	}
	return out
}

// WeeklyFor returns the class slots for a weekday name.
func (c *Catalog) WeeklyFor(weekday string) []ClassSlot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	slots := c.weekly[weekday]
	out := make([]ClassSlot, len(slots))
	copy(out, slots)
	return out
}

// saveLocked persists a catalog blob. Write failures are logged, not
// surfaced: the in-memory state stays authoritative for the session and the
// next successful write resynchronizes.
func (c *Catalog) saveLocked(ctx context.Context, key string, v any) error {
	if err := store.SaveJSON(ctx, c.kv, key, v); err != nil {
		c.logger.Warn("Catalog write failed, in-memory state kept", "key", key, "error", err)
	}
	return nil
}
