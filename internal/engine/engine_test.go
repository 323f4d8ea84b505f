package engine_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routinelab/routined/internal/catalog"
	"github.com/routinelab/routined/internal/completion"
	"github.com/routinelab/routined/internal/dedup"
	"github.com/routinelab/routined/internal/engine"
	"github.com/routinelab/routined/internal/notify"
	"github.com/routinelab/routined/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingSender captures dispatches; safe for use from the Run goroutine.
type recordingSender struct {
	mu         sync.Mutex
	permission notify.Permission
	tags       []string
	failSend   bool
}

func newRecordingSender() *recordingSender {
	return &recordingSender{permission: notify.PermissionGranted}
}

func (s *recordingSender) Permission() notify.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permission
}

func (s *recordingSender) setPermission(p notify.Permission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permission = p
}

func (s *recordingSender) Send(title, body, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = append(s.tags, tag)
	if s.failSend {
		return fmt.Errorf("facility error")
	}
	return nil
}

func (s *recordingSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// harness bundles a default catalog, empty stores, and a recording sender
// over one shared memory KV.
type harness struct {
	kv     *store.Memory
	cat    *catalog.Catalog
	comp   *completion.Store
	ded    *dedup.Store
	sender *recordingSender
	eng    *engine.Engine
}

func newHarness(t *testing.T, clock clockwork.Clock) *harness {
	t.Helper()
	ctx := context.Background()
	kv := store.NewMemory()
	h := &harness{
		kv:     kv,
		cat:    catalog.Load(ctx, kv, discardLogger()),
		comp:   completion.Load(ctx, kv, discardLogger()),
		ded:    dedup.Load(ctx, kv, discardLogger()),
		sender: newRecordingSender(),
	}
	h.eng = engine.New(clock, h.cat, h.comp, h.ded, h.sender, 0, discardLogger())
	return h
}

func at(date string, hour, minute int) time.Time {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC)
}

// 2026-01-06 is a Tuesday, 2026-01-07 a Wednesday.

func TestToleranceWindowAndAtMostOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, clockwork.NewFakeClock())

	// Breakfast is scheduled daily at 08:00.
	assert.Equal(t, 0, h.eng.Evaluate(ctx, at("2026-01-06", 7, 58)))

	// 07:59, 08:00, 08:01 are all in-window, but the key fires once total.
	total := 0
	for _, m := range []int{59, 0, 1} {
		hr := 8
		if m == 59 {
			hr = 7
		}
		total += h.eng.Evaluate(ctx, at("2026-01-06", hr, m))
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, []string{"2026-01-06_breakfast_08:00"}, h.sender.sent())

	// 08:02 is outside the window and the key is spent anyway.
	assert.Equal(t, 0, h.eng.Evaluate(ctx, at("2026-01-06", 8, 2)))
}

func TestSameHourBoundaryIsOneWayMiss(t *testing.T) {
	// Sport is at 21:00; 20:59 is one minute away but a different hour,
	// so it does not match. 21:01 does.
	ctx := context.Background()
	h := newHarness(t, clockwork.NewFakeClock())

	assert.Equal(t, 0, h.eng.Evaluate(ctx, at("2026-01-07", 20, 59)))
	assert.Equal(t, 1, h.eng.Evaluate(ctx, at("2026-01-07", 21, 1)))
	assert.Equal(t, []string{"2026-01-07_sport_21:00"}, h.sender.sent())
}

func TestCompletionSuppressesNotification(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, clockwork.NewFakeClock())

	h.comp.Toggle(ctx, "2026-01-06", "breakfast")

	for _, tick := range []time.Time{
		at("2026-01-06", 7, 59),
		at("2026-01-06", 8, 0),
		at("2026-01-06", 8, 1),
	} {
		h.eng.Evaluate(ctx, tick)
	}
	assert.NotContains(t, h.sender.sent(), "2026-01-06_breakfast_08:00")
}

func TestWeekdayFilteringNeverDispatches(t *testing.T) {
	// Sport is defined for Sunday/Wednesday/Saturday only; on a Tuesday
	// the occurrence does not exist regardless of clock time.
	ctx := context.Background()
	h := newHarness(t, clockwork.NewFakeClock())

	h.eng.Evaluate(ctx, at("2026-01-06", 21, 0))
	assert.NotContains(t, h.sender.sent(), "2026-01-06_sport_21:00")
}

func TestRolloverClearsDedupNotCompletion(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, clockwork.NewFakeClock())

	h.comp.Toggle(ctx, "2026-01-06", "lunch")
	require.Equal(t, 1, h.eng.Evaluate(ctx, at("2026-01-06", 8, 0)))
	require.Equal(t, "2026-01-06", h.ded.LastDate())
	require.Equal(t, 1, h.ded.Count())

	// Past midnight: dedup resets and the new date's key is free to fire.
	assert.Equal(t, 1, h.eng.Evaluate(ctx, at("2026-01-07", 8, 0)))
	assert.Equal(t, "2026-01-07", h.ded.LastDate())
	assert.Equal(t, []string{
		"2026-01-06_breakfast_08:00",
		"2026-01-07_breakfast_08:00",
	}, h.sender.sent())

	// Completion for the prior date is untouched.
	assert.True(t, h.comp.Done("2026-01-06", "lunch"))
}

func TestUnavailableFacilityDoesNotPolluteDedup(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, clockwork.NewFakeClock())
	h.sender.setPermission(notify.PermissionDefault)

	assert.Equal(t, 0, h.eng.Evaluate(ctx, at("2026-01-06", 8, 0)))
	assert.Empty(t, h.sender.sent())
	assert.Equal(t, 0, h.ded.Count())
	// Rollover still ran.
	assert.Equal(t, "2026-01-06", h.ded.LastDate())

	// Once granted, a tick still inside the window fires.
	h.sender.setPermission(notify.PermissionGranted)
	assert.Equal(t, 1, h.eng.Evaluate(ctx, at("2026-01-06", 8, 1)))
	assert.Equal(t, []string{"2026-01-06_breakfast_08:00"}, h.sender.sent())
}

func TestSendFailureStillMarksKey(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, clockwork.NewFakeClock())
	h.sender.failSend = true

	h.eng.Evaluate(ctx, at("2026-01-06", 8, 0))
	assert.True(t, h.ded.Sent("2026-01-06_breakfast_08:00"))
	h.eng.Evaluate(ctx, at("2026-01-06", 8, 1))
	assert.Len(t, h.sender.sent(), 1)
}

func TestRestartResumesIdentically(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, clockwork.NewFakeClock())

	require.Equal(t, 1, h.eng.Evaluate(ctx, at("2026-01-06", 8, 0)))

	// Fresh engine over the same persisted state: the spent key stays
	// spent, later occurrences still fire.
	cat := catalog.Load(ctx, h.kv, discardLogger())
	comp := completion.Load(ctx, h.kv, discardLogger())
	ded := dedup.Load(ctx, h.kv, discardLogger())
	sender := newRecordingSender()
	eng := engine.New(clockwork.NewFakeClock(), cat, comp, ded, sender, 0, discardLogger())

	assert.Equal(t, 0, eng.Evaluate(ctx, at("2026-01-06", 8, 1)))
	assert.Equal(t, 1, eng.Evaluate(ctx, at("2026-01-06", 13, 0))) // lunch
	assert.Equal(t, []string{"2026-01-06_lunch_13:00"}, sender.sent())
}

func TestMultipleOccurrencesInOneTick(t *testing.T) {
	// A study entry scheduled at an existing meal minute: both dispatch
	// in the same pass, each exactly once.
	ctx := context.Background()
	h := newHarness(t, clockwork.NewFakeClock())
	require.NoError(t, h.cat.AddStudyEntry(ctx, catalog.StudyEntry{
		Weekday: "Tuesday", Time: "13:00", Label: "NLP revision",
	}))

	assert.Equal(t, 2, h.eng.Evaluate(ctx, at("2026-01-06", 13, 0)))
	assert.ElementsMatch(t, []string{
		"2026-01-06_lunch_13:00",
		"2026-01-06_study_0_13:00",
	}, h.sender.sent())
}

func TestRunEvaluatesImmediatelyAndOnTicks(t *testing.T) {
	clock := clockwork.NewFakeClockAt(at("2026-01-07", 20, 59))
	h := newHarness(t, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		h.eng.Run(ctx)
		close(done)
	}()

	// Wait for the ticker before advancing.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Empty(t, h.sender.sent())

	// One minute later the sport occurrence is due.
	clock.Advance(60 * time.Second)
	require.Eventually(t, func() bool {
		return len(h.sender.sent()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"2026-01-07_sport_21:00"}, h.sender.sent())

	cancel()
	<-done
}

func TestPokeTriggersReevaluation(t *testing.T) {
	clock := clockwork.NewFakeClockAt(at("2026-01-07", 21, 0))
	h := newHarness(t, clock)

	// Completed before start: the immediate pass dispatches nothing for
	// sport but meals/prayers are out of window anyway.
	h.comp.Toggle(context.Background(), "2026-01-07", "sport")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		h.eng.Run(ctx)
		close(done)
	}()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Empty(t, h.sender.sent())

	// Un-complete it and poke: still inside the window, so it fires.
	h.comp.Toggle(context.Background(), "2026-01-07", "sport")
	h.eng.Poke()
	require.Eventually(t, func() bool {
		return len(h.sender.sent()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
