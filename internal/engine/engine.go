// Package engine is the occurrence matcher: once per tick it evaluates the
// catalog against the current instant and the completion and dedup stores,
// and dispatches at most one notification per occurrence key.
//
// Evaluation is a function of (now, catalog, completion, dedup, sender)
// only — the engine captures no other mutable state. All evaluations are
// serialized on the Run goroutine; out-of-band mutations re-trigger one via
// Poke, which is idempotent by construction (marking a task done can only
// suppress, never newly trigger).
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/routinelab/routined/internal/calendar"
	"github.com/routinelab/routined/internal/catalog"
	"github.com/routinelab/routined/internal/completion"
	"github.com/routinelab/routined/internal/dedup"
	"github.com/routinelab/routined/internal/notify"
)

// DefaultInterval is the polling cadence.
const DefaultInterval = 60 * time.Second

// Engine drives the matcher from a fixed-interval ticker plus explicit
// pokes.
type Engine struct {
	clock      clockwork.Clock
	catalog    *catalog.Catalog
	completion *completion.Store
	dedup      *dedup.Store
	sender     notify.Sender
	logger     *slog.Logger
	interval   time.Duration
	poke       chan struct{}
}

// New wires an engine. A zero interval means DefaultInterval.
func New(
	clock clockwork.Clock,
	cat *catalog.Catalog,
	comp *completion.Store,
	ded *dedup.Store,
	sender notify.Sender,
	interval time.Duration,
	logger *slog.Logger,
) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		clock:      clock,
		catalog:    cat,
		completion: comp,
		dedup:      ded,
		sender:     sender,
		logger:     logger,
		interval:   interval,
		poke:       make(chan struct{}, 1),
	}
}

// Poke requests a re-evaluation outside the tick cadence, after an
// out-of-band mutation to the catalog or stores. Never blocks; coalesces
// with a pending poke.
func (e *Engine) Poke() {
	select {
	case e.poke <- struct{}{}:
	default:
	}
}

// Run evaluates immediately, then on every tick and every poke, until ctx
// is cancelled. Blocks; intended to be called with `go`.
func (e *Engine) Run(ctx context.Context) {
	e.logger.Info("Reminder engine started", "interval", e.interval)
	ticker := e.clock.NewTicker(e.interval)
	defer ticker.Stop()

	e.Evaluate(ctx, e.clock.Now())

	for {
		select {
		case <-ticker.Chan():
			e.Evaluate(ctx, e.clock.Now())
		case <-e.poke:
			e.Evaluate(ctx, e.clock.Now())
		case <-ctx.Done():
			e.logger.Info("Reminder engine stopped")
			return
		}
	}
}

// Evaluate runs one matcher pass for the given instant and returns the
// number of notifications dispatched.
//
// An occurrence is due iff the current hour equals its scheduled hour and
// the minutes differ by at most one. The window deliberately does not span
// hour boundaries: HH:00 is unreachable from (HH-1):59. Known edge, kept.
func (e *Engine) Evaluate(ctx context.Context, now time.Time) int {
	today := calendar.DateString(now)
	hour, minute := now.Hour(), now.Minute()

	// Day rollover re-arms daily keys and bounds the dedup map. Runs
	// before the permission gate so the reset is never deferred by a
	// denied facility.
	if e.dedup.Rollover(ctx, today) {
		e.logger.Info("Dedup state rolled over", "date", today)
	}

	// When the facility is unavailable the whole tick skips dispatch
	// without touching the dedup store, so a later tick can still fire.
	if e.sender.Permission() != notify.PermissionGranted {
		return 0
	}

	dispatched := 0
	for _, ev := range e.catalog.ResolveForDate(now) {
		if e.completion.Done(today, ev.ID) {
			continue
		}
		key := ev.Key(today)
		if e.dedup.Sent(key) {
			continue
		}
		if hour != ev.Hour || abs(minute-ev.Minute) > 1 {
			continue
		}

		if err := e.sender.Send(ev.Title(), ev.Body(), key); err != nil {
			// The facility was available and the attempt made; the key
			// is still marked so the reminder does not repeat.
			e.logger.Warn("Dispatch failed", "key", key, "error", err)
		} else {
			e.logger.Info("Reminder dispatched", "key", key, "title", ev.Title())
		}
		e.dedup.MarkSent(ctx, key)
		dispatched++
	}
	return dispatched
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
