// Package handler provides HTTP handlers for all API endpoints. Handlers
// project the in-memory stores directly — no service layer.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/routinelab/routined/internal/api/respond"
	"github.com/routinelab/routined/internal/catalog"
	"github.com/routinelab/routined/internal/completion"
	"github.com/routinelab/routined/internal/config"
	"github.com/routinelab/routined/internal/dedup"
	"github.com/routinelab/routined/internal/notify"
	"github.com/routinelab/routined/internal/store"
)

// Poker triggers an out-of-band matcher re-evaluation. Every mutation
// endpoint pokes after persisting, replacing the reactive re-runs of the
// original host.
type Poker interface {
	Poke()
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	kv         store.KV
	catalog    *catalog.Catalog
	completion *completion.Store
	dedup      *dedup.Store
	sender     notify.Sender
	engine     Poker
	clock      clockwork.Clock
	cfg        *config.Config
	logger     *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(
	kv store.KV,
	cat *catalog.Catalog,
	comp *completion.Store,
	ded *dedup.Store,
	sender notify.Sender,
	engine Poker,
	clock clockwork.Clock,
	cfg *config.Config,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		kv:         kv,
		catalog:    cat,
		completion: comp,
		dedup:      ded,
		sender:     sender,
		engine:     engine,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns service name, version and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "routined",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckStore verifies the state store is reachable.
// @Summary State store health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/store [get]
func (h *Handler) HealthCheckStore(w http.ResponseWriter, r *http.Request) {
	if err := probeStore(r.Context(), h.kv); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"store":     "unreachable",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"store":     "reachable",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// probeStore exercises a read; an absent key still proves the store
// answers.
func probeStore(ctx context.Context, kv store.KV) error {
	_, err := kv.Get(ctx, config.KeyLastNotifyDate)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}
