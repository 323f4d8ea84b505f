package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/routinelab/routined/internal/api/handler"
	"github.com/routinelab/routined/internal/catalog"
	"github.com/routinelab/routined/internal/completion"
	"github.com/routinelab/routined/internal/config"
	"github.com/routinelab/routined/internal/dedup"
	"github.com/routinelab/routined/internal/notify"
	"github.com/routinelab/routined/internal/store"
)

// Deps bundles everything the router's handlers need.
type Deps struct {
	KV         store.KV
	Catalog    *catalog.Catalog
	Completion *completion.Store
	Dedup      *dedup.Store
	Sender     notify.Sender
	Engine     handler.Poker
	Clock      clockwork.Clock
	Config     *config.Config
	Logger     *slog.Logger
}

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   d.Config.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type"},
		ExposedHeaders:   []string{"X-Process-Time"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if d.Config.RateLimitEnabled {
		r.Use(RateLimitMiddleware(d.Config.RateLimitRequests, d.Config.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(d.KV, d.Catalog, d.Completion, d.Dedup, d.Sender, d.Engine, d.Clock, d.Config, d.Logger)

	// --- Routes ---

	r.Get("/", h.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/store", h.HealthCheckStore)
	})

	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/day/{date}", h.GetDay)
		r.Post("/tasks/{date}/{taskID}/toggle", h.ToggleTask)

		r.Get("/regime", h.GetRegime)
		r.Post("/regime", h.AddRegime)
		r.Delete("/regime/{index}", h.RemoveRegime)

		r.Get("/study", h.GetStudy)
		r.Post("/study", h.AddStudy)
		r.Delete("/study/{index}", h.RemoveStudy)

		r.Get("/date", h.GetSelectedDate)
		r.Put("/date", h.PutSelectedDate)
		r.Get("/location", h.GetLocation)
		r.Put("/location", h.PutLocation)

		r.Get("/notifications", h.GetNotifications)
		r.Post("/notifications/evaluate", h.Evaluate)
	})

	return r
}
