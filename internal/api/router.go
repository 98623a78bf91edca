package api

import (
	"stellarforge/internal/sim"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// EngineInterface defines the simulation runner methods the API layer
// calls. Keep this minimal; it exists so tests can mock the engine
// without spinning up the tick loop.
type EngineInterface interface {
	// Snapshot returns the latest lock-free immutable world snapshot.
	Snapshot() *sim.WorldSnapshot
	// EnqueueCommand buffers a wire command for the next tick.
	EnqueueCommand(cmd sim.Command)
	// Fingerprint returns the latest periodic state hash and the tick.
	Fingerprint() (uint32, int64)
	// CurrentTick returns the simulation tick counter.
	CurrentTick() int64
}

// JournalInterface exposes the match journal counters for the stats
// endpoint.
type JournalInterface interface {
	GetStats() map[string]interface{}
}

// RouterConfig contains the dependencies needed to construct the HTTP
// router. Designed for dependency injection and testability.
type RouterConfig struct {
	// Engine is the simulation runner (required).
	Engine EngineInterface

	// Journal is the match journal; nil hides journal stats.
	Journal JournalInterface

	// RateLimiter is an optional pre-configured rate limiter. If nil,
	// one is created from RateLimitConfig.
	RateLimiter *IPRateLimiter

	// RateLimitConfig is used only when RateLimiter is nil.
	RateLimitConfig *RateLimitConfig

	// CORSOrigins is an optional allow list; nil keeps the local
	// development defaults.
	CORSOrigins []string

	// DisableLogging disables the request logger (useful for benchmarks).
	DisableLogging bool
}

// routerHandlers holds the dependencies handler functions close over.
type routerHandlers struct {
	engine  EngineInterface
	journal JournalInterface
}

// NewRouter constructs the HTTP router with all middleware and routes.
// This function is pure: no goroutines, no listeners, safe to wrap in
// httptest.NewServer.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	// Rate limiting before CORS, to reject early.
	rateLimiter := cfg.RateLimiter
	if rateLimiter == nil {
		rateLimitCfg := DefaultRateLimitConfig
		if cfg.RateLimitConfig != nil {
			rateLimitCfg = *cfg.RateLimitConfig
		}
		rateLimiter = NewIPRateLimiter(rateLimitCfg)
	}
	r.Use(rateLimiter.Middleware)

	corsOrigins := cfg.CORSOrigins
	if corsOrigins == nil {
		corsOrigins = []string{
			"http://localhost:*",
			"http://127.0.0.1:*",
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{
		engine:  cfg.Engine,
		journal: cfg.Journal,
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/stats", h.handleGetStats)

		r.Get("/fingerprint", h.handleGetFingerprint)
		r.Post("/fingerprint/verify", h.handleVerifyFingerprint)

		r.Post("/command", h.handlePostCommand)
	})

	return r
}
