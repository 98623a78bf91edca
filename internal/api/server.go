package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Server combines the HTTP router with the WebSocket hub.
type Server struct {
	engine      EngineInterface
	router      *chi.Mux
	wsHub       *WebSocketHub
	rateLimiter *IPRateLimiter
}

// NewServer creates the API server. No goroutines start until Start is
// called, so tests can construct the server and use Router directly.
func NewServer(engine EngineInterface, journal JournalInterface) *Server {
	s := &Server{
		engine:      engine,
		wsHub:       NewWebSocketHub(engine, nil),
		rateLimiter: NewIPRateLimiter(DefaultRateLimitConfig),
	}

	s.router = NewRouter(RouterConfig{
		Engine:      engine,
		Journal:     journal,
		RateLimiter: s.rateLimiter,
	})

	s.router.Get("/ws", s.wsHub.HandleWebSocket)

	return s
}

// Start launches the WebSocket hub and the HTTP listener. Blocks.
func (s *Server) Start(addr string) error {
	go s.wsHub.Run()
	s.wsHub.StartBroadcastLoop()

	log.Printf("api: server starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler for use with httptest.
func (s *Server) Router() http.Handler {
	return s.router
}

// Stop shuts down the background workers the server owns.
func (s *Server) Stop() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}
