package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/vizofit/internal/session"
	"github.com/meltforce/vizofit/internal/settings"
	"github.com/meltforce/vizofit/internal/storage"
)

// Deps are the engine components the handlers call into.
type Deps struct {
	Engine   *session.Orchestrator
	Routines *storage.Routines
	Activity *storage.Activity
	Settings *settings.Manager
	Metrics  *Metrics
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	engine   *session.Orchestrator
	routines *storage.Routines
	activity *storage.Activity
	settings *settings.Manager
	metrics  *Metrics
	log      *slog.Logger
	router   chi.Router
	whois    WhoIser
	now      func() time.Time

	// mu serializes engine calls; the engine itself is single-threaded.
	mu sync.Mutex
}

// New creates a new Server with all routes configured.
func New(d Deps, log *slog.Logger) *Server {
	if d.Metrics == nil {
		d.Metrics = NewTestMetrics()
	}
	s := &Server{
		engine:   d.Engine,
		routines: d.Routines,
		activity: d.Activity,
		settings: d.Settings,
		metrics:  d.Metrics,
		log:      log,
		router:   chi.NewRouter(),
		now:      time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.metrics))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)

		r.Post("/analyze", s.handleAnalyze)
		r.Post("/conflict", s.handleResolveConflict)

		r.Get("/routines", s.handleListRoutines)
		r.Get("/routines/{id}", s.handleGetRoutine)
		r.Put("/routines/{id}", s.handleUpdateRoutine)
		r.Delete("/routines/{id}", s.handleDeleteRoutine)
		r.Post("/routines/{id}/favorite", s.handleToggleFavorite)
		r.Post("/routines/{id}/complete", s.handleCompleteRoutine)

		r.Get("/activity", s.handleActivity)

		r.Get("/settings", s.handleGetSettings)
		r.Patch("/settings", s.handleUpdateSettings)
		r.Post("/settings/upgrade", s.handleUpgrade)
	})
}

// SetTailscale switches caller identity to tailnet WhoIs lookups.
func (s *Server) SetTailscale(whois WhoIser) {
	s.whois = whois
}

// SetMCP mounts a streamable MCP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Mount("/mcp", h)
}

func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.whois != nil {
			TailscaleIdentity(s.whois, s.log)(next).ServeHTTP(w, r)
			return
		}
		dev.ServeHTTP(w, r)
	})
}

// EngineLock returns the lock that serializes engine calls, so other
// transports in the same process (MCP) can share it.
func (s *Server) EngineLock() sync.Locker { return &s.mu }
