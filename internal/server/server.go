// Package server provides the HTTP server and routing for Paddock.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/config"
	"github.com/rosehill/paddock/internal/database"
	"github.com/rosehill/paddock/internal/events"
	breedinghandlers "github.com/rosehill/paddock/internal/modules/breeding/handlers"
	cataloghandlers "github.com/rosehill/paddock/internal/modules/catalog/handlers"
	groominghandlers "github.com/rosehill/paddock/internal/modules/grooming/handlers"
	horsehandlers "github.com/rosehill/paddock/internal/modules/horses/handlers"
	milestonehandlers "github.com/rosehill/paddock/internal/modules/milestones/handlers"
	unlockhandlers "github.com/rosehill/paddock/internal/modules/unlocks/handlers"
)

// Config holds server configuration
type Config struct {
	Log      zerolog.Logger
	Config   *config.Config
	StableDB *database.DB
	LedgerDB *database.DB
	Bus      *events.Bus

	BreedingHandlers  *breedinghandlers.Handler
	GroomingHandlers  *groominghandlers.Handler
	HorseHandlers     *horsehandlers.Handler
	MilestoneHandlers *milestonehandlers.Handler
	UnlockHandlers    *unlockhandlers.Handler
	CatalogHandlers   *cataloghandlers.Handler
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	bus            *events.Bus
	systemHandlers *SystemHandlers
	statusMonitor  *StatusMonitor
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	systemHandlers := NewSystemHandlers(cfg.Log, cfg.Config.DataDir, cfg.StableDB, cfg.LedgerDB)

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		bus:            cfg.Bus,
		systemHandlers: systemHandlers,
	}

	s.statusMonitor = NewStatusMonitor(cfg.Bus, systemHandlers, cfg.Log)

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(cfg Config) {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Event streams first; they hold connections open and bypass the
		// timeout middleware semantics of regular handlers
		eventsStream := NewEventsStreamHandler(s.bus, s.log)
		r.Get("/events/stream", eventsStream.ServeHTTP)

		eventsWS := NewEventsWSHandler(s.bus, s.log)
		r.Get("/events/ws", eventsWS.ServeHTTP)

		r.Get("/system/status", s.systemHandlers.HandleSystemStatus)

		cfg.BreedingHandlers.RegisterRoutes(r)
		cfg.GroomingHandlers.RegisterRoutes(r)
		cfg.HorseHandlers.RegisterRoutes(r)
		cfg.MilestoneHandlers.RegisterRoutes(r)
		cfg.UnlockHandlers.RegisterRoutes(r)
		cfg.CatalogHandlers.RegisterRoutes(r)
	})
}

// Start starts the HTTP server and background monitors
func (s *Server) Start() error {
	if s.statusMonitor != nil {
		s.statusMonitor.Start(60 * time.Second)
	}

	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
