// Package api provides the HTTP surface of the Matinee server: typed
// huma operations for the JSON API, plus plain chi routes for the
// endpoints that serve bytes or streams instead of envelopes.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matineeapp/matinee-server/internal/media/posters"
	"github.com/matineeapp/matinee-server/internal/ratelimit"
	"github.com/matineeapp/matinee-server/internal/service"
	"github.com/matineeapp/matinee-server/internal/sse"
	"github.com/matineeapp/matinee-server/internal/store"
	"github.com/matineeapp/matinee-server/internal/store/sqlite"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	services      *Services
	store         *store.Store
	viewingStore  *sqlite.Store
	sseManager    *sse.Manager
	sseHandler    *sse.Handler
	posterHandler *posters.Handler
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
	writeLimiter  *ratelimit.KeyedRateLimiter
	enrichment    bool
}

// ServerOptions collects the collaborators a Server composes.
type ServerOptions struct {
	Services          *Services
	Store             *store.Store
	ViewingStore      *sqlite.Store
	SSEManager        *sse.Manager
	SSEHandler        *sse.Handler
	PosterHandler     *posters.Handler
	EnrichmentEnabled bool
	Logger            *slog.Logger
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(opts ServerOptions) *Server {
	s := &Server{
		services:      opts.Services,
		store:         opts.Store,
		viewingStore:  opts.ViewingStore,
		sseManager:    opts.SSEManager,
		sseHandler:    opts.SSEHandler,
		posterHandler: opts.PosterHandler,
		router:        chi.NewRouter(),
		logger:        opts.Logger,
		writeLimiter:  ratelimit.New(writeRatePerSec, writeBurst),
		enrichment:    opts.EnrichmentEnabled,
	}

	// Middleware has to be mounted before the first route.
	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Matinee API", service.Version)
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerInstanceRoutes()
	s.registerFilmRoutes()
	s.registerGenreRoutes()
	s.registerSearchRoutes()
	s.registerViewingRoutes()
	s.setupPlainRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-owned resources. The listener is managed by
// the caller; this only stops background bookkeeping.
func (s *Server) Close() {
	s.writeLimiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	// The browser client is served from wherever the household keeps
	// it (dev server, file host, another LAN box), so reflect any
	// origin. Nothing here authenticates, no credentials to protect.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
		MaxAge:         300,
	}))

	s.router.Use(RateLimitMiddleware(s.writeLimiter, s.logger))
}

// setupPlainRoutes mounts the endpoints that bypass the JSON envelope:
// poster bytes and the SSE stream.
func (s *Server) setupPlainRoutes() {
	s.router.Get("/api/v1/films/{id}/poster", s.posterHandler.ServeHTTP)
	s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
}
