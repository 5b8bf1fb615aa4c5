// ABOUTME: HTTP server configuration and route setup
// ABOUTME: Chi router with CORS, request logging and per-IP rate limiting

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"newswire-api/api/handlers"
	"newswire-api/api/middleware"
	"newswire-api/core/interfaces"
	"newswire-api/engine"
)

// Engine is everything the HTTP surface calls on the engine
type Engine interface {
	handlers.NewsEngine
	handlers.ArchiveEngine
	Jobs() []engine.ScheduledJob
}

// APIConfig holds configuration for the API
type APIConfig struct {
	Logger         interfaces.Logger
	RateLimitRPS   float64 // zero disables rate limiting
	RateLimitBurst int
	AllowedOrigins []string // defaults to "*"
	Sources        handlers.SourcePolicy
}

// Server is the HTTP handler for the newswire API
type Server struct {
	router  chi.Router
	limiter *middleware.RateLimiter
}

// NewServer builds the router and registers every route
func NewServer(cfg APIConfig, e Engine) *Server {
	if cfg.Logger == nil {
		cfg.Logger = interfaces.NopLogger{}
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := chi.NewRouter()
	s := &Server{router: router}

	// CORS first so preflight requests are not rate limited
	router.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Burst", "Retry-After"},
		MaxAge:         300,
	}).Handler)
	router.Use(middleware.RequestLoggingMiddleware(cfg.Logger))
	router.Use(chimw.Recoverer)

	if cfg.RateLimitRPS > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		router.Use(middleware.RateLimitMiddleware(s.limiter))
	}

	router.NotFound(handlers.NotFound)
	router.MethodNotAllowed(handlers.MethodNotAllowed)

	handlers.NewHealthHandler(e).RegisterRoutes(router)
	handlers.NewNewsHandler(e, cfg.Sources).RegisterRoutes(router)
	handlers.NewArchiveHandler(e, cfg.Sources).RegisterRoutes(router)

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by middleware
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}
