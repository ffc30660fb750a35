// Package api provides the HTTP API server and handlers for CarbonTrack.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/carbontrack/carbontrack-server/internal/http/response"
	"github.com/carbontrack/carbontrack-server/internal/logger"
	"github.com/carbontrack/carbontrack-server/internal/sse"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Options configures the HTTP surface.
type Options struct {
	AllowedOrigins []string // CORS origins; empty means any
	LoginRateLimit int      // Login/register attempts per minute per IP; 0 disables
	Health         HealthChecks
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services    *Services
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger
	sseManager  *sse.Manager
	health      HealthChecks
	authLimiter *loginRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, sseManager *sse.Manager, opts Options, log *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		services:    services,
		router:      router,
		logger:      log,
		sseManager:  sseManager,
		health:      opts.Health,
		authLimiter: newLoginRateLimiter(opts.LoginRateLimit),
	}

	s.setupMiddleware(opts.AllowedOrigins)
	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found", log)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, log)
	})

	humaConfig := huma.DefaultConfig("CarbonTrack API", Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.authLimiter.stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.Middleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	s.router.Use(clientIPMiddleware)
	s.router.Use(authMiddleware(s.services.Auth))
}

// registerRoutes registers every route group.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerCO2Routes()
	s.registerAuthRoutes()
	s.registerCompanyRoutes()
	s.registerActivityRoutes()
	s.registerTargetRoutes()
	s.registerReportRoutes()

	if s.sseManager != nil {
		s.router.Get("/api/v1/events", sse.NewHandler(s.sseManager, companyFromRequest, s.logger).ServeHTTP)
	}
}
