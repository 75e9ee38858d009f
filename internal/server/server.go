package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/nesthost/internal/api/v1"
	"github.com/gosuda/nesthost/internal/api/ws"
	"github.com/gosuda/nesthost/internal/config"
	"github.com/gosuda/nesthost/internal/observability"
	"github.com/gosuda/nesthost/internal/server/middleware"
)

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	cfg        *config.Config
}

func init() {
	// Schema violations (wrong JSON types, unknown properties) are client
	// input errors like any other: 400, with huma's per-field details kept.
	newError := huma.NewError
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity {
			status = http.StatusBadRequest
		}
		return newError(status, msg, errs...)
	}
}

// New creates a Server with all routes wired. ctx bounds the lifetime of the
// rate limiter sweepers. hub may have no broker, in which case product events
// are dropped and /ws/products answers 503. checks back the /healthz
// readiness check.
func New(ctx context.Context, cfg *config.Config, store v1.DataStore, authSvc v1.AuthService, hub *ws.Hub, metrics *observability.Metrics, checks ...HealthCheck) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestLogger)
	router.Use(chimw.Recoverer)
	router.Use(metrics.Middleware)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router: router,
		cfg:    cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      observability.TraceHandler(router, "nesthost"),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Unauthenticated credential routes, limited per client IP. This API also
	// serves the OpenAPI document and docs UI.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(ctx, cfg.RateLimit.AuthRPS, cfg.RateLimit.AuthBurst))

		authConfig := huma.DefaultConfig("NestHost Auth API", "1.0.0")
		authAPI := humachi.New(r, authConfig)
		registerAuthRoutes(authAPI, store, authSvc)
	})

	// Session-protected routes, limited per tenant.
	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Auth.JWTSecret))
		r.Use(middleware.RequireTenant())
		r.Use(middleware.RateLimit(ctx, cfg.RateLimit.APIRPS, cfg.RateLimit.APIBurst))

		apiConfig := huma.DefaultConfig("NestHost API", "1.0.0")
		// Docs are served by the public API; registering them here too
		// would collide and put them behind authentication.
		apiConfig.OpenAPIPath = ""
		apiConfig.DocsPath = ""
		apiConfig.SchemasPath = ""
		// Without a schemas route, $schema links in bodies would dangle.
		apiConfig.CreateHooks = nil
		api := humachi.New(r, apiConfig)
		registerAPIRoutes(api, store, authSvc, hub)
	})

	// WebSocket routes.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Auth.JWTSecret))
		r.Use(middleware.RequireTenant())
		registerWSRoutes(r, hub)
	})

	// Readiness check (unauthenticated).
	router.Get("/healthz", healthHandler(checks))

	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Serve the prebuilt frontend on all unmatched routes when configured.
	// This must be the last route registered so API/WS routes take priority.
	if cfg.Server.WebDir != "" {
		router.NotFound(spaFileServer(os.DirFS(cfg.Server.WebDir)).ServeHTTP)
		log.Info().Str("dir", cfg.Server.WebDir).Msg("static frontend enabled")
	} else {
		router.NotFound(routeHint)
	}

	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

// routeHint answers unknown routes with a pointer to the real entry points.
func routeHint(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteProblem(w, http.StatusNotFound, "the API is up but this route does not exist; use /auth/... or /api/...")
}
