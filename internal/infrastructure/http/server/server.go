// Package server assembles the chi router and owns the HTTP server lifecycle.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/myboiiPrime/AI-food/internal/infrastructure/config"
	"github.com/myboiiPrime/AI-food/internal/infrastructure/http/handlers"
	"github.com/myboiiPrime/AI-food/internal/infrastructure/http/middleware"
)

// Server wraps the HTTP server with its router and configuration.
type Server struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
}

// New builds the router and returns a server ready to start.
func New(cfg *config.Config, api *handlers.APIHandlers, mw *middleware.Middleware, logger *zap.Logger) *Server {
	router := chi.NewRouter()

	// Order matters: recovery outermost, then identification, then policy.
	router.Use(mw.Recovery)
	router.Use(mw.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(mw.Logger)
	router.Use(mw.Security)
	router.Use(mw.CORS)
	router.Use(mw.RateLimit)
	router.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
	router.Use(chimiddleware.Compress(5))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", api.Health)
		r.Post("/detect", api.Detect)
		r.Post("/detect-url", api.DetectURL)
		r.Post("/detect/details", api.DetectDetails)
		r.Post("/analyze", api.Analyze)
		r.Get("/recipes/{recipeID}", api.RecipeDetails)
		r.Get("/recipes/{recipeID}/instructions", api.RecipeInstructions)
		r.Post("/nutrition", api.Nutrition)
		r.Post("/validate", api.Validate)
		r.Put("/config/confidence-threshold", api.SetConfidenceThreshold)
	})

	router.Handle("/metrics", promhttp.Handler())

	return &Server{
		config: cfg,
		logger: logger.Named("http"),
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}
}

// Start begins serving. Blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server starting", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests within the configured grace period.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")

	ctx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	return s.server.Shutdown(ctx)
}
