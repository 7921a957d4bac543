// Package server provides the HTTP surface of the chat gateway.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lewisedginton/chat-gateway/internal/config"
	"github.com/lewisedginton/chat-gateway/internal/provider"
	"github.com/lewisedginton/chat-gateway/pkg/health"
	"github.com/lewisedginton/chat-gateway/pkg/httpmiddleware"
	"github.com/lewisedginton/chat-gateway/pkg/logger"
	"github.com/lewisedginton/chat-gateway/pkg/metrics"
)

// Server encapsulates the gateway HTTP server and its dependencies.
type Server struct {
	log      logger.Logger
	cfg      *config.AppConfig
	provider provider.Provider
	metrics  *metrics.Metrics
	health   *health.Checker
	server   *http.Server
}

// New creates a Server serving the chat endpoint with the given provider.
// The provider must already be initialized.
func New(cfg *config.AppConfig, log logger.Logger, p provider.Provider, m *metrics.Metrics) *Server {
	s := &Server{
		log:      log,
		cfg:      cfg,
		provider: p,
		metrics:  m,
	}

	s.health = health.New(
		health.WithTimeout(cfg.Health.Timeout),
		health.WithLogger(log),
	)
	s.health.AddReadinessCheck(health.NewCheckFunc("provider", func(context.Context) error {
		if s.provider == nil {
			return fmt.Errorf("provider not configured")
		}
		return nil
	}))

	router := s.createRouter()
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	log.Info("HTTP server initialized",
		logger.IntField("port", cfg.Port),
		logger.StringField("provider", p.Kind()))

	return s
}

// createRouter sets up all routes and middleware
func (s *Server) createRouter() http.Handler {
	r := chi.NewRouter()

	mwConfig := httpmiddleware.DefaultConfig()
	mwConfig.Logger = s.log
	mwConfig.EnableLogging = true
	mwConfig.Timeout = s.cfg.RequestTimeout
	corsConfig := httpmiddleware.DefaultCORSConfig()
	if s.cfg.Security.CORSAllowedOrigin != "" {
		corsConfig.AllowedOrigins = []string{s.cfg.Security.CORSAllowedOrigin}
	}
	mwConfig.CORS = &corsConfig
	httpmiddleware.ApplyToRouter(r, mwConfig)

	if s.cfg.Metrics.Enabled {
		r.Use(s.metrics.HTTPMiddleware())
	}

	r.Get("/", s.echoHandler)
	r.Post("/", s.chatHandler)
	r.Get(s.cfg.Health.LivenessPath, s.health.LivenessHandler())
	r.Get(s.cfg.Health.ReadinessPath, s.health.ReadinessHandler())

	if s.cfg.Metrics.Enabled && !s.cfg.Metrics.Expose {
		r.Get("/metrics", s.metrics.Handler().ServeHTTP)
	}

	return r
}

// Listen starts the HTTP server and returns channels for error handling
func (s *Server) Listen() (chan error, func(), func(), error) {
	errChan := make(chan error, 1)

	go func() {
		s.log.Info("Starting HTTP server", logger.StringField("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	closer := func() {
		s.log.Info("Forcefully closing HTTP server")
		if err := s.Close(); err != nil {
			s.log.Error("Error during forced shutdown", logger.ErrorField(err))
		}
	}

	gracefulCloser := func() {
		s.log.Info("Gracefully closing HTTP server")
		if err := s.GracefulShutdown(); err != nil {
			s.log.Error("Error during graceful shutdown", logger.ErrorField(err))
		}
	}

	return errChan, closer, gracefulCloser, nil
}

// GracefulShutdown gracefully shuts down the HTTP server
func (s *Server) GracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	return nil
}

// Close forcefully shuts down the server
func (s *Server) Close() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}
