// Package server exposes the engine over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/odds-apex/internal/engine"
	"github.com/yourusername/odds-apex/internal/health"
	"github.com/yourusername/odds-apex/internal/metrics"
)

// Config holds the configuration for the API server.
type Config struct {
	ServiceName     string
	Version         string
	Commit          string
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RateLimit       float64
	RateBurst       int
	MaxBodyBytes    int64
	MetricsEnabled  bool
	MetricsPath     string
	DefaultPolicy   string
	DefaultSeed     int64
}

// Server is the HTTP API in front of an Engine.
type Server struct {
	cfg     Config
	engine  *engine.Engine
	health  *health.Server
	limiter *rate.Limiter
	logger  *logrus.Logger
	handler http.Handler
	server  *http.Server
	known   map[string]struct{}
}

// New creates an API server.
func New(cfg Config, eng *engine.Engine, logger *logrus.Logger) *Server {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "odds-apex"
	}
	if cfg.Address == "" {
		cfg.Address = ":8080"
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		cfg:     cfg,
		engine:  eng,
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}
	s.health = health.NewServer(health.Config{
		ServiceName: cfg.ServiceName,
		Version:     cfg.Version,
		Commit:      cfg.Commit,
		Logger:      logger,
		Checks: []health.Checker{
			health.CheckFunc{CheckName: "engine", Fn: s.selfCheck},
		},
	})
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	s.health.Register(mux)
	if s.cfg.MetricsEnabled {
		mux.Handle("GET "+s.cfg.MetricsPath, metrics.Handler())
	}

	api := http.NewServeMux()
	api.HandleFunc("POST /v1/estimate", s.handleEstimate)
	api.HandleFunc("POST /v1/field", s.handleField)
	api.HandleFunc("POST /v1/stakes", s.handleStakes)
	mux.Handle("/v1/", s.rateLimit(s.limitBody(api)))

	s.known = map[string]struct{}{
		"/health":      {},
		"/live":        {},
		"/ready":       {},
		"/v1/estimate": {},
		"/v1/field":    {},
		"/v1/stakes":   {},
	}
	if s.cfg.MetricsEnabled {
		s.known[s.cfg.MetricsPath] = struct{}{}
	}

	return s.instrument(mux)
}

// Handler returns the full HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// SetReady marks the API as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.health.SetReady(ready)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{
			"address": s.cfg.Address,
			"service": s.cfg.ServiceName,
		}).Info("API server starting")

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.SetReady(true)

	select {
	case err := <-errCh:
		s.SetReady(false)
		if err != nil {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.SetReady(false)
	s.logger.Info("API server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	return nil
}

func (s *Server) selfCheck(ctx context.Context) error {
	if s.engine == nil {
		return errors.New("engine not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.engine.Params().Validate()
}

func (s *Server) defaultPolicy() string {
	if s.cfg.DefaultPolicy == "" {
		return "capped-kelly"
	}
	return s.cfg.DefaultPolicy
}
