package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	api "github.com/GriffinCanCode/Studio/backend/internal/api/http"
	"github.com/GriffinCanCode/Studio/backend/internal/api/middleware"
	"github.com/GriffinCanCode/Studio/backend/internal/api/ws"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/tracing"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router *gin.Engine
	core   *Core
	logger *logging.Logger
	config *config.Config
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*Server, error) {
	logger.Info("Initializing Studio server",
		zap.String("addr", cfg.Addr()),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("remote_ai", cfg.UseRemoteAI()),
	)

	metrics := monitoring.NewMetrics()
	logger.Info("Performance monitoring initialized")

	core, err := NewCore(ctx, cfg, logger, metrics)
	if err != nil {
		return nil, err
	}

	router := NewRouter(cfg, core, prometheus.DefaultGatherer, logger)
	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		core:   core,
		logger: logger,
		config: cfg,
	}, nil
}

// NewRouter builds the gin engine with the middleware chain and every route
func NewRouter(cfg *config.Config, core *Core, gatherer prometheus.Gatherer, logger *logging.Logger) *gin.Engine {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(core.Tracer))
	if core.Metrics != nil {
		router.Use(monitoring.Middleware(core.Metrics))
	}
	router.Use(middleware.AccessLog(logger.Component("http")))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig().WithOrigins(cfg.Server.CORSOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		limits := middleware.DefaultRateLimitConfig()
		limits.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		limits.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(limits))
	}

	handlers := api.NewHandlers(api.Deps{
		Workspace: core.Workspace,
		Sessions:  core.Sessions,
		AI:        core.AI,
		Seeder:    core.Seeder,
		Metrics:   core.Metrics,
		Gatherer:  gatherer,
		Logger:    logger.Component("api"),
	})
	handlers.Register(router)

	stream := ws.NewHandler(core.Sessions, logger.Component("ws"), core.Metrics)
	router.GET("/sessions/:id/stream", stream.HandleConnection)

	return router
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler { return s.router }

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Draining HTTP connections")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if err := s.core.Close(); err != nil {
		s.logger.Error("Failed to close core", zap.Error(err))
		return err
	}

	// Sync logger before exit
	_ = s.logger.Sync()
	return nil
}
