package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/copperline/pipeline-core/internal/adapter"
	"github.com/copperline/pipeline-core/internal/api/middleware"
	"github.com/copperline/pipeline-core/internal/api/rest"
	"github.com/copperline/pipeline-core/internal/cadence"
	"github.com/copperline/pipeline-core/internal/intake"
	"github.com/copperline/pipeline-core/internal/lifecycle"
	"github.com/copperline/pipeline-core/internal/logger"
	"github.com/copperline/pipeline-core/internal/messaging"
	"github.com/copperline/pipeline-core/internal/queue"
	"github.com/copperline/pipeline-core/internal/store"
)

// Config holds the server configuration
type Config struct {
	Debug        bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Auth         middleware.AuthConfig
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	store      store.Store
	events     messaging.Publisher
	clock      adapter.Clock
	httpServer *http.Server
}

// New creates a new API server. events may be nil when no broker is
// configured.
func New(cfg Config, st store.Store, events messaging.Publisher, clock adapter.Clock) *Server {
	return &Server{
		config: cfg,
		store:  st,
		events: events,
		clock:  clock,
	}
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())

	// Wire the domain services over one store
	machine := lifecycle.NewMachine(s.store, s.clock, s.events)
	calc := cadence.NewCalculator(s.store, s.clock, nil)
	funnel := intake.NewFunnel(s.store, s.clock, s.events)
	qb := queue.NewBuilder(s.store)

	restHandler := rest.NewHandler(s.store, machine, calc, funnel, qb, s.clock)
	rest.SetupRoutes(router, restHandler, s.config.Auth)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
