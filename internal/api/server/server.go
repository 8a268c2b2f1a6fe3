package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pumprand/pump-client/internal/api/middleware"
	"github.com/pumprand/pump-client/internal/api/rest"
	"github.com/pumprand/pump-client/internal/logger"
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
	handler    rest.Handler
	gatherer   prometheus.Gatherer

	mu         sync.Mutex
	httpServer *http.Server
	closed     bool // set by Shutdown; a later Start returns without serving
}

// New creates a new control API server. gatherer backs GET /metrics.
func New(cfg Config, handler rest.Handler, gatherer prometheus.Gatherer) *Server {
	return &Server{
		config:   cfg,
		handler:  handler,
		gatherer: gatherer,
	}
}

// Router builds the gin engine with middleware and routes
func (s *Server) Router() (*gin.Engine, error) {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	authenticator, err := middleware.NewAuthenticator(s.config.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())

	rest.SetupRoutes(router, s.handler, authenticator.Auth())
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	return router, nil
}

// Start initializes and starts the HTTP server. It blocks until Shutdown,
// and returns immediately when Shutdown was called first.
func (s *Server) Start() error {
	router, err := s.Router()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		logger.Info("Control API server shut down before start", zap.String("address", addr))
		return nil
	}
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.httpServer = httpServer
	s.mu.Unlock()

	logger.Info("Starting control API server",
		zap.String("address", addr),
	)

	// a Shutdown landing between the unlock and here makes ListenAndServe return ErrServerClosed
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server. It is safe to call before or concurrently with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down control API server")

	s.mu.Lock()
	s.closed = true
	httpServer := s.httpServer
	s.mu.Unlock()

	if httpServer != nil {
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
