package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/VENTURE-AI-LABS/agent-profit-ai/internal/logger"
)

const defaultIdleTimeout = 120 * time.Second

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server wraps the gin engine with lifecycle management.
type Server struct {
	httpServer *http.Server
	log        logger.Logger
}

// NewServer builds the router and HTTP server.
func NewServer(handler *Handler, cfg ServerConfig, log logger.Logger) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	SetupRoutes(router, handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
		},
		log: log,
	}
}

// Start runs the server until it fails or is shut down.
func (s *Server) Start() error {
	s.log.Info("api server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")

	runs := v1.Group("/runs")
	runs.POST("", handler.StartRun)                       // POST /api/v1/runs
	runs.GET("/:run_id", handler.GetRun)                  // GET /api/v1/runs/:run_id
	runs.POST("/:run_id/finalize", handler.FinalizeRun)   // POST /api/v1/runs/:run_id/finalize

	v1.GET("/dataset/latest", handler.GetLatestDataset) // GET /api/v1/dataset/latest
	v1.GET("/stats", handler.GetStats)                  // GET /api/v1/stats
}
