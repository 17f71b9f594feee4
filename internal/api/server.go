// Package api exposes the deprescribing analysis pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/deprescribing-cds-server/internal/domain"
	"github.com/deprescribing-cds-server/internal/feedback"
	"github.com/deprescribing-cds-server/internal/middleware"
)

// BreakerMonitor reports circuit breaker health for the AI collaborator.
type BreakerMonitor interface {
	State() gobreaker.State
	Counts() gobreaker.Counts
}

// Server represents the HTTP server
type Server struct {
	configManager domain.ConfigManager
	analyzer      domain.PatientAnalyzer
	planner       domain.TaperPlanner
	ruleTables    *domain.RuleTables
	feedbackStore feedback.Store
	breaker       BreakerMonitor
	cacheStats    func() interface{}
	logger        *logrus.Logger
	router        *gin.Engine
	server        *http.Server
}

// ServerOptions carries the optional monitoring hooks.
type ServerOptions struct {
	Breaker    BreakerMonitor
	CacheStats func() interface{}
}

// NewServer creates a new HTTP server instance
func NewServer(
	configManager domain.ConfigManager,
	analyzer domain.PatientAnalyzer,
	planner domain.TaperPlanner,
	ruleTables *domain.RuleTables,
	feedbackStore feedback.Store,
	logger *logrus.Logger,
	opts ServerOptions,
) *Server {
	cfg := configManager.GetConfig()

	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware
	router.Use(middleware.AuditLogger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(corsMiddleware())

	server := &Server{
		configManager: configManager,
		analyzer:      analyzer,
		planner:       planner,
		ruleTables:    ruleTables,
		feedbackStore: feedbackStore,
		breaker:       opts.Breaker,
		cacheStats:    opts.CacheStats,
		logger:        logger,
		router:        router,
	}

	// Setup routes
	server.setupRoutes()

	return server
}

// Router exposes the gin engine for testing.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.GET("/health", s.handleHealth)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/analyze", s.handleAnalyzePatient)
		v1.POST("/interactions/check", s.handleCheckInteractions)
		v1.POST("/taper-plan", s.handleTaperPlan)

		ref := v1.Group("/reference")
		{
			ref.GET("/drugs", s.handleReferenceDrugs)
			ref.GET("/herbs", s.handleReferenceHerbs)
		}

		fb := v1.Group("/feedback")
		{
			fb.POST("", s.handleSaveFeedback)
			fb.GET("", s.handleListFeedback)
			fb.GET("/summary", s.handleFeedbackSummary)
			fb.GET("/export", s.handleExportFeedback)
			fb.POST("/import", s.handleImportFeedback)
			fb.GET("/:analysisID/:medication", s.handleGetFeedback)
			fb.DELETE("/:id", s.handleDeleteFeedback)
		}
	}
}

// handleHealth reports service health plus AI breaker and cache state
func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	}

	if s.breaker != nil {
		counts := s.breaker.Counts()
		body["ai_collaborator"] = gin.H{
			"breaker_state":  s.breaker.State().String(),
			"requests":       counts.Requests,
			"total_failures": counts.TotalFailures,
		}
	}
	if s.cacheStats != nil {
		body["classification_cache"] = s.cacheStats()
	}

	c.JSON(http.StatusOK, body)
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
