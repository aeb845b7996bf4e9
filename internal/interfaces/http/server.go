// Package http provides the HTTP adapter over the application
// services. It is a thin translation layer: request shapes in, service
// calls, entity shapes out.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/YEYOLABS/boundless-fleet/internal/application/service"
	"github.com/YEYOLABS/boundless-fleet/internal/reconciliation"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// FleetConfig carries operator-level defaults applied when a request
// does not specify them.
type FleetConfig struct {
	OrganisationID     string
	TimelineWindowDays int
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates a new HTTP server over the given services
func NewServer(
	config ServerConfig,
	fleet FleetConfig,
	vehicles service.VehicleService,
	assignment service.AssignmentService,
	tours service.TourService,
	floats service.FloatService,
	issues service.IssueService,
	schedule service.ScheduleService,
	statements *reconciliation.StatementExporter,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config: config,
		router: gin.New(),
		handlers: NewHandlers(
			fleet, vehicles, assignment, tours, floats, issues, schedule, statements, logger,
		),
		logger: logger,
	}

	server.setupMiddleware()
	server.setupRoutes()
	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("latency", time.Since(start).String()),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.HealthCheck)

	api := s.router.Group("/api/v1")
	{
		api.GET("/vehicles", s.handlers.ListVehicles)
		api.POST("/vehicles", s.handlers.RegisterVehicle)
		api.GET("/vehicles/:id", s.handlers.GetVehicle)
		api.PATCH("/vehicles/:id", s.handlers.UpdateVehicle)
		api.DELETE("/vehicles/:id", s.handlers.DecommissionVehicle)
		api.GET("/vehicles/:id/health", s.handlers.GetVehicleHealth)
		api.POST("/vehicles/:id/assign", s.handlers.AssignDriver)
		api.POST("/vehicles/:id/service", s.handlers.RecordService)
		api.GET("/vehicles/:id/assignments", s.handlers.GetAssignmentHistory)

		api.GET("/fleet/health", s.handlers.GetFleetHealth)

		api.GET("/drivers", s.handlers.ListDrivers)

		api.GET("/tours", s.handlers.ListTours)
		api.POST("/tours", s.handlers.CreateTour)
		api.GET("/tours/:id", s.handlers.GetTour)
		api.PATCH("/tours/:id", s.handlers.UpdateTour)
		api.DELETE("/tours/:id", s.handlers.DeleteTour)
		api.POST("/tours/:id/vehicle", s.handlers.LinkTourVehicle)
		api.DELETE("/tours/:id/vehicle", s.handlers.UnlinkTourVehicle)

		api.GET("/floats", s.handlers.ListFloats)
		api.POST("/floats", s.handlers.IssueFloat)
		api.GET("/floats/:id", s.handlers.GetFloat)
		api.POST("/floats/:id/close", s.handlers.CloseFloat)
		api.GET("/floats/:id/expenses", s.handlers.ListFloatExpenses)
		api.POST("/floats/:id/expenses", s.handlers.SubmitExpense)
		api.GET("/floats/:id/statement", s.handlers.ExportFloatStatement)

		api.GET("/expenses", s.handlers.ListExpenses)
		api.POST("/expenses/:id/approve", s.handlers.ApproveExpense)
		api.POST("/expenses/:id/reject", s.handlers.RejectExpense)
		api.DELETE("/expenses/:id", s.handlers.DeleteExpense)

		api.GET("/issues", s.handlers.ListIssues)
		api.POST("/issues", s.handlers.ReportIssue)
		api.POST("/issues/:id/progress", s.handlers.ProgressIssue)

		api.GET("/schedule/board", s.handlers.GetBoard)
		api.GET("/schedule/timeline", s.handlers.GetTimeline)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
