// Package api exposes the planner over a JSON REST interface.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"dayplan/internal/config"
	"dayplan/internal/repository"
	"dayplan/internal/service"
)

// Services bundles everything the handlers call into.
type Services struct {
	Users      *repository.UserRepository
	Tasks      *service.TaskService
	Categories *service.CategoryService
	Templates  *service.TemplateService
	Plans      *service.PlanService
	Stats      *service.StatsService
	Timers     *service.TimerSessions
}

// Server wires the echo engine, middleware and routes.
type Server struct {
	echo   *echo.Echo
	svc    Services
	logger *zap.Logger
	cfg    config.ServerConfig
}

// NewServer builds the HTTP server. The metrics endpoint is registered only
// when enabled.
func NewServer(svc Services, logger *zap.Logger, cfg config.ServerConfig, metricsEnabled bool) (*Server, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if svc.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}
	e.Use(requestLogger(logger))
	e.Use(metricsMiddleware())

	s := &Server{echo: e, svc: svc, logger: logger, cfg: cfg}
	s.registerRoutes(metricsEnabled)
	return s, nil
}

func (s *Server) registerRoutes(metricsEnabled bool) {
	s.echo.GET("/health", s.handleHealth)
	if metricsEnabled {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	v1 := s.echo.Group("/api/v1", s.resolveUser)

	v1.GET("/me", s.handleMe)
	v1.PATCH("/me", s.handleUpdateMe)

	v1.GET("/tasks", s.handleListTasks)
	v1.POST("/tasks", s.handleCreateTask)
	v1.GET("/tasks/:id", s.handleGetTask)
	v1.PATCH("/tasks/:id", s.handleUpdateTask)
	v1.DELETE("/tasks/:id", s.handleDeleteTask)
	v1.POST("/tasks/:id/complete", s.handleCompleteTask)
	v1.POST("/tasks/:id/reopen", s.handleReopenTask)

	v1.GET("/categories", s.handleListCategories)
	v1.POST("/categories", s.handleCreateCategory)
	v1.PATCH("/categories/:id", s.handleUpdateCategory)
	v1.DELETE("/categories/:id", s.handleDeleteCategory)

	v1.GET("/templates", s.handleListTemplates)
	v1.POST("/templates", s.handleCreateTemplate)
	v1.GET("/templates/:id", s.handleGetTemplate)
	v1.PATCH("/templates/:id", s.handleRenameTemplate)
	v1.DELETE("/templates/:id", s.handleDeleteTemplate)
	v1.POST("/templates/:id/default", s.handleSetDefaultTemplate)
	v1.POST("/templates/:id/windows", s.handleAddWindow)
	v1.PATCH("/templates/:id/windows/:windowID", s.handleUpdateWindow)
	v1.DELETE("/templates/:id/windows/:windowID", s.handleDeleteWindow)

	v1.GET("/daily-plans/:date", s.handleGetPlan)
	v1.GET("/daily-plans/:date/conflicts", s.handlePlanConflicts)
	v1.POST("/daily-plans/:date/allocations", s.handleAddAllocation)
	v1.DELETE("/daily-plans/:date/allocations/:id", s.handleRemoveAllocation)
	v1.POST("/daily-plans/:date/allocations/:id/move", s.handleMoveWindow)
	v1.POST("/daily-plans/:date/allocations/:id/tasks/:taskID", s.handleAssignTask)
	v1.DELETE("/daily-plans/:date/allocations/:id/tasks/:taskID", s.handleUnassignTask)

	v1.GET("/stats/daily/:date", s.handleDailyStats)
	v1.GET("/stats/range", s.handleStatsRange)

	v1.GET("/timer", s.handleTimerState)
	v1.POST("/timer/start-pause", s.handleTimerStartPause)
	v1.POST("/timer/skip", s.handleTimerSkip)
	v1.POST("/timer/reset", s.handleTimerReset)
	v1.POST("/timer/focus", s.handleTimerFocus)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Echo exposes the underlying engine, mainly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.cfg.Addr()))
	return s.echo.Start(s.cfg.Addr())
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	}
}
