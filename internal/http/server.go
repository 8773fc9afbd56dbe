// Package http exposes the plan service over a JSON API.
//
// Goal submission is asynchronous: POST /api/v1/plans registers an operation
// and returns 202 immediately; the caller polls the operation endpoint. The
// dispatch mechanism is a goroutine per goal tracked in process, with
// lifecycle events published to NATS for observers.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/usmankhan616/Smart-Task-Planner/internal/planner"
	"github.com/usmankhan616/Smart-Task-Planner/internal/service"
	"github.com/usmankhan616/Smart-Task-Planner/internal/storage"
)

// PlanAPI is the service surface the server dispatches to.
type PlanAPI interface {
	GeneratePlan(ctx context.Context, goal, owner string) (*planner.Plan, bool, error)
	GetPlan(ctx context.Context, id string) (*storage.PlanRecord, error)
	GetPlanByGoal(ctx context.Context, goal string) (*storage.PlanRecord, error)
	ListPlans(ctx context.Context, limit, offset int) ([]*storage.PlanRecord, error)
}

// Config holds the HTTP server's runtime settings.
type Config struct {
	Port int

	// OperationTimeout bounds one plan-generation dispatch end to end.
	// Gateway calls inherit this deadline through the context.
	OperationTimeout time.Duration

	// Providers reports the number of usable generation backends, queried
	// on every health probe. May be nil.
	Providers func() int

	// CacheBackend names the active cache implementation for health
	// reporting ("nats", "memory", or "disabled").
	CacheBackend string
}

// Server wires the plan API onto echo.
type Server struct {
	echo      *echo.Echo
	api       PlanAPI
	tracker   *Tracker
	storePing func(ctx context.Context) error
	logger    *zap.Logger
	config    Config
}

// NewServer builds the HTTP server. storePing may be nil; the health
// endpoint then reports the store as unknown. metrics may be nil.
func NewServer(cfg Config, api PlanAPI, tracker *Tracker, storePing func(ctx context.Context) error, logger *zap.Logger, metrics *Metrics) (*Server, error) {
	if api == nil {
		return nil, errors.New("plan API is required")
	}
	if tracker == nil {
		return nil, errors.New("operation tracker is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 5 * time.Minute
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(metrics.Middleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))

			return err
		}
	})

	s := &Server{
		echo:      e,
		api:       api,
		tracker:   tracker,
		storePing: storePing,
		logger:    logger,
		config:    cfg,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	api := s.echo.Group("/api/v1")
	api.POST("/plans", s.submitGoal)
	api.GET("/plans", s.queryPlans)
	api.GET("/plans/:id", s.getPlan)
	api.GET("/operations/:id", s.getOperation)

	s.echo.GET("/health", s.health)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// Echo exposes the router for tests and embedding.
func (s *Server) Echo() *echo.Echo { return s.echo }

// Start serves until ctx is cancelled, then shuts down gracefully within
// timeout.
func (s *Server) Start(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", s.config.Port)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// submitGoal validates the goal, registers an operation, and dispatches
// generation on a goroutine. Responds 202 with the operation id.
func (s *Server) submitGoal(c echo.Context) error {
	var req GeneratePlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}

	if !validGoal(req.Goal) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "goal must not be empty"})
	}

	op := s.tracker.Create(req.Goal, req.Owner)
	go s.runOperation(op.ID, req.Goal, req.Owner)

	return c.JSON(http.StatusAccepted, GeneratePlanAccepted{OperationID: op.ID})
}

// runOperation executes one plan generation under the configured timeout.
// The request context is deliberately not used: the operation outlives the
// submitting request.
func (s *Server) runOperation(opID, goal, owner string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.OperationTimeout)
	defer cancel()

	s.tracker.Started(opID)

	plan, cached, err := s.api.GeneratePlan(ctx, goal, owner)
	if err != nil {
		s.logger.Error("plan generation failed",
			zap.String("operation_id", opID),
			zap.Error(err))
		s.tracker.Failed(opID, err.Error())
		return
	}

	s.tracker.Completed(opID, plan, cached)
}

func (s *Server) getOperation(c echo.Context) error {
	op, ok := s.tracker.Get(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "operation not found"})
	}
	return c.JSON(http.StatusOK, op)
}

func (s *Server) getPlan(c echo.Context) error {
	record, err := s.api.GetPlan(c.Request().Context(), c.Param("id"))
	if errors.Is(err, storage.ErrPlanNotFound) {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "plan not found"})
	}
	if err != nil {
		s.logger.Error("plan lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "plan lookup failed"})
	}
	return c.JSON(http.StatusOK, record)
}

// queryPlans fetches by exact goal when ?goal= is present, otherwise lists
// newest-first with ?limit= and ?offset=.
func (s *Server) queryPlans(c echo.Context) error {
	ctx := c.Request().Context()

	if goal := c.QueryParam("goal"); goal != "" {
		record, err := s.api.GetPlanByGoal(ctx, goal)
		if errors.Is(err, storage.ErrPlanNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "plan not found"})
		}
		if err != nil {
			s.logger.Error("plan lookup failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "plan lookup failed"})
		}
		return c.JSON(http.StatusOK, record)
	}

	limit := intQueryParam(c, "limit", 20)
	offset := intQueryParam(c, "offset", 0)

	records, err := s.api.ListPlans(ctx, limit, offset)
	if err != nil {
		s.logger.Error("plan listing failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "plan listing failed"})
	}
	if records == nil {
		records = []*storage.PlanRecord{}
	}
	return c.JSON(http.StatusOK, records)
}

func (s *Server) health(c echo.Context) error {
	resp := HealthResponse{
		Status: "ok",
		Cache:  s.config.CacheBackend,
		Store:  "unknown",
	}
	if s.config.Providers != nil {
		resp.Providers = s.config.Providers()
	}

	if s.storePing != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := s.storePing(ctx); err != nil {
			resp.Status = "degraded"
			resp.Store = "error"
		} else {
			resp.Store = "ok"
		}
	}

	code := http.StatusOK
	if resp.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, resp)
}

// intQueryParam parses a non-negative integer query parameter, falling back
// to def on absence or garbage.
func intQueryParam(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// validGoal mirrors the service precondition so obviously bad requests fail
// fast with a 400 instead of a failed operation.
func validGoal(goal string) bool {
	return strings.TrimSpace(goal) != ""
}

// Ensure the concrete service satisfies the dispatch surface.
var _ PlanAPI = (*service.PlanService)(nil)
