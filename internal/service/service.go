// Package service wires the plan-generation pipeline behind one explicitly
// constructed object: cache check, goal scrubbing, synthesis, persistence,
// cache write. The HTTP layer and CLI consume this service; nothing in here
// knows about transports.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/usmankhan616/Smart-Task-Planner/internal/cache"
	"github.com/usmankhan616/Smart-Task-Planner/internal/planner"
	"github.com/usmankhan616/Smart-Task-Planner/internal/storage"
)

const instrumentationName = "github.com/usmankhan616/Smart-Task-Planner/internal/service"

// ErrEmptyGoal is returned when a submitted goal is empty or whitespace.
// The synthesizer treats non-empty goals as a precondition; this boundary
// enforces it.
var ErrEmptyGoal = errors.New("goal must not be empty")

// Generator synthesizes a plan for a goal. Its contract is total: provider
// failures degrade the result, they never surface as errors.
type Generator interface {
	Generate(ctx context.Context, goal string) *planner.Plan
}

// PlanStore persists and retrieves plans.
type PlanStore interface {
	SavePlan(ctx context.Context, plan *planner.Plan, owner string) error
	GetPlan(ctx context.Context, id string) (*storage.PlanRecord, error)
	GetPlanByGoal(ctx context.Context, goal string) (*storage.PlanRecord, error)
	ListPlans(ctx context.Context, limit, offset int) ([]*storage.PlanRecord, error)
}

// GoalScrubber redacts credentials from goal text before it leaves the
// process.
type GoalScrubber interface {
	Scrub(text string) (string, int)
}

// PlanService orchestrates plan generation end to end.
type PlanService struct {
	cache     cache.PlanCache
	store     PlanStore
	generator Generator
	scrubber  GoalScrubber
	logger    *zap.Logger
	tracer    trace.Tracer
}

// New constructs a PlanService. scrubber may be nil to disable goal
// scrubbing; cache may be nil to disable memoization.
func New(planCache cache.PlanCache, store PlanStore, generator Generator, scrubber GoalScrubber, logger *zap.Logger) *PlanService {
	if planCache == nil {
		planCache = cache.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanService{
		cache:     planCache,
		store:     store,
		generator: generator,
		scrubber:  scrubber,
		logger:    logger,
		tracer:    otel.Tracer(instrumentationName),
	}
}

// GeneratePlan produces a plan for goal, serving from cache when a live
// entry exists. The boolean reports whether the plan came from cache.
//
// Order of operations on the synthesis path: scrub, synthesize fully in
// memory, persist, then cache. Persistence failures propagate (they are
// storage problems, not generation problems); cache failures are logged and
// swallowed. Fallback-sourced plans are persisted but never cached.
func (s *PlanService) GeneratePlan(ctx context.Context, goal, owner string) (*planner.Plan, bool, error) {
	ctx, span := s.tracer.Start(ctx, "service.GeneratePlan")
	defer span.End()

	if strings.TrimSpace(goal) == "" {
		return nil, false, ErrEmptyGoal
	}

	if s.scrubber != nil {
		scrubbed, findings := s.scrubber.Scrub(goal)
		if findings > 0 {
			s.logger.Warn("redacted secrets from submitted goal",
				zap.Int("findings", findings))
			goal = scrubbed
		}
	}

	if plan, ok, err := s.cache.Get(ctx, goal); err != nil {
		s.logger.Warn("cache read failed, continuing without it", zap.Error(err))
	} else if ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		s.logger.Info("serving plan from cache", zap.String("plan_id", plan.ID))
		return plan, true, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	plan := s.generator.Generate(ctx, goal)

	if err := s.store.SavePlan(ctx, plan, owner); err != nil {
		return nil, false, fmt.Errorf("persist plan: %w", err)
	}

	if plan.Degraded() {
		s.logger.Debug("fallback plan not cached", zap.String("plan_id", plan.ID))
		return plan, false, nil
	}

	if err := s.cache.Put(ctx, goal, plan); err != nil {
		s.logger.Warn("cache write failed", zap.Error(err))
	}

	return plan, false, nil
}

// GetPlan fetches a persisted plan by id.
func (s *PlanService) GetPlan(ctx context.Context, id string) (*storage.PlanRecord, error) {
	return s.store.GetPlan(ctx, id)
}

// GetPlanByGoal fetches a persisted plan by exact goal text.
func (s *PlanService) GetPlanByGoal(ctx context.Context, goal string) (*storage.PlanRecord, error) {
	return s.store.GetPlanByGoal(ctx, goal)
}

// ListPlans lists persisted plans newest-first.
func (s *PlanService) ListPlans(ctx context.Context, limit, offset int) ([]*storage.PlanRecord, error) {
	return s.store.ListPlans(ctx, limit, offset)
}
