package planner

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/usmankhan616/Smart-Task-Planner/internal/provider"
)

// ProviderSource yields the configured backends for synthesis.
type ProviderSource interface {
	List() []*provider.Descriptor
	SelectPrimarySecondary() (*provider.Descriptor, *provider.Descriptor)
}

// CompletionClient issues one chat-completion call against a backend.
type CompletionClient interface {
	Complete(ctx context.Context, d *provider.Descriptor, req provider.CompletionRequest) (string, error)
}

// Synthesizer runs the staged plan-generation pipeline. All collaborators
// are injected so tests can script provider behavior deterministically.
type Synthesizer struct {
	providers ProviderSource
	client    CompletionClient
	logger    *zap.Logger
	metrics   *Metrics
	tracer    trace.Tracer
}

// NewSynthesizer wires a synthesizer. metrics may be nil.
func NewSynthesizer(providers ProviderSource, client CompletionClient, logger *zap.Logger, metrics *Metrics) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{
		providers: providers,
		client:    client,
		logger:    logger,
		metrics:   metrics,
		tracer:    otel.Tracer(instrumentationName),
	}
}

// Generate synthesizes a plan for goal. It never returns an error: provider
// trouble degrades the result through the single-shot path and finally the
// static fallback. Callers enforce the non-empty-goal precondition; the
// synthesizer does not re-check it.
func (s *Synthesizer) Generate(ctx context.Context, goal string) *Plan {
	ctx, span := s.tracer.Start(ctx, "planner.Generate")
	defer span.End()

	start := time.Now()
	plan := s.generate(ctx, goal)
	s.metrics.RecordGeneration(ctx, plan.Source, time.Since(start))

	span.SetAttributes(
		attribute.String("plan.source", string(plan.Source)),
		attribute.Int("plan.tasks", len(plan.Tasks)),
	)
	s.logger.Info("plan synthesized",
		zap.String("plan_id", plan.ID),
		zap.String("source", string(plan.Source)),
		zap.Int("tasks", len(plan.Tasks)),
		zap.Duration("elapsed", time.Since(start)))

	return plan
}

func (s *Synthesizer) generate(ctx context.Context, goal string) *Plan {
	primary, secondary := s.providers.SelectPrimarySecondary()
	if primary == nil {
		s.logger.Warn("no providers configured, using static fallback")
		return NewPlan(goal, fallbackTasks(goal), SourceFallback)
	}

	if plan := s.draftAndElaborate(ctx, goal, primary, secondary); plan != nil {
		return plan
	}
	if plan := s.singleShot(ctx, goal); plan != nil {
		return plan
	}

	s.logger.Warn("all providers failed, using static fallback")
	return NewPlan(goal, fallbackTasks(goal), SourceFallback)
}

// draftAndElaborate is the preferred path: the primary backend drafts bare
// task names, the secondary expands each one. Returns nil when the draft
// yields nothing usable, handing control to the single-shot stage.
func (s *Synthesizer) draftAndElaborate(ctx context.Context, goal string, primary, secondary *provider.Descriptor) *Plan {
	s.logger.Debug("drafting tasks",
		zap.String("provider", string(primary.Name())),
		zap.String("model", primary.Model()))

	raw, err := s.client.Complete(ctx, primary, provider.CompletionRequest{
		System:      draftSystemPrompt,
		User:        draftUserPrompt(goal),
		Temperature: draftTemperature,
		MaxTokens:   draftMaxTokens,
	})
	if err != nil {
		s.logger.Warn("draft stage failed", zap.Error(err))
		s.metrics.RecordStageFailure(ctx, StageDraft)
		return nil
	}

	names, err := ParseDraft(raw)
	if err != nil {
		s.logger.Warn("draft stage failed", zap.Error(err))
		s.metrics.RecordStageFailure(ctx, StageDraft)
		return nil
	}

	// Sequential on purpose: each synthetic substitute depends on the
	// previous drafted name, so iteration order is part of the contract.
	tasks := make([]TaskBreakdown, 0, len(names))
	for i, name := range names {
		task, err := s.elaborate(ctx, goal, name, secondary)
		if err != nil {
			s.logger.Warn("elaboration failed, substituting deterministic task",
				zap.String("task", name),
				zap.Error(err))
			s.metrics.RecordElaborationFallback(ctx)
			task = syntheticElaboration(goal, names, i)
		}
		tasks = append(tasks, task)
	}

	s.logger.Info("multi-model synthesis complete", zap.Int("tasks", len(tasks)))
	return NewPlan(goal, tasks, SourceMultiModel)
}

func (s *Synthesizer) elaborate(ctx context.Context, goal, name string, secondary *provider.Descriptor) (TaskBreakdown, error) {
	raw, err := s.client.Complete(ctx, secondary, provider.CompletionRequest{
		System:      elaborateSystemPrompt,
		User:        elaborateUserPrompt(goal, name),
		Temperature: elaborateTemperature,
		MaxTokens:   elaborateMaxTokens,
	})
	if err != nil {
		return TaskBreakdown{}, err
	}
	return ParseElaboration(raw, name)
}

// singleShot asks each backend, in discovery order, for a complete task
// array in one call. The first non-empty successfully-parsed result wins;
// call and parse failures advance to the next backend rather than retrying.
// Returns nil when every backend fails or yields nothing usable.
func (s *Synthesizer) singleShot(ctx context.Context, goal string) *Plan {
	providers := s.providers.List()
	for i, d := range providers {
		s.logger.Debug("attempting single-shot generation",
			zap.String("provider", string(d.Name())),
			zap.Int("attempt", i+1),
			zap.Int("providers", len(providers)))

		raw, err := s.client.Complete(ctx, d, provider.CompletionRequest{
			System:      singleShotSystemPrompt,
			User:        singleShotUserPrompt(goal),
			Temperature: singleShotTemperature,
			MaxTokens:   singleShotMaxTokens,
		})
		if err != nil {
			s.logger.Warn("single-shot call failed",
				zap.String("provider", string(d.Name())),
				zap.Error(err))
			continue
		}

		tasks, dropped, err := ParseSingleShot(raw)
		if err != nil {
			s.logger.Warn("single-shot parse failed",
				zap.String("provider", string(d.Name())),
				zap.Error(err))
			s.metrics.RecordStageFailure(ctx, StageSingleShot)
			continue
		}
		if dropped > 0 {
			s.logger.Warn("dropped tasks missing required fields",
				zap.String("provider", string(d.Name())),
				zap.Int("dropped", dropped))
			s.metrics.RecordDroppedTasks(ctx, dropped)
		}
		if len(tasks) == 0 {
			continue
		}

		for _, task := range tasks {
			if !IsCanonicalPhase(task.Phase) || !IsCanonicalPriority(task.Priority) {
				s.logger.Debug("non-canonical enum value in generated task",
					zap.String("task", task.TaskName),
					zap.String("phase", task.Phase),
					zap.String("priority", task.Priority))
			}
		}

		s.logger.Info("single-shot synthesis complete",
			zap.String("provider", string(d.Name())),
			zap.Int("tasks", len(tasks)))
		return NewPlan(goal, tasks, SourceSingleShot)
	}

	return nil
}
