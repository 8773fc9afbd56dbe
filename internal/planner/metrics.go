package planner

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/usmankhan616/Smart-Task-Planner/internal/planner"

// Metrics holds synthesis instruments. A nil *Metrics is a valid no-op
// receiver.
type Metrics struct {
	meter                metric.Meter
	logger               *zap.Logger
	plans                metric.Int64Counter
	duration             metric.Float64Histogram
	stageFailures        metric.Int64Counter
	elaborationFallbacks metric.Int64Counter
	droppedTasks         metric.Int64Counter
}

// NewMetrics creates the synthesis instruments.
func NewMetrics(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Metrics{
		meter:  otel.Meter(instrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.plans, err = m.meter.Int64Counter(
		"planner.plans_total",
		metric.WithDescription("Synthesized plans by source (multi_model, single_shot, fallback)."),
		metric.WithUnit("{plan}"),
	)
	if err != nil {
		m.logger.Warn("failed to create plans counter", zap.Error(err))
	}

	m.duration, err = m.meter.Float64Histogram(
		"planner.generation_duration_seconds",
		metric.WithDescription("End-to-end synthesis duration by source."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.stageFailures, err = m.meter.Int64Counter(
		"planner.stage_failures_total",
		metric.WithDescription("Stage abandonments by stage (draft, single_shot)."),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		m.logger.Warn("failed to create stage failures counter", zap.Error(err))
	}

	m.elaborationFallbacks, err = m.meter.Int64Counter(
		"planner.elaboration_fallbacks_total",
		metric.WithDescription("Drafted tasks that received the deterministic substitute elaboration."),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		m.logger.Warn("failed to create elaboration fallbacks counter", zap.Error(err))
	}

	m.droppedTasks, err = m.meter.Int64Counter(
		"planner.dropped_tasks_total",
		metric.WithDescription("Single-shot task objects dropped for missing required fields."),
		metric.WithUnit("{task}"),
	)
	if err != nil {
		m.logger.Warn("failed to create dropped tasks counter", zap.Error(err))
	}
}

// RecordGeneration records one completed synthesis.
func (m *Metrics) RecordGeneration(ctx context.Context, source Source, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("source", string(source)))
	if m.plans != nil {
		m.plans.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, d.Seconds(), attrs)
	}
}

// RecordStageFailure records one stage abandonment.
func (m *Metrics) RecordStageFailure(ctx context.Context, stage Stage) {
	if m == nil || m.stageFailures == nil {
		return
	}
	m.stageFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", string(stage))))
}

// RecordElaborationFallback records one synthetic substitute elaboration.
func (m *Metrics) RecordElaborationFallback(ctx context.Context) {
	if m == nil || m.elaborationFallbacks == nil {
		return
	}
	m.elaborationFallbacks.Add(ctx, 1)
}

// RecordDroppedTasks records single-shot elements dropped during parsing.
func (m *Metrics) RecordDroppedTasks(ctx context.Context, n int) {
	if m == nil || m.droppedTasks == nil {
		return
	}
	m.droppedTasks.Add(ctx, int64(n))
}
