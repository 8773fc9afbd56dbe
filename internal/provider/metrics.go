package provider

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/usmankhan616/Smart-Task-Planner/internal/provider"

// Metrics holds gateway call instruments.
type Metrics struct {
	meter    metric.Meter
	logger   *zap.Logger
	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

// NewMetrics creates the gateway instruments. A nil *Metrics is a valid
// no-op receiver, so callers that do not care about metrics can pass nil.
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

	m.calls, err = m.meter.Int64Counter(
		"planner.provider.calls_total",
		metric.WithDescription("Completion calls by provider and outcome (ok, or the failure classification)."),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		m.logger.Warn("failed to create calls counter", zap.Error(err))
	}

	m.duration, err = m.meter.Float64Histogram(
		"planner.provider.call_duration_seconds",
		metric.WithDescription("Completion call duration by provider."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}
}

// RecordCall records one gateway call outcome.
func (m *Metrics) RecordCall(ctx context.Context, provider Name, d time.Duration, err error) {
	if m == nil {
		return
	}

	outcome := "ok"
	if err != nil {
		outcome = string(TranslateCallError(provider, err).Code)
	}
	attrs := []attribute.KeyValue{
		attribute.String("provider", string(provider)),
		attribute.String("outcome", outcome),
	}

	if m.calls != nil {
		m.calls.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if m.duration != nil {
		m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(attrs...))
	}
}
