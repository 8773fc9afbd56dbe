package cache

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/usmankhan616/Smart-Task-Planner/internal/cache"

// Metrics holds cache instruments. A nil *Metrics is a valid no-op receiver.
type Metrics struct {
	meter  metric.Meter
	logger *zap.Logger
	hits   metric.Int64Counter
	misses metric.Int64Counter
	puts   metric.Int64Counter
	errors metric.Int64Counter
}

// NewMetrics creates the cache instruments.
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

	m.hits, err = m.meter.Int64Counter(
		"cache.hits_total",
		metric.WithDescription("Plan cache hits by backend."),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		m.logger.Warn("failed to create hits counter", zap.Error(err))
	}

	m.misses, err = m.meter.Int64Counter(
		"cache.misses_total",
		metric.WithDescription("Plan cache misses by backend, expiry included."),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		m.logger.Warn("failed to create misses counter", zap.Error(err))
	}

	m.puts, err = m.meter.Int64Counter(
		"cache.puts_total",
		metric.WithDescription("Plan cache writes by backend."),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		m.logger.Warn("failed to create puts counter", zap.Error(err))
	}

	m.errors, err = m.meter.Int64Counter(
		"cache.errors_total",
		metric.WithDescription("Plan cache backend errors by backend and operation."),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.logger.Warn("failed to create errors counter", zap.Error(err))
	}
}

// RecordHit records one cache hit.
func (m *Metrics) RecordHit(ctx context.Context, backend string) {
	if m == nil || m.hits == nil {
		return
	}
	m.hits.Add(ctx, 1, metric.WithAttributes(attribute.String("backend", backend)))
}

// RecordMiss records one cache miss.
func (m *Metrics) RecordMiss(ctx context.Context, backend string) {
	if m == nil || m.misses == nil {
		return
	}
	m.misses.Add(ctx, 1, metric.WithAttributes(attribute.String("backend", backend)))
}

// RecordPut records one cache write.
func (m *Metrics) RecordPut(ctx context.Context, backend string) {
	if m == nil || m.puts == nil {
		return
	}
	m.puts.Add(ctx, 1, metric.WithAttributes(attribute.String("backend", backend)))
}

// RecordError records one backend failure.
func (m *Metrics) RecordError(ctx context.Context, backend, op string) {
	if m == nil || m.errors == nil {
		return
	}
	m.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", op)))
}
