package http

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the HTTP layer's Prometheus instruments. A nil *Metrics is
// a valid no-op receiver so tests can skip registration entirely.
type Metrics struct {
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	operationsInFlight prometheus.Gauge
	operationsTotal    *prometheus.CounterVec
}

// NewMetrics registers the HTTP instruments on reg. Pass
// prometheus.DefaultRegisterer in the daemon and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plannerd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route, and status code.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "plannerd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		operationsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "plannerd",
			Name:      "operations_in_flight",
			Help:      "Plan-generation operations currently pending or running.",
		}),
		operationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plannerd",
			Name:      "operations_total",
			Help:      "Finished plan-generation operations by terminal status.",
		}, []string{"status"}),
	}
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			m.requestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// OperationStarted bumps the in-flight gauge.
func (m *Metrics) OperationStarted() {
	if m == nil {
		return
	}
	m.operationsInFlight.Inc()
}

// OperationFinished decrements the in-flight gauge and counts the terminal
// status.
func (m *Metrics) OperationFinished(status string) {
	if m == nil {
		return
	}
	m.operationsInFlight.Dec()
	m.operationsTotal.WithLabelValues(status).Inc()
}
