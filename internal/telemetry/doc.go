// Package telemetry provides OpenTelemetry instrumentation for plannerd.
//
// # Overview
//
// This package implements distributed tracing, metrics, and log export
// using the OpenTelemetry Go SDK. Data is exported over OTLP/gRPC to a
// collector.
//
// # Usage
//
// Create telemetry instance:
//
//	cfg := telemetry.NewDefaultConfig()
//	tel, err := telemetry.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(ctx)
//
// Use tracer and meter:
//
//	tracer := tel.Tracer("plannerd.http")
//	ctx, span := tracer.Start(ctx, "plans.generate")
//	defer span.End()
//
//	meter := tel.Meter("plannerd.http")
//	counter, _ := meter.Int64Counter("http.requests")
//	counter.Add(ctx, 1)
//
// # Configuration
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  service_name: "plannerd"
//
// # Error Handling
//
// Telemetry failures do not crash the application. If a provider cannot
// be initialized, the instance degrades gracefully and hands out no-op
// tracers and meters instead.
package telemetry
