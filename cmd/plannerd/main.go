// Plannerd turns free-text goals into structured project plans.
//
// The daemon wires the plan-generation pipeline (provider registry,
// completion gateway, staged synthesizer), a JetStream-backed plan cache, a
// SQLite plan store, and the HTTP API, then serves until SIGINT/SIGTERM.
//
// Usage:
//
//	# Start with defaults, providers discovered from the environment
//	OPENAI_API_KEY=sk-... plannerd
//
//	# Explicit config file
//	plannerd --config ~/.config/plannerd/config.yaml
//
//	# Single-binary dev mode with an embedded NATS server
//	NATS_EMBEDDED=true plannerd
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/usmankhan616/Smart-Task-Planner/internal/cache"
	"github.com/usmankhan616/Smart-Task-Planner/internal/config"
	httpapi "github.com/usmankhan616/Smart-Task-Planner/internal/http"
	"github.com/usmankhan616/Smart-Task-Planner/internal/logging"
	"github.com/usmankhan616/Smart-Task-Planner/internal/planner"
	"github.com/usmankhan616/Smart-Task-Planner/internal/provider"
	"github.com/usmankhan616/Smart-Task-Planner/internal/secrets"
	"github.com/usmankhan616/Smart-Task-Planner/internal/service"
	"github.com/usmankhan616/Smart-Task-Planner/internal/storage"
	"github.com/usmankhan616/Smart-Task-Planner/internal/telemetry"
)

// Version information (set via ldflags during build).
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", os.Getenv("PLANNER_CONFIG"), "path to config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("plannerd %s (commit %s, built %s)\n", version, gitCommit, buildDate)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received signal %v, shutting down", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("plannerd: %v", err)
	}
}

// run wires every component and blocks until ctx is cancelled or the server
// fails. Shutdown order: HTTP, store, NATS, telemetry, log sync.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Telemetry failures degrade to no-op; the planner runs without a
	// collector.
	telemetryCfg := telemetry.NewDefaultConfig()
	telemetryCfg.Enabled = cfg.Telemetry.Enabled
	telemetryCfg.Endpoint = cfg.Telemetry.Endpoint
	telemetryCfg.ServiceName = cfg.Telemetry.ServiceName
	telemetryCfg.ServiceVersion = version

	tel, err := telemetry.New(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	logger, err := newLogger(cfg, tel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logging.Sync(logger) }()

	logger.Info("starting plannerd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("telemetry", cfg.Telemetry.Enabled))

	var embedded *natsserver.Server
	if cfg.NATS.Embedded {
		embedded, err = startEmbeddedNATS(cfg, logger)
		if err != nil {
			return fmt.Errorf("start embedded NATS: %w", err)
		}
		defer func() {
			embedded.Shutdown()
			embedded.WaitForShutdown()
		}()
	}

	natsURL := cfg.NATS.URL
	if embedded != nil {
		natsURL = embedded.ClientURL()
	}

	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return fmt.Errorf("connect to NATS at %s: %w", natsURL, err)
	}
	defer nc.Close()
	logger.Info("connected to NATS", zap.String("url", natsURL))

	store, err := storage.Open(cfg.Database.Path, logger.Named("storage"))
	if err != nil {
		return fmt.Errorf("open plan store: %w", err)
	}
	defer store.Close()

	registry := provider.NewRegistry(ctx, provider.Config{
		OpenAI: provider.BackendConfig{
			APIKey: cfg.Providers.OpenAI.APIKey.Value(),
			Model:  cfg.Providers.OpenAI.Model,
		},
		Anthropic: provider.BackendConfig{
			APIKey: cfg.Providers.Anthropic.APIKey.Value(),
			Model:  cfg.Providers.Anthropic.Model,
		},
		Gemini: provider.BackendConfig{
			APIKey: cfg.Providers.Gemini.APIKey.Value(),
			Model:  cfg.Providers.Gemini.Model,
		},
		Primary:   cfg.Providers.Primary,
		Secondary: cfg.Providers.Secondary,
	}, logger.Named("provider"))

	gateway := provider.NewGateway(provider.DefaultGatewayConfig(),
		logger.Named("gateway"), provider.NewMetrics(logger))

	synthesizer := planner.NewSynthesizer(registry, gateway,
		logger.Named("planner"), planner.NewMetrics(logger))

	planCache, cacheBackend := buildCache(cfg, nc, logger)

	var scrubber service.GoalScrubber
	if cfg.Secrets.ScrubEnabled {
		s, err := secrets.NewScrubber(true)
		if err != nil {
			return fmt.Errorf("init goal scrubber: %w", err)
		}
		scrubber = s
	}

	planService := service.New(planCache, store, synthesizer, scrubber, logger.Named("service"))

	metrics := httpapi.NewMetrics(prometheus.DefaultRegisterer)
	tracker := httpapi.NewTracker(nc, logger.Named("operations"), metrics)

	server, err := httpapi.NewServer(httpapi.Config{
		Port:             cfg.Server.Port,
		OperationTimeout: cfg.Planner.OperationTimeout,
		Providers:        registry.Len,
		CacheBackend:     cacheBackend,
	}, planService, tracker, store.Ping, logger.Named("http"), metrics)
	if err != nil {
		return fmt.Errorf("build http server: %w", err)
	}

	logger.Info("plannerd ready",
		zap.Int("providers", registry.Len()),
		zap.String("cache", cacheBackend),
		zap.String("health", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port)))

	serveErr := server.Start(ctx, cfg.Server.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.Warn("telemetry shutdown failed", zap.Error(err))
	}

	return serveErr
}

// newLogger builds the zap logger with the OTEL bridge when telemetry is up.
func newLogger(cfg *config.Config, tel *telemetry.Telemetry) (*zap.Logger, error) {
	logCfg := logging.NewDefaultConfig()
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	logCfg.Level = level
	logCfg.Format = cfg.Logging.Format
	logCfg.Output.OTEL = tel.IsEnabled()

	return logging.New(logCfg, tel.LoggerProvider())
}

// startEmbeddedNATS runs an in-process JetStream server for single-binary
// development deployments.
func startEmbeddedNATS(cfg *config.Config, logger *zap.Logger) (*natsserver.Server, error) {
	opts := &natsserver.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		NoLog:     true,
		NoSigs:    true,
		JetStream: true,
	}

	server, err := natsserver.NewServer(opts)
	if err != nil {
		return nil, err
	}

	go server.Start()
	if !server.ReadyForConnections(10 * time.Second) {
		server.Shutdown()
		return nil, fmt.Errorf("embedded NATS server did not become ready")
	}

	logger.Info("embedded NATS server running", zap.String("url", server.ClientURL()))
	return server, nil
}

// buildCache picks the cache backend: JetStream KV when caching is enabled
// and the bucket binds, in-memory when it does not, none when disabled.
func buildCache(cfg *config.Config, nc *nats.Conn, logger *zap.Logger) (cache.PlanCache, string) {
	if !cfg.Cache.Enabled {
		return cache.Nop{}, "disabled"
	}

	metrics := cache.NewMetrics(logger)
	kv, err := cache.NewNATS(nc, cfg.Cache.Bucket, cfg.Cache.TTL, logger.Named("cache"), metrics)
	if err != nil {
		logger.Warn("JetStream cache unavailable, falling back to in-memory",
			zap.Error(err))
		return cache.NewMemory(cfg.Cache.TTL, cfg.Cache.MaxEntries, metrics), "memory"
	}
	return kv, "nats"
}
