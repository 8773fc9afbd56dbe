// Package config provides configuration loading for plannerd.
//
// Configuration is loaded from an optional YAML file with environment
// variable overrides. Provider credentials are the exception: they are
// read from the canonical variables their ecosystems already use
// (OPENAI_API_KEY and friends) so existing shell profiles keep working.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the complete plannerd configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	NATS      NATSConfig
	Cache     CacheConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
	Secrets   SecretsConfig
	Planner   PlannerConfig

	// Providers is populated from canonical environment variables,
	// never from the YAML file, so API keys stay out of config files.
	Providers ProvidersConfig `koanf:"-"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds SQLite persistence configuration.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// NATSConfig holds the connection to the NATS server backing the plan
// cache and operation events.
type NATSConfig struct {
	URL string `koanf:"url"`

	// Embedded starts an in-process NATS server instead of dialing URL.
	Embedded bool `koanf:"embedded"`
}

// CacheConfig holds plan cache configuration. MaxEntries only applies to
// the in-memory backend; the NATS bucket relies on server-side TTL expiry.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Bucket     string        `koanf:"bucket"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// LoggingConfig holds structured logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry export configuration.
type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
}

// SecretsConfig controls scrubbing of credentials from incoming goals.
type SecretsConfig struct {
	ScrubEnabled bool `koanf:"scrub_enabled"`
}

// PlannerConfig holds plan-generation pipeline configuration.
type PlannerConfig struct {
	OperationTimeout time.Duration `koanf:"operation_timeout"`
}

// Validate validates the configuration.
//
// Returns an error if:
//   - Server port is not between 1 and 65535
//   - Shutdown timeout is not positive
//   - Database path is empty
//   - Cache is enabled with a non-positive TTL or empty bucket
//   - Logging level or format is not a known value
//   - Telemetry is enabled without an endpoint
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}

	if c.Database.Path == "" {
		return errors.New("database path must not be empty")
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache TTL must be positive, got %s", c.Cache.TTL)
		}
		if c.Cache.Bucket == "" {
			return errors.New("cache bucket must not be empty")
		}
		if c.Cache.MaxEntries <= 0 {
			return fmt.Errorf("cache max entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q (must be debug, info, warn, or error)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %q (must be json or console)", c.Logging.Format)
	}

	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return errors.New("telemetry endpoint required when telemetry is enabled")
	}

	if c.Planner.OperationTimeout <= 0 {
		return errors.New("operation timeout must be positive")
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8420
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = defaultDatabasePath()
	}

	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://127.0.0.1:4222"
	}

	if cfg.Cache.Bucket == "" {
		cfg.Cache.Bucket = "plan_cache"
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = time.Hour
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = 256
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Telemetry.Endpoint == "" {
		cfg.Telemetry.Endpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "plannerd"
	}

	if cfg.Planner.OperationTimeout == 0 {
		cfg.Planner.OperationTimeout = 5 * time.Minute
	}
}

// defaultDatabasePath places the plan database under the user's data
// directory, falling back to the working directory when home is unknown.
func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "plans.db"
	}
	return filepath.Join(home, ".local", "share", "plannerd", "plans.db")
}
