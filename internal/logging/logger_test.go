package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output.OTEL = false

	logger, err := New(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, logger)

	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_ConsoleFormat(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "console"
	cfg.Output.OTEL = false

	logger, err := New(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNew_LevelFiltering(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Level = zapcore.WarnLevel
	cfg.Output.OTEL = false

	logger, err := New(cfg, nil)
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Format = "xml"

	_, err := New(cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestNew_NoOutputs(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output.Stdout = false
	cfg.Output.OTEL = false

	_, err := New(cfg, nil)
	require.Error(t, err)
}

// OTEL output enabled but no provider available: stdout still works.
func TestNew_OTELWithoutProvider(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output.Stdout = true
	cfg.Output.OTEL = true

	logger, err := New(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestSync_IgnoresStdoutErrors(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Output.OTEL = false

	logger, err := New(cfg, nil)
	require.NoError(t, err)

	logger.Info("sync test")

	// Syncing a logger pointed at stdout returns EINVAL or ENOTTY on
	// Linux; Sync must swallow those.
	assert.NoError(t, Sync(logger))
}
