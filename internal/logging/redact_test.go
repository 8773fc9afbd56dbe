package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/usmankhan616/Smart-Task-Planner/internal/config"
)

func TestSecret(t *testing.T) {
	secret := config.Secret("super-secret-value")

	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	logger.Info("test secret", Secret("password", secret))

	logs := observed.All()
	require.Len(t, logs, 1)

	var found bool
	for _, field := range logs[0].Context {
		if field.Key == "password" {
			enc, ok := field.Interface.(zapcore.ObjectMarshaler)
			require.True(t, ok, "password field is not an object marshaler")

			m := zapcore.NewMapObjectEncoder()
			require.NoError(t, enc.MarshalLogObject(m))
			assert.Equal(t, "[REDACTED:18]", m.Fields["password"])
			found = true
		}
	}
	assert.True(t, found, "password field not found or not redacted")
}

func TestRedactedString(t *testing.T) {
	field := RedactedString("api_key", "sk-1234567890abcdef")

	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	logger.Info("test", field)

	logs := observed.All()
	require.Len(t, logs, 1)

	var found bool
	for _, f := range logs[0].Context {
		if f.Key == "api_key" {
			assert.Equal(t, "[REDACTED:19]", f.String)
			found = true
		}
	}
	assert.True(t, found, "api_key field not found")
}

func TestNewRedactingEncoder_Defaults(t *testing.T) {
	cfg := NewDefaultConfig()
	encoder, err := NewRedactingEncoder(newEncoder("json"), cfg.Redaction)

	require.NoError(t, err)
	require.NotNil(t, encoder)
	assert.Len(t, encoder.fields, len(cfg.Redaction.Fields))
	assert.Len(t, encoder.patterns, len(cfg.Redaction.Patterns))
}

func TestNewRedactingEncoder_InvalidPattern(t *testing.T) {
	cfg := RedactionConfig{
		Enabled:  true,
		Fields:   []string{"password"},
		Patterns: []string{`(?i)bearer\s+\S+`, "[invalid("},
	}

	encoder, err := NewRedactingEncoder(newEncoder("json"), cfg)

	assert.Error(t, err)
	assert.Nil(t, encoder)
	assert.Contains(t, err.Error(), "invalid redaction pattern")
	assert.Contains(t, err.Error(), "[invalid(")
}

func TestNewRedactingEncoder_PatternTooLong(t *testing.T) {
	cfg := RedactionConfig{
		Enabled:  true,
		Patterns: []string{strings.Repeat("a", 201)},
	}

	encoder, err := NewRedactingEncoder(newEncoder("json"), cfg)

	assert.Error(t, err)
	assert.Nil(t, encoder)
	assert.Contains(t, err.Error(), "pattern too long")
}

func TestNewRedactingEncoder_DisabledSkipsValidation(t *testing.T) {
	// Invalid pattern but redaction disabled should succeed.
	cfg := RedactionConfig{
		Enabled:  false,
		Patterns: []string{"[invalid("},
	}

	encoder, err := NewRedactingEncoder(newEncoder("json"), cfg)

	assert.NoError(t, err)
	assert.NotNil(t, encoder)
}

func TestRedactingEncoder_RedactsByFieldName(t *testing.T) {
	cfg := RedactionConfig{
		Enabled: true,
		Fields:  []string{"password"},
	}
	encoder, err := NewRedactingEncoder(newEncoder("json"), cfg)
	require.NoError(t, err)

	encoder.AddString("password", "hunter2")
	encoder.AddString("Password", "hunter2")
	encoder.AddString("user", "alice")

	buf, err := encoder.EncodeEntry(zapcore.Entry{Level: zapcore.InfoLevel, Message: "login"}, nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"password":"[REDACTED]"`)
	assert.Contains(t, out, `"Password":"[REDACTED]"`)
	assert.Contains(t, out, `"user":"alice"`)
	assert.NotContains(t, out, "hunter2")
}

func TestRedactingEncoder_RedactsByPattern(t *testing.T) {
	cfg := NewDefaultConfig()
	encoder, err := NewRedactingEncoder(newEncoder("json"), cfg.Redaction)
	require.NoError(t, err)

	encoder.AddString("note", "use Bearer abc.def.ghi for auth")
	encoder.AddString("detail", "key sk-abcdefghijklmnopqrstuv was rotated")
	encoder.AddString("plain", "nothing sensitive here")

	buf, err := encoder.EncodeEntry(zapcore.Entry{Level: zapcore.InfoLevel, Message: "audit"}, nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"note":"[REDACTED:pattern]"`)
	assert.Contains(t, out, `"detail":"[REDACTED:pattern]"`)
	assert.Contains(t, out, `"plain":"nothing sensitive here"`)
	assert.NotContains(t, out, "abc.def.ghi")
	assert.NotContains(t, out, "sk-abcdefghijklmnopqrstuv")
}

// Fields attached with With flow through the redacting encoder's Add
// methods, so the full pipeline must never emit the raw value.
func TestRedactingEncoder_ThroughLogger(t *testing.T) {
	cfg := NewDefaultConfig()
	encoder, err := NewRedactingEncoder(newEncoder("json"), cfg.Redaction)
	require.NoError(t, err)

	var buf bytes.Buffer
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.InfoLevel)
	logger := zap.New(core).With(zap.String("api_key", "sk-live-abcdef1234567890abcdef"))

	logger.Info("request handled")

	out := buf.String()
	assert.Contains(t, out, `"api_key":"[REDACTED]"`)
	assert.NotContains(t, out, "sk-live-abcdef1234567890abcdef")
}

func TestRedactingEncoder_AllMethodsImplemented(t *testing.T) {
	cfg := RedactionConfig{
		Enabled: true,
		Fields:  []string{"password", "token", "certificate", "credentials", "secret_array"},
	}

	encoder, err := NewRedactingEncoder(newEncoder("json"), cfg)
	require.NoError(t, err)
	require.NotNil(t, encoder)

	assert.NotPanics(t, func() {
		encoder.AddString("password", "secret")
		encoder.AddByteString("token", []byte("token-value"))
		encoder.AddBinary("certificate", []byte{0x00})
		_ = encoder.AddReflected("safe_field", "value")
		_ = encoder.AddObject("credentials", zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
			return nil
		}))
		_ = encoder.AddArray("secret_array", zapcore.ArrayMarshalerFunc(func(enc zapcore.ArrayEncoder) error {
			return nil
		}))
	})
}
