// Package provider discovers configured text-generation backends and issues
// chat-completion calls against them through a uniform gateway.
//
// Each backend credential is bound into its client at construction time, so
// concurrent calls against different providers never share mutable state.
package provider

import (
	"github.com/tmc/langchaingo/llms"
)

// Name identifies a supported generation backend.
type Name string

const (
	NameOpenAI    Name = "openai"
	NameAnthropic Name = "anthropic"
	NameGemini    Name = "gemini"
)

// discoveryOrder is the fixed credential scan order. Registry listings and
// failover loops preserve this order.
var discoveryOrder = []Name{NameOpenAI, NameAnthropic, NameGemini}

// Default models used when no override is configured.
const (
	DefaultOpenAIModel    = "gpt-3.5-turbo"
	DefaultAnthropicModel = "claude-3-haiku-20240307"
	DefaultGeminiModel    = "gemini-1.5-flash"
)

// BackendConfig holds the credential and optional model override for one
// backend. An empty APIKey means the backend is not configured.
type BackendConfig struct {
	APIKey string
	Model  string
}

// Config enumerates backend credentials plus optional primary/secondary
// selection overrides (by provider name).
type Config struct {
	OpenAI    BackendConfig
	Anthropic BackendConfig
	Gemini    BackendConfig
	Primary   string
	Secondary string
}

func (c Config) backend(name Name) BackendConfig {
	switch name {
	case NameOpenAI:
		return c.OpenAI
	case NameAnthropic:
		return c.Anthropic
	case NameGemini:
		return c.Gemini
	}
	return BackendConfig{}
}

func defaultModel(name Name) string {
	switch name {
	case NameOpenAI:
		return DefaultOpenAIModel
	case NameAnthropic:
		return DefaultAnthropicModel
	case NameGemini:
		return DefaultGeminiModel
	}
	return ""
}

// Descriptor is an immutable handle to one usable backend: its name, the
// model it will be called with, and a client carrying the credential.
type Descriptor struct {
	name   Name
	model  string
	client llms.Model
}

// NewDescriptor builds a descriptor around an existing client. The registry
// uses it during discovery; tests use it to inject fake clients.
func NewDescriptor(name Name, model string, client llms.Model) *Descriptor {
	return &Descriptor{name: name, model: model, client: client}
}

// Name returns the backend identity.
func (d *Descriptor) Name() Name { return d.name }

// Model returns the model identifier this descriptor calls.
func (d *Descriptor) Model() string { return d.model }
