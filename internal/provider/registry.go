package provider

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// Registry holds the backends discovered from configuration, in discovery
// order. It is built once at startup and never mutated; credential rotation
// requires a process restart.
type Registry struct {
	providers []*Descriptor
	primary   Name
	secondary Name
	logger    *zap.Logger
}

// NewRegistry scans the configured backends in discovery order and builds a
// descriptor for each one holding a credential. Backends whose client fails
// to construct are skipped with a warning so one bad entry cannot block the
// rest; an empty registry is valid and downstream synthesis degrades to its
// static fallback.
func NewRegistry(ctx context.Context, cfg Config, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Registry{
		primary:   Name(strings.ToLower(strings.TrimSpace(cfg.Primary))),
		secondary: Name(strings.ToLower(strings.TrimSpace(cfg.Secondary))),
		logger:    logger,
	}

	for _, name := range discoveryOrder {
		bc := cfg.backend(name)
		if bc.APIKey == "" {
			continue
		}

		model := bc.Model
		if model == "" {
			model = defaultModel(name)
		}
		model = NormalizeModelID(name, model)

		client, err := newClient(ctx, name, bc.APIKey, model)
		if err != nil {
			logger.Warn("skipping provider, client construction failed",
				zap.String("provider", string(name)),
				zap.Error(err))
			continue
		}

		r.providers = append(r.providers, NewDescriptor(name, model, client))
		logger.Info("provider configured",
			zap.String("provider", string(name)),
			zap.String("model", model))
	}

	if len(r.providers) == 0 {
		logger.Warn("no generation providers configured, synthesis will use the static fallback")
	}

	return r
}

// newClient constructs the langchaingo client for one backend with the
// credential bound in.
func newClient(ctx context.Context, name Name, apiKey, model string) (llms.Model, error) {
	switch name {
	case NameOpenAI:
		return openai.New(
			openai.WithToken(apiKey),
			openai.WithModel(model),
		)
	case NameAnthropic:
		return anthropic.New(
			anthropic.WithToken(apiKey),
			anthropic.WithModel(model),
		)
	case NameGemini:
		return googleai.New(ctx,
			googleai.WithAPIKey(apiKey),
			googleai.WithDefaultModel(model),
		)
	}
	return nil, NewCallError(name, CodeNotFound, nil)
}

// List returns the discovered descriptors in discovery order. The returned
// slice is a copy; descriptors themselves are immutable.
func (r *Registry) List() []*Descriptor {
	out := make([]*Descriptor, len(r.providers))
	copy(out, r.providers)
	return out
}

// Len reports how many backends were discovered.
func (r *Registry) Len() int { return len(r.providers) }

// SelectPrimarySecondary picks the draft and elaboration backends.
//
// Primary is the configured preferred provider when available, else the
// first discovered. Secondary is the configured preferred provider when
// available, else the first provider that is not the primary, else the
// primary itself (single-provider deployments elaborate with the same
// backend they drafted with). An empty registry yields (nil, nil).
func (r *Registry) SelectPrimarySecondary() (*Descriptor, *Descriptor) {
	if len(r.providers) == 0 {
		return nil, nil
	}

	primary := r.byName(r.primary)
	if primary == nil {
		primary = r.providers[0]
	}

	secondary := r.byName(r.secondary)
	if secondary == nil {
		for _, p := range r.providers {
			if p != primary {
				secondary = p
				break
			}
		}
	}
	if secondary == nil {
		secondary = primary
	}

	return primary, secondary
}

func (r *Registry) byName(name Name) *Descriptor {
	if name == "" {
		return nil
	}
	for _, p := range r.providers {
		if p.name == name {
			return p
		}
	}
	return nil
}
