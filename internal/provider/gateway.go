package provider

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CompletionRequest carries the inputs for one chat-completion call.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// GatewayConfig bounds the gateway's per-provider call rate.
type GatewayConfig struct {
	// CallsPerSecond is the sustained per-provider rate limit.
	CallsPerSecond float64
	// Burst is the per-provider burst allowance.
	Burst int
}

// DefaultGatewayConfig returns limits suitable for interactive plan
// generation against metered APIs.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		CallsPerSecond: 2,
		Burst:          4,
	}
}

// Gateway issues completion calls against any descriptor. It holds no
// credential state of its own (credentials live in descriptor clients), so
// it is safe for concurrent use across providers. Failed calls are returned
// as classified CallErrors and are never retried here; failover policy
// belongs to the caller.
type Gateway struct {
	limiters map[Name]*rate.Limiter
	logger   *zap.Logger
	metrics  *Metrics
}

// NewGateway builds a gateway with one rate limiter per supported backend.
func NewGateway(cfg GatewayConfig, logger *zap.Logger, metrics *Metrics) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CallsPerSecond <= 0 {
		cfg.CallsPerSecond = DefaultGatewayConfig().CallsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultGatewayConfig().Burst
	}

	limiters := make(map[Name]*rate.Limiter, len(discoveryOrder))
	for _, name := range discoveryOrder {
		limiters[name] = rate.NewLimiter(rate.Limit(cfg.CallsPerSecond), cfg.Burst)
	}

	return &Gateway{
		limiters: limiters,
		logger:   logger,
		metrics:  metrics,
	}
}

// Complete performs one blocking chat-completion call against the given
// backend. The response has surrounding whitespace trimmed and any enclosing
// markdown code fence stripped.
func (g *Gateway) Complete(ctx context.Context, d *Descriptor, req CompletionRequest) (string, error) {
	if d == nil || d.client == nil {
		return "", NewCallError("", CodeUnknown, errNilDescriptor)
	}

	if lim := g.limiters[d.name]; lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return "", TranslateCallError(d.name, err)
		}
	}

	model := NormalizeModelID(d.name, d.model)

	messages := make([]llms.MessageContent, 0, 2)
	if req.System != "" {
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.System)},
		})
	}
	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(req.User)},
	})

	opts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
		llms.WithModel(model),
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	start := time.Now()
	resp, err := d.client.GenerateContent(ctx, messages, opts...)
	g.metrics.RecordCall(ctx, d.name, time.Since(start), err)

	if err != nil {
		callErr := TranslateCallError(d.name, err)
		g.logger.Warn("completion call failed",
			zap.String("provider", string(d.name)),
			zap.String("model", model),
			zap.String("code", string(callErr.Code)),
			zap.Error(err))
		return "", callErr
	}

	if resp == nil || len(resp.Choices) == 0 {
		return "", NewCallError(d.name, CodeEmpty, nil)
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", NewCallError(d.name, CodeEmpty, nil)
	}

	return StripFences(text), nil
}

// NormalizeModelID strips router-style namespace prefixes from gemini model
// identifiers. Configurations written for namespaced conventions (for
// example "gemini/gemini-1.5-flash" or "models/gemini-1.5-flash") keep
// working; the native client wants bare names. Other backends pass through.
func NormalizeModelID(name Name, model string) string {
	if name != NameGemini {
		return model
	}
	model = strings.TrimPrefix(model, "gemini/")
	model = strings.TrimPrefix(model, "models/")
	return model
}

var (
	fenceEnclosedRE = regexp.MustCompile("(?s)^```[a-zA-Z0-9]*[ \t]*\r?\n?(.*?)\r?\n?[ \t]*```$")
	fenceOpenRE     = regexp.MustCompile("^```[a-zA-Z0-9]*[ \t]*\r?\n?")
)

// StripFences removes an enclosing markdown code fence (with optional
// language tag) from a response. Backends frequently wrap JSON in fences
// despite instructions not to.
func StripFences(s string) string {
	t := strings.TrimSpace(s)
	if m := fenceEnclosedRE.FindStringSubmatch(t); m != nil {
		return strings.TrimSpace(m[1])
	}
	// Unterminated fence: drop the opening marker, keep the body.
	if loc := fenceOpenRE.FindStringIndex(t); loc != nil {
		return strings.TrimSpace(strings.TrimSuffix(t[loc[1]:], "```"))
	}
	return t
}
