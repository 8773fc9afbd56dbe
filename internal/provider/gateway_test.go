package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// fakeModel is a scripted llms.Model for gateway tests.
type fakeModel struct {
	response string
	err      error
	noChoice bool

	calls    int
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	f.messages = messages
	for _, opt := range options {
		opt(&f.opts)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.noChoice {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.response}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := f.GenerateContent(ctx, []llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)}, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func newTestGateway() *Gateway {
	return NewGateway(GatewayConfig{CallsPerSecond: 1000, Burst: 1000}, zap.NewNop(), nil)
}

func TestGatewayComplete_PassesParameters(t *testing.T) {
	model := &fakeModel{response: `[{"task_name":"A"}]`}
	d := NewDescriptor(NameOpenAI, "gpt-3.5-turbo", model)
	g := newTestGateway()

	out, err := g.Complete(context.Background(), d, CompletionRequest{
		System:      "system prompt",
		User:        "user prompt",
		Temperature: 0.4,
		MaxTokens:   400,
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"task_name":"A"}]`, out)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.InDelta(t, 0.4, model.opts.Temperature, 1e-9)
	assert.Equal(t, 400, model.opts.MaxTokens)
	assert.Equal(t, "gpt-3.5-turbo", model.opts.Model)
}

func TestGatewayComplete_NormalizesGeminiModel(t *testing.T) {
	model := &fakeModel{response: "ok"}
	d := NewDescriptor(NameGemini, "gemini/gemini-1.5-flash", model)
	g := newTestGateway()

	_, err := g.Complete(context.Background(), d, CompletionRequest{User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-flash", model.opts.Model)
}

func TestGatewayComplete_StripsFences(t *testing.T) {
	model := &fakeModel{response: "```json\n[{\"task_name\":\"A\"}]\n```"}
	d := NewDescriptor(NameAnthropic, "claude-3-haiku-20240307", model)
	g := newTestGateway()

	out, err := g.Complete(context.Background(), d, CompletionRequest{User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, `[{"task_name":"A"}]`, out)
}

func TestGatewayComplete_TranslatesErrors(t *testing.T) {
	model := &fakeModel{err: errors.New("429: rate limit exceeded")}
	d := NewDescriptor(NameOpenAI, "gpt-3.5-turbo", model)
	g := newTestGateway()

	_, err := g.Complete(context.Background(), d, CompletionRequest{User: "hi"})
	require.Error(t, err)

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, NameOpenAI, callErr.Provider)
	assert.Equal(t, CodeRateLimit, callErr.Code)
}

func TestGatewayComplete_EmptyResponse(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{"no choices", &fakeModel{noChoice: true}},
		{"blank content", &fakeModel{response: "   \n  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDescriptor(NameOpenAI, "gpt-3.5-turbo", tt.model)
			g := newTestGateway()

			_, err := g.Complete(context.Background(), d, CompletionRequest{User: "hi"})
			var callErr *CallError
			require.ErrorAs(t, err, &callErr)
			assert.Equal(t, CodeEmpty, callErr.Code)
		})
	}
}

func TestGatewayComplete_NilDescriptor(t *testing.T) {
	g := newTestGateway()
	_, err := g.Complete(context.Background(), nil, CompletionRequest{User: "hi"})
	require.Error(t, err)
}

func TestGatewayComplete_OmitsEmptySystemMessage(t *testing.T) {
	model := &fakeModel{response: "ok"}
	d := NewDescriptor(NameOpenAI, "gpt-3.5-turbo", model)
	g := newTestGateway()

	_, err := g.Complete(context.Background(), d, CompletionRequest{User: "hi"})
	require.NoError(t, err)
	require.Len(t, model.messages, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[0].Role)
}

func TestNormalizeModelID(t *testing.T) {
	tests := []struct {
		name     Name
		model    string
		expected string
	}{
		{NameGemini, "gemini/gemini-1.5-flash", "gemini-1.5-flash"},
		{NameGemini, "models/gemini-1.5-flash", "gemini-1.5-flash"},
		{NameGemini, "gemini-1.5-flash", "gemini-1.5-flash"},
		{NameOpenAI, "gpt-3.5-turbo", "gpt-3.5-turbo"},
		{NameAnthropic, "claude-3-haiku-20240307", "claude-3-haiku-20240307"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeModelID(tt.name, tt.model), "model %q", tt.model)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"json fence", "```json\n[1,2]\n```", "[1,2]"},
		{"bare fence", "```\n[1,2]\n```", "[1,2]"},
		{"no fence", "[1,2]", "[1,2]"},
		{"whitespace", "  \n[1,2]\n ", "[1,2]"},
		{"single line fence", "```json[1,2]```", "[1,2]"},
		{"unterminated fence", "```json\n[1,2]", "[1,2]"},
		{"interior backticks preserved", "a ``` b", "a ``` b"},
		{"windows newlines", "```json\r\n[1,2]\r\n```", "[1,2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripFences(tt.in))
		})
	}
}
