package config

import "os"

// Canonical environment variables for provider credentials and routing.
// These keep the names the provider ecosystems already use instead of
// the section_field scheme, so keys configured for other tooling work
// here unchanged.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"

	EnvOpenAIModel    = "LLM_OPENAI_MODEL"
	EnvAnthropicModel = "LLM_ANTHROPIC_MODEL"
	EnvGeminiModel    = "LLM_GEMINI_MODEL"

	EnvPrimaryProvider   = "LLM_PRIMARY_PROVIDER"
	EnvSecondaryProvider = "LLM_SECONDARY_PROVIDER"
)

// ProvidersConfig holds credentials and routing preferences for the
// completion backends. A backend with an empty APIKey is not configured.
type ProvidersConfig struct {
	OpenAI    ProviderCredentials
	Anthropic ProviderCredentials
	Gemini    ProviderCredentials

	// Primary and Secondary name the preferred backends for the draft
	// and elaboration stages. Empty means first-configured wins.
	Primary   string
	Secondary string
}

// ProviderCredentials holds one backend's API key and model override.
// An empty Model selects the backend's default.
type ProviderCredentials struct {
	APIKey Secret
	Model  string
}

// ProvidersFromEnv reads provider credentials from the canonical
// environment variables. It never fails; unset backends simply stay
// unconfigured and the planner degrades accordingly.
func ProvidersFromEnv() ProvidersConfig {
	return ProvidersConfig{
		OpenAI: ProviderCredentials{
			APIKey: Secret(os.Getenv(EnvOpenAIAPIKey)),
			Model:  os.Getenv(EnvOpenAIModel),
		},
		Anthropic: ProviderCredentials{
			APIKey: Secret(os.Getenv(EnvAnthropicAPIKey)),
			Model:  os.Getenv(EnvAnthropicModel),
		},
		Gemini: ProviderCredentials{
			APIKey: Secret(os.Getenv(EnvGeminiAPIKey)),
			Model:  os.Getenv(EnvGeminiModel),
		},
		Primary:   os.Getenv(EnvPrimaryProvider),
		Secondary: os.Getenv(EnvSecondaryProvider),
	}
}

// Configured reports whether at least one backend has an API key.
func (p ProvidersConfig) Configured() bool {
	return p.OpenAI.APIKey.IsSet() || p.Anthropic.APIKey.IsSet() || p.Gemini.APIKey.IsSet()
}
