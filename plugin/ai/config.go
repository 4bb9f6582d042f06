package ai

import "fmt"

// Supported evaluator providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// geminiOpenAIBaseURL is Google's OpenAI-compatible endpoint for the
// Gemini API.
const geminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// Config holds the evaluator client configuration.
type Config struct {
	// Provider selects the backing API: "openai" or "gemini".
	Provider string
	// APIKey authenticates against the provider.
	APIKey string
	// BaseURL overrides the provider's default endpoint. Optional.
	BaseURL string
	// Model is the chat model used for evaluations.
	Model string
}

// Validate checks the configuration and fills provider defaults.
func (c *Config) Validate() error {
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
	switch c.Provider {
	case ProviderOpenAI:
		if c.Model == "" {
			c.Model = "gpt-4o-mini"
		}
	case ProviderGemini:
		if c.BaseURL == "" {
			c.BaseURL = geminiOpenAIBaseURL
		}
		if c.Model == "" {
			c.Model = "gemini-2.0-flash"
		}
	default:
		return fmt.Errorf("unsupported evaluator provider: %s", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("evaluator API key is required")
	}
	return nil
}
