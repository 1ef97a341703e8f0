package domain

// AIProvider identifies an LLM provider.
type AIProvider string

// Supported providers.
const (
	AIProviderAnthropic AIProvider = "anthropic"
	AIProviderOpenAI    AIProvider = "openai"
	AIProviderOllama    AIProvider = "ollama"
)

// Valid reports whether p is a known provider.
func (p AIProvider) Valid() bool {
	switch p {
	case AIProviderAnthropic, AIProviderOpenAI, AIProviderOllama:
		return true
	}
	return false
}

// LLMSettings holds the user's LLM provider configuration.
type LLMSettings struct {
	// Provider selects the adapter.
	Provider AIProvider

	// APIKey authenticates hosted providers. Not used by ollama.
	APIKey string

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// Model overrides the provider's default model.
	Model string
}

// IsConfigured reports whether the settings name a usable provider.
// Ollama needs no API key; hosted providers do.
func (s *LLMSettings) IsConfigured() bool {
	if !s.Provider.Valid() {
		return false
	}
	if s.Provider == AIProviderOllama {
		return true
	}
	return s.APIKey != ""
}
