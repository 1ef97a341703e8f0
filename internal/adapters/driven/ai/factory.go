// Package ai provides factory functions for creating LLM service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	anthropicllm "github.com/quarry-dev/quarry/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/quarry-dev/quarry/internal/adapters/driven/llm/ollama"
	openaillm "github.com/quarry-dev/quarry/internal/adapters/driven/llm/openai"
	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Config keys read by SettingsFromConfig.
const (
	keyProvider = "llm.provider"
	keyAPIKey   = "llm.api_key"
	keyBaseURL  = "llm.base_url"
	keyModel    = "llm.model"
)

// SettingsFromConfig reads LLM settings from the config store.
func SettingsFromConfig(cfg driven.ConfigStore) domain.LLMSettings {
	return domain.LLMSettings{
		Provider: domain.AIProvider(cfg.GetString(keyProvider)),
		APIKey:   cfg.GetString(keyAPIKey),
		BaseURL:  cfg.GetString(keyBaseURL),
		Model:    cfg.GetString(keyModel),
	}
}

// CreateAndValidateLLMService creates an LLM service and validates
// connectivity. Returns (nil, nil) when no provider is configured;
// callers degrade to indexing without summaries.
func CreateAndValidateLLMService(settings *domain.LLMSettings, promptStore driven.PromptStore) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	svc, err := CreateLLMService(settings, promptStore)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'quarry config' to fix", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'quarry config' to fix",
			domain.ErrLLMUnavailable, err)
	}

	return svc, nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service
// and pinging it. Intended for the config command to validate credentials
// when they are set.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	if settings == nil || !settings.IsConfigured() {
		return nil
	}

	svc, err := CreateLLMService(settings, nil)
	if err != nil {
		return err
	}
	if svc == nil {
		return nil
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if no provider is configured.
func CreateLLMService(settings *domain.LLMSettings, promptStore driven.PromptStore) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		svc := ollamallm.NewLLMService(ollamallm.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		svc.SetPromptStore(promptStore)
		return svc, nil

	case domain.AIProviderOpenAI:
		svc, err := openaillm.NewLLMService(openaillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		svc.SetPromptStore(promptStore)
		return svc, nil

	case domain.AIProviderAnthropic:
		svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
		if err != nil {
			return nil, err
		}
		svc.SetPromptStore(promptStore)
		return svc, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
