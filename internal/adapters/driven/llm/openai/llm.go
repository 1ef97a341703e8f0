// Package openai provides an LLM service adapter using the OpenAI API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quarry-dev/quarry/internal/adapters/driven/llm/prompts"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Per-million-token pricing used for cost reporting. Prices track the
// default model; other models report approximate costs.
const (
	inputPricePerMTok  = 0.15
	outputPricePerMTok = 0.60
)

// Config holds configuration for the OpenAI LLM service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com).
	BaseURL string

	// Model is the LLM model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides summarisation and keyword extraction using the
// OpenAI API.
type LLMService struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	promptStore driven.PromptStore
}

// chatRequest is the OpenAI /v1/chat/completions request format.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// chatMessage is the OpenAI message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the OpenAI /v1/chat/completions response format.
type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMService creates a new OpenAI LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// SummarizeFile produces a short natural-language description of one file.
func (s *LLMService) SummarizeFile(ctx context.Context, content, path string) (driven.Summary, error) {
	template := prompts.Load(s.promptStore, driven.PromptSummarizeFile)
	text, cost, err := s.complete(ctx, fmt.Sprintf(template, path, content), prompts.SummaryMaxTokens)
	if err != nil {
		return driven.Summary{}, fmt.Errorf("summarize %s: %w", path, err)
	}
	return driven.Summary{Text: strings.TrimSpace(text), Cost: cost}, nil
}

// GenerateOverallSummary combines per-file summaries into one project summary.
func (s *LLMService) GenerateOverallSummary(ctx context.Context, fileSummaries []string) (driven.Summary, error) {
	template := prompts.Load(s.promptStore, driven.PromptOverallSummary)
	joined := strings.Join(fileSummaries, "\n")
	text, cost, err := s.complete(ctx, fmt.Sprintf(template, joined), prompts.OverallMaxTokens)
	if err != nil {
		return driven.Summary{}, fmt.Errorf("overall summary: %w", err)
	}
	return driven.Summary{Text: strings.TrimSpace(text), Cost: cost}, nil
}

// ExtractKeywords returns salient keywords for one file.
func (s *LLMService) ExtractKeywords(ctx context.Context, content, path string) ([]string, error) {
	template := prompts.Load(s.promptStore, driven.PromptExtractKeywords)
	text, _, err := s.complete(ctx, fmt.Sprintf(template, path, content), prompts.KeywordsMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("extract keywords %s: %w", path, err)
	}
	return prompts.ParseKeywords(text), nil
}

// complete sends one single-turn chat completion request and returns the
// text and the usage-derived cost.
func (s *LLMService) complete(ctx context.Context, prompt string, maxTokens int) (string, float64, error) {
	reqBody := chatRequest{
		Model:       s.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: prompts.Temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/v1/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", 0, fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		return "", 0, fmt.Errorf("openai error: %s", chatResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(body))
	}

	if len(chatResp.Choices) == 0 {
		return "", 0, fmt.Errorf("openai: no response choices returned")
	}

	cost := float64(chatResp.Usage.PromptTokens)/1e6*inputPricePerMTok +
		float64(chatResp.Usage.CompletionTokens)/1e6*outputPricePerMTok

	return chatResp.Choices[0].Message.Content, cost, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ping validates the service is reachable by checking the /v1/models
// endpoint. This is a lightweight check that validates the API key
// without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("openai: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("openai: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("openai: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
