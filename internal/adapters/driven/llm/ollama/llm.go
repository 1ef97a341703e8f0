// Package ollama provides an LLM service adapter using Ollama.
package ollama

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
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama LLM service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// LLMService provides summarisation and keyword extraction using a local
// Ollama instance. Local inference reports zero cost.
type LLMService struct {
	client      *http.Client
	baseURL     string
	model       string
	promptStore driven.PromptStore
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg Config) *LLMService {
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
		model:   cfg.Model,
	}
}

// SummarizeFile produces a short natural-language description of one file.
func (s *LLMService) SummarizeFile(ctx context.Context, content, path string) (driven.Summary, error) {
	template := prompts.Load(s.promptStore, driven.PromptSummarizeFile)
	text, err := s.generate(ctx, fmt.Sprintf(template, path, content), prompts.SummaryMaxTokens)
	if err != nil {
		return driven.Summary{}, fmt.Errorf("summarize %s: %w", path, err)
	}
	return driven.Summary{Text: strings.TrimSpace(text)}, nil
}

// GenerateOverallSummary combines per-file summaries into one project summary.
func (s *LLMService) GenerateOverallSummary(ctx context.Context, fileSummaries []string) (driven.Summary, error) {
	template := prompts.Load(s.promptStore, driven.PromptOverallSummary)
	joined := strings.Join(fileSummaries, "\n")
	text, err := s.generate(ctx, fmt.Sprintf(template, joined), prompts.OverallMaxTokens)
	if err != nil {
		return driven.Summary{}, fmt.Errorf("overall summary: %w", err)
	}
	return driven.Summary{Text: strings.TrimSpace(text)}, nil
}

// ExtractKeywords returns salient keywords for one file.
func (s *LLMService) ExtractKeywords(ctx context.Context, content, path string) ([]string, error) {
	template := prompts.Load(s.promptStore, driven.PromptExtractKeywords)
	text, err := s.generate(ctx, fmt.Sprintf(template, path, content), prompts.KeywordsMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("extract keywords %s: %w", path, err)
	}
	return prompts.ParseKeywords(text), nil
}

// generate sends one non-streaming completion request.
func (s *LLMService) generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: false,
		Options: &options{
			NumPredict:  maxTokens,
			Temperature: prompts.Temperature,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return genResp.Response, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ping validates the Ollama instance is reachable.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
