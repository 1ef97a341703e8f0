// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService produces natural-language summaries and keywords for indexed
// content. This is an optional service - when nil, indexing runs without
// summaries and search degrades gracefully.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT models)
//   - Ollama (local models)
//
// Implementations must tolerate arbitrarily large content; truncation is
// the caller's responsibility.
type LLMService interface {
	// SummarizeFile produces a short natural-language description of one file.
	SummarizeFile(ctx context.Context, content, path string) (Summary, error)

	// GenerateOverallSummary combines per-file summaries into one project summary.
	GenerateOverallSummary(ctx context.Context, fileSummaries []string) (Summary, error)

	// ExtractKeywords returns salient keywords for one file.
	ExtractKeywords(ctx context.Context, content, path string) ([]string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test
	// request. Used before an indexing run commits to generating summaries.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Summary is the result of one summarisation call.
type Summary struct {
	// Text is the generated summary.
	Text string

	// Cost is the provider-reported cost in USD, when known.
	Cost float64
}
