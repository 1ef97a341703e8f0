// Package prompts holds the prompt templates and generation settings
// shared by the LLM provider adapters.
package prompts

import (
	"strings"

	"github.com/quarry-dev/quarry/internal/core/ports/driven"
)

// Generation settings shared by every provider.
const (
	Temperature       = 0.3
	SummaryMaxTokens  = 300
	OverallMaxTokens  = 600
	KeywordsMaxTokens = 100
)

// fallbacks are used when no PromptStore is configured or a load fails.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var fallbacks = map[string]string{
	driven.PromptSummarizeFile: `Summarize the following source file in 2-3 sentences.
Focus on the file's purpose and its main exported constructs. Do not repeat the file path.

File: %s

%s

Summary:`,

	driven.PromptOverallSummary: `You are given one-line summaries of every file in a software project.
Write a concise overview (4-6 sentences) of what the project does, its main components,
and how they fit together.

File summaries:
%s

Project overview:`,

	driven.PromptExtractKeywords: `Extract 5-10 keywords that describe the following source file.
Return ONLY a comma-separated list of lowercase keywords, nothing else.

File: %s

%s

Keywords:`,
}

// Load returns the named template from the store, falling back to the
// embedded default when the store is nil or the load fails.
func Load(store driven.PromptStore, name string) string {
	if store != nil {
		if prompt, err := store.Load(name); err == nil && prompt != "" {
			return prompt
		}
	}
	return fallbacks[name]
}

// ParseKeywords splits a model's comma-separated keyword response into a
// clean list. Tolerates newlines and stray list punctuation.
func ParseKeywords(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	keywords := make([]string, 0, len(fields))
	seen := make(map[string]bool)
	for _, f := range fields {
		kw := strings.ToLower(strings.Trim(strings.TrimSpace(f), "-*• ."))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		keywords = append(keywords, kw)
	}
	return keywords
}
