package driven

// Prompt names understood by PromptStore implementations.
const (
	// PromptSummarizeFile produces a per-file summary.
	// Placeholders: file path, file content.
	PromptSummarizeFile = "summarize_file"

	// PromptOverallSummary produces the whole-project summary.
	// Placeholder: the joined per-file summaries.
	PromptOverallSummary = "overall_summary"

	// PromptExtractKeywords produces a keyword list for a file.
	// Placeholders: file path, file content.
	PromptExtractKeywords = "extract_keywords"
)

// PromptStore loads LLM prompt templates, letting users customise the
// wording without rebuilding the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any caches, forcing fresh loads from disk.
	Reload()
}
