package driving

import "context"

// IndexOptions configures an indexing run.
type IndexOptions struct {
	// WithSummaries enables per-file and overall LLM summaries.
	WithSummaries bool

	// ExtractKeywords enables LLM keyword extraction and the inverted index.
	ExtractKeywords bool

	// Include is the list of include glob patterns.
	// Empty means the default source/doc extension set.
	Include []string

	// Exclude is the list of exclude glob patterns, added to the defaults.
	Exclude []string

	// MaxParallelism is the concurrent file batch size. Defaults to 5.
	MaxParallelism int

	// Verbose enables progress reporting.
	Verbose bool
}

// IndexStats summarises a completed indexing run.
type IndexStats struct {
	// FilesIndexed is the number of files successfully parsed and stored.
	FilesIndexed int

	// FilesSkipped is the number of files excluded after errors.
	FilesSkipped int

	// Blocks is the total number of blocks produced.
	Blocks int

	// Summaries is the number of file summaries generated.
	Summaries int

	// Cost is the accumulated LLM cost in USD.
	Cost float64

	// Errors holds per-file soft errors recorded during the run.
	Errors []FileError
}

// FileError records a per-file failure that did not abort the run.
type FileError struct {
	// Path is the file that failed.
	Path string

	// Err is the failure description.
	Err string
}

// IndexService builds and persists the block index for a project.
type IndexService interface {
	// IndexProject indexes the project's files and persists the result.
	// One bad file never aborts the run; per-file errors are returned in
	// the stats.
	IndexProject(ctx context.Context, projectID string, opts IndexOptions) (*IndexStats, error)
}
