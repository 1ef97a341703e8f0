package domain

import "time"

// FileRecord is the unit of the legacy flat-file index: whole-file content
// plus the precomputed signals the flat relevance scorer reads.
type FileRecord struct {
	// Path is the file path relative to the project root.
	Path string `json:"path"`

	// Title is the human-readable title derived from the filename.
	Title string `json:"title"`

	// Language is the detected source language.
	Language string `json:"language,omitempty"`

	// Content is the full file content.
	Content string `json:"content"`

	// Summary is an optional LLM-generated summary.
	Summary string `json:"summary,omitempty"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// LineCount is the number of lines in the file.
	LineCount int `json:"lineCount"`

	// CommentRatio is the fraction of lines that are comments, 0..1.
	CommentRatio float64 `json:"commentRatio"`

	// Complexity is a coarse structural complexity score.
	Complexity float64 `json:"complexity"`

	// LastModified is the file modification timestamp at index time.
	LastModified time.Time `json:"lastModified"`
}

// FlatResult is one scored hit from the legacy flat-file search.
type FlatResult struct {
	// Record is the matched file.
	Record FileRecord `json:"record"`

	// Score is the heuristic relevance score.
	Score float64 `json:"score"`

	// Similar marks records added by the similar-document supplement
	// rather than by a genuine query match. They always sort last.
	Similar bool `json:"similar,omitempty"`
}
