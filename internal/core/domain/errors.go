package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors. The CLI layer is solely
// responsible for turning them into user-facing guidance.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoProject indicates no project is currently selected.
	ErrNoProject = errors.New("no project selected")

	// ErrProjectNotFound indicates the named project is not registered.
	ErrProjectNotFound = errors.New("project not found")

	// ErrNotIndexed indicates the project has no block index yet.
	// Distinct from zero search results: the fix is reindexing, not
	// rephrasing the query.
	ErrNotIndexed = errors.New("project not indexed")

	// ErrLLMUnavailable indicates no LLM provider is configured or reachable.
	// Summarisation and keyword extraction are disabled without one.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrUnsupportedType indicates an unknown provider or parser type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnparsable indicates a parser could not handle the file content.
	// The indexer downgrades such files to a single plaintext document block.
	ErrUnparsable = errors.New("unparsable content")
)
