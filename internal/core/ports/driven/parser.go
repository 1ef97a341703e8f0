package driven

import (
	"github.com/quarry-dev/quarry/internal/core/domain"
)

// Parser turns raw file content into an IndexedDocument.
// Each parser handles specific file types; the registry dispatches a file
// to the first parser whose CanParse predicate accepts it.
type Parser interface {
	// Name returns the parser name for logging.
	Name() string

	// CanParse reports whether this parser handles the file.
	// Most parsers decide on extension alone; content is provided for the
	// ones that need to peek (e.g. JSON detection for extensionless files).
	CanParse(path string, content []byte) bool

	// Parse converts file content into an indexed document.
	Parse(path string, content []byte, stat domain.FileStat) (*domain.IndexedDocument, error)
}

// ParserRegistry selects the appropriate parser for a file.
// It holds an ordered list and performs a single linear scan; when no
// parser matches, a plaintext fallback wraps the whole file as a single
// document block.
type ParserRegistry interface {
	// Parse dispatches to the first matching parser.
	Parse(path string, content []byte, stat domain.FileStat) (*domain.IndexedDocument, error)

	// Register appends a parser to the ordered list.
	Register(p Parser)
}
