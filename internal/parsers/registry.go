// Package parsers wires the language parsers into a priority-ordered
// registry. The first parser whose CanParse accepts a file wins; a
// plaintext fallback wraps anything nobody claims.
package parsers

import (
	"fmt"

	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/logger"
	"github.com/quarry-dev/quarry/internal/parsers/code"
	"github.com/quarry-dev/quarry/internal/parsers/generic"
	"github.com/quarry-dev/quarry/internal/parsers/html"
	"github.com/quarry-dev/quarry/internal/parsers/jsonfile"
	"github.com/quarry-dev/quarry/internal/parsers/markdown"
	"github.com/quarry-dev/quarry/internal/parsers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ParserRegistry = (*Registry)(nil)

// Registry dispatches files to the first matching parser.
type Registry struct {
	parsers  []driven.Parser
	fallback driven.Parser
}

// NewRegistry creates a registry with the built-in parser order:
// code, JSON, HTML, markdown, generic, with plaintext as the fallback.
func NewRegistry() *Registry {
	r := &Registry{fallback: plaintext.New()}
	r.Register(code.New())
	r.Register(jsonfile.New())
	r.Register(html.New())
	r.Register(markdown.New())
	r.Register(generic.New())
	return r
}

// Register appends a parser to the ordered list.
func (r *Registry) Register(p driven.Parser) {
	r.parsers = append(r.parsers, p)
}

// Parse dispatches to the first parser whose CanParse accepts the file.
func (r *Registry) Parse(path string, content []byte, stat domain.FileStat) (*domain.IndexedDocument, error) {
	for _, p := range r.parsers {
		if !p.CanParse(path, content) {
			continue
		}
		logger.Debug("Parsing %s with %s parser", path, p.Name())
		doc, err := p.Parse(path, content, stat)
		if err != nil {
			return nil, fmt.Errorf("%s parser: %w", p.Name(), err)
		}
		return doc, nil
	}

	logger.Debug("Parsing %s with fallback %s parser", path, r.fallback.Name())
	return r.fallback.Parse(path, content, stat)
}
