// Package code parses source files into declaration-level blocks:
// imports, classes, interfaces, functions, methods, exports, variables,
// JSX components and block comments.
//
// Block boundaries come from one of two backends selected per extension at
// construction time: an AST backend for Go files (go/parser) and a
// regex/brace-counting backend for the JavaScript/TypeScript family. Both
// share the boundary-detection rules in parseutil.
package code

import (
	"path/filepath"
	"strings"

	"github.com/quarry-dev/quarry/internal/blocks"
	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/parsers/parseutil"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// backend locates declaration blocks in file content.
// Returned blocks carry type, title, line range, content and metadata;
// ids and hierarchy are assigned by the parser.
type backend interface {
	extract(path, content string) ([]*domain.Block, error)
}

// Parser handles code files in the Go and JavaScript/TypeScript families.
type Parser struct {
	backends map[string]backend
}

// New creates a code parser with the default backend table.
func New() *Parser {
	ast := newGoBackend()
	rx := newRegexBackend()
	return &Parser{
		backends: map[string]backend{
			".go":  ast,
			".js":  rx,
			".jsx": rx,
			".mjs": rx,
			".cjs": rx,
			".ts":  rx,
			".tsx": rx,
		},
	}
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return "code"
}

// CanParse reports whether a backend is registered for the extension.
func (p *Parser) CanParse(path string, _ []byte) bool {
	_, ok := p.backends[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Parse extracts declaration blocks and rebuilds the nesting from line
// ranges, so methods end up under their class and comments under their
// enclosing declaration.
func (p *Parser) Parse(path string, content []byte, stat domain.FileStat) (*domain.IndexedDocument, error) {
	be := p.backends[strings.ToLower(filepath.Ext(path))]

	text := string(content)
	b := parseutil.NewDocument(path, parseutil.TitleFromPath(path), parseutil.DetectLanguage(path), text, stat)

	found, err := be.extract(path, text)
	if err != nil {
		return nil, err
	}
	for _, blk := range found {
		b.Add(blk)
	}

	doc := b.Build()
	doc.BlockHierarchy = blocks.Rebuild(doc.Blocks)
	return doc, nil
}
