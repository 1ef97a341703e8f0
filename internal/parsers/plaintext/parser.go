// Package plaintext provides the fallback parser: the whole file becomes a
// single document block.
package plaintext

import (
	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/parsers/parseutil"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser wraps any file as a single document block.
type Parser struct{}

// New creates a new plaintext parser.
func New() *Parser {
	return &Parser{}
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return "plaintext"
}

// CanParse accepts every file. The registry only consults this parser as
// the fallback, so the answer is always yes.
func (p *Parser) CanParse(string, []byte) bool {
	return true
}

// Parse produces a document with no child blocks.
func (p *Parser) Parse(path string, content []byte, stat domain.FileStat) (*domain.IndexedDocument, error) {
	lang := parseutil.DetectLanguage(path)
	if lang == "" {
		lang = "text"
	}
	b := parseutil.NewDocument(path, parseutil.TitleFromPath(path), lang, string(content), stat)
	return b.Build(), nil
}
