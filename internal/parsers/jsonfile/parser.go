// Package jsonfile parses JSON documents into one block per key/value
// pair, recursing into nested objects and arrays.
//
// Line numbers come from the decoder's token offsets rather than a text
// search for the key, so repeated key names at different nesting levels
// map to their own lines.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/parsers/parseutil"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser handles JSON files.
type Parser struct{}

// New creates a new JSON parser.
func New() *Parser {
	return &Parser{}
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return "json"
}

// CanParse accepts .json files, and extensionless files whose content
// starts with a JSON object or array.
func (p *Parser) CanParse(path string, content []byte) bool {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return true
	}
	if filepath.Ext(path) != "" {
		return false
	}
	trimmed := bytes.TrimSpace(content)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(trimmed)
}

// Parse walks the token stream, emitting a block per key with nested keys
// attached as children of their parent key's block.
func (p *Parser) Parse(path string, content []byte, stat domain.FileStat) (*domain.IndexedDocument, error) {
	if !json.Valid(content) {
		return nil, fmt.Errorf("%w: invalid JSON", domain.ErrUnparsable)
	}

	text := string(content)
	b := parseutil.NewDocument(path, parseutil.TitleFromPath(path), "json", text, stat)

	w := &walker{
		dec:         json.NewDecoder(bytes.NewReader(content)),
		lineOffsets: lineOffsets(content),
		lines:       parseutil.Lines(text),
		builder:     b,
	}
	if err := w.walkValue(b.Root().ID, ""); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnparsable, err)
	}

	return b.Build(), nil
}

// walker tracks decoder offsets while descending the value tree.
type walker struct {
	dec         *json.Decoder
	lineOffsets []int
	lines       []string
	builder     *parseutil.DocumentBuilder
}

// walkValue consumes one JSON value. When key is non-empty, a block is
// emitted for the key/value pair under parentID and nested pairs attach to
// it.
func (w *walker) walkValue(parentID, key string) error {
	startLine := w.lineAt(w.dec.InputOffset())

	tok, err := w.dec.Token()
	if err != nil {
		return err
	}

	switch t := tok.(type) {
	case json.Delim:
		blockParent := parentID
		if key != "" {
			// Container values get their block up front so nested pairs can
			// attach; the end line is patched after the container closes.
			blockParent = w.emit(parentID, key, startLine, startLine)
		}
		switch t {
		case '{':
			if err := w.walkObject(blockParent); err != nil {
				return err
			}
		case '[':
			if err := w.walkArray(blockParent); err != nil {
				return err
			}
		}
		if key != "" {
			w.patchEnd(blockParent, w.lineAt(w.dec.InputOffset()))
		}
	default:
		if key != "" {
			endLine := w.lineAt(w.dec.InputOffset())
			w.emit(parentID, key, startLine, endLine)
		}
	}

	return nil
}

// walkObject consumes key/value pairs until the closing brace.
func (w *walker) walkObject(parentID string) error {
	for w.dec.More() {
		keyTok, err := w.dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		if err := w.walkValue(parentID, key); err != nil {
			return err
		}
	}
	_, err := w.dec.Token() // closing '}'
	return err
}

// walkArray consumes elements until the closing bracket.
func (w *walker) walkArray(parentID string) error {
	for w.dec.More() {
		if err := w.walkValue(parentID, ""); err != nil {
			return err
		}
	}
	_, err := w.dec.Token() // closing ']'
	return err
}

// emit adds a block for a key spanning the given lines and returns its id.
func (w *walker) emit(parentID, key string, startLine, endLine int) string {
	if endLine < startLine {
		endLine = startLine
	}
	block := &domain.Block{
		Type:      domain.BlockCodeblock,
		Content:   parseutil.SliceLines(w.lines, startLine-1, endLine-1),
		StartLine: startLine,
		EndLine:   endLine,
		Title:     "Key: " + key,
		Metadata:  &domain.BlockMetadata{Name: key, Language: "json"},
	}
	return w.builder.AddChild(parentID, block)
}

// patchEnd extends a container block to its closing line, refreshing the
// captured content.
func (w *walker) patchEnd(id string, endLine int) {
	doc := w.builder.Build()
	b := doc.BlockByID(id)
	if b == nil || endLine <= b.EndLine {
		return
	}
	b.EndLine = endLine
	b.Content = parseutil.SliceLines(w.lines, b.StartLine-1, endLine-1)
}

// lineAt converts a byte offset to a 1-based line number. The offset is
// the decoder position just before or after a token, so the line of the
// next non-whitespace byte is used.
func (w *walker) lineAt(offset int64) int {
	i := sort.Search(len(w.lineOffsets), func(i int) bool {
		return int64(w.lineOffsets[i]) > offset
	})
	if i == 0 {
		return 1
	}
	return i
}

// lineOffsets records the byte offset of each line start.
func lineOffsets(content []byte) []int {
	offsets := []int{0}
	for i, c := range content {
		if c == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}
