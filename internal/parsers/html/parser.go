// Package html parses HTML files by regex-matching semantic regions:
// document sections, forms, tables, identified divs, scripts and styles.
// Nesting is flattened: every block attaches directly under the document
// root rather than reconstructing the DOM tree.
package html

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/parsers/parseutil"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// tagPattern pairs a compiled regex with the block label it produces.
type tagPattern struct {
	re    *regexp.Regexp
	label string
}

// tagPatterns match the semantic regions of interest. All are case
// insensitive and span newlines.
var tagPatterns = []tagPattern{
	{regexp.MustCompile(`(?is)<head[\s>].*?</head>`), "Head"},
	{regexp.MustCompile(`(?is)<header[\s>].*?</header>`), "Header"},
	{regexp.MustCompile(`(?is)<nav[\s>].*?</nav>`), "Navigation"},
	{regexp.MustCompile(`(?is)<main[\s>].*?</main>`), "Main"},
	{regexp.MustCompile(`(?is)<footer[\s>].*?</footer>`), "Footer"},
	{regexp.MustCompile(`(?is)<form[\s>].*?</form>`), "Form"},
	{regexp.MustCompile(`(?is)<table[\s>].*?</table>`), "Table"},
	{regexp.MustCompile(`(?is)<script[\s>].*?</script>`), "Script"},
	{regexp.MustCompile(`(?is)<style[\s>].*?</style>`), "Style"},
}

// divPattern matches divs carrying an id or class attribute.
var divPattern = regexp.MustCompile(`(?is)<div[^>]*\b(?:id|class)\s*=\s*["']([^"']+)["'][^>]*>`)

// bodyPattern is matched without the closing tag requirement since many
// pages omit it; the block runs to the end of the file in that case.
var bodyPattern = regexp.MustCompile(`(?is)<body[\s>].*?(?:</body>|\z)`)

// Parser handles HTML files.
type Parser struct{}

// New creates a new HTML parser.
func New() *Parser {
	return &Parser{}
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return "html"
}

// CanParse accepts .html and .htm files.
func (p *Parser) CanParse(path string, _ []byte) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

// Parse emits one block per matched region, flat under the document root.
func (p *Parser) Parse(path string, content []byte, stat domain.FileStat) (*domain.IndexedDocument, error) {
	text := string(content)
	lines := parseutil.Lines(text)
	offsets := lineOffsets(text)

	b := parseutil.NewDocument(path, htmlTitle(text, path), "html", text, stat)

	type region struct {
		start, end int // byte offsets
		blockType  domain.BlockType
		title      string
	}
	var regions []region

	for _, tp := range tagPatterns {
		for _, loc := range tp.re.FindAllStringIndex(text, -1) {
			blockType := domain.BlockCodeblock
			if tp.label == "Table" {
				blockType = domain.BlockTable
			}
			regions = append(regions, region{loc[0], loc[1], blockType, tp.label})
		}
	}

	if loc := bodyPattern.FindStringIndex(text); loc != nil {
		regions = append(regions, region{loc[0], loc[1], domain.BlockCodeblock, "Body"})
	}

	for _, m := range divPattern.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		regions = append(regions, region{m[0], m[1], domain.BlockCodeblock, "Div: " + name})
	}

	sort.Slice(regions, func(i, j int) bool { return regions[i].start < regions[j].start })

	for _, r := range regions {
		startLine := lineAt(offsets, r.start)
		endLine := lineAt(offsets, r.end-1)
		b.Add(&domain.Block{
			Type:      r.blockType,
			Content:   parseutil.SliceLines(lines, startLine-1, endLine-1),
			StartLine: startLine,
			EndLine:   endLine,
			Title:     r.title,
			Metadata:  &domain.BlockMetadata{Language: "html"},
		})
	}

	return b.Build(), nil
}

// titlePattern extracts the page title.
var titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// htmlTitle takes the <title> text, falling back to the filename.
func htmlTitle(text, path string) string {
	if m := titlePattern.FindStringSubmatch(text); m != nil {
		if t := strings.TrimSpace(m[1]); t != "" {
			return t
		}
	}
	return parseutil.TitleFromPath(path)
}

// lineOffsets records the byte offset of each line start.
func lineOffsets(text string) []int {
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// lineAt converts a byte offset to a 1-based line number.
func lineAt(offsets []int, offset int) int {
	i := sort.Search(len(offsets), func(i int) bool { return offsets[i] > offset })
	if i == 0 {
		return 1
	}
	return i
}
