// Package markdown parses markdown files into heading, codeblock, table,
// list, listItem and paragraph blocks. Heading levels drive the hierarchy:
// each block attaches under the innermost open heading.
package markdown

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/parsers/parseutil"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

var (
	headingRe  = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	fenceRe    = regexp.MustCompile("^```\\s*(\\w*)\\s*$")
	listItemRe = regexp.MustCompile(`^\s*(?:[-*+]|\d+\.)\s+`)
	tableRe    = regexp.MustCompile(`^\s*\|.*\|\s*$`)
)

// Parser handles markdown files.
type Parser struct{}

// New creates a new markdown parser.
func New() *Parser {
	return &Parser{}
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return "markdown"
}

// CanParse accepts .md and .markdown files.
func (p *Parser) CanParse(path string, _ []byte) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

// headingFrame is one open heading on the nesting stack.
type headingFrame struct {
	level int
	id    string
	block *domain.Block
}

// Parse scans the file line by line, opening heading scopes and emitting
// content blocks under the innermost one.
func (p *Parser) Parse(path string, content []byte, stat domain.FileStat) (*domain.IndexedDocument, error) {
	text := string(content)
	lines := parseutil.Lines(text)

	title := parseutil.TitleFromPath(path)
	if t := firstHeading(lines); t != "" {
		title = t
	}

	b := parseutil.NewDocument(path, title, "markdown", text, stat)
	var stack []headingFrame

	parentID := func() string {
		if len(stack) == 0 {
			return b.Root().ID
		}
		return stack[len(stack)-1].id
	}

	// closeTo pops headings of level >= level, sealing their end lines.
	closeTo := func(level, endLine int) {
		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			top := stack[len(stack)-1]
			if endLine > top.block.EndLine {
				top.block.EndLine = endLine
				top.block.Content = parseutil.SliceLines(lines, top.block.StartLine-1, endLine-1)
			}
			stack = stack[:len(stack)-1]
		}
	}

	i := 0
	for i < len(lines) {
		line := lines[i]

		if m := headingRe.FindStringSubmatch(line); m != nil {
			level := len(m[1])
			closeTo(level, i)
			block := &domain.Block{
				Type:      domain.BlockHeading,
				Content:   line,
				StartLine: i + 1,
				EndLine:   i + 1,
				Title:     strings.TrimSpace(m[2]),
				Metadata:  &domain.BlockMetadata{Name: strings.TrimSpace(m[2])},
			}
			id := b.AddChild(parentID(), block)
			stack = append(stack, headingFrame{level: level, id: id, block: block})
			i++
			continue
		}

		if m := fenceRe.FindStringSubmatch(line); m != nil {
			end := i
			for j := i + 1; j < len(lines); j++ {
				if strings.HasPrefix(strings.TrimSpace(lines[j]), "```") {
					end = j
					break
				}
				end = j
			}
			block := &domain.Block{
				Type:      domain.BlockCodeblock,
				Content:   parseutil.SliceLines(lines, i, end),
				StartLine: i + 1,
				EndLine:   end + 1,
				Title:     "Code block",
			}
			if m[1] != "" {
				block.Metadata = &domain.BlockMetadata{Language: m[1]}
			}
			b.AddChild(parentID(), block)
			i = end + 1
			continue
		}

		if tableRe.MatchString(line) {
			end := i
			for end+1 < len(lines) && tableRe.MatchString(lines[end+1]) {
				end++
			}
			b.AddChild(parentID(), &domain.Block{
				Type:      domain.BlockTable,
				Content:   parseutil.SliceLines(lines, i, end),
				StartLine: i + 1,
				EndLine:   end + 1,
				Title:     "Table",
			})
			i = end + 1
			continue
		}

		if listItemRe.MatchString(line) {
			i = p.parseList(b, parentID(), lines, i)
			continue
		}

		if strings.TrimSpace(line) != "" {
			end := i
			for end+1 < len(lines) && strings.TrimSpace(lines[end+1]) != "" &&
				!headingRe.MatchString(lines[end+1]) && !listItemRe.MatchString(lines[end+1]) &&
				!fenceRe.MatchString(lines[end+1]) && !tableRe.MatchString(lines[end+1]) {
				end++
			}
			blockContent := parseutil.SliceLines(lines, i, end)
			b.AddChild(parentID(), &domain.Block{
				Type:      domain.BlockParagraph,
				Content:   blockContent,
				StartLine: i + 1,
				EndLine:   end + 1,
				Title:     paragraphTitle(blockContent),
			})
			i = end + 1
			continue
		}

		i++
	}

	closeTo(1, len(lines))
	return b.Build(), nil
}

// parseList consumes a run of list lines, emitting a list block with one
// listItem child per item. Indented continuation lines belong to the
// preceding item. Returns the next 0-based line index.
func (p *Parser) parseList(b *parseutil.DocumentBuilder, parentID string, lines []string, start int) int {
	end := start
	for end+1 < len(lines) {
		next := lines[end+1]
		if listItemRe.MatchString(next) || (strings.TrimSpace(next) != "" && parseutil.LeadingIndent(next) > 0) {
			end++
			continue
		}
		break
	}

	listID := b.AddChild(parentID, &domain.Block{
		Type:      domain.BlockList,
		Content:   parseutil.SliceLines(lines, start, end),
		StartLine: start + 1,
		EndLine:   end + 1,
		Title:     "List",
	})

	itemStart := start
	for i := start + 1; i <= end+1; i++ {
		if i <= end && !listItemRe.MatchString(lines[i]) {
			continue
		}
		b.AddChild(listID, &domain.Block{
			Type:      domain.BlockListItem,
			Content:   parseutil.SliceLines(lines, itemStart, i-1),
			StartLine: itemStart + 1,
			EndLine:   i,
			Title:     "List item",
		})
		itemStart = i
	}

	return end + 1
}

// firstHeading returns the text of the first H1, or "".
func firstHeading(lines []string) string {
	for _, line := range lines {
		if m := headingRe.FindStringSubmatch(line); m != nil && len(m[1]) == 1 {
			return strings.TrimSpace(m[2])
		}
	}
	return ""
}

// paragraphTitle derives a short label from the paragraph's first words.
func paragraphTitle(content string) string {
	words := strings.Fields(content)
	if len(words) > 6 {
		words = words[:6]
	}
	return strings.Join(words, " ")
}
