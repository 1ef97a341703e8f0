package code

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/parsers/parseutil"
)

// regexBackend extracts blocks from JavaScript/TypeScript-family files with
// pattern matching and brace counting. It is the fallback used where no AST
// backend exists.
type regexBackend struct{}

func newRegexBackend() *regexBackend {
	return &regexBackend{}
}

// Declaration patterns. Name is always the first capture group.
var (
	importRe    = regexp.MustCompile(`^\s*import\s+(?:.+\s+from\s+)?['"]([^'"]+)['"]`)
	requireRe   = regexp.MustCompile(`^\s*(?:const|let|var)\s+.+=\s*require\(\s*['"]([^'"]+)['"]\s*\)`)
	classRe     = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+(\w+)`)
	interfaceRe = regexp.MustCompile(`^\s*(?:export\s+)?interface\s+(\w+)`)
	functionRe  = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*(\w*)`)
	arrowRe     = regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+(\w+)(?:\s*:[^=]+)?\s*=\s*(?:async\s+)?(?:\([^)]*\)|\w+)\s*(?::[^=]+)?=>`)
	methodRe    = regexp.MustCompile(`^\s+(?:public\s+|private\s+|protected\s+|static\s+|async\s+)*(\w+)\s*\([^)]*\)\s*(?::\s*[\w<>\[\],.\s|]+)?\s*\{`)
	typeAliasRe = regexp.MustCompile(`^\s*(?:export\s+)?type\s+(\w+)\s*=`)
	exportVarRe = regexp.MustCompile(`^\s*export\s+(?:const|let|var)\s+(\w+)`)
	variableRe  = regexp.MustCompile(`^\s*(?:const|let|var)\s+(\w+)\s*=`)
	exportListRe = regexp.MustCompile(`^\s*export\s*\{`)
)

// methodKeywords are names that look like methods to methodRe but are
// control-flow statements.
var methodKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true,
}

func (r *regexBackend) extract(path, content string) ([]*domain.Block, error) {
	lines := parseutil.Lines(content)
	lang := parseutil.DetectLanguage(path)
	ext := strings.ToLower(filepath.Ext(path))
	jsxFile := ext == ".jsx" || ext == ".tsx"

	var out []*domain.Block
	classRanges := make([][2]int, 0, 4)

	i := 0
	for i < len(lines) {
		line := lines[i]

		if b, next, ok := r.importsBlock(lines, i); ok {
			out = append(out, b)
			i = next
			continue
		}

		if b, next, ok := r.commentBlock(lines, i); ok {
			out = append(out, b)
			i = next
			continue
		}

		if m := classRe.FindStringSubmatch(line); m != nil {
			end := parseutil.BraceEnd(lines, i)
			out = append(out, r.declBlock(domain.BlockClass, "Class", m[1], lines, i, end, lang))
			classRanges = append(classRanges, [2]int{i, end})
			i++
			continue
		}

		if m := interfaceRe.FindStringSubmatch(line); m != nil {
			end := parseutil.BraceEnd(lines, i)
			out = append(out, r.declBlock(domain.BlockInterface, "Interface", m[1], lines, i, end, lang))
			i++
			continue
		}

		if m := functionRe.FindStringSubmatch(line); m != nil {
			end := parseutil.BraceEnd(lines, i)
			blockType, label := domain.BlockFunction, "Function"
			if jsxFile && isComponentName(m[1]) {
				blockType, label = domain.BlockJSX, "Component"
			}
			out = append(out, r.declBlock(blockType, label, m[1], lines, i, end, lang))
			i = end + 1
			continue
		}

		if m := arrowRe.FindStringSubmatch(line); m != nil {
			end := parseutil.BraceEnd(lines, i)
			blockType, label := domain.BlockFunction, "Function"
			if jsxFile && isComponentName(m[1]) {
				blockType, label = domain.BlockJSX, "Component"
			}
			out = append(out, r.declBlock(blockType, label, m[1], lines, i, end, lang))
			i = end + 1
			continue
		}

		if m := methodRe.FindStringSubmatch(line); m != nil && insideClass(classRanges, i) && !methodKeywords[m[1]] {
			end := parseutil.BraceEnd(lines, i)
			out = append(out, r.declBlock(domain.BlockMethod, "Method", m[1], lines, i, end, lang))
			i = end + 1
			continue
		}

		if m := typeAliasRe.FindStringSubmatch(line); m != nil {
			end := i
			if strings.Contains(line, "{") {
				end = parseutil.BraceEnd(lines, i)
			}
			out = append(out, r.declBlock(domain.BlockTypeDecl, "Type", m[1], lines, i, end, lang))
			i = end + 1
			continue
		}

		if exportListRe.MatchString(line) {
			end := parseutil.BraceEnd(lines, i)
			out = append(out, r.declBlock(domain.BlockExport, "Export", "", lines, i, end, lang))
			i = end + 1
			continue
		}

		if m := exportVarRe.FindStringSubmatch(line); m != nil {
			out = append(out, r.declBlock(domain.BlockExport, "Export", m[1], lines, i, i, lang))
			i++
			continue
		}

		if m := variableRe.FindStringSubmatch(line); m != nil && parseutil.LeadingIndent(line) == 0 {
			out = append(out, r.declBlock(domain.BlockVariable, "Variable", m[1], lines, i, i, lang))
			i++
			continue
		}

		i++
	}

	return out, nil
}

// importsBlock consumes a run of consecutive import/require lines into one
// imports block carrying the dependency targets.
func (r *regexBackend) importsBlock(lines []string, start int) (*domain.Block, int, bool) {
	var deps []string
	end := start

	for i := start; i < len(lines); i++ {
		m := importRe.FindStringSubmatch(lines[i])
		if m == nil {
			m = requireRe.FindStringSubmatch(lines[i])
		}
		if m == nil {
			break
		}
		deps = append(deps, m[1])
		end = i
	}

	if len(deps) == 0 {
		return nil, start, false
	}

	return &domain.Block{
		Type:      domain.BlockImports,
		Content:   parseutil.SliceLines(lines, start, end),
		StartLine: start + 1,
		EndLine:   end + 1,
		Title:     "Imports",
		Metadata:  &domain.BlockMetadata{Dependencies: deps},
	}, end + 1, true
}

// commentBlock consumes a /* ... */ comment spanning one or more lines.
func (r *regexBackend) commentBlock(lines []string, start int) (*domain.Block, int, bool) {
	trimmed := strings.TrimSpace(lines[start])
	if !strings.HasPrefix(trimmed, "/*") {
		return nil, start, false
	}

	end := start
	for i := start; i < len(lines); i++ {
		if strings.Contains(lines[i], "*/") {
			end = i
			break
		}
		end = i
	}

	return &domain.Block{
		Type:      domain.BlockComment,
		Content:   parseutil.SliceLines(lines, start, end),
		StartLine: start + 1,
		EndLine:   end + 1,
		Title:     "Comment",
	}, end + 1, true
}

// declBlock builds a declaration block from a 0-based line range.
func (r *regexBackend) declBlock(t domain.BlockType, label, name string, lines []string, start, end int, lang string) *domain.Block {
	if name == "" {
		name = "anonymous"
	}
	return &domain.Block{
		Type:      t,
		Content:   parseutil.SliceLines(lines, start, end),
		StartLine: start + 1,
		EndLine:   end + 1,
		Title:     label + ": " + name,
		Metadata: &domain.BlockMetadata{
			Name:      name,
			Signature: strings.TrimSpace(lines[start]),
			Language:  lang,
		},
	}
}

// insideClass reports whether a 0-based line index falls inside any
// recorded class body.
func insideClass(ranges [][2]int, line int) bool {
	for _, r := range ranges {
		if line > r[0] && line <= r[1] {
			return true
		}
	}
	return false
}

// isComponentName reports whether a name looks like a JSX component.
func isComponentName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}
