// Package generic parses code in languages without a dedicated backend
// using per-language regex tables for functions, classes and comments,
// with the shared brace/indentation boundary rules.
package generic

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/quarry-dev/quarry/internal/blocks"
	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/core/ports/driven"
	"github.com/quarry-dev/quarry/internal/parsers/parseutil"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// langRules holds the patterns for one language.
// Name is always the first capture group.
type langRules struct {
	language    string
	functionRe  *regexp.Regexp
	classRe     *regexp.Regexp
	importRe    *regexp.Regexp
	commentLine string
	indentBased bool
}

// rulesTable maps extensions to language rules, roughly the ten most
// common languages outside the dedicated code parser.
var rulesTable = map[string]langRules{
	".py": {
		language:    "python",
		functionRe:  regexp.MustCompile(`^\s*(?:async\s+)?def\s+(\w+)`),
		classRe:     regexp.MustCompile(`^\s*class\s+(\w+)`),
		importRe:    regexp.MustCompile(`^\s*(?:import\s+([\w.]+)|from\s+([\w.]+)\s+import)`),
		commentLine: "#",
		indentBased: true,
	},
	".rb": {
		language:    "ruby",
		functionRe:  regexp.MustCompile(`^\s*def\s+(\w+[?!]?)`),
		classRe:     regexp.MustCompile(`^\s*(?:class|module)\s+(\w+)`),
		importRe:    regexp.MustCompile(`^\s*require(?:_relative)?\s+['"]([^'"]+)['"]`),
		commentLine: "#",
		indentBased: true,
	},
	".java": {
		language:    "java",
		functionRe:  regexp.MustCompile(`^\s*(?:public|private|protected|static|final|\s)+[\w<>\[\]]+\s+(\w+)\s*\([^)]*\)\s*(?:throws[\w,\s]+)?\{`),
		classRe:     regexp.MustCompile(`^\s*(?:public\s+|abstract\s+|final\s+)*(?:class|interface|enum)\s+(\w+)`),
		importRe:    regexp.MustCompile(`^\s*import\s+([\w.]+);`),
		commentLine: "//",
	},
	".c": {
		language:    "c",
		functionRe:  regexp.MustCompile(`^[\w*]+[\w\s*]*\s+\**(\w+)\s*\([^;]*\)\s*\{?\s*$`),
		classRe:     regexp.MustCompile(`^\s*(?:typedef\s+)?struct\s+(\w+)`),
		importRe:    regexp.MustCompile(`^\s*#include\s+[<"]([^>"]+)[>"]`),
		commentLine: "//",
	},
	".cpp": {
		language:    "cpp",
		functionRe:  regexp.MustCompile(`^[\w:<>,~&*\s]+\s+\**([\w:~]+)\s*\([^;]*\)\s*(?:const\s*)?\{?\s*$`),
		classRe:     regexp.MustCompile(`^\s*(?:class|struct)\s+(\w+)`),
		importRe:    regexp.MustCompile(`^\s*#include\s+[<"]([^>"]+)[>"]`),
		commentLine: "//",
	},
	".cs": {
		language:    "csharp",
		functionRe:  regexp.MustCompile(`^\s*(?:public|private|protected|internal|static|async|override|virtual|\s)+[\w<>\[\],]+\s+(\w+)\s*\([^)]*\)`),
		classRe:     regexp.MustCompile(`^\s*(?:public\s+|internal\s+|abstract\s+|sealed\s+|partial\s+)*(?:class|interface|struct|record)\s+(\w+)`),
		importRe:    regexp.MustCompile(`^\s*using\s+([\w.]+);`),
		commentLine: "//",
	},
	".php": {
		language:    "php",
		functionRe:  regexp.MustCompile(`^\s*(?:public\s+|private\s+|protected\s+|static\s+)*function\s+(\w+)`),
		classRe:     regexp.MustCompile(`^\s*(?:abstract\s+|final\s+)?(?:class|interface|trait)\s+(\w+)`),
		importRe:    regexp.MustCompile(`^\s*use\s+([\w\\]+);`),
		commentLine: "//",
	},
	".rs": {
		language:    "rust",
		functionRe:  regexp.MustCompile(`^\s*(?:pub\s+)?(?:async\s+)?fn\s+(\w+)`),
		classRe:     regexp.MustCompile(`^\s*(?:pub\s+)?(?:struct|enum|trait)\s+(\w+)`),
		importRe:    regexp.MustCompile(`^\s*use\s+([\w:]+)`),
		commentLine: "//",
	},
	".swift": {
		language:    "swift",
		functionRe:  regexp.MustCompile(`^\s*(?:public\s+|private\s+|internal\s+|static\s+)*func\s+(\w+)`),
		classRe:     regexp.MustCompile(`^\s*(?:public\s+|final\s+)*(?:class|struct|protocol|enum)\s+(\w+)`),
		importRe:    regexp.MustCompile(`^\s*import\s+(\w+)`),
		commentLine: "//",
	},
	".kt": {
		language:    "kotlin",
		functionRe:  regexp.MustCompile(`^\s*(?:override\s+|private\s+|public\s+|internal\s+|suspend\s+)*fun\s+(\w+)`),
		classRe:     regexp.MustCompile(`^\s*(?:data\s+|sealed\s+|abstract\s+|open\s+)*(?:class|interface|object)\s+(\w+)`),
		importRe:    regexp.MustCompile(`^\s*import\s+([\w.]+)`),
		commentLine: "//",
	},
	".sh": {
		language:    "shell",
		functionRe:  regexp.MustCompile(`^\s*(?:function\s+)?(\w+)\s*\(\)\s*\{`),
		commentLine: "#",
	},
}

// Parser handles the languages in rulesTable.
type Parser struct{}

// New creates a new generic code parser.
func New() *Parser {
	return &Parser{}
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return "generic"
}

// CanParse reports whether a rules table exists for the extension.
func (p *Parser) CanParse(path string, _ []byte) bool {
	_, ok := rulesTable[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Parse applies the language's regex table line by line, closing each
// construct with the shared brace or indentation rule.
func (p *Parser) Parse(path string, content []byte, stat domain.FileStat) (*domain.IndexedDocument, error) {
	rules := rulesTable[strings.ToLower(filepath.Ext(path))]
	text := string(content)
	lines := parseutil.Lines(text)

	b := parseutil.NewDocument(path, parseutil.TitleFromPath(path), rules.language, text, stat)

	var deps []string
	importStart, importEnd := -1, -1

	i := 0
	for i < len(lines) {
		line := lines[i]

		if rules.importRe != nil {
			if m := rules.importRe.FindStringSubmatch(line); m != nil {
				if importStart < 0 {
					importStart = i
				}
				importEnd = i
				deps = append(deps, firstGroup(m))
				i++
				continue
			}
		}

		if rules.classRe != nil {
			if m := rules.classRe.FindStringSubmatch(line); m != nil {
				end := parseutil.BlockEnd(lines, i, rules.indentBased)
				b.Add(declBlock(domain.BlockClass, "Class", m[1], lines, i, end, rules.language))
				i++
				continue
			}
		}

		if m := rules.functionRe.FindStringSubmatch(line); m != nil {
			end := parseutil.BlockEnd(lines, i, rules.indentBased)
			b.Add(declBlock(domain.BlockFunction, "Function", m[1], lines, i, end, rules.language))
			i = end + 1
			continue
		}

		if rules.commentLine != "" && strings.HasPrefix(strings.TrimSpace(line), rules.commentLine) {
			end := i
			for end+1 < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[end+1]), rules.commentLine) {
				end++
			}
			if end > i {
				b.Add(&domain.Block{
					Type:      domain.BlockComment,
					Content:   parseutil.SliceLines(lines, i, end),
					StartLine: i + 1,
					EndLine:   end + 1,
					Title:     "Comment",
				})
			}
			i = end + 1
			continue
		}

		i++
	}

	if importStart >= 0 {
		b.Add(&domain.Block{
			Type:      domain.BlockImports,
			Content:   parseutil.SliceLines(lines, importStart, importEnd),
			StartLine: importStart + 1,
			EndLine:   importEnd + 1,
			Title:     "Imports",
			Metadata: &domain.BlockMetadata{
				Dependencies: deps,
				Language:     rules.language,
			},
		})
	}

	doc := b.Build()
	doc.BlockHierarchy = blocks.Rebuild(doc.Blocks)
	return doc, nil
}

// declBlock builds a declaration block from a 0-based line range.
func declBlock(t domain.BlockType, label, name string, lines []string, start, end int, lang string) *domain.Block {
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

// firstGroup returns the first non-empty capture group of a match.
func firstGroup(m []string) string {
	for _, g := range m[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
