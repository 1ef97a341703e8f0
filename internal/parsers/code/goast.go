package code

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/quarry-dev/quarry/internal/core/domain"
	"github.com/quarry-dev/quarry/internal/parsers/parseutil"
)

// goBackend extracts blocks from Go files via the standard library AST.
type goBackend struct{}

func newGoBackend() *goBackend {
	return &goBackend{}
}

func (g *goBackend) extract(path, content string) ([]*domain.Block, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, content, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnparsable, err)
	}

	lines := parseutil.Lines(content)
	var out []*domain.Block

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			out = append(out, g.funcBlock(fset, lines, d))
		case *ast.GenDecl:
			if b := g.genBlock(fset, lines, d); b != nil {
				out = append(out, b)
			}
		}
	}

	for _, group := range file.Comments {
		start := fset.Position(group.Pos()).Line
		end := fset.Position(group.End()).Line
		if end-start < 1 {
			continue // single-line comments are noise at block granularity
		}
		out = append(out, &domain.Block{
			Type:      domain.BlockComment,
			Content:   parseutil.SliceLines(lines, start-1, end-1),
			StartLine: start,
			EndLine:   end,
			Title:     "Comment",
		})
	}

	return out, nil
}

// funcBlock converts a function or method declaration.
func (g *goBackend) funcBlock(fset *token.FileSet, lines []string, d *ast.FuncDecl) *domain.Block {
	start := fset.Position(d.Pos()).Line
	end := fset.Position(d.End()).Line

	name := "anonymous"
	if d.Name != nil {
		name = d.Name.Name
	}

	blockType := domain.BlockFunction
	title := "Function: " + name
	if d.Recv != nil && len(d.Recv.List) > 0 {
		blockType = domain.BlockMethod
		title = "Method: " + name
	}

	signature := strings.TrimSpace(parseutil.SliceLines(lines, start-1, start-1))

	return &domain.Block{
		Type:      blockType,
		Content:   parseutil.SliceLines(lines, start-1, end-1),
		StartLine: start,
		EndLine:   end,
		Title:     title,
		Metadata: &domain.BlockMetadata{
			Name:      name,
			Signature: signature,
			Language:  "go",
		},
	}
}

// genBlock converts an import, type, var or const declaration.
func (g *goBackend) genBlock(fset *token.FileSet, lines []string, d *ast.GenDecl) *domain.Block {
	start := fset.Position(d.Pos()).Line
	end := fset.Position(d.End()).Line
	content := parseutil.SliceLines(lines, start-1, end-1)

	switch d.Tok {
	case token.IMPORT:
		return &domain.Block{
			Type:      domain.BlockImports,
			Content:   content,
			StartLine: start,
			EndLine:   end,
			Title:     "Imports",
			Metadata: &domain.BlockMetadata{
				Dependencies: importTargets(d),
				Language:     "go",
			},
		}

	case token.TYPE:
		name := "anonymous"
		blockType := domain.BlockTypeDecl
		for _, spec := range d.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			name = ts.Name.Name
			switch ts.Type.(type) {
			case *ast.StructType:
				blockType = domain.BlockClass
			case *ast.InterfaceType:
				blockType = domain.BlockInterface
			}
			break
		}
		title := map[domain.BlockType]string{
			domain.BlockClass:     "Class: ",
			domain.BlockInterface: "Interface: ",
			domain.BlockTypeDecl:  "Type: ",
		}[blockType] + name
		return &domain.Block{
			Type:      blockType,
			Content:   content,
			StartLine: start,
			EndLine:   end,
			Title:     title,
			Metadata: &domain.BlockMetadata{
				Name:      name,
				Signature: strings.TrimSpace(parseutil.SliceLines(lines, start-1, start-1)),
				Language:  "go",
			},
		}

	case token.VAR, token.CONST:
		name := "anonymous"
		for _, spec := range d.Specs {
			if vs, ok := spec.(*ast.ValueSpec); ok && len(vs.Names) > 0 {
				name = vs.Names[0].Name
				break
			}
		}
		return &domain.Block{
			Type:      domain.BlockVariable,
			Content:   content,
			StartLine: start,
			EndLine:   end,
			Title:     "Variable: " + name,
			Metadata: &domain.BlockMetadata{
				Name:     name,
				Language: "go",
			},
		}
	}

	return nil
}

// importTargets collects the import paths of an import declaration.
func importTargets(d *ast.GenDecl) []string {
	var targets []string
	for _, spec := range d.Specs {
		if is, ok := spec.(*ast.ImportSpec); ok && is.Path != nil {
			targets = append(targets, strings.Trim(is.Path.Value, `"`))
		}
	}
	return targets
}
