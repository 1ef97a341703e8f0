package generic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/core/domain"
)

const pySample = `import os
from pathlib import Path

# Module level helpers
# for path juggling.

class Walker:
    def walk(self, root):
        return os.listdir(root)

def main():
    w = Walker()
    print(w.walk("."))
`

func parse(t *testing.T, name, content string) *domain.IndexedDocument {
	t.Helper()
	p := New()
	require.True(t, p.CanParse(name, nil))
	doc, err := p.Parse(name, []byte(content), domain.FileStat{Size: int64(len(content))})
	require.NoError(t, err)
	return doc
}

func findByTitle(doc *domain.IndexedDocument, title string) *domain.Block {
	for _, b := range doc.Blocks {
		if b.Title == title {
			return b
		}
	}
	return nil
}

func TestCanParse(t *testing.T) {
	p := New()
	for _, name := range []string{"a.py", "b.rb", "c.java", "d.rs", "e.sh", "f.kt"} {
		assert.True(t, p.CanParse(name, nil), name)
	}
	assert.False(t, p.CanParse("main.go", nil))
	assert.False(t, p.CanParse("readme.md", nil))
}

func TestParsePython(t *testing.T) {
	doc := parse(t, "walker.py", pySample)

	assert.Equal(t, "python", doc.Language)

	imports := findByTitle(doc, "Imports")
	require.NotNil(t, imports)
	assert.Equal(t, []string{"os", "pathlib"}, imports.Metadata.Dependencies)
	assert.Equal(t, 1, imports.StartLine)
	assert.Equal(t, 2, imports.EndLine)

	class := findByTitle(doc, "Class: Walker")
	require.NotNil(t, class)
	assert.Equal(t, domain.BlockClass, class.Type)
	assert.Equal(t, 7, class.StartLine)
	assert.Equal(t, 9, class.EndLine)

	method := findByTitle(doc, "Function: walk")
	require.NotNil(t, method)
	assert.Equal(t, class.ID, method.Parent, "indented def nests under its class")

	main := findByTitle(doc, "Function: main")
	require.NotNil(t, main)
	assert.Equal(t, 11, main.StartLine)
	assert.Equal(t, 13, main.EndLine)
	assert.Equal(t, doc.Root().ID, main.Parent)

	comment := findByTitle(doc, "Comment")
	require.NotNil(t, comment)
	assert.Contains(t, comment.Content, "Module level helpers")
}

func TestParseShellFunctions(t *testing.T) {
	src := "#!/bin/sh\n\ngreet() {\n  echo hi\n}\n\nfunction cleanup() {\n  rm -f tmp\n}\n"
	doc := parse(t, "run.sh", src)

	require.NotNil(t, findByTitle(doc, "Function: greet"))
	require.NotNil(t, findByTitle(doc, "Function: cleanup"))
}

func TestParseRustDeclarations(t *testing.T) {
	src := "use std::fmt;\n\npub struct Point {\n    x: i32,\n}\n\npub fn origin() -> Point {\n    Point { x: 0 }\n}\n"
	doc := parse(t, "point.rs", src)

	assert.Equal(t, "rust", doc.Language)
	require.NotNil(t, findByTitle(doc, "Class: Point"))
	fn := findByTitle(doc, "Function: origin")
	require.NotNil(t, fn)
	assert.Equal(t, 7, fn.StartLine)
	assert.Equal(t, 9, fn.EndLine)
}
