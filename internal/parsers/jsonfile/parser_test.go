package jsonfile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/core/domain"
)

const sample = `{
  "name": "demo",
  "scripts": {
    "build": "make",
    "test": "make test"
  },
  "deps": ["a", "b"],
  "nested": {
    "name": "inner"
  }
}
`

func parse(t *testing.T, name, content string) *domain.IndexedDocument {
	t.Helper()
	p := New()
	doc, err := p.Parse(name, []byte(content), domain.FileStat{Size: int64(len(content))})
	require.NoError(t, err)
	return doc
}

func keyBlocks(doc *domain.IndexedDocument, key string) []*domain.Block {
	var out []*domain.Block
	for _, b := range doc.Blocks {
		if b.Metadata != nil && b.Metadata.Name == key {
			out = append(out, b)
		}
	}
	return out
}

func TestCanParse(t *testing.T) {
	p := New()
	assert.True(t, p.CanParse("package.json", nil))
	assert.True(t, p.CanParse("config", []byte(`{"a": 1}`)))
	assert.True(t, p.CanParse("arr", []byte(`[1, 2]`)))
	assert.False(t, p.CanParse("notes.txt", []byte(`{"a": 1}`)))
	assert.False(t, p.CanParse("config", []byte("not json")))
}

func TestParseTopLevelKeys(t *testing.T) {
	doc := parse(t, "package.json", sample)

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "json", doc.Language)

	name := keyBlocks(doc, "name")
	scripts := keyBlocks(doc, "scripts")
	require.Len(t, scripts, 1)
	require.NotEmpty(t, name)

	assert.Equal(t, root.ID, name[0].Parent)
	assert.Equal(t, root.ID, scripts[0].Parent)
	assert.Equal(t, 2, name[0].StartLine)
	assert.Equal(t, 2, name[0].EndLine)
}

func TestParseNestedKeysAttachToParent(t *testing.T) {
	doc := parse(t, "package.json", sample)

	scripts := keyBlocks(doc, "scripts")[0]
	build := keyBlocks(doc, "build")
	require.Len(t, build, 1)

	assert.Equal(t, scripts.ID, build[0].Parent)
	assert.Equal(t, 4, build[0].StartLine)
	assert.Equal(t, 3, scripts.StartLine)
	assert.Equal(t, 6, scripts.EndLine)
	assert.Contains(t, scripts.Content, `"test": "make test"`)
}

func TestParseRepeatedKeyKeepsDistinctLines(t *testing.T) {
	doc := parse(t, "package.json", sample)

	names := keyBlocks(doc, "name")
	require.Len(t, names, 2, "one block per occurrence of the key")

	root := doc.Root()
	nested := keyBlocks(doc, "nested")[0]

	assert.Equal(t, 2, names[0].StartLine)
	assert.Equal(t, root.ID, names[0].Parent)
	assert.Equal(t, 9, names[1].StartLine)
	assert.Equal(t, nested.ID, names[1].Parent)
}

func TestParseArrayValue(t *testing.T) {
	doc := parse(t, "package.json", sample)

	deps := keyBlocks(doc, "deps")
	require.Len(t, deps, 1)
	assert.Equal(t, 7, deps[0].StartLine)
	assert.Equal(t, 7, deps[0].EndLine)
}

func TestParseInvalidJSON(t *testing.T) {
	p := New()
	_, err := p.Parse("bad.json", []byte(`{"a":`), domain.FileStat{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnparsable))
}
