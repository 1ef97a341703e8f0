package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarry-dev/quarry/internal/core/domain"
)

const page = `<html>
<head>
  <title>Landing Page</title>
</head>
<body>
  <nav><a href="/">home</a></nav>
  <div class="hero">
    <form action="/signup"><input name="email"></form>
  </div>
  <table>
    <tr><td>cell</td></tr>
  </table>
</body>
</html>
`

func parse(t *testing.T, content string) *domain.IndexedDocument {
	t.Helper()
	p := New()
	doc, err := p.Parse("index.html", []byte(content), domain.FileStat{Size: int64(len(content))})
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
	assert.True(t, p.CanParse("index.html", nil))
	assert.True(t, p.CanParse("legacy.HTM", nil))
	assert.False(t, p.CanParse("page.xhtml", nil))
}

func TestParseTitleFromTitleTag(t *testing.T) {
	doc := parse(t, page)
	assert.Equal(t, "Landing Page", doc.Title)
	assert.Equal(t, "html", doc.Language)
}

func TestParseSemanticRegions(t *testing.T) {
	doc := parse(t, page)

	head := findByTitle(doc, "Head")
	require.NotNil(t, head)
	assert.Equal(t, 2, head.StartLine)
	assert.Equal(t, 4, head.EndLine)

	require.NotNil(t, findByTitle(doc, "Navigation"))
	require.NotNil(t, findByTitle(doc, "Form"))
	require.NotNil(t, findByTitle(doc, "Body"))

	table := findByTitle(doc, "Table")
	require.NotNil(t, table)
	assert.Equal(t, domain.BlockTable, table.Type)
	assert.Equal(t, 10, table.StartLine)
	assert.Equal(t, 12, table.EndLine)
}

func TestParseNamedDiv(t *testing.T) {
	doc := parse(t, page)

	div := findByTitle(doc, "Div: hero")
	require.NotNil(t, div)
	assert.Equal(t, 7, div.StartLine)
}

func TestParseBodyWithoutClosingTag(t *testing.T) {
	doc := parse(t, "<body>\n<p>unclosed\n")

	body := findByTitle(doc, "Body")
	require.NotNil(t, body)
	assert.Equal(t, 1, body.StartLine)
}

func TestParseTitleFallsBackToFilename(t *testing.T) {
	p := New()
	doc, err := p.Parse("old-site.html", []byte("<p>no title</p>"), domain.FileStat{})
	require.NoError(t, err)
	assert.Equal(t, "old site", doc.Title)
}
