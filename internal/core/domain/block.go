package domain

// BlockType identifies the kind of content a block spans.
// The set is closed: parsers may only emit these values.
type BlockType string

// Block types emitted by the parsers.
const (
	BlockDocument  BlockType = "document"
	BlockHeading   BlockType = "heading"
	BlockCodeblock BlockType = "codeblock"
	BlockTable     BlockType = "table"
	BlockList      BlockType = "list"
	BlockListItem  BlockType = "listItem"
	BlockParagraph BlockType = "paragraph"
	BlockImports   BlockType = "imports"
	BlockClass     BlockType = "class"
	BlockInterface BlockType = "interface"
	BlockFunction  BlockType = "function"
	BlockMethod    BlockType = "method"
	BlockExport    BlockType = "export"
	BlockVariable  BlockType = "variable"
	BlockTypeDecl  BlockType = "type"
	BlockJSX       BlockType = "jsx"
	BlockComment   BlockType = "comment"
)

// Valid reports whether t is one of the closed set of block types.
func (t BlockType) Valid() bool {
	switch t {
	case BlockDocument, BlockHeading, BlockCodeblock, BlockTable, BlockList,
		BlockListItem, BlockParagraph, BlockImports, BlockClass, BlockInterface,
		BlockFunction, BlockMethod, BlockExport, BlockVariable, BlockTypeDecl,
		BlockJSX, BlockComment:
		return true
	}
	return false
}

// IsCode reports whether the block represents a code declaration.
// Used by the search engine for type multipliers and sibling expansion.
func (t BlockType) IsCode() bool {
	switch t {
	case BlockFunction, BlockMethod, BlockClass, BlockInterface:
		return true
	}
	return false
}

// BlockMetadata is an open-ended but well-known bag of typed fields
// attached to a block by parsers and the indexer.
type BlockMetadata struct {
	// Name is the declared identifier (function name, class name, JSON key).
	Name string `json:"name,omitempty"`

	// Signature is the full declaration line for code blocks.
	Signature string `json:"signature,omitempty"`

	// Dependencies lists import targets declared by the block.
	Dependencies []string `json:"dependencies,omitempty"`

	// Tags holds extracted keywords.
	Tags []string `json:"tags,omitempty"`

	// Language is the source language, when known.
	Language string `json:"language,omitempty"`
}

// Block is the atomic unit of indexed content: one function, one heading,
// one paragraph. Line bounds are 1-based and inclusive.
type Block struct {
	// ID is the unique identifier, stable within one indexing run.
	ID string `json:"id"`

	// Type is the block kind from the closed BlockType set.
	Type BlockType `json:"type"`

	// Content is the exact source text spanned by the block.
	Content string `json:"content"`

	// StartLine is the first source line covered (1-based, inclusive).
	StartLine int `json:"startLine"`

	// EndLine is the last source line covered (1-based, inclusive).
	EndLine int `json:"endLine"`

	// Path is the file-relative path the block belongs to.
	Path string `json:"path"`

	// Title is an optional human-readable label (e.g. "Function: foo").
	Title string `json:"title,omitempty"`

	// Parent is a cached back-reference to the parent block id.
	// The hierarchy map is authoritative; Parent is recomputed whenever
	// children change and must never drive structural mutation.
	Parent string `json:"parent,omitempty"`

	// Children is the ordered sequence of child block ids.
	Children []string `json:"children,omitempty"`

	// Metadata carries optional typed fields set by parsers.
	Metadata *BlockMetadata `json:"metadata,omitempty"`

	// Summary is an optional LLM-generated description. In practice it is
	// only ever set on document-type blocks.
	Summary string `json:"summary,omitempty"`
}

// LineSpan returns the number of source lines the block covers.
func (b *Block) LineSpan() int {
	return b.EndLine - b.StartLine + 1
}

// Contains reports whether other's line range is strictly inside b's range.
// Equal ranges do not count as containment.
func (b *Block) Contains(other *Block) bool {
	if b.StartLine == other.StartLine && b.EndLine == other.EndLine {
		return false
	}
	return b.StartLine <= other.StartLine && other.EndLine <= b.EndLine
}

// HierarchyNode is one entry in a BlockHierarchy map.
type HierarchyNode struct {
	// Block is the id of the block this node describes.
	Block string `json:"block"`

	// Children is the ordered list of child block ids.
	Children []string `json:"children,omitempty"`
}

// BlockHierarchy is a redundant index over a document's blocks.
// It must stay consistent with the Children/Parent fields on each Block;
// after any block removal, entries referencing removed ids are pruned.
type BlockHierarchy struct {
	// Root is the id of the document block.
	Root string `json:"root"`

	// BlockMap maps block id to its hierarchy node.
	BlockMap map[string]HierarchyNode `json:"blockMap"`
}

// NewBlockHierarchy creates an empty hierarchy rooted at the given block id.
func NewBlockHierarchy(root string) BlockHierarchy {
	return BlockHierarchy{
		Root:     root,
		BlockMap: make(map[string]HierarchyNode),
	}
}
