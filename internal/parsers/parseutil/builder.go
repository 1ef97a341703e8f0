package parseutil

import (
	"github.com/google/uuid"

	"github.com/quarry-dev/quarry/internal/core/domain"
)

// DocumentBuilder accumulates blocks for one file and assembles the
// IndexedDocument with a consistent hierarchy. The document root block is
// created up front and spans the whole file.
type DocumentBuilder struct {
	doc  *domain.IndexedDocument
	root *domain.Block
}

// NewDocument starts a builder for the given file. The root block spans
// the entire content.
func NewDocument(path, title, language string, content string, stat domain.FileStat) *DocumentBuilder {
	lines := Lines(content)

	root := &domain.Block{
		ID:        uuid.New().String(),
		Type:      domain.BlockDocument,
		Content:   content,
		StartLine: 1,
		EndLine:   len(lines),
		Path:      path,
		Title:     title,
	}
	if language != "" {
		root.Metadata = &domain.BlockMetadata{Language: language}
	}

	doc := &domain.IndexedDocument{
		Path:           path,
		Title:          title,
		Language:       language,
		Size:           stat.Size,
		LastModified:   stat.LastModified,
		Blocks:         []*domain.Block{root},
		BlockHierarchy: domain.NewBlockHierarchy(root.ID),
	}
	doc.BlockHierarchy.BlockMap[root.ID] = domain.HierarchyNode{Block: root.ID}

	return &DocumentBuilder{doc: doc, root: root}
}

// Root returns the document root block.
func (b *DocumentBuilder) Root() *domain.Block {
	return b.root
}

// Add attaches a block under the document root and returns its id.
// The block's ID and Path are filled in when empty.
func (b *DocumentBuilder) Add(block *domain.Block) string {
	return b.AddChild(b.root.ID, block)
}

// AddChild attaches a block under the given parent block and returns its id.
func (b *DocumentBuilder) AddChild(parentID string, block *domain.Block) string {
	if block.ID == "" {
		block.ID = uuid.New().String()
	}
	if block.Path == "" {
		block.Path = b.doc.Path
	}
	block.Parent = parentID

	b.doc.Blocks = append(b.doc.Blocks, block)
	b.doc.BlockHierarchy.BlockMap[block.ID] = domain.HierarchyNode{Block: block.ID}

	parentNode := b.doc.BlockHierarchy.BlockMap[parentID]
	parentNode.Children = append(parentNode.Children, block.ID)
	b.doc.BlockHierarchy.BlockMap[parentID] = parentNode

	if parent := b.doc.BlockByID(parentID); parent != nil {
		parent.Children = append(parent.Children, block.ID)
	}

	return block.ID
}

// Build returns the assembled document.
func (b *DocumentBuilder) Build() *domain.IndexedDocument {
	return b.doc
}
