package domain

import "time"

// IndexedDocument is one parsed source file: the document root block plus
// all descendant blocks and the hierarchy tying them together.
// It is created once per file per indexing run and fully replaced on reindex.
type IndexedDocument struct {
	// Path is the file path relative to the project root.
	Path string `json:"path"`

	// Title is the human-readable document title.
	Title string `json:"title"`

	// Language is the detected source language.
	Language string `json:"language,omitempty"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// LastModified is the file modification timestamp at index time.
	LastModified time.Time `json:"lastModified"`

	// Blocks is the flat list of all blocks, document root included.
	Blocks []*Block `json:"blocks"`

	// BlockHierarchy is the parent/children index over Blocks.
	BlockHierarchy BlockHierarchy `json:"blockHierarchy"`
}

// Root returns the document root block, or nil if the document has none.
func (d *IndexedDocument) Root() *Block {
	if b := d.BlockByID(d.BlockHierarchy.Root); b != nil {
		return b
	}
	for _, b := range d.Blocks {
		if b.Type == BlockDocument {
			return b
		}
	}
	return nil
}

// BlockByID returns the block with the given id, or nil.
func (d *IndexedDocument) BlockByID(id string) *Block {
	for _, b := range d.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// FileStat carries the file attributes a parser records on the document.
type FileStat struct {
	// Size is the file size in bytes.
	Size int64

	// LastModified is the file modification timestamp.
	LastModified time.Time
}
