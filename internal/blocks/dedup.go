// Package blocks provides pure utilities over flat block lists:
// deduplication of overlapping parser output and hierarchy rebuilding
// from line ranges. Both are idempotent.
package blocks

import (
	"fmt"
	"sort"

	"github.com/quarry-dev/quarry/internal/core/domain"
)

// typePriority orders block types for duplicate resolution, highest wins.
var typePriority = map[domain.BlockType]int{
	domain.BlockDocument:  7,
	domain.BlockHeading:   6,
	domain.BlockCodeblock: 5,
	domain.BlockTable:     4,
	domain.BlockList:      3,
	domain.BlockListItem:  2,
	domain.BlockParagraph: 1,
}

// Dedup removes duplicate blocks that span identical content and line
// ranges. Within a duplicate group, list and listItem blocks win over
// paragraph siblings; otherwise exactly one block survives, chosen by the
// fixed type priority.
func Dedup(in []*domain.Block) []*domain.Block {
	groups := make(map[string][]*domain.Block)
	order := make([]string, 0, len(in))

	for _, b := range in {
		key := fmt.Sprintf("%d:%d:%s", b.StartLine, b.EndLine, b.Content)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], b)
	}

	out := make([]*domain.Block, 0, len(in))
	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		out = append(out, resolveGroup(group)...)
	}
	return out
}

// resolveGroup picks the survivors of one duplicate group.
func resolveGroup(group []*domain.Block) []*domain.Block {
	hasList := false
	for _, b := range group {
		if b.Type == domain.BlockList || b.Type == domain.BlockListItem {
			hasList = true
			break
		}
	}

	if hasList {
		// Lists win over paragraph duplicates; everything else survives.
		kept := make([]*domain.Block, 0, len(group))
		for _, b := range group {
			if b.Type != domain.BlockParagraph {
				kept = append(kept, b)
			}
		}
		return kept
	}

	best := group[0]
	for _, b := range group[1:] {
		if typePriority[b.Type] > typePriority[best.Type] {
			best = b
		}
	}
	return []*domain.Block{best}
}

// Rebuild recomputes the parent/children structure for a flat block list
// from line ranges: each non-document block is attached to the smallest
// still-present block that strictly contains its range. Blocks with no
// container attach to the document root. Child order follows start line.
// Parent and Children fields are rewritten in place and a fresh hierarchy
// map referencing only present ids is returned.
func Rebuild(in []*domain.Block) domain.BlockHierarchy {
	var root *domain.Block
	for _, b := range in {
		if b.Type == domain.BlockDocument {
			root = b
			break
		}
	}

	h := domain.BlockHierarchy{BlockMap: make(map[string]domain.HierarchyNode, len(in))}
	if root != nil {
		h.Root = root.ID
	}

	for _, b := range in {
		b.Parent = ""
		b.Children = nil
		h.BlockMap[b.ID] = domain.HierarchyNode{Block: b.ID}
	}

	for _, b := range in {
		if b == root || b.Type == domain.BlockDocument {
			continue
		}
		parent := smallestContainer(in, b, root)
		if parent == nil {
			continue
		}
		b.Parent = parent.ID
		parent.Children = append(parent.Children, b.ID)
	}

	byID := make(map[string]*domain.Block, len(in))
	for _, b := range in {
		byID[b.ID] = b
	}
	for _, b := range in {
		sortChildren(byID, b)
		node := h.BlockMap[b.ID]
		node.Children = b.Children
		h.BlockMap[b.ID] = node
	}

	return h
}

// smallestContainer finds the smallest block strictly containing b,
// falling back to the document root.
func smallestContainer(in []*domain.Block, b, root *domain.Block) *domain.Block {
	var best *domain.Block
	for _, candidate := range in {
		if candidate == b || candidate.Type == domain.BlockDocument {
			continue
		}
		if !candidate.Contains(b) {
			continue
		}
		if best == nil || candidate.LineSpan() < best.LineSpan() {
			best = candidate
		}
	}
	if best == nil {
		return root
	}
	return best
}

// sortChildren orders a block's children by their start line.
func sortChildren(byID map[string]*domain.Block, parent *domain.Block) {
	if len(parent.Children) < 2 {
		return
	}
	sort.SliceStable(parent.Children, func(i, j int) bool {
		a, b := byID[parent.Children[i]], byID[parent.Children[j]]
		if a == nil || b == nil {
			return false
		}
		return a.StartLine < b.StartLine
	})
}

// Normalize deduplicates a document's blocks and rebuilds its hierarchy,
// pruning references to removed ids. Safe to call repeatedly.
func Normalize(doc *domain.IndexedDocument) {
	doc.Blocks = Dedup(doc.Blocks)
	doc.BlockHierarchy = Rebuild(doc.Blocks)
}
