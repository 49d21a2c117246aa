package blocks

import (
	"sort"

	"github.com/google/uuid"
)

// Flatten converts a block tree into its persisted form: depth first, parent
// before children, sibling order preserved. SortOrder is the global emission
// index, so reading rows back ordered by sort_order restores both invariants.
//
// Reusable subtrees are emitted without a content id, shared storage holds
// them exactly once. The subtree root's position inside this content item's
// tree travels on a Reference instead of the row itself.
func Flatten(contentID uuid.UUID, tree []*Block) ([]*Row, []*Reference) {
	rows := make([]*Row, 0, len(tree))
	refs := make([]*Reference, 0)
	order := 0
	var walk func(node *Block, parentID *uuid.UUID, shared bool)
	walk = func(node *Block, parentID *uuid.UUID, shared bool) {
		if node == nil {
			return
		}
		row := &Row{
			ID:         node.ID,
			ParentID:   parentID,
			Type:       node.Type,
			IsReusable: node.IsReusable,
			SortOrder:  order,
			Fields:     node.Fields,
		}
		sharesHere := shared || node.IsReusable
		if sharesHere {
			if !shared {
				// Root of a reusable subtree: the per-content position
				// lives on the reference, not the shared row.
				row.ParentID = nil
				refs = append(refs, &Reference{
					ContentID: contentID,
					BlockID:   node.ID,
					ParentID:  parentID,
					SortOrder: order,
				})
			}
		} else {
			cid := contentID
			row.ContentID = &cid
		}
		order++
		rows = append(rows, row)
		id := node.ID
		for _, item := range node.Items {
			walk(item, &id, sharesHere)
		}
	}
	for _, node := range tree {
		walk(node, nil, false)
	}
	return rows, refs
}

// Rebuild restores the tree from rows ordered by sort_order. It is a single
// pass over an index of already-attached nodes, so any row whose parent has
// not been seen yet fails with an OrphanError.
func Rebuild(rows []*Row) ([]*Block, error) {
	roots := make([]*Block, 0, len(rows))
	index := make(map[uuid.UUID]*Block, len(rows))
	for _, row := range rows {
		node := &Block{
			ID:         row.ID,
			Type:       row.Type,
			IsReusable: row.IsReusable,
			Fields:     row.Fields,
		}
		if row.ParentID == nil {
			roots = append(roots, node)
		} else {
			parent, ok := index[*row.ParentID]
			if !ok {
				return nil, &OrphanError{BlockID: row.ID.String(), ParentID: row.ParentID.String()}
			}
			parent.Items = append(parent.Items, node)
		}
		index[row.ID] = node
	}
	return roots, nil
}

// stitch merges one content item's owned rows with the shared rows it
// references into the flat, parent-before-children list Rebuild expects.
// Shared roots take their position from the reference; shared descendants
// keep the parent and relative order they were stored with. Sort orders are
// re-stamped to the emission index so the result reads like one Flatten
// pass over the combined tree.
func stitch(owned []*Row, refs []*Reference, shared []*Row) []*Row {
	sharedByID := make(map[uuid.UUID]*Row, len(shared))
	for _, row := range shared {
		sharedByID[row.ID] = row
	}

	children := make(map[uuid.UUID][]*Row)
	attach := func(row *Row) {
		parent := uuid.Nil
		if row.ParentID != nil {
			parent = *row.ParentID
		}
		children[parent] = append(children[parent], row)
	}

	referenced := make(map[uuid.UUID]bool, len(refs))
	for _, row := range owned {
		attach(row.Clone())
	}
	for _, ref := range refs {
		root, ok := sharedByID[ref.BlockID]
		if !ok {
			continue
		}
		positioned := root.Clone()
		positioned.ParentID = ref.ParentID
		positioned.SortOrder = ref.SortOrder
		referenced[ref.BlockID] = true
		attach(positioned)
	}
	for _, row := range shared {
		if referenced[row.ID] || row.ParentID == nil {
			continue
		}
		attach(row.Clone())
	}

	for parent := range children {
		siblings := children[parent]
		sort.SliceStable(siblings, func(i, j int) bool {
			return siblings[i].SortOrder < siblings[j].SortOrder
		})
	}

	out := make([]*Row, 0, len(owned)+len(shared))
	var emit func(parent uuid.UUID)
	emit = func(parent uuid.UUID) {
		for _, row := range children[parent] {
			row.SortOrder = len(out)
			out = append(out, row)
			emit(row.ID)
		}
	}
	emit(uuid.Nil)
	return out
}
