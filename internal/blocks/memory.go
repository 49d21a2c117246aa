package blocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is the in-memory Repository used by tests and by callers
// that have not wired a database.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*Row
	refs map[uuid.UUID][]*Reference
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rows: make(map[uuid.UUID]*Row),
		refs: make(map[uuid.UUID][]*Reference),
	}
}

func (m *MemoryRepository) ListForContent(_ context.Context, contentID uuid.UUID) ([]*Row, error) {
	if contentID == uuid.Nil {
		return nil, ErrContentRequired
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	owned := make([]*Row, 0)
	for _, row := range m.rows {
		if row.ContentID != nil && *row.ContentID == contentID {
			owned = append(owned, row.Clone())
		}
	}
	refs := make([]*Reference, 0, len(m.refs[contentID]))
	for _, ref := range m.refs[contentID] {
		refs = append(refs, ref.Clone())
	}
	return stitch(owned, refs, m.sharedSubtreesLocked(refs)), nil
}

func (m *MemoryRepository) ReplaceForContent(_ context.Context, contentID uuid.UUID, rows []*Row, refs []*Reference) error {
	if contentID == uuid.Nil {
		return ErrContentRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	incoming := make(map[uuid.UUID]bool, len(rows))
	sharedIncoming := make(map[uuid.UUID]bool)
	for _, row := range rows {
		incoming[row.ID] = true
		if row.ContentID == nil {
			sharedIncoming[row.ID] = true
		}
	}

	for id, row := range m.rows {
		if row.ContentID != nil && *row.ContentID == contentID && !incoming[id] {
			delete(m.rows, id)
		}
	}
	// Group items removed from an updated reusable block are shared rows
	// whose parent chain starts at one of the incoming shared roots.
	for _, stale := range m.staleSharedLocked(refs, sharedIncoming) {
		delete(m.rows, stale)
	}

	for _, row := range rows {
		m.rows[row.ID] = row.Clone()
	}

	kept := make([]*Reference, 0, len(refs))
	for _, ref := range refs {
		kept = append(kept, ref.Clone())
	}
	if len(kept) == 0 {
		delete(m.refs, contentID)
	} else {
		m.refs[contentID] = kept
	}
	return nil
}

func (m *MemoryRepository) DeleteForContent(_ context.Context, contentID uuid.UUID) error {
	if contentID == uuid.Nil {
		return ErrContentRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, row := range m.rows {
		if row.ContentID != nil && *row.ContentID == contentID {
			delete(m.rows, id)
		}
	}
	delete(m.refs, contentID)
	return nil
}

// Get returns a stored row by block id, mainly for assertions in tests.
func (m *MemoryRepository) Get(id uuid.UUID) (*Row, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, false
	}
	return row.Clone(), true
}

// sharedSubtreesLocked collects the shared rows reachable from the
// referenced roots, breadth first over parent links.
func (m *MemoryRepository) sharedSubtreesLocked(refs []*Reference) []*Row {
	out := make([]*Row, 0)
	frontier := make(map[uuid.UUID]bool, len(refs))
	for _, ref := range refs {
		if row, ok := m.rows[ref.BlockID]; ok && row.ContentID == nil {
			out = append(out, row.Clone())
			frontier[row.ID] = true
		}
	}
	for len(frontier) > 0 {
		next := make(map[uuid.UUID]bool)
		for _, row := range m.rows {
			if row.ContentID != nil || row.ParentID == nil || !frontier[*row.ParentID] {
				continue
			}
			out = append(out, row.Clone())
			next[row.ID] = true
		}
		frontier = next
	}
	return out
}

// staleSharedLocked finds shared descendants of the incoming reusable roots
// that the incoming set no longer contains.
func (m *MemoryRepository) staleSharedLocked(refs []*Reference, incoming map[uuid.UUID]bool) []uuid.UUID {
	stale := make([]uuid.UUID, 0)
	for _, row := range m.sharedSubtreesLocked(refs) {
		if !incoming[row.ID] {
			stale = append(stale, row.ID)
		}
	}
	return stale
}
