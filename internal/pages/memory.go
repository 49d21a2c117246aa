package pages

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is the in-memory Repository used by tests and by callers
// that have not wired a database.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*Page
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[uuid.UUID]*Page)}
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return row.Clone(), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, siteID uuid.UUID, slug string) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, row := range m.rows {
		if row.SiteID == siteID && strings.EqualFold(row.Slug, slug) {
			return row.Clone(), nil
		}
	}
	return nil, &NotFoundError{Key: slug}
}

func (m *MemoryRepository) ListSiblings(_ context.Context, siteID uuid.UUID, parentID *uuid.UUID) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Page, 0)
	for _, row := range m.rows {
		if row.SiteID == siteID && sameParent(row.ParentID, parentID) {
			out = append(out, row.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out, nil
}

func (m *MemoryRepository) CountChildren(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, row := range m.rows {
		if row.ParentID != nil && *row.ParentID == id {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) CountCopies(_ context.Context, id uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, row := range m.rows {
		if row.OriginalPageID != nil && *row.OriginalPageID == id {
			count++
		}
	}
	return count, nil
}

func (m *MemoryRepository) Create(_ context.Context, page *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[page.ID] = page.Clone()
	return page.Clone(), nil
}

func (m *MemoryRepository) Update(_ context.Context, page *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[page.ID]; !ok {
		return nil, &NotFoundError{Key: page.ID.String()}
	}
	m.rows[page.ID] = page.Clone()
	return page.Clone(), nil
}

func (m *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return &NotFoundError{Key: id.String()}
	}
	delete(m.rows, id)
	return nil
}

func (m *MemoryRepository) ResequenceSiblings(_ context.Context, siteID uuid.UUID, parentID *uuid.UUID, expectedIDs, orderedIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := make([]uuid.UUID, 0, len(expectedIDs))
	for _, row := range m.rows {
		if row.SiteID == siteID && sameParent(row.ParentID, parentID) {
			current = append(current, row.ID)
		}
	}
	sort.Slice(current, func(i, j int) bool {
		return m.rows[current[i]].SortOrder < m.rows[current[j]].SortOrder
	})
	if !sameIDs(current, expectedIDs) {
		return ErrSortConflict
	}

	for order, id := range orderedIDs {
		row, ok := m.rows[id]
		if !ok {
			return &NotFoundError{Key: id.String()}
		}
		row.SiteID = siteID
		if parentID != nil {
			pid := *parentID
			row.ParentID = &pid
		} else {
			row.ParentID = nil
		}
		row.SortOrder = order
	}
	return nil
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameIDs(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
