package taxonomy

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory implementation for scaffolding and tests.
// It enforces the same (group, slug, type) uniqueness the storage layer
// guarantees.
type MemoryRepository struct {
	mu         sync.RWMutex
	rows       map[uuid.UUID]*Taxonomy
	slugIndex  map[string]uuid.UUID
	references map[uuid.UUID]map[uuid.UUID]struct{}
}

// NewMemoryRepository creates an empty in-memory taxonomy repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rows:       make(map[uuid.UUID]*Taxonomy),
		slugIndex:  make(map[string]uuid.UUID),
		references: make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

func slugKey(groupID uuid.UUID, kind Kind, slug string) string {
	return groupID.String() + "|" + string(kind) + "|" + strings.ToLower(slug)
}

// GetByID retrieves a taxonomy row by identifier.
func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Taxonomy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	copied := *row
	return &copied, nil
}

// GetBySlug resolves a row by its unique (group, kind, slug) key.
func (m *MemoryRepository) GetBySlug(_ context.Context, groupID uuid.UUID, kind Kind, slug string) (*Taxonomy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slugKey(groupID, kind, slug)]
	if !ok {
		return nil, &NotFoundError{Key: slug}
	}
	copied := *m.rows[id]
	return &copied, nil
}

// GetByTitle resolves a row by exact title within a group and kind.
func (m *MemoryRepository) GetByTitle(_ context.Context, groupID uuid.UUID, kind Kind, title string) (*Taxonomy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, row := range m.rows {
		if row.GroupID == groupID && row.Type == kind && row.Title == title {
			copied := *row
			return &copied, nil
		}
	}
	return nil, &NotFoundError{Key: title}
}

// List returns the rows of a group and kind ordered by title.
func (m *MemoryRepository) List(_ context.Context, groupID uuid.UUID, kind Kind) ([]*Taxonomy, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Taxonomy, 0)
	for _, row := range m.rows {
		if row.GroupID == groupID && row.Type == kind {
			copied := *row
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// Create inserts a row, failing with SlugConflictError when the unique key
// is already taken.
func (m *MemoryRepository) Create(_ context.Context, record *Taxonomy) (*Taxonomy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := slugKey(record.GroupID, record.Type, record.Slug)
	if _, taken := m.slugIndex[key]; taken {
		return nil, &SlugConflictError{GroupID: record.GroupID.String(), Slug: record.Slug, Type: record.Type}
	}

	copied := *record
	m.rows[copied.ID] = &copied
	m.slugIndex[key] = copied.ID
	returned := copied
	return &returned, nil
}

// ReplaceReferences rewrites the reference set of a content item.
func (m *MemoryRepository) ReplaceReferences(_ context.Context, contentID uuid.UUID, taxonomyIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	set := make(map[uuid.UUID]struct{}, len(taxonomyIDs))
	for _, id := range taxonomyIDs {
		set[id] = struct{}{}
	}
	m.references[contentID] = set
	return nil
}

// ListReferences returns the taxonomy ids referenced by a content item.
func (m *MemoryRepository) ListReferences(_ context.Context, contentID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.references[contentID]
	if !ok {
		return nil, nil
	}
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out, nil
}

// DeleteReferences removes every reference held by a content item.
func (m *MemoryRepository) DeleteReferences(_ context.Context, contentID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.references, contentID)
	return nil
}

// DeleteUnreferenced removes every row of the group with no surviving
// reference and reports the removed ids. The check and delete run under one
// lock, mirroring the single-transaction requirement of the bun store.
func (m *MemoryRepository) DeleteUnreferenced(_ context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	referenced := make(map[uuid.UUID]struct{})
	for _, set := range m.references {
		for id := range set {
			referenced[id] = struct{}{}
		}
	}

	removed := make([]uuid.UUID, 0)
	for id, row := range m.rows {
		if row.GroupID != groupID {
			continue
		}
		if _, ok := referenced[id]; ok {
			continue
		}
		delete(m.rows, id)
		delete(m.slugIndex, slugKey(row.GroupID, row.Type, row.Slug))
		removed = append(removed, id)
	}
	return removed, nil
}
