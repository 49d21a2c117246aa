package sites

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type contentKey struct {
	siteID uuid.UUID
	typeID string
}

// MemoryRepository is the in-memory Repository used by tests and by callers
// that have not wired a database.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[contentKey]*Content
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[contentKey]*Content)}
}

func (m *MemoryRepository) Get(_ context.Context, siteID uuid.UUID, typeID string) (*Content, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[contentKey{siteID: siteID, typeID: typeID}]
	if !ok {
		return nil, &NotFoundError{Key: typeID}
	}
	return row.Clone(), nil
}

func (m *MemoryRepository) Upsert(_ context.Context, content *Content) (*Content, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := contentKey{siteID: content.SiteID, typeID: content.TypeID}
	if existing, ok := m.rows[key]; ok {
		content.ID = existing.ID
		content.CreatedAt = existing.CreatedAt
	}
	m.rows[key] = content.Clone()
	return content.Clone(), nil
}

func (m *MemoryRepository) Delete(_ context.Context, siteID uuid.UUID, typeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, contentKey{siteID: siteID, typeID: typeID})
	return nil
}
