package posts

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
	rows map[uuid.UUID]*Post
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[uuid.UUID]*Post)}
}

func (m *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.rows[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return row.Clone(), nil
}

func (m *MemoryRepository) GetBySlug(_ context.Context, blogID uuid.UUID, slug string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, row := range m.rows {
		if row.BlogID == blogID && strings.EqualFold(row.Slug, slug) {
			return row.Clone(), nil
		}
	}
	return nil, &NotFoundError{Key: slug}
}

func (m *MemoryRepository) ListForBlog(_ context.Context, blogID uuid.UUID, limit int) ([]*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Post, 0)
	for _, row := range m.rows {
		if row.BlogID == blogID {
			out = append(out, row.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Published == nil || b.Published == nil {
			if (a.Published == nil) != (b.Published == nil) {
				return b.Published == nil
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Published.After(*b.Published)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) Create(_ context.Context, post *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[post.ID] = post.Clone()
	return post.Clone(), nil
}

func (m *MemoryRepository) Update(_ context.Context, post *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[post.ID]; !ok {
		return nil, &NotFoundError{Key: post.ID.String()}
	}
	m.rows[post.ID] = post.Clone()
	return post.Clone(), nil
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
