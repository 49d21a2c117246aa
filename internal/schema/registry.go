package schema

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Registry holds the validated content types for a process. Reads are
// lock-free against an immutable snapshot; registration validates each type,
// builds a fresh map, and swaps it in whole so in-flight readers never see a
// partially updated schema set.
type Registry struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[map[string]*ContentType]
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	empty := map[string]*ContentType{}
	r.snapshot.Store(&empty)
	return r
}

// Register validates the supplied types and publishes a new snapshot that
// contains them. A type whose id is already registered is replaced wholesale.
func (r *Registry) Register(types ...*ContentType) error {
	if r == nil || len(types) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := *r.snapshot.Load()
	next := make(map[string]*ContentType, len(current)+len(types))
	for id, t := range current {
		next[id] = t
	}

	for _, t := range types {
		copied := t.Clone()
		if err := Validate(copied); err != nil {
			return err
		}
		next[copied.ID] = copied
	}

	r.snapshot.Store(&next)
	return nil
}

// Get resolves a content type by id. The returned value is a copy; callers
// cannot mutate registered state.
func (r *Registry) Get(id string) (*ContentType, bool) {
	if r == nil {
		return nil, false
	}
	t, ok := (*r.snapshot.Load())[id]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// GetKind resolves a content type and requires it to carry the given kind.
func (r *Registry) GetKind(id string, kind Kind) (*ContentType, error) {
	t, ok := r.Get(id)
	if !ok || t.Kind != kind {
		return nil, &UnknownTypeError{TypeID: id}
	}
	return t, nil
}

// List returns every registered type ordered by id.
func (r *Registry) List() []*ContentType {
	if r == nil {
		return nil
	}
	current := *r.snapshot.Load()
	out := make([]*ContentType, 0, len(current))
	for _, t := range current {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
