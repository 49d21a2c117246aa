package fields

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Constructor builds a zero-valued field instance for its kind.
type Constructor func() Value

// Registry maps field kind identifiers to constructors. Reads are lock-free
// against an immutable snapshot; registration copies the snapshot and swaps
// it whole, so concurrent resolvers never observe partial state. Kinds are
// registered once at process start.
type Registry struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[map[string]Constructor]
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	empty := map[string]Constructor{}
	r.snapshot.Store(&empty)
	return r
}

// Register binds a constructor to a kind, replacing any prior binding.
func (r *Registry) Register(kind string, ctor Constructor) error {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return ErrKindRequired
	}
	if ctor == nil {
		return &UnknownKindError{Kind: kind}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current := *r.snapshot.Load()
	next := make(map[string]Constructor, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[kind] = ctor
	r.snapshot.Store(&next)
	return nil
}

// Resolve returns the constructor for a kind.
func (r *Registry) Resolve(kind string) (Constructor, bool) {
	if r == nil {
		return nil, false
	}
	ctor, ok := (*r.snapshot.Load())[kind]
	return ctor, ok
}

// Kinds lists the registered kind identifiers in sorted order.
func (r *Registry) Kinds() []string {
	if r == nil {
		return nil
	}
	current := *r.snapshot.Load()
	out := make([]string, 0, len(current))
	for k := range current {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry pre-populated with the built-in kinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for kind, ctor := range builtinKinds() {
		// Register only fails on empty kind or nil constructor, neither of
		// which builtinKinds produces.
		_ = r.Register(kind, ctor)
	}
	return r
}
