package registry

import (
	"fmt"
	"iter"
	"sync"

	"github.com/aretw0/nodeweave/pkg/domain"
	"github.com/aretw0/nodeweave/pkg/graph"
	"github.com/aretw0/nodeweave/pkg/schema"
)

// Factory builds a fresh Behavior for one node instance.
type Factory func() graph.Behavior

// Entry describes a registered node type.
type Entry struct {
	TypeID    string           `json:"type_id"`
	Title     string           `json:"title"`
	Signature schema.Signature `json:"signature"`
	factory   Factory
}

// Registry maps type identifiers to node factories.
// A Registry is shared by the graphs and serializers of one application;
// it is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
	}
}

// Register adds a node type. The factory is invoked once to validate the
// signature it declares.
func (r *Registry) Register(typeID, title string, factory Factory) error {
	if typeID == "" {
		return fmt.Errorf("register: type id cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("register %q: factory is nil", typeID)
	}
	probe := factory()
	if probe == nil {
		return fmt.Errorf("register %q: factory returned nil", typeID)
	}
	sig := probe.Signature()
	if err := sig.Validate(); err != nil {
		return fmt.Errorf("register %q: invalid signature: %w", typeID, err)
	}
	if title == "" {
		title = typeID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[typeID]; exists {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateTypeID, typeID)
	}
	r.entries[typeID] = &Entry{TypeID: typeID, Title: title, Signature: sig, factory: factory}
	r.order = append(r.order, typeID)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(typeID, title string, factory Factory) {
	if err := r.Register(typeID, title, factory); err != nil {
		panic(err)
	}
}

// Has reports whether typeID is registered.
func (r *Registry) Has(typeID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[typeID]
	return ok
}

// Lookup returns the entry registered under typeID.
func (r *Registry) Lookup(typeID string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[typeID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Signature returns the port signature of a registered type.
func (r *Registry) Signature(typeID string) (schema.Signature, bool) {
	e, ok := r.Lookup(typeID)
	return e.Signature, ok
}

// Create constructs a fresh node of the given type with its own ports and identity.
func (r *Registry) Create(typeID string) (*graph.Node, error) {
	r.mu.RLock()
	e, ok := r.entries[typeID]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownTypeID, typeID)
	}

	return graph.NewNode(e.TypeID, e.Title, e.factory())
}

// List yields (typeID, title) pairs in registration order.
// The sequence reads a snapshot and can be ranged over any number of times.
func (r *Registry) List() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, e := range r.Entries() {
			if !yield(e.TypeID, e.Title) {
				return
			}
		}
	}
}

// Entries returns every registered entry in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.entries[id])
	}
	return out
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
