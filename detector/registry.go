package detector

import (
	"sort"
	"sync"
)

// Factory creates a fresh detector instance.
type Factory func() Detector

// Registry maintains the set of registered framework detectors.
// Thread-safe for concurrent access.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory // framework name → factory
}

// NewRegistry creates an empty detector registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a detector factory under a framework name.
// Later registrations replace earlier ones.
func (r *Registry) Register(framework string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[framework] = factory
}

// Create instantiates the detector for a framework name.
func (r *Registry) Create(framework string) (Detector, bool) {
	r.mu.RLock()
	factory, ok := r.factories[framework]
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return factory(), true
}

// All instantiates every registered detector, ordered by framework name.
func (r *Registry) All() []Detector {
	r.mu.RLock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)

	detectors := make([]Detector, 0, len(names))
	for _, name := range names {
		if d, ok := r.Create(name); ok {
			detectors = append(detectors, d)
		}
	}
	return detectors
}

// Frameworks returns all registered framework names in sorted order.
func (r *Registry) Frameworks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global detector registry.
// Concrete detectors register themselves via init() functions.
var DefaultRegistry = NewRegistry()
