package engine

import (
	"sort"
	"sync"

	"github.com/kbukum/weave/errors"
	"github.com/kbukum/weave/replicate"
	"github.com/kbukum/weave/validation"
)

// Registry provides named spec lookup.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]replicate.Spec
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]replicate.Spec)}
}

// Register adds a spec under name, replacing any previous one.
func (r *Registry) Register(name string, spec replicate.Spec) error {
	v := validation.New()
	v.Identifier("name", name)
	if err := v.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[name] = spec
	return nil
}

// Get retrieves a spec by name.
func (r *Registry) Get(name string) (replicate.Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[name]
	return s, ok
}

// Lookup is Get returning NOT_FOUND for unknown names.
func (r *Registry) Lookup(name string) (replicate.Spec, error) {
	s, ok := r.Get(name)
	if !ok {
		return replicate.Spec{}, errors.NotFound("spec", name)
	}
	return s, nil
}

// List returns sorted names of all registered specs.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
