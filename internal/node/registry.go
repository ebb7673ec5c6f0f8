package node

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicateType is returned when a type name is registered twice.
var ErrDuplicateType = errors.New("node type already registered")

// Registry maps type names to definitions.
//
// Definitions are registered at startup and never changed afterwards.
// Lookups are safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds a definition.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.Type == "" {
		return fmt.Errorf("register: definition must have a type")
	}
	if def.Boundary == BoundaryNone && def.Evaluate == nil {
		return fmt.Errorf("register %q: Evaluate is required", def.Type)
	}
	if def.Kind == Sequential && def.Peek == nil {
		return fmt.Errorf("register %q: sequential definitions require Peek", def.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Type]; exists {
		return fmt.Errorf("register %q: %w", def.Type, ErrDuplicateType)
	}
	r.defs[def.Type] = def
	return nil
}

// MustRegister registers definitions and panics on the first error.
// Intended for init-time catalogs.
func (r *Registry) MustRegister(defs ...*Definition) {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the definition for a type.
func (r *Registry) Lookup(typ string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[typ]
	return def, ok
}

// Types returns all registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.defs))
	for t := range r.defs {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Default returns a new registry populated with the builtin catalog.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(Builtins()...)
	return r
}
