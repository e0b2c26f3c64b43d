// File: registry.go
// Title: Type Registry
// Description: Name-addressed registry of declared types. Record types are
//              registered by name and resolved by lookup at validation time
//              rather than eagerly expanded, so self- or mutually-referential
//              declarations are detected as cycles and rejected instead of
//              causing unbounded expansion.

package types

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultMaxNesting caps composite type nesting when no limit is configured
const DefaultMaxNesting = 64

// Registry holds named type declarations for one compilation unit
type Registry struct {
	mu         sync.RWMutex
	types      map[string]*Type
	maxNesting int
}

// NewRegistry creates an empty type registry
func NewRegistry() *Registry {
	return &Registry{
		types:      make(map[string]*Type),
		maxNesting: DefaultMaxNesting,
	}
}

// NewRegistryWithLimit creates a registry with a custom nesting limit
func NewRegistryWithLimit(maxNesting int) *Registry {
	r := NewRegistry()
	if maxNesting > 0 {
		r.maxNesting = maxNesting
	}
	return r
}

// Register declares a named type. Names are case-insensitive; redeclaration
// is rejected, as is any declaration whose resolution would revisit a name
// already on the resolution path (a cycle).
func (r *Registry) Register(name string, t *Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToUpper(name)
	if _, exists := r.types[key]; exists {
		return typeErrorf(name, "type %q already declared", name)
	}

	// Temporarily visible so the cycle walk can catch self-references
	r.types[key] = t
	if err := r.checkResolvable(t, map[string]bool{key: true}, 0); err != nil {
		delete(r.types, key)
		return err
	}
	return nil
}

// Lookup returns a named type, matching case-insensitively
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[strings.ToUpper(name)]
	return t, ok
}

// Names returns all registered type names
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	return names
}

// Resolve follows named references until a concrete type is reached.
// A missing name or a reference cycle yields a TypeError.
func (r *Registry) Resolve(t *Type) (*Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.resolveLocked(t, nil)
}

func (r *Registry) resolveLocked(t *Type, path []string) (*Type, error) {
	for t != nil && t.Kind == KindNamed {
		key := strings.ToUpper(t.Name)
		for _, seen := range path {
			if seen == key {
				return nil, typeErrorf(t.Name,
					"type reference cycle: %s", strings.Join(append(path, key), " -> "))
			}
		}
		path = append(path, key)

		next, ok := r.types[key]
		if !ok {
			return nil, typeErrorf(t.Name, "unknown type %q", t.Name)
		}
		t = next
	}
	if t == nil {
		return nil, typeErrorf("", "nil type reference")
	}
	return t, nil
}

// checkResolvable walks a type graph verifying every named reference resolves
// without cycles and the nesting depth stays within the configured limit.
func (r *Registry) checkResolvable(t *Type, onPath map[string]bool, depth int) error {
	if t == nil {
		return nil
	}
	if depth > r.maxNesting {
		return typeErrorf("", "composite type nesting exceeds limit of %d", r.maxNesting)
	}

	switch t.Kind {
	case KindNamed:
		key := strings.ToUpper(t.Name)
		if onPath[key] {
			return typeErrorf(t.Name, "type reference cycle through %q", t.Name)
		}
		target, ok := r.types[key]
		if !ok {
			return typeErrorf(t.Name, "unknown type %q", t.Name)
		}
		onPath[key] = true
		err := r.checkResolvable(target, onPath, depth+1)
		delete(onPath, key)
		return err

	case KindArray, KindQueue:
		return r.checkResolvable(t.Elem, onPath, depth+1)

	case KindMap:
		if err := r.checkResolvable(t.Key, onPath, depth+1); err != nil {
			return err
		}
		return r.checkResolvable(t.Val, onPath, depth+1)

	case KindRecord:
		for _, name := range t.Record.FieldNames() {
			ft, _ := t.Record.FieldType(name)
			if err := r.checkResolvable(ft, onPath, depth+1); err != nil {
				if te, ok := err.(*TypeError); ok && te.Path != "" {
					return typeErrorf(joinPath(name, te.Path), "%s", te.Message)
				}
				return err
			}
		}
		return nil

	default:
		return nil
	}
}

// MustScalar panics unless the name denotes a scalar type; used by builtin
// packs when constructing fixed signatures.
func MustScalar(name string) *Type {
	t, ok := ScalarByName(name)
	if !ok {
		panic(fmt.Sprintf("not a scalar type: %s", name))
	}
	return t
}
