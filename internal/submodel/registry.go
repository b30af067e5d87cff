package submodel

import (
	"errors"
	"sort"

	"github.com/san-kum/battsim/internal/expr"
)

// Lookup is the read-only view of the registry handed to submodels.
type Lookup interface {
	Get(name string) (expr.Symbol, error)
	Has(name string) bool
}

// Variables is a batch of named contributions returned by a submodel.
type Variables map[string]expr.Symbol

// Registry is the shared variables registry, keyed by human-readable name.
// It is owned by the assembler; submodels never hold a reference to it.
type Registry struct {
	entries map[string]expr.Symbol
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]expr.Symbol)}
}

func (r *Registry) Get(name string) (expr.Symbol, error) {
	sym, ok := r.entries[name]
	if !ok {
		return nil, &LookupError{Key: name, Available: len(r.entries)}
	}
	return sym, nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Merge adds vars in sorted key order. Later contributions replace earlier
// ones under the same name, keeping the original position.
func (r *Registry) Merge(vars Variables) {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := r.entries[k]; !ok {
			r.order = append(r.order, k)
		}
		r.entries[k] = vars[k]
	}
}

// Names returns registered names in insertion order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int { return len(r.entries) }

// scoped attributes lookup failures to one submodel.
type scoped struct {
	Lookup
	name string
}

// Scope wraps l so LookupErrors carry the calling submodel's name.
func Scope(l Lookup, submodel string) Lookup {
	return scoped{Lookup: l, name: submodel}
}

func (s scoped) Get(name string) (expr.Symbol, error) {
	sym, err := s.Lookup.Get(name)
	var le *LookupError
	if errors.As(err, &le) && le.Submodel == "" {
		le.Submodel = s.name
	}
	return sym, err
}
