// Package parameters binds named Parameter nodes to values before
// discretisation. Parameter-set files and unit handling live elsewhere;
// this package only holds a flat name → value set.
package parameters

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/battsim/internal/expr"
)

var ErrMissingParameter = errors.New("parameters: no value for parameter")

// Values is a parameter set. Names listed in Inputs are turned into
// InputParameters instead of constants, so they can vary between solves.
type Values struct {
	values map[string]float64
	inputs map[string]bool
}

func New(values map[string]float64) *Values {
	v := &Values{values: make(map[string]float64, len(values)), inputs: make(map[string]bool)}
	for k, x := range values {
		v.values[k] = x
	}
	return v
}

func (v *Values) Get(name string) (float64, bool) {
	x, ok := v.values[name]
	return x, ok
}

func (v *Values) Set(name string, value float64) {
	v.values[name] = value
	delete(v.inputs, name)
}

// Update overwrites several values at once.
func (v *Values) Update(values map[string]float64) {
	for k, x := range values {
		v.Set(k, x)
	}
}

// MarkInput makes name an input parameter supplied at solve time.
func (v *Values) MarkInput(name string) {
	v.inputs[name] = true
}

func (v *Values) IsInput(name string) bool { return v.inputs[name] }

// Names returns all known parameter names, sorted.
func (v *Values) Names() []string {
	names := make([]string, 0, len(v.values)+len(v.inputs))
	for k := range v.values {
		names = append(names, k)
	}
	for k := range v.inputs {
		if _, ok := v.values[k]; !ok {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Symbol returns the symbolic node submodels should use for name.
func (v *Values) Symbol(name string) expr.Symbol {
	return expr.NewParameter(name)
}

// Process replaces every Parameter in sym with its value, or with an
// InputParameter when the name is marked as input.
func (v *Values) Process(sym expr.Symbol) (expr.Symbol, error) {
	return expr.Map(sym, func(s expr.Symbol) (expr.Symbol, error) {
		p, ok := s.(*expr.Parameter)
		if !ok {
			return s, nil
		}
		if v.inputs[p.Name()] {
			return expr.NewInputParameter(p.Name()), nil
		}
		x, ok := v.values[p.Name()]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingParameter, p.Name())
		}
		return expr.NewScalar(x), nil
	})
}
