package submodel

import (
	"fmt"

	"github.com/san-kum/battsim/internal/expr"
)

// Equation pairs a state variable with its expression.
type Equation struct {
	Var  *expr.Variable
	Expr expr.Symbol
}

// EquationMap maps variables (by identity) to expressions, preserving
// insertion order. That order becomes the state ordering.
type EquationMap struct {
	entries []Equation
	index   map[uint64]int
}

func NewEquationMap() *EquationMap {
	return &EquationMap{index: make(map[uint64]int)}
}

// Set inserts or replaces the equation for v.
func (m *EquationMap) Set(v *expr.Variable, e expr.Symbol) {
	if i, ok := m.index[v.ID()]; ok {
		m.entries[i].Expr = e
		return
	}
	m.index[v.ID()] = len(m.entries)
	m.entries = append(m.entries, Equation{Var: v, Expr: e})
}

// Insert adds the equation for v, failing if v already has one.
func (m *EquationMap) Insert(v *expr.Variable, e expr.Symbol) error {
	if m.Has(v) {
		return fmt.Errorf("%w: %q", ErrDuplicateEquation, v.Name())
	}
	m.Set(v, e)
	return nil
}

func (m *EquationMap) Get(v *expr.Variable) (expr.Symbol, bool) {
	i, ok := m.index[v.ID()]
	if !ok {
		return nil, false
	}
	return m.entries[i].Expr, true
}

func (m *EquationMap) Has(v *expr.Variable) bool {
	_, ok := m.index[v.ID()]
	return ok
}

func (m *EquationMap) Len() int { return len(m.entries) }

// Entries returns the equations in insertion order.
func (m *EquationMap) Entries() []Equation {
	return append([]Equation(nil), m.entries...)
}

// Merge inserts every entry of other, failing on the first duplicate.
func (m *EquationMap) Merge(other *EquationMap) error {
	for _, eq := range other.entries {
		if err := m.Insert(eq.Var, eq.Expr); err != nil {
			return err
		}
	}
	return nil
}
