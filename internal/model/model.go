// Package model assembles submodels into one equation system.
package model

import (
	"fmt"

	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/logging"
	"github.com/san-kum/battsim/internal/submodel"
)

// Options select submodel variants, e.g. {"porosity": "reaction-driven"}.
type Options map[string]string

func (o Options) Get(key, fallback string) string {
	if v, ok := o[key]; ok && v != "" {
		return v
	}
	return fallback
}

type entry struct {
	name string
	sub  submodel.Submodel
}

// Model is the flat union of its submodels' contributions. Once built it is
// treated as immutable.
type Model struct {
	Name    string
	Options Options

	Variables          *submodel.Registry
	RHS                *submodel.EquationMap
	Algebraic          *submodel.EquationMap
	InitialConditions  *submodel.EquationMap
	BoundaryConditions map[string]submodel.Boundary
	Events             []submodel.Event

	submodels []entry
	assembled bool
	built     bool
	buildErr  error
}

func New(name string, opts Options) *Model {
	if opts == nil {
		opts = Options{}
	}
	return &Model{
		Name:               name,
		Options:            opts,
		Variables:          submodel.NewRegistry(),
		RHS:                submodel.NewEquationMap(),
		Algebraic:          submodel.NewEquationMap(),
		InitialConditions:  submodel.NewEquationMap(),
		BoundaryConditions: make(map[string]submodel.Boundary),
	}
}

// AddSubmodel appends s under key. Submodels run in insertion order.
func (m *Model) AddSubmodel(key string, s submodel.Submodel) error {
	for _, e := range m.submodels {
		if e.name == key {
			return fmt.Errorf("%w: %q", ErrDuplicateSubmodel, key)
		}
	}
	m.submodels = append(m.submodels, entry{name: key, sub: s})
	return nil
}

// Submodels returns the submodel keys in call order.
func (m *Model) Submodels() []string {
	names := make([]string, len(m.submodels))
	for i, e := range m.submodels {
		names[i] = e.name
	}
	return names
}

// Built reports whether Build succeeded.
func (m *Model) Built() bool { return m.built }

// Build runs the submodel pipeline: fundamental variables for every
// submodel, then coupled variables for every submodel, then the equation
// stages, then Check. The pipeline runs once; later calls return the
// first outcome.
func (m *Model) Build() error {
	if m.built || m.buildErr != nil {
		return m.buildErr
	}
	m.buildErr = m.build()
	m.built = m.buildErr == nil
	return m.buildErr
}

func (m *Model) build() error {
	log := logging.L().With("model", m.Name)
	log.Info("building model", "submodels", len(m.submodels))

	for _, e := range m.submodels {
		vars, err := e.sub.GetFundamentalVariables()
		if err != nil {
			return fmt.Errorf("model: %s fundamental variables: %w", e.name, err)
		}
		m.Variables.Merge(vars)
	}

	for _, e := range m.submodels {
		vars, err := e.sub.GetCoupledVariables(submodel.Scope(m.Variables, e.name))
		if err != nil {
			return fmt.Errorf("model: %s coupled variables: %w", e.name, err)
		}
		m.Variables.Merge(vars)
	}

	for _, e := range m.submodels {
		if err := m.collect(e); err != nil {
			return err
		}
		log.Debug("submodel absorbed", "submodel", e.name)
	}

	m.assembled = true
	if err := m.Check(); err != nil {
		return err
	}
	log.Info("model built", "rhs", m.RHS.Len(), "algebraic", m.Algebraic.Len(), "variables", m.Variables.Len())
	return nil
}

func (m *Model) collect(e entry) error {
	vars := submodel.Scope(m.Variables, e.name)
	stages := []struct {
		name string
		fn   func(submodel.Lookup) error
	}{
		{"rhs", e.sub.SetRHS},
		{"algebraic", e.sub.SetAlgebraic},
		{"initial conditions", e.sub.SetInitialConditions},
		{"boundary conditions", e.sub.SetBoundaryConditions},
	}
	for _, st := range stages {
		if err := st.fn(vars); err != nil {
			return fmt.Errorf("model: %s %s: %w", e.name, st.name, err)
		}
	}

	eqs := e.sub.Equations()
	if err := m.RHS.Merge(eqs.RHS); err != nil {
		return &NotWellPosedError{Variable: e.name, Reason: err.Error()}
	}
	if err := m.Algebraic.Merge(eqs.Algebraic); err != nil {
		return &NotWellPosedError{Variable: e.name, Reason: err.Error()}
	}
	if err := m.InitialConditions.Merge(eqs.InitialConditions); err != nil {
		return &NotWellPosedError{Variable: e.name, Reason: err.Error()}
	}
	for name, bc := range eqs.BoundaryConditions {
		m.BoundaryConditions[name] = bc
	}
	m.Events = append(m.Events, eqs.Events...)
	return nil
}

// States returns the state variables in solve order: RHS keys then
// algebraic keys.
func (m *Model) States() []*expr.Variable {
	var out []*expr.Variable
	for _, eq := range m.RHS.Entries() {
		out = append(out, eq.Var)
	}
	for _, eq := range m.Algebraic.Entries() {
		out = append(out, eq.Var)
	}
	return out
}
