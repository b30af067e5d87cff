package discretisation

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/logging"
	"github.com/san-kum/battsim/internal/model"
	"github.com/san-kum/battsim/internal/parameters"
	"github.com/san-kum/battsim/internal/submodel"
)

// Discretisation converts built models on a fixed mesh.
type Discretisation struct {
	Mesh Mesh
}

func New(mesh Mesh) *Discretisation {
	if mesh == nil {
		mesh = DefaultMesh()
	}
	return &Discretisation{Mesh: mesh}
}

// StateSlice records where a state lives in y.
type StateSlice struct {
	Name       string
	Start, End int
	Algebraic  bool
}

type equation struct {
	state *expr.StateVector
	expr  expr.Symbol
}

// ProcessModel discretises m with parameter values params. inputs are only
// needed to evaluate initial conditions that depend on input parameters.
func (d *Discretisation) ProcessModel(m *model.Model, params *parameters.Values, inputs expr.Inputs) (*DiscreteModel, error) {
	if !m.Built() {
		return nil, model.ErrNotBuilt
	}
	log := logging.L().With("model", m.Name)

	slots := make(map[uint64]*expr.StateVector)
	var (
		offset int
		states []StateSlice
		lower  []float64
		upper  []float64
	)
	assign := func(eqs []submodel.Equation, algebraic bool) {
		for _, eq := range eqs {
			n := d.Mesh.Points(eq.Var.Domain())
			sv := expr.NewStateVector(eq.Var.Name(), offset, offset+n, eq.Var.Domain())
			slots[eq.Var.ID()] = sv
			states = append(states, StateSlice{Name: eq.Var.Name(), Start: offset, End: offset + n, Algebraic: algebraic})
			for range n {
				lower = append(lower, eq.Var.Bounds[0])
				upper = append(upper, eq.Var.Bounds[1])
			}
			offset += n
		}
	}
	assign(m.RHS.Entries(), false)
	lenRHS := offset
	assign(m.Algebraic.Entries(), true)

	process := func(sym expr.Symbol) (expr.Symbol, error) {
		sym, err := params.Process(sym)
		if err != nil {
			return nil, err
		}
		return expr.Map(sym, func(s expr.Symbol) (expr.Symbol, error) {
			switch n := s.(type) {
			case *expr.Variable:
				sv, ok := slots[n.ID()]
				if !ok {
					return nil, fmt.Errorf("%w: %q", ErrNotAState, n.Name())
				}
				return sv, nil
			case *expr.Broadcast:
				if n.Size == 0 {
					return n.Sized(d.Mesh.Points(n.Domain())), nil
				}
			}
			return s, nil
		})
	}

	processEquations := func(eqs []submodel.Equation) ([]equation, error) {
		out := make([]equation, len(eqs))
		for i, eq := range eqs {
			p, err := process(eq.Expr)
			if err != nil {
				return nil, fmt.Errorf("discretisation: equation for %q: %w", eq.Var.Name(), err)
			}
			out[i] = equation{state: slots[eq.Var.ID()], expr: p}
		}
		return out, nil
	}

	rhs, err := processEquations(m.RHS.Entries())
	if err != nil {
		return nil, err
	}
	alg, err := processEquations(m.Algebraic.Entries())
	if err != nil {
		return nil, err
	}
	ics := make([]equation, 0, len(states))
	for _, eq := range append(m.RHS.Entries(), m.Algebraic.Entries()...) {
		ic, _ := m.InitialConditions.Get(eq.Var)
		p, err := process(ic)
		if err != nil {
			return nil, fmt.Errorf("discretisation: initial condition for %q: %w", eq.Var.Name(), err)
		}
		ics = append(ics, equation{state: slots[eq.Var.ID()], expr: p})
	}

	dm := &DiscreteModel{
		Name:      m.Name,
		states:    states,
		lenRHS:    lenRHS,
		lenAll:    offset,
		lower:     lower,
		upper:     upper,
		variables: make(map[string]expr.Symbol),
		varErrs:   make(map[string]error),
	}
	if dm.rhs, err = compileEquations(rhs); err != nil {
		return nil, err
	}
	if dm.alg, err = compileEquations(alg); err != nil {
		return nil, err
	}
	if dm.ic, err = compileEquations(ics); err != nil {
		return nil, err
	}

	for _, ev := range m.Events {
		p, err := process(ev.Expr)
		if err != nil {
			return nil, fmt.Errorf("discretisation: event %q: %w", ev.Name, err)
		}
		f, err := expr.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("discretisation: event %q: %w", ev.Name, err)
		}
		dm.events = append(dm.events, NewEvent(ev.Name, ev.Type, f))
	}

	for _, name := range m.Variables.Names() {
		sym, _ := m.Variables.Get(name)
		p, err := process(sym)
		if err != nil {
			dm.varErrs[name] = err
			continue
		}
		dm.variables[name] = p
		dm.varNames = append(dm.varNames, name)
	}

	var all []expr.Symbol
	for _, group := range [][]equation{rhs, alg, ics} {
		for _, eq := range group {
			all = append(all, eq.state, eq.expr)
			dm.inputNames = appendInputs(dm.inputNames, eq.expr)
		}
	}
	slices.Sort(dm.inputNames)

	if dm.y0, err = dm.InitialStateFor(inputs); err != nil {
		return nil, err
	}
	// solvers key cached rootfinders and trajectories on the fingerprint,
	// so it covers the bounds and the starting state as well as the equations
	all = append(all, expr.NewVector(lower, nil), expr.NewVector(upper, nil))
	dm.structure = expr.Fingerprint(all...)
	dm.fingerprint = withState(dm.structure, dm.y0)

	log.Info("model discretised", "states", dm.lenAll, "rhs", dm.lenRHS, "events", len(dm.events))
	return dm, nil
}

func appendInputs(names []string, sym expr.Symbol) []string {
	expr.Walk(sym, func(s expr.Symbol) bool {
		if ip, ok := s.(*expr.InputParameter); ok && !slices.Contains(names, ip.Name()) {
			names = append(names, ip.Name())
		}
		return true
	})
	return names
}

// compileEquations stacks the equations in order. A scalar-valued equation
// for a multi-point state is repeated over the state's points.
func compileEquations(eqs []equation) (expr.Func, error) {
	parts := make([]expr.Func, len(eqs))
	for i, eq := range eqs {
		f, err := expr.Compile(eq.expr)
		if err != nil {
			return nil, fmt.Errorf("discretisation: %q: %w", eq.state.Name(), err)
		}
		parts[i] = sized(f, eq.state.Name(), eq.state.Size())
	}
	return func(t float64, y []float64, inputs expr.Inputs) ([]float64, error) {
		out := make([]float64, 0, len(y))
		for _, f := range parts {
			v, err := f(t, y, inputs)
			if err != nil {
				return nil, err
			}
			out = append(out, v...)
		}
		return out, nil
	}, nil
}

func sized(f expr.Func, name string, n int) expr.Func {
	return func(t float64, y []float64, inputs expr.Inputs) ([]float64, error) {
		v, err := f(t, y, inputs)
		if err != nil {
			return nil, err
		}
		switch {
		case len(v) == n:
			return v, nil
		case len(v) == 1:
			out := make([]float64, n)
			for i := range out {
				out[i] = v[0]
			}
			return out, nil
		}
		return nil, fmt.Errorf("%w: %q has %d entries, state has %d", ErrEquationSize, name, len(v), n)
	}
}

// Event is a compiled event function.
type Event struct {
	Name string
	Type submodel.EventType
	fn   expr.Func
}

// NewEvent wraps a compiled event expression.
func NewEvent(name string, typ submodel.EventType, fn expr.Func) Event {
	return Event{Name: name, Type: typ, fn: fn}
}

// Terminal reports whether the event stops a solve.
func (e Event) Terminal() bool { return e.Type == submodel.EventTermination }

// Evaluate returns the minimum of the event expression; the event fires
// when it drops below zero.
func (e Event) Evaluate(t float64, y []float64, inputs expr.Inputs) (float64, error) {
	v, err := e.fn(t, y, inputs)
	if err != nil {
		return 0, err
	}
	m := math.Inf(1)
	for _, x := range v {
		m = math.Min(m, x)
	}
	return m, nil
}
