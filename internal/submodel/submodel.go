package submodel

import (
	"github.com/san-kum/battsim/internal/expr"
)

// Submodel is a physics unit contributing to one shared equation system.
// The assembler calls the stages in this order across all submodels:
//
//	GetFundamentalVariables
//	GetCoupledVariables
//	SetRHS
//	SetAlgebraic
//	SetInitialConditions
//	SetBoundaryConditions
//
// Fundamental variables must not depend on any other submodel. Coupled
// variables may read anything already registered and return a LookupError
// when a required name is absent.
type Submodel interface {
	Name() string
	GetFundamentalVariables() (Variables, error)
	GetCoupledVariables(vars Lookup) (Variables, error)
	SetRHS(vars Lookup) error
	SetAlgebraic(vars Lookup) error
	SetInitialConditions(vars Lookup) error
	SetBoundaryConditions(vars Lookup) error
	Equations() *Contributions
}

// Contributions are the equations a submodel has populated.
type Contributions struct {
	RHS                *EquationMap
	Algebraic          *EquationMap
	InitialConditions  *EquationMap
	BoundaryConditions map[string]Boundary
	Events             []Event
}

// Boundary holds left/right boundary values of a named variable.
type Boundary struct {
	Left, Right expr.Symbol
}

// EventType distinguishes events that stop the solve from ones only
// reported.
type EventType int

const (
	EventTermination EventType = iota
	EventDiscontinuity
)

// Event is triggered when Expr crosses zero from above.
type Event struct {
	Name string
	Expr expr.Symbol
	Type EventType
}

// Params is the parameter-set reference a submodel is constructed with.
type Params interface {
	Symbol(name string) expr.Symbol
}

// Base provides the collections and no-op stages; concrete submodels embed
// it and override the stages they use.
type Base struct {
	name  string
	Param Params
	eqs   *Contributions
}

func NewBase(name string, param Params) Base {
	return Base{
		name:  name,
		Param: param,
		eqs: &Contributions{
			RHS:                NewEquationMap(),
			Algebraic:          NewEquationMap(),
			InitialConditions:  NewEquationMap(),
			BoundaryConditions: make(map[string]Boundary),
		},
	}
}

func (b *Base) Name() string { return b.name }

func (b *Base) GetFundamentalVariables() (Variables, error)  { return Variables{}, nil }
func (b *Base) GetCoupledVariables(Lookup) (Variables, error) { return Variables{}, nil }
func (b *Base) SetRHS(Lookup) error                           { return nil }
func (b *Base) SetAlgebraic(Lookup) error                     { return nil }
func (b *Base) SetInitialConditions(Lookup) error             { return nil }
func (b *Base) SetBoundaryConditions(Lookup) error            { return nil }

func (b *Base) Equations() *Contributions { return b.eqs }

// AddRHS records d(state)/dt = e.
func (b *Base) AddRHS(state expr.Symbol, e expr.Symbol) error {
	v, err := AsVariable(state)
	if err != nil {
		return err
	}
	return b.eqs.RHS.Insert(v, e)
}

// AddAlgebraic records 0 = e for state.
func (b *Base) AddAlgebraic(state expr.Symbol, e expr.Symbol) error {
	v, err := AsVariable(state)
	if err != nil {
		return err
	}
	return b.eqs.Algebraic.Insert(v, e)
}

func (b *Base) AddInitialCondition(state expr.Symbol, e expr.Symbol) error {
	v, err := AsVariable(state)
	if err != nil {
		return err
	}
	return b.eqs.InitialConditions.Insert(v, e)
}

func (b *Base) AddBoundaryCondition(name string, left, right expr.Symbol) {
	b.eqs.BoundaryConditions[name] = Boundary{Left: left, Right: right}
}

func (b *Base) AddEvent(name string, e expr.Symbol, typ EventType) {
	b.eqs.Events = append(b.eqs.Events, Event{Name: name, Expr: e, Type: typ})
}

// Require fetches several names at once, failing on the first missing one.
func Require(vars Lookup, names ...string) ([]expr.Symbol, error) {
	out := make([]expr.Symbol, len(names))
	for i, name := range names {
		sym, err := vars.Get(name)
		if err != nil {
			return nil, err
		}
		out[i] = sym
	}
	return out, nil
}
