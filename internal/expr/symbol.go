package expr

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Spatial regions of a cell, in canonical through-cell order.
const (
	NegativeElectrode = "negative electrode"
	Separator         = "separator"
	PositiveElectrode = "positive electrode"
	CurrentCollector  = "current collector"
)

// CanonicalOrder is the order regions must follow in every concatenation.
var CanonicalOrder = []string{NegativeElectrode, Separator, PositiveElectrode}

// AuxiliaryDomains holds the secondary/tertiary domains of a node.
type AuxiliaryDomains map[string][]string

func (a AuxiliaryDomains) Secondary() []string { return a["secondary"] }

type Symbol interface {
	ID() uint64
	Name() string
	Domain() []string
	AuxiliaryDomains() AuxiliaryDomains
	Children() []Symbol
	String() string
	Evaluate(t float64, y []float64, inputs Inputs) ([]float64, error)

	withChildren(children []Symbol) Symbol
}

var nextID atomic.Uint64

type node struct {
	id       uint64
	name     string
	domain   []string
	aux      AuxiliaryDomains
	children []Symbol
}

func newNode(name string, domain []string, aux AuxiliaryDomains, children ...Symbol) node {
	return node{
		id:       nextID.Add(1),
		name:     name,
		domain:   append([]string(nil), domain...),
		aux:      aux,
		children: children,
	}
}

func (n *node) ID() uint64                         { return n.id }
func (n *node) Name() string                       { return n.name }
func (n *node) Domain() []string                   { return n.domain }
func (n *node) AuxiliaryDomains() AuxiliaryDomains { return n.aux }
func (n *node) Children() []Symbol                 { return n.children }

// Scalar is a constant number.
type Scalar struct {
	node
	Value float64
}

func NewScalar(v float64) *Scalar {
	return &Scalar{node: newNode(strconv.FormatFloat(v, 'g', -1, 64), nil, nil), Value: v}
}

func (s *Scalar) String() string { return s.name }

func (s *Scalar) Evaluate(float64, []float64, Inputs) ([]float64, error) {
	return []float64{s.Value}, nil
}

func (s *Scalar) withChildren([]Symbol) Symbol { return s }

// Vector is a constant column, typically produced by the discretiser.
type Vector struct {
	node
	Values []float64
}

func NewVector(values []float64, domain []string) *Vector {
	return &Vector{
		node:   newNode("vector", domain, nil),
		Values: append([]float64(nil), values...),
	}
}

func (v *Vector) String() string { return fmt.Sprintf("vector(%d)", len(v.Values)) }

func (v *Vector) Evaluate(float64, []float64, Inputs) ([]float64, error) {
	return append([]float64(nil), v.Values...), nil
}

func (v *Vector) withChildren([]Symbol) Symbol { return v }

// Parameter is a named constant resolved from a parameter set before
// discretisation.
type Parameter struct {
	node
}

func NewParameter(name string) *Parameter {
	return &Parameter{node: newNode(name, nil, nil)}
}

func (p *Parameter) String() string { return p.name }

func (p *Parameter) Evaluate(float64, []float64, Inputs) ([]float64, error) {
	return nil, fmt.Errorf("%w: %q", ErrUnprocessedParameter, p.name)
}

func (p *Parameter) withChildren([]Symbol) Symbol { return p }

// InputParameter is a named value supplied at solve time.
type InputParameter struct {
	node
}

func NewInputParameter(name string) *InputParameter {
	return &InputParameter{node: newNode(name, nil, nil)}
}

func (p *InputParameter) String() string { return p.name }

func (p *InputParameter) Evaluate(_ float64, _ []float64, inputs Inputs) ([]float64, error) {
	v, ok := inputs[p.name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingInput, p.name)
	}
	return []float64{v}, nil
}

func (p *InputParameter) withChildren([]Symbol) Symbol { return p }

// Time is the independent variable t.
type Time struct {
	node
}

func NewTime() *Time { return &Time{node: newNode("time", nil, nil)} }

func (t *Time) String() string { return "t" }

func (t *Time) Evaluate(tm float64, _ []float64, _ Inputs) ([]float64, error) {
	return []float64{tm}, nil
}

func (t *Time) withChildren([]Symbol) Symbol { return t }

// Variable is an unknown of the continuous model.
type Variable struct {
	node
	Bounds [2]float64
}

type VariableOption func(*Variable)

// WithBounds sets the physical lower and upper bound of a variable.
func WithBounds(lower, upper float64) VariableOption {
	return func(v *Variable) { v.Bounds = [2]float64{lower, upper} }
}

func WithAuxiliaryDomains(aux AuxiliaryDomains) VariableOption {
	return func(v *Variable) { v.aux = aux }
}

func NewVariable(name string, domain []string, opts ...VariableOption) *Variable {
	v := &Variable{
		node:   newNode(name, domain, nil),
		Bounds: [2]float64{math.Inf(-1), math.Inf(1)},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Variable) String() string { return v.name }

func (v *Variable) Evaluate(float64, []float64, Inputs) ([]float64, error) {
	return nil, fmt.Errorf("%w: %q", ErrNotDiscretised, v.name)
}

func (v *Variable) withChildren([]Symbol) Symbol { return v }

// StateVector reads y[Start:End].
type StateVector struct {
	node
	Start, End int
}

func NewStateVector(name string, start, end int, domain []string) *StateVector {
	return &StateVector{node: newNode(name, domain, nil), Start: start, End: end}
}

func (s *StateVector) String() string { return fmt.Sprintf("y[%d:%d]", s.Start, s.End) }

func (s *StateVector) Evaluate(_ float64, y []float64, _ Inputs) ([]float64, error) {
	if s.Start < 0 || s.End > len(y) || s.Start > s.End {
		return nil, fmt.Errorf("%w: [%d:%d] of %d", ErrStateIndex, s.Start, s.End, len(y))
	}
	return append([]float64(nil), y[s.Start:s.End]...), nil
}

func (s *StateVector) withChildren([]Symbol) Symbol { return s }

// Size is the number of entries the slice reads.
func (s *StateVector) Size() int { return s.End - s.Start }
