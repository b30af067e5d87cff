package discretisation

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/san-kum/battsim/internal/expr"
)

// DiscreteModel is a model in solver form: y = [differential | algebraic].
type DiscreteModel struct {
	Name string

	rhs, alg, ic expr.Func
	y0           []float64
	lenRHS       int
	lenAll       int
	lower, upper []float64
	states       []StateSlice
	events       []Event
	inputNames   []string
	structure    uint64
	fingerprint  uint64

	variables map[string]expr.Symbol
	varErrs   map[string]error
	varNames  []string

	mu       sync.Mutex
	compiled map[string]expr.Func
}

// RHS evaluates the time derivatives of the differential block.
func (d *DiscreteModel) RHS(t float64, y []float64, inputs expr.Inputs) ([]float64, error) {
	return d.rhs(t, y, inputs)
}

// Algebraic evaluates the algebraic residuals.
func (d *DiscreteModel) Algebraic(t float64, y []float64, inputs expr.Inputs) ([]float64, error) {
	return d.alg(t, y, inputs)
}

// InitialState returns a copy of y0.
func (d *DiscreteModel) InitialState() []float64 { return append([]float64(nil), d.y0...) }

// InitialStateFor evaluates the initial conditions for different inputs.
func (d *DiscreteModel) InitialStateFor(inputs expr.Inputs) ([]float64, error) {
	y0, err := d.ic(0, make([]float64, d.lenAll), inputs)
	if err != nil {
		return nil, fmt.Errorf("discretisation: initial conditions: %w", err)
	}
	return y0, nil
}

func (d *DiscreteModel) LenRHS() int       { return d.lenRHS }
func (d *DiscreteModel) LenAlgebraic() int { return d.lenAll - d.lenRHS }
func (d *DiscreteModel) LenRHSAndAlg() int { return d.lenAll }
func (d *DiscreteModel) HasRHS() bool      { return d.lenRHS > 0 }
func (d *DiscreteModel) Fingerprint() uint64 {
	return d.fingerprint
}

// Bounds returns per-entry lower and upper bounds of y.
func (d *DiscreteModel) Bounds() (lower, upper []float64) {
	return append([]float64(nil), d.lower...), append([]float64(nil), d.upper...)
}

// States lists the state slices in solve order.
func (d *DiscreteModel) States() []StateSlice { return d.states }

func (d *DiscreteModel) Events() []Event { return d.events }

// InputNames lists the input parameters the equations depend on, sorted.
func (d *DiscreteModel) InputNames() []string { return d.inputNames }

// VariableNames lists the registered variables that could be processed.
func (d *DiscreteModel) VariableNames() []string { return d.varNames }

// Variable returns the compiled function for a registered variable. Compiled
// functions are cached.
func (d *DiscreteModel) Variable(name string) (expr.Func, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if f, ok := d.compiled[name]; ok {
		return f, nil
	}
	if err, ok := d.varErrs[name]; ok {
		return nil, fmt.Errorf("discretisation: variable %q: %w", name, err)
	}
	sym, ok := d.variables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	f, err := expr.Compile(sym)
	if err != nil {
		return nil, fmt.Errorf("discretisation: variable %q: %w", name, err)
	}
	if d.compiled == nil {
		d.compiled = make(map[string]expr.Func)
	}
	d.compiled[name] = f
	return f, nil
}

// Bound is a DiscreteModel started from the initial state of one input
// set. Everything but InitialState and Fingerprint is shared with the
// underlying model.
type Bound struct {
	*DiscreteModel
	y0          []float64
	fingerprint uint64
}

// Bind evaluates the initial conditions for inputs. Models whose initial
// conditions do not depend on inputs come back with their usual y0.
func (d *DiscreteModel) Bind(inputs expr.Inputs) (*Bound, error) {
	y0, err := d.InitialStateFor(inputs)
	if err != nil {
		return nil, err
	}
	return &Bound{DiscreteModel: d, y0: y0, fingerprint: withState(d.structure, y0)}, nil
}

func (b *Bound) InitialState() []float64 { return append([]float64(nil), b.y0...) }
func (b *Bound) Fingerprint() uint64     { return b.fingerprint }

func withState(structure uint64, y0 []float64) uint64 {
	h := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], structure)
	_, _ = h.Write(buf[:])
	for _, v := range y0 {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
