package solver

import (
	"math"

	"github.com/san-kum/battsim/internal/discretisation"
	"github.com/san-kum/battsim/internal/expr"
)

type vecFunc func(t float64, y []float64, inputs expr.Inputs) ([]float64, error)

// fakeModel is a hand-written discrete model; fp must differ between
// models sharing a solver.
type fakeModel struct {
	fp           uint64
	lenRHS       int
	lenAll       int
	y0           []float64
	lower, upper []float64
	alg, rhs     vecFunc
	events       []discretisation.Event
}

func (f *fakeModel) Algebraic(t float64, y []float64, in expr.Inputs) ([]float64, error) {
	if f.alg == nil {
		return nil, nil
	}
	return f.alg(t, y, in)
}

func (f *fakeModel) RHS(t float64, y []float64, in expr.Inputs) ([]float64, error) {
	if f.rhs == nil {
		return nil, nil
	}
	return f.rhs(t, y, in)
}

func (f *fakeModel) InitialState() []float64 { return append([]float64(nil), f.y0...) }
func (f *fakeModel) LenRHS() int             { return f.lenRHS }
func (f *fakeModel) HasRHS() bool            { return f.lenRHS > 0 }
func (f *fakeModel) Fingerprint() uint64     { return f.fp }

// LenRHSAndAlg is the unstacked state length; lenAll overrides it when y0
// carries sensitivity columns.
func (f *fakeModel) LenRHSAndAlg() int {
	if f.lenAll > 0 {
		return f.lenAll
	}
	return len(f.y0)
}

func (f *fakeModel) Events() []discretisation.Event { return f.events }

func (f *fakeModel) Bounds() (lower, upper []float64) {
	lower, upper = f.lower, f.upper
	if lower == nil {
		lower = fill(len(f.y0), math.Inf(-1))
	}
	if upper == nil {
		upper = fill(len(f.y0), math.Inf(1))
	}
	return lower, upper
}

func fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// minusFive is residual(y) = y - 5.
func minusFive(y0 float64) *fakeModel {
	return &fakeModel{
		fp: 1,
		y0: []float64{y0},
		alg: func(_ float64, y []float64, _ expr.Inputs) ([]float64, error) {
			return []float64{y[0] - 5}, nil
		},
	}
}

// countingRootfinder records calls and delegates to a real rootfinder or a
// fixed answer.
type countingRootfinder struct {
	calls  int
	answer []float64
	inner  Rootfinder
}

func (c *countingRootfinder) FindRoot(g Residual, guess []float64) ([]float64, error) {
	c.calls++
	if c.answer != nil {
		return append([]float64(nil), c.answer...), nil
	}
	return c.inner.FindRoot(g, guess)
}

func counting(rf *countingRootfinder) RootfinderFactory {
	return func(c []Constraint, tol float64, opts Options) Rootfinder {
		if rf.inner == nil && rf.answer == nil {
			rf.inner = NewNewton(c, tol, opts)
		}
		return rf
	}
}
