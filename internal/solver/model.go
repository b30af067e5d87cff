package solver

import (
	"context"
	"fmt"

	"github.com/san-kum/battsim/internal/discretisation"
	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/solution"
)

// Model is what the solvers need from a discretised model. y is ordered
// differential block first, then algebraic block.
type Model interface {
	Algebraic(t float64, y []float64, inputs expr.Inputs) ([]float64, error)
	RHS(t float64, y []float64, inputs expr.Inputs) ([]float64, error)
	InitialState() []float64
	LenRHS() int
	LenRHSAndAlg() int
	Bounds() (lower, upper []float64)
	HasRHS() bool
	Fingerprint() uint64
}

// EventModel is a Model with termination events.
type EventModel interface {
	Model
	Events() []discretisation.Event
}

// Solver integrates a model over the requested times.
type Solver interface {
	Name() string
	Solve(ctx context.Context, m Model, tEval []float64, inputs expr.Inputs) (*solution.Solution, error)
}

func variableSource(m Model) solution.VariableSource {
	if vs, ok := m.(solution.VariableSource); ok {
		return vs
	}
	return nil
}

func events(m Model) []discretisation.Event {
	if em, ok := m.(EventModel); ok {
		return em.Events()
	}
	return nil
}

func validateTimes(tEval []float64) error {
	if len(tEval) == 0 {
		return ErrInvalidTimes
	}
	for i := 1; i < len(tEval); i++ {
		if tEval[i] < tEval[i-1] {
			return fmt.Errorf("%w: t[%d]=%g < t[%d]=%g", ErrInvalidTimes, i, tEval[i], i-1, tEval[i-1])
		}
	}
	return nil
}
