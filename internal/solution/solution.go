// Package solution packages a solved trajectory with the model it came
// from, so named variables can be recomputed after the solve.
package solution

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/battsim/internal/expr"
)

var (
	// ErrDeferred indicates numeric values were requested from a deferred
	// trajectory without supplying inputs.
	ErrDeferred = errors.New("solution: deferred trajectory needs inputs")

	ErrNoModel = errors.New("solution: no model attached")
)

const (
	TerminationSuccess   = "success"
	TerminationFinalTime = "final time"
	terminationEvent     = "event: "
)

// EventTermination formats the termination reason for an event stop.
func EventTermination(name string) string { return terminationEvent + name }

// VariableSource recomputes named variables from states.
type VariableSource interface {
	Variable(name string) (expr.Func, error)
	VariableNames() []string
}

// Trajectory is a solve expressed as a function of the input parameters.
// Columns of the returned matrix are time points.
type Trajectory func(inputs expr.Inputs) (*mat.Dense, error)

// Solution is the result of one solve call. Apart from the timing fields
// it is not modified after construction.
type Solution struct {
	T           []float64
	Termination string
	Inputs      expr.Inputs
	Solver      string

	SetUpTime       time.Duration
	IntegrationTime time.Duration
	SolveTime       time.Duration

	// Sensitivities maps an input name to dy/dp, one column per time point.
	Sensitivities map[string]*mat.Dense

	model    VariableSource
	y        *mat.Dense
	deferred Trajectory
}

// New wraps a concrete trajectory. y has one column per entry of t.
func New(t []float64, y *mat.Dense, model VariableSource, inputs expr.Inputs) *Solution {
	return &Solution{
		T:           append([]float64(nil), t...),
		Termination: TerminationSuccess,
		Inputs:      inputs.Clone(),
		model:       model,
		y:           y,
	}
}

// NewDeferred wraps a trajectory that is only evaluated once inputs are
// supplied through Resolve.
func NewDeferred(t []float64, traj Trajectory, model VariableSource, inputs expr.Inputs) *Solution {
	return &Solution{
		T:           append([]float64(nil), t...),
		Termination: TerminationSuccess,
		Inputs:      inputs.Clone(),
		model:       model,
		deferred:    traj,
	}
}

func (s *Solution) IsDeferred() bool { return s.deferred != nil }

// Model returns the source used for variable post-processing.
func (s *Solution) Model() VariableSource { return s.model }

// Y returns the state matrix of a concrete solution.
func (s *Solution) Y() (*mat.Dense, error) {
	if s.deferred != nil {
		return nil, ErrDeferred
	}
	return s.y, nil
}

// Resolve returns the state matrix for inputs. Concrete solutions ignore
// inputs.
func (s *Solution) Resolve(inputs expr.Inputs) (*mat.Dense, error) {
	if s.deferred == nil {
		return s.y, nil
	}
	y, err := s.deferred(inputs)
	if err != nil {
		return nil, fmt.Errorf("solution: resolve: %w", err)
	}
	return y, nil
}

// Realise resolves a deferred solution into a concrete one bound to inputs.
func (s *Solution) Realise(inputs expr.Inputs) (*Solution, error) {
	y, err := s.Resolve(inputs)
	if err != nil {
		return nil, err
	}
	out := New(s.T, y, s.model, inputs)
	out.Termination = s.Termination
	out.Solver = s.Solver
	out.SetUpTime, out.IntegrationTime, out.SolveTime = s.SetUpTime, s.IntegrationTime, s.SolveTime
	out.Sensitivities = s.Sensitivities
	return out, nil
}

// State returns the state vector at time index i.
func (s *Solution) State(i int) ([]float64, error) {
	y, err := s.Y()
	if err != nil {
		return nil, err
	}
	return mat.Col(nil, i, y), nil
}

// Final returns the last state vector.
func (s *Solution) Final() ([]float64, error) {
	return s.State(len(s.T) - 1)
}

// Variable re-evaluates the named variable at every stored time point.
func (s *Solution) Variable(name string) (*ProcessedVariable, error) {
	if s.model == nil {
		return nil, ErrNoModel
	}
	y, err := s.Y()
	if err != nil {
		return nil, err
	}
	f, err := s.model.Variable(name)
	if err != nil {
		return nil, err
	}

	var entries *mat.Dense
	for i, t := range s.T {
		v, err := f(t, mat.Col(nil, i, y), s.Inputs)
		if err != nil {
			return nil, fmt.Errorf("solution: %q at t=%g: %w", name, t, err)
		}
		if entries == nil {
			entries = mat.NewDense(len(v), len(s.T), nil)
		}
		r, _ := entries.Dims()
		if len(v) != r {
			return nil, fmt.Errorf("solution: %q changed size from %d to %d", name, r, len(v))
		}
		entries.SetCol(i, v)
	}
	return &ProcessedVariable{Name: name, T: s.T, Entries: entries}, nil
}
