package sim

import (
	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/solution"
	"github.com/san-kum/battsim/internal/solver"
)

// SolverFactory builds a fresh solver. Solvers own their caches and are not
// shared between goroutines, so sweeps build one per worker.
type SolverFactory func() (solver.Solver, error)

// Observer is told about every finished solve.
type Observer interface {
	OnSolve(run Run)
}

type ObserverFunc func(run Run)

func (f ObserverFunc) OnSolve(run Run) { f(run) }

// Run is one solve of a simulation.
type Run struct {
	Inputs   expr.Inputs
	Solution *solution.Solution
	Err      error
}

type SimError struct {
	Inputs  expr.Inputs
	Message string
	Err     error
}

func (e SimError) Error() string {
	if len(e.Inputs) == 0 {
		return "sim: " + e.Message + ": " + e.Err.Error()
	}
	return "sim: " + e.Message + " (inputs " + e.Inputs.Key() + "): " + e.Err.Error()
}

func (e SimError) Unwrap() error { return e.Err }
