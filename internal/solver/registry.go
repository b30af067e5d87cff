package solver

import "fmt"

// Names lists the solvers New can build.
func Names() []string { return []string{"algebraic", "dae", "ode"} }

// New builds the named solver.
func New(name string, tol float64, sens Sensitivity, opts Options) (Solver, error) {
	switch name {
	case "algebraic":
		return NewAlgebraicSolver(tol, sens, opts), nil
	case "dae", "":
		return NewDAESolver(tol, opts), nil
	case "ode":
		return NewODESolver(tol, opts), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSolver, name)
}
