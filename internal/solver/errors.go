package solver

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSolver is the single error kind for failed solves. Every
	// *SolverError matches it with errors.Is.
	ErrSolver = errors.New("solver: could not find acceptable solution")

	ErrInvalidTimes   = errors.New("solver: evaluation times must be non-empty and non-decreasing")
	ErrUnknownSolver  = errors.New("solver: unknown solver")
	ErrNotODE         = errors.New("solver: model has algebraic equations")
	ErrNoDifferential = errors.New("solver: model has no differential equations")
)

// SolverError reports a failed solve with enough numeric context to
// diagnose it: the time point, the worst residual and the tolerance.
type SolverError struct {
	Msg         string
	Time        float64
	MaxResidual float64
	Tol         float64
	Err         error
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("solver: could not find acceptable solution at t=%g: %s", e.Time, e.Msg)
}

func (e *SolverError) Is(target error) bool { return target == ErrSolver }

func (e *SolverError) Unwrap() error { return e.Err }

func rootfinderFailure(t, tol float64, err error) *SolverError {
	return &SolverError{Msg: err.Error(), Time: t, MaxResidual: math.NaN(), Tol: tol, Err: err}
}

func nanFailure(t, tol float64) *SolverError {
	return &SolverError{Msg: "solver returned NaNs", Time: t, MaxResidual: math.NaN(), Tol: tol}
}

func toleranceFailure(t, worst, tol float64) *SolverError {
	return &SolverError{
		Msg:         fmt.Sprintf("solver terminated successfully, but maximum solution error (%g) above tolerance (%g)", worst, tol),
		Time:        t,
		MaxResidual: worst,
		Tol:         tol,
	}
}
