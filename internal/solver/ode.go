package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/integrators"
	"github.com/san-kum/battsim/internal/logging"
	"github.com/san-kum/battsim/internal/solution"
)

// minStep bounds step-size reduction in adaptive stepping.
const minStep = 1e-12

// ODESolver integrates models without algebraic equations using an
// explicit integrator. Adaptive integrators control their own step size up
// to Options.MaxStep.
type ODESolver struct {
	Tol     float64
	Options Options
}

func NewODESolver(tol float64, opts Options) *ODESolver {
	return &ODESolver{Tol: tol, Options: opts.withDefaults()}
}

func (o *ODESolver) Name() string { return "ode" }

func (o *ODESolver) Solve(ctx context.Context, m Model, tEval []float64, inputs expr.Inputs) (*solution.Solution, error) {
	if err := validateTimes(tEval); err != nil {
		return nil, err
	}
	if m.LenRHSAndAlg() != m.LenRHS() {
		return nil, ErrNotODE
	}
	integ, err := integrators.New(o.Options.Integrator)
	if err != nil {
		return nil, err
	}
	log := logging.L().With("solver", o.Name(), "integrator", o.Options.Integrator)
	start := time.Now()

	sys := integrators.SystemFunc(m.RHS)
	step := func(t, h float64, y []float64) ([]float64, float64, error) {
		yNew, err := integ.Step(sys, y, inputs, t, h)
		if err != nil {
			return nil, 0, &SolverError{Msg: err.Error(), Time: t, Tol: o.Tol, Err: err}
		}
		return yNew, h, nil
	}
	if ai, ok := integ.(integrators.AdaptiveIntegrator); ok {
		dt := o.Options.MaxStep
		step = func(t, h float64, y []float64) ([]float64, float64, error) {
			h = min(h, dt)
			for {
				yNew, next, accepted, err := ai.StepAdaptive(sys, y, inputs, t, h, o.Tol)
				if err != nil {
					return nil, 0, &SolverError{Msg: err.Error(), Time: t, Tol: o.Tol, Err: err}
				}
				dt = min(next, o.Options.MaxStep)
				if accepted {
					return yNew, h, nil
				}
				if dt < minStep {
					return nil, 0, &SolverError{Msg: fmt.Sprintf("step size %g below minimum", dt), Time: t, Tol: o.Tol}
				}
				h = dt
			}
		}
	}

	res, err := march(ctx, tEval, m.InitialState(), o.Options.MaxStep, step, events(m), inputs)
	if err != nil {
		return nil, err
	}

	sol := solution.New(res.times, res.matrix(), variableSource(m), inputs)
	sol.Solver = o.Name()
	sol.Termination = res.termination
	sol.IntegrationTime = time.Since(start)
	sol.SolveTime = sol.IntegrationTime
	log.Info("ode solve finished", "termination", sol.Termination, "integration", sol.IntegrationTime)
	return sol, nil
}
