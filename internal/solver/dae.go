package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/logging"
	"github.com/san-kum/battsim/internal/solution"
)

// DAESolver integrates semi-explicit DAEs with backward Euler. Initial
// algebraic states are made consistent with AlgebraicSolver first.
type DAESolver struct {
	Tol     float64
	Options Options

	init    *AlgebraicSolver
	newtons map[uint64]Rootfinder
}

func NewDAESolver(tol float64, opts Options) *DAESolver {
	return &DAESolver{
		Tol:     tol,
		Options: opts.withDefaults(),
		init:    NewAlgebraicSolver(tol, SensitivityNone, opts),
		newtons: make(map[uint64]Rootfinder),
	}
}

func (d *DAESolver) Name() string { return "dae" }

// CacheLen returns the number of cached step rootfinders.
func (d *DAESolver) CacheLen() int { return len(d.newtons) }

func (d *DAESolver) Solve(ctx context.Context, m Model, tEval []float64, inputs expr.Inputs) (*solution.Solution, error) {
	if err := validateTimes(tEval); err != nil {
		return nil, err
	}
	if !m.HasRHS() {
		return d.init.Solve(ctx, m, tEval, inputs)
	}
	log := logging.L().With("solver", d.Name())
	start := time.Now()

	init, err := d.init.Solve(ctx, m, tEval[:1], inputs)
	if err != nil {
		return nil, fmt.Errorf("solver: consistent initialisation: %w", err)
	}
	y0, err := init.Final()
	if err != nil {
		return nil, err
	}

	rf := d.rootfinder(m)
	lenRHS := m.LenRHS()
	step := func(t, h float64, y []float64) ([]float64, float64, error) {
		tNext := t + h
		residual := func(z []float64) ([]float64, error) {
			f, err := m.RHS(tNext, z, inputs)
			if err != nil {
				return nil, err
			}
			g, err := m.Algebraic(tNext, z, inputs)
			if err != nil {
				return nil, err
			}
			out := make([]float64, 0, len(z))
			for i := 0; i < lenRHS; i++ {
				out = append(out, (z[i]-y[i])/h-f[i])
			}
			return append(out, g...), nil
		}
		z, err := rf.FindRoot(residual, y)
		if err != nil {
			return nil, 0, rootfinderFailure(tNext, d.Tol, err)
		}
		return z, h, nil
	}

	setUp := time.Since(start)
	integStart := time.Now()
	res, err := march(ctx, tEval, y0, d.Options.MaxStep, step, events(m), inputs)
	if err != nil {
		return nil, err
	}

	sol := solution.New(res.times, res.matrix(), variableSource(m), inputs)
	sol.Solver = d.Name()
	sol.Termination = res.termination
	sol.SetUpTime = setUp
	sol.IntegrationTime = time.Since(integStart)
	sol.SolveTime = time.Since(start)
	log.Info("dae solve finished", "termination", sol.Termination, "t_end", res.times[len(res.times)-1], "integration", sol.IntegrationTime)
	return sol, nil
}

func (d *DAESolver) rootfinder(m Model) Rootfinder {
	fp := m.Fingerprint()
	if rf, ok := d.newtons[fp]; ok {
		return rf
	}
	lower, upper := m.Bounds()
	rf := NewNewton(Constraints(lower, upper), d.Tol, d.Options)
	d.newtons[fp] = rf
	return rf
}
