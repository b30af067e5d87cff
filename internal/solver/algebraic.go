package solver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/logging"
	"github.com/san-kum/battsim/internal/solution"
)

// AlgebraicSolver finds, at every requested time, algebraic states that
// zero the model's algebraic residual. The differential block is held at
// its initial value, so the solver also serves as a consistent
// initialisation step for DAE solvers.
type AlgebraicSolver struct {
	Tol         float64
	Sensitivity Sensitivity
	Options     Options

	// NewRootfinder builds the per-model rootfinder. Defaults to NewNewton.
	NewRootfinder RootfinderFactory

	caches
}

func NewAlgebraicSolver(tol float64, sens Sensitivity, opts Options) *AlgebraicSolver {
	if sens == "" {
		sens = SensitivityNone
	}
	return &AlgebraicSolver{
		Tol:           tol,
		Sensitivity:   sens,
		Options:       opts.withDefaults(),
		NewRootfinder: NewNewton,
		caches:        newCaches(),
	}
}

func (s *AlgebraicSolver) Name() string { return "algebraic" }

func (s *AlgebraicSolver) Solve(ctx context.Context, m Model, tEval []float64, inputs expr.Inputs) (*solution.Solution, error) {
	if err := validateTimes(tEval); err != nil {
		return nil, err
	}
	s.ensure()
	log := logging.L().With("solver", s.Name(), "sensitivity", string(s.Sensitivity))
	start := time.Now()

	if s.Sensitivity == SensitivityDeferred {
		traj := s.deferred(m, tEval, log)
		// resolve once so failures surface here and the first Resolve by
		// the caller is a memo hit
		if _, err := traj.Resolve(inputs); err != nil {
			return nil, err
		}
		sol := solution.NewDeferred(tEval, traj.Resolve, variableSource(m), inputs)
		sol.Solver = s.Name()
		sol.SolveTime = time.Since(start)
		sol.IntegrationTime = sol.SolveTime
		return sol, nil
	}

	y0 := m.InitialState()
	ok, err := s.satisfied(m, y0, tEval, inputs)
	if err != nil {
		return nil, err
	}
	if ok {
		log.Debug("initial guess within tolerance at every time", "times", len(tEval))
		lenRHS := diffLen(m, y0, inputs)
		y := mat.NewDense(len(y0), len(tEval), nil)
		sens := s.newSensitivities(len(y0), len(tEval), inputs)
		for j, t := range tEval {
			y.SetCol(j, y0)
			if err := fillSensitivities(sens, m, t, j, lenRHS, y0, inputs); err != nil {
				return nil, rootfinderFailure(t, s.Tol, err)
			}
		}
		sol := solution.New(tEval, y, variableSource(m), inputs)
		sol.Solver = s.Name()
		sol.Sensitivities = sens
		sol.SolveTime = time.Since(start)
		return sol, nil
	}

	setUp := time.Since(start)
	integStart := time.Now()
	y, sens, err := s.integrate(ctx, m, y0, tEval, inputs, true, log)
	if err != nil {
		return nil, err
	}

	sol := solution.New(tEval, y, variableSource(m), inputs)
	sol.Solver = s.Name()
	sol.Sensitivities = sens
	sol.SetUpTime = setUp
	sol.IntegrationTime = time.Since(integStart)
	sol.SolveTime = time.Since(start)
	log.Info("algebraic solve finished", "times", len(tEval), "integration", sol.IntegrationTime)
	return sol, nil
}

// satisfied reports whether y0 already meets the tolerance at every time.
func (s *AlgebraicSolver) satisfied(m Model, y0, tEval []float64, inputs expr.Inputs) (bool, error) {
	for _, t := range tEval {
		r, err := m.Algebraic(t, y0, inputs)
		if err != nil {
			return false, rootfinderFailure(t, s.Tol, err)
		}
		if !finite(r) || maxAbs(r) >= s.Tol {
			return false, nil
		}
	}
	return true, nil
}

// integrate solves the algebraic block time point by time point, each
// solve starting from the previous accepted state.
func (s *AlgebraicSolver) integrate(ctx context.Context, m Model, y0, tEval []float64, inputs expr.Inputs, checkReuse bool, log *slog.Logger) (*mat.Dense, map[string]*mat.Dense, error) {
	lenRHS := diffLen(m, y0, inputs)
	yDiff := y0[:lenRHS]
	yAlg := append([]float64(nil), y0[lenRHS:]...)
	rf := s.rootfinder(m, lenRHS, len(yAlg), log)

	full := func(x []float64) []float64 {
		y := make([]float64, 0, len(y0))
		return append(append(y, yDiff...), x...)
	}

	sens := s.newSensitivities(len(y0), len(tEval), inputs)

	out := mat.NewDense(len(y0), len(tEval), nil)
	for j, t := range tEval {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("solver: interrupted at t=%g: %w", t, err)
		}

		g := func(x []float64) ([]float64, error) {
			return m.Algebraic(t, full(x), inputs)
		}
		r, err := g(yAlg)
		if err != nil {
			return nil, nil, rootfinderFailure(t, s.Tol, err)
		}

		if checkReuse && finite(r) && maxAbs(r) < s.Tol {
			log.Debug("reusing guess", "t", t)
		} else {
			x, err := rf.FindRoot(g, yAlg)
			if err != nil {
				return nil, nil, rootfinderFailure(t, s.Tol, err)
			}
			r, err := g(x)
			if err != nil {
				return nil, nil, rootfinderFailure(t, s.Tol, err)
			}
			if !finite(x) || !finite(r) {
				return nil, nil, nanFailure(t, s.Tol)
			}
			if worst := maxAbs(r); worst >= s.Tol {
				return nil, nil, toleranceFailure(t, worst, s.Tol)
			}
			yAlg = x
		}
		y := full(yAlg)
		out.SetCol(j, y)
		if err := fillSensitivities(sens, m, t, j, lenRHS, y, inputs); err != nil {
			return nil, nil, rootfinderFailure(t, s.Tol, err)
		}
	}
	return out, sens, nil
}

// diffLen is the length of the block held fixed. When y0 is stacked with
// one sensitivity column per input, that block widens accordingly.
func diffLen(m Model, y0 []float64, inputs expr.Inputs) int {
	lenRHS := m.LenRHS()
	if m.LenRHSAndAlg() != len(y0) {
		lenRHS *= len(inputs) + 1
	}
	return min(lenRHS, len(y0))
}

// newSensitivities allocates dy/dp per input, or nil when the solver does
// not track explicit forward sensitivities.
func (s *AlgebraicSolver) newSensitivities(n, times int, inputs expr.Inputs) map[string]*mat.Dense {
	if s.Sensitivity != SensitivityExplicitForward || len(inputs) == 0 {
		return nil
	}
	sens := make(map[string]*mat.Dense, len(inputs))
	for _, name := range inputs.Names() {
		sens[name] = mat.NewDense(n, times, nil)
	}
	return sens
}

// fillSensitivities writes the algebraic rows of dy/dp at column j.
func fillSensitivities(sens map[string]*mat.Dense, m Model, t float64, j, lenRHS int, y []float64, inputs expr.Inputs) error {
	if sens == nil {
		return nil
	}
	dxdp, err := forwardSensitivities(m, t, y[:lenRHS], y[lenRHS:], inputs)
	if err != nil {
		return err
	}
	for k, name := range inputs.Names() {
		for i := range y[lenRHS:] {
			sens[name].Set(lenRHS+i, j, dxdp.At(i, k))
		}
	}
	return nil
}

func (s *AlgebraicSolver) rootfinder(m Model, lenRHS, nAlg int, log *slog.Logger) Rootfinder {
	fp := m.Fingerprint()
	if rf, ok := s.rootfinders[fp]; ok {
		log.Debug("rootfinder cache hit", "fingerprint", fp)
		return rf
	}
	lower, upper := m.Bounds()
	lo := min(lenRHS, len(lower))
	up := min(lenRHS, len(upper))
	rf := s.NewRootfinder(fit(Constraints(lower[lo:], upper[up:]), nAlg), s.Tol, s.Options)
	s.rootfinders[fp] = rf
	return rf
}

func (s *AlgebraicSolver) ensure() {
	if s.rootfinders == nil || s.ySols == nil {
		s.caches = newCaches()
	}
	if s.NewRootfinder == nil {
		s.NewRootfinder = NewNewton
	}
	s.Options = s.Options.withDefaults()
}
