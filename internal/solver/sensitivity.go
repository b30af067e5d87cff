package solver

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/battsim/internal/expr"
)

// forwardSensitivities returns dx/dp at a solved point by differentiating
// g(x, p) = 0: J_x dx/dp = -J_p. Rows follow x, columns follow the sorted
// input names.
func forwardSensitivities(m Model, t float64, yDiff, x []float64, inputs expr.Inputs) (*mat.Dense, error) {
	names := inputs.Names()
	if len(x) == 0 {
		return mat.NewDense(1, len(names), nil), nil
	}
	full := func(x []float64) []float64 {
		return append(append([]float64(nil), yDiff...), x...)
	}

	jx := mat.NewDense(len(x), len(x), nil)
	err := jacobian(jx, func(xv []float64) ([]float64, error) {
		return m.Algebraic(t, full(xv), inputs)
	}, x)
	if err != nil {
		return nil, err
	}

	jp := mat.NewDense(len(x), len(names), nil)
	err = jacobian(jp, func(p []float64) ([]float64, error) {
		in := make(expr.Inputs, len(names))
		for i, name := range names {
			in[name] = p[i]
		}
		return m.Algebraic(t, full(x), in)
	}, inputs.Vector())
	if err != nil {
		return nil, err
	}

	var lu mat.LU
	lu.Factorize(jx)
	var dxdp mat.Dense
	if err := lu.SolveTo(&dxdp, false, jp); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, err
		}
	}
	dxdp.Scale(-1, &dxdp)
	return &dxdp, nil
}

// initialiser is a model whose initial state depends on the inputs.
type initialiser interface {
	InitialStateFor(inputs expr.Inputs) ([]float64, error)
}

// deferredTrajectory is a solve kept as a function of the inputs. Results
// are memoised per input binding, so repeated resolves are bit-identical.
type deferredTrajectory struct {
	solver *AlgebraicSolver
	model  Model
	tEval  []float64
	memo   map[string]*mat.Dense
	log    *slog.Logger
}

func (s *AlgebraicSolver) deferred(m Model, tEval []float64, log *slog.Logger) *deferredTrajectory {
	fp := m.Fingerprint()
	if d, ok := s.ySols[fp]; ok && slices.Equal(d.tEval, tEval) {
		log.Debug("deferred trajectory cache hit", "fingerprint", fp)
		return d
	}
	d := &deferredTrajectory{
		solver: s,
		model:  m,
		tEval:  append([]float64(nil), tEval...),
		memo:   make(map[string]*mat.Dense),
		log:    log,
	}
	s.ySols[fp] = d
	return d
}

// Resolve evaluates the trajectory for inputs. The guess is never reused
// without a rootfinder pass in this mode.
func (d *deferredTrajectory) Resolve(inputs expr.Inputs) (*mat.Dense, error) {
	key := inputs.Key()
	if y, ok := d.memo[key]; ok {
		return mat.DenseCopyOf(y), nil
	}
	y0 := d.model.InitialState()
	if ini, ok := d.model.(initialiser); ok {
		var err error
		if y0, err = ini.InitialStateFor(inputs); err != nil {
			return nil, err
		}
	}
	y, _, err := d.solver.integrate(context.Background(), d.model, y0, d.tEval, inputs, false, d.log)
	if err != nil {
		return nil, err
	}
	d.memo[key] = y
	return mat.DenseCopyOf(y), nil
}
