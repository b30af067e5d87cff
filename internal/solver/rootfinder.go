package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotConverged     = errors.New("newton: did not converge")
	ErrSingularJacobian = errors.New("newton: singular jacobian")
	ErrNonFinite        = errors.New("newton: residual is not finite")
)

// Residual is an algebraic residual over the unknowns x only.
type Residual func(x []float64) ([]float64, error)

// Rootfinder drives a residual to zero from a starting guess.
type Rootfinder interface {
	FindRoot(g Residual, guess []float64) ([]float64, error)
}

// RootfinderFactory builds a rootfinder for one model. It is called once per
// model fingerprint and the result is cached.
type RootfinderFactory func(constraints []Constraint, tol float64, opts Options) Rootfinder

// Newton is a damped Newton method with a finite-difference Jacobian. Steps
// are shortened so constrained entries never leave their feasible region,
// then halved until the residual norm decreases. An entry pinned at its
// bound with the step pointing outward has that component of the step
// mirrored back into the feasible region.
type Newton struct {
	Constraints []Constraint
	Tol         float64
	MaxIter     int
	MinDamping  float64
}

func NewNewton(constraints []Constraint, tol float64, opts Options) Rootfinder {
	return &Newton{
		Constraints: constraints,
		Tol:         tol,
		MaxIter:     opts.MaxIterations,
		MinDamping:  opts.MinDamping,
	}
}

func (n *Newton) FindRoot(g Residual, guess []float64) ([]float64, error) {
	x := n.project(guess)
	r, err := g(x)
	if err != nil {
		return nil, err
	}
	if len(r) != len(x) {
		return nil, fmt.Errorf("newton: %d residuals for %d unknowns", len(r), len(x))
	}

	jac := mat.NewDense(len(x), len(x), nil)
	for iter := 0; ; iter++ {
		if !finite(r) {
			return nil, fmt.Errorf("%w at iteration %d", ErrNonFinite, iter)
		}
		worst := maxAbs(r)
		if worst < n.Tol {
			return x, nil
		}
		if iter >= n.MaxIter {
			return nil, fmt.Errorf("%w after %d iterations (max residual %g)", ErrNotConverged, iter, worst)
		}

		if err := jacobian(jac, g, x); err != nil {
			return nil, err
		}
		dx, err := newtonStep(jac, r)
		if err != nil {
			return nil, fmt.Errorf("%w at iteration %d: %v", ErrSingularJacobian, iter, err)
		}

		norm := floats.Norm(r, 2)
		alpha, blocked := n.feasibleStep(x, dx)
		if alpha == 0 {
			for _, i := range blocked {
				dx[i] = -dx[i]
			}
			alpha, _ = n.feasibleStep(x, dx)
		}
		for {
			trial := floats.AddScaledTo(make([]float64, len(x)), x, alpha, dx)
			rt, err := g(trial)
			if err != nil {
				return nil, err
			}
			if floats.Norm(rt, 2) < norm || alpha <= n.MinDamping {
				x, r = trial, rt
				break
			}
			alpha /= 2
		}
	}
}

// project moves the guess into the feasible region.
func (n *Newton) project(guess []float64) []float64 {
	x := append([]float64(nil), guess...)
	for i, c := range n.Constraints {
		if i >= len(x) || c.Satisfied(x[i]) {
			continue
		}
		switch c {
		case NonNegative, NonPositive:
			x[i] = 0
		case Positive:
			x[i] = n.Tol
		case Negative:
			x[i] = -n.Tol
		}
	}
	return x
}

// feasibleStep returns the largest alpha in [0, 1] keeping x + alpha*dx
// feasible, and the entries already on their bound that block any step.
// Strict constraints stop short of the bound.
func (n *Newton) feasibleStep(x, dx []float64) (float64, []int) {
	alpha := 1.0
	var blocked []int
	for i, c := range n.Constraints {
		if i >= len(x) || c == Unconstrained || c.Satisfied(x[i]+dx[i]) {
			continue
		}
		limit := -x[i] / dx[i]
		if c == Positive || c == Negative {
			limit *= 0.99
		}
		if limit <= 0 || math.Abs(x[i]) <= n.Tol {
			blocked = append(blocked, i)
			limit = 0
		}
		alpha = math.Min(alpha, limit)
	}
	return alpha, blocked
}

func jacobian(dst *mat.Dense, g Residual, x []float64) error {
	var gErr error
	fd.Jacobian(dst, func(y, x []float64) {
		r, err := g(x)
		if err != nil {
			if gErr == nil {
				gErr = err
			}
			return
		}
		copy(y, r)
	}, x, &fd.JacobianSettings{Formula: fd.Central})
	return gErr
}

// newtonStep solves J dx = -r.
func newtonStep(jac *mat.Dense, r []float64) ([]float64, error) {
	var lu mat.LU
	lu.Factorize(jac)
	rhs := mat.NewVecDense(len(r), nil)
	rhs.ScaleVec(-1, mat.NewVecDense(len(r), append([]float64(nil), r...)))

	dx := mat.NewVecDense(len(r), nil)
	if err := lu.SolveVecTo(dx, false, rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, err
		}
	}
	return dx.RawVector().Data, nil
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		m = math.Max(m, math.Abs(x))
	}
	return m
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
