package solver

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/solution"
)

var times = []float64{0, 1, 2}

func TestSolveLinearResidual(t *testing.T) {
	s := NewAlgebraicSolver(1e-6, SensitivityNone, Options{})
	sol, err := s.Solve(context.Background(), minusFive(0), times, nil)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if sol.Termination != solution.TerminationSuccess {
		t.Errorf("termination = %q", sol.Termination)
	}
	y, _ := sol.Y()
	for j := range times {
		if math.Abs(y.At(0, j)-5) > 1e-6 {
			t.Errorf("t=%v: got %v, want 5", times[j], y.At(0, j))
		}
	}
}

func TestSolveSkipsRootfinderWhenGuessSatisfies(t *testing.T) {
	rf := &countingRootfinder{}
	s := NewAlgebraicSolver(1e-6, SensitivityNone, Options{})
	s.NewRootfinder = counting(rf)

	sol, err := s.Solve(context.Background(), minusFive(5), times, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rf.calls != 0 {
		t.Errorf("rootfinder invoked %d times", rf.calls)
	}
	y, _ := sol.Y()
	for j := range times {
		if y.At(0, j) != 5 {
			t.Errorf("t=%v: guess modified to %v", times[j], y.At(0, j))
		}
	}
}

func TestToleranceFailureCitesResidual(t *testing.T) {
	// y^2 + 0.1 has no real root; the fake reports success at y = 0
	m := &fakeModel{
		fp: 2,
		y0: []float64{1},
		alg: func(_ float64, y []float64, _ expr.Inputs) ([]float64, error) {
			return []float64{y[0]*y[0] + 0.1}, nil
		},
	}
	s := NewAlgebraicSolver(1e-6, SensitivityNone, Options{})
	s.NewRootfinder = counting(&countingRootfinder{answer: []float64{0}})

	_, err := s.Solve(context.Background(), m, times, nil)
	if !errors.Is(err, ErrSolver) {
		t.Fatalf("expected ErrSolver, got %v", err)
	}
	var se *SolverError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SolverError, got %T", err)
	}
	if se.MaxResidual != 0.1 || se.Tol != 1e-6 {
		t.Errorf("unexpected numeric context: %+v", se)
	}
	if !strings.Contains(err.Error(), "maximum solution error (0.1) above tolerance (1e-06)") {
		t.Errorf("message does not cite the residual: %v", err)
	}
}

func TestNaNFailure(t *testing.T) {
	m := &fakeModel{
		fp: 3,
		y0: []float64{1},
		alg: func(_ float64, y []float64, _ expr.Inputs) ([]float64, error) {
			return []float64{math.Sqrt(y[0]) + 1}, nil
		},
	}
	s := NewAlgebraicSolver(1e-6, SensitivityNone, Options{})
	s.NewRootfinder = counting(&countingRootfinder{answer: []float64{-1}})

	_, err := s.Solve(context.Background(), m, times, nil)
	if err == nil || !strings.Contains(err.Error(), "solver returned NaNs") {
		t.Errorf("expected NaN failure, got %v", err)
	}
}

func TestDifferentialBlockHeldConstant(t *testing.T) {
	m := &fakeModel{
		fp:     4,
		lenRHS: 2,
		y0:     []float64{1, 2, 1},
		lower:  []float64{math.Inf(-1), math.Inf(-1), 0},
		alg: func(_ float64, y []float64, _ expr.Inputs) ([]float64, error) {
			return []float64{y[2]*y[2] - 4}, nil
		},
	}
	s := NewAlgebraicSolver(1e-6, SensitivityNone, Options{})
	sol, err := s.Solve(context.Background(), m, times, nil)
	if err != nil {
		t.Fatal(err)
	}
	y, _ := sol.Y()
	for j := range times {
		if y.At(0, j) != 1 || y.At(1, j) != 2 {
			t.Errorf("t=%v: differential block changed to [%v %v]", times[j], y.At(0, j), y.At(1, j))
		}
		if math.Abs(y.At(2, j)-2) > 1e-6 {
			t.Errorf("t=%v: algebraic state %v, want 2", times[j], y.At(2, j))
		}
	}
}

func TestBoundsEnforced(t *testing.T) {
	// roots at -1 and 2; only 2 is feasible
	residual := func(_ float64, y []float64, _ expr.Inputs) ([]float64, error) {
		return []float64{y[0]*y[0] - y[0] - 2}, nil
	}
	for i, guess := range []float64{-1.5, 0.3, 0.6, 1, 3, 5} {
		m := &fakeModel{fp: uint64(10 + i), y0: []float64{guess}, lower: []float64{0}, alg: residual}
		sol, err := NewAlgebraicSolver(1e-8, SensitivityNone, Options{}).Solve(context.Background(), m, times, nil)
		if err != nil {
			t.Fatalf("guess %v: %v", guess, err)
		}
		y, _ := sol.Y()
		for j := range times {
			if y.At(0, j) < 0 {
				t.Errorf("guess %v: bound violated at t=%v: %v", guess, times[j], y.At(0, j))
			}
		}
	}
}

func TestResidualBelowToleranceAfterSolve(t *testing.T) {
	m := &fakeModel{
		fp: 5,
		y0: []float64{0.1, 0.1},
		alg: func(tm float64, y []float64, _ expr.Inputs) ([]float64, error) {
			return []float64{
				math.Exp(y[0]) - 2 - tm,
				y[0]*y[1] - 1,
			}, nil
		},
	}
	tol := 1e-9
	sol, err := NewAlgebraicSolver(tol, SensitivityNone, Options{}).Solve(context.Background(), m, times, nil)
	if err != nil {
		t.Fatal(err)
	}
	y, _ := sol.Y()
	for j, tm := range times {
		r, _ := m.Algebraic(tm, mat.Col(nil, j, y), nil)
		if maxAbs(r) >= tol {
			t.Errorf("t=%v: residual %v above tolerance", tm, r)
		}
	}
}

func TestRootfinderCachedPerModel(t *testing.T) {
	builds := 0
	s := NewAlgebraicSolver(1e-6, SensitivityNone, Options{})
	s.NewRootfinder = func(c []Constraint, tol float64, opts Options) Rootfinder {
		builds++
		return NewNewton(c, tol, opts)
	}

	for range 3 {
		if _, err := s.Solve(context.Background(), minusFive(0), times, nil); err != nil {
			t.Fatal(err)
		}
	}
	if builds != 1 {
		t.Errorf("rootfinder built %d times", builds)
	}
	if rf, _ := s.CacheLen(); rf != 1 {
		t.Errorf("CacheLen() = %d", rf)
	}
	s.ClearCache()
	if rf, ys := s.CacheLen(); rf != 0 || ys != 0 {
		t.Errorf("cache not cleared: %d %d", rf, ys)
	}
}

func inputModel(fp uint64) *fakeModel {
	return &fakeModel{
		fp: fp,
		y0: []float64{0},
		alg: func(_ float64, y []float64, in expr.Inputs) ([]float64, error) {
			k, ok := in["k"]
			if !ok {
				return nil, expr.ErrMissingInput
			}
			return []float64{y[0] - 2*k}, nil
		},
	}
}

func TestExplicitForwardSensitivities(t *testing.T) {
	s := NewAlgebraicSolver(1e-8, SensitivityExplicitForward, Options{})
	sol, err := s.Solve(context.Background(), inputModel(6), times, expr.Inputs{"k": 1.5})
	if err != nil {
		t.Fatal(err)
	}
	dk, ok := sol.Sensitivities["k"]
	if !ok {
		t.Fatal("no sensitivity for k")
	}
	for j := range times {
		if math.Abs(dk.At(0, j)-2) > 1e-6 {
			t.Errorf("t=%v: dy/dk = %v, want 2", times[j], dk.At(0, j))
		}
	}
}

func TestDeferredIsIdempotent(t *testing.T) {
	s := NewAlgebraicSolver(1e-8, SensitivityDeferred, Options{})
	in := expr.Inputs{"k": 2}

	first, err := s.Solve(context.Background(), inputModel(7), times, in)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := first.Y(); !errors.Is(err, solution.ErrDeferred) {
		t.Errorf("expected deferred trajectory, got %v", err)
	}
	second, err := s.Solve(context.Background(), inputModel(7), times, in)
	if err != nil {
		t.Fatal(err)
	}

	a, err := first.Resolve(in)
	if err != nil {
		t.Fatal(err)
	}
	b, err := second.Resolve(in)
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(a, b) {
		t.Error("second solve is not bit-identical")
	}
	if _, ys := s.CacheLen(); ys != 1 {
		t.Errorf("expected one cached trajectory, got %d", ys)
	}

	c, err := second.Resolve(expr.Inputs{"k": 3})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(c.At(0, 2)-6) > 1e-8 {
		t.Errorf("resolve with new inputs = %v, want 6", c.At(0, 2))
	}
}

func TestSolveHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewAlgebraicSolver(1e-6, SensitivityNone, Options{}).Solve(ctx, minusFive(0), times, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInvalidTimes(t *testing.T) {
	s := NewAlgebraicSolver(1e-6, SensitivityNone, Options{})
	for _, tt := range [][]float64{nil, {1, 0}} {
		if _, err := s.Solve(context.Background(), minusFive(0), tt, nil); !errors.Is(err, ErrInvalidTimes) {
			t.Errorf("times %v: expected ErrInvalidTimes, got %v", tt, err)
		}
	}
}

func TestExplicitForwardWhenGuessAlreadySolves(t *testing.T) {
	m := inputModel(21)
	m.y0 = []float64{3}
	s := NewAlgebraicSolver(1e-8, SensitivityExplicitForward, Options{})
	rf := &countingRootfinder{}
	s.NewRootfinder = counting(rf)

	sol, err := s.Solve(context.Background(), m, times, expr.Inputs{"k": 1.5})
	if err != nil {
		t.Fatal(err)
	}
	if rf.calls != 0 {
		t.Errorf("rootfinder invoked %d times", rf.calls)
	}
	dk, ok := sol.Sensitivities["k"]
	if !ok {
		t.Fatal("no sensitivity for k")
	}
	for j := range times {
		if math.Abs(dk.At(0, j)-2) > 1e-6 {
			t.Errorf("t=%v: dy/dk = %v, want 2", times[j], dk.At(0, j))
		}
	}
}

func TestStackedSensitivityBlockHeldConstant(t *testing.T) {
	// one differential state stacked with its sensitivity to k, then z
	m := &fakeModel{
		fp:     22,
		lenRHS: 1,
		lenAll: 2,
		y0:     []float64{1, 0.5, 0},
		alg: func(_ float64, y []float64, in expr.Inputs) ([]float64, error) {
			return []float64{y[2] - in["k"]*(y[0]+y[1])}, nil
		},
	}
	sol, err := NewAlgebraicSolver(1e-8, SensitivityNone, Options{}).Solve(context.Background(), m, times, expr.Inputs{"k": 2})
	if err != nil {
		t.Fatal(err)
	}
	y, _ := sol.Y()
	for j := range times {
		if y.At(0, j) != 1 || y.At(1, j) != 0.5 {
			t.Errorf("t=%v: stacked block changed to [%v %v]", times[j], y.At(0, j), y.At(1, j))
		}
		if math.Abs(y.At(2, j)-3) > 1e-8 {
			t.Errorf("t=%v: z = %v, want 3", times[j], y.At(2, j))
		}
	}
}
