package solver_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/solution"
	"github.com/san-kum/battsim/internal/solver"
)

// scalarModel is a purely algebraic model; diff entries of y0 before
// lenRHS are held fixed.
type scalarModel struct {
	fp     uint64
	lenRHS int
	y0     []float64
	lower  []float64
	g      func(y []float64, in expr.Inputs) float64
}

func (m *scalarModel) Algebraic(_ float64, y []float64, in expr.Inputs) ([]float64, error) {
	return []float64{m.g(y, in)}, nil
}
func (m *scalarModel) RHS(float64, []float64, expr.Inputs) ([]float64, error) {
	return make([]float64, m.lenRHS), nil
}
func (m *scalarModel) InitialState() []float64 { return append([]float64(nil), m.y0...) }
func (m *scalarModel) LenRHS() int             { return m.lenRHS }
func (m *scalarModel) LenRHSAndAlg() int       { return len(m.y0) }
func (m *scalarModel) HasRHS() bool            { return m.lenRHS > 0 }
func (m *scalarModel) Fingerprint() uint64     { return m.fp }
func (m *scalarModel) Bounds() ([]float64, []float64) {
	lower, upper := make([]float64, len(m.y0)), make([]float64, len(m.y0))
	for i := range lower {
		lower[i], upper[i] = math.Inf(-1), math.Inf(1)
		if i < len(m.lower) {
			lower[i] = m.lower[i]
		}
	}
	return lower, upper
}

func minusFive(y0 float64) *scalarModel {
	return &scalarModel{fp: 1, y0: []float64{y0}, g: func(y []float64, _ expr.Inputs) float64 { return y[0] - 5 }}
}

type countingRootfinder struct {
	calls  int
	answer []float64
	inner  solver.Rootfinder
}

func (c *countingRootfinder) FindRoot(g solver.Residual, guess []float64) ([]float64, error) {
	c.calls++
	if c.answer != nil {
		return c.answer, nil
	}
	return c.inner.FindRoot(g, guess)
}

func counting(rf *countingRootfinder) solver.RootfinderFactory {
	return func(c []solver.Constraint, tol float64, opts solver.Options) solver.Rootfinder {
		rf.inner = solver.NewNewton(c, tol, opts)
		return rf
	}
}

var _ = Describe("AlgebraicSolver", func() {
	var (
		s   *solver.AlgebraicSolver
		rf  *countingRootfinder
		ctx context.Context
	)

	BeforeEach(func() {
		s = solver.NewAlgebraicSolver(1e-6, solver.SensitivityNone, solver.Options{})
		rf = &countingRootfinder{}
		s.NewRootfinder = counting(rf)
		ctx = context.Background()
	})

	Context("when the guess already satisfies the residual", func() {
		It("returns the guess at every time without root-finding", func() {
			sol, err := s.Solve(ctx, minusFive(5), []float64{0, 1, 2}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(rf.calls).To(BeZero())

			y, err := sol.Y()
			Expect(err).NotTo(HaveOccurred())
			Expect(mat.Row(nil, 0, y)).To(Equal([]float64{5, 5, 5}))
		})
	})

	Context("when the guess is off", func() {
		It("converges within tolerance and reports success", func() {
			sol, err := s.Solve(ctx, minusFive(0), []float64{0, 1, 2}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.Termination).To(Equal(solution.TerminationSuccess))

			y, _ := sol.Y()
			for j := 0; j < 3; j++ {
				Expect(y.At(0, j)).To(BeNumerically("~", 5, 1e-6))
			}
			By("reusing the accepted state after the first time point")
			Expect(rf.calls).To(Equal(1))
		})
	})

	Context("when the rootfinder claims success but the residual is large", func() {
		BeforeEach(func() {
			s.NewRootfinder = counting(&countingRootfinder{answer: []float64{0}})
		})

		It("fails with the measured residual", func() {
			m := &scalarModel{
				fp: 100,
				y0: []float64{1},
				g:  func(y []float64, _ expr.Inputs) float64 { return y[0]*y[0] + 0.1 },
			}
			_, err := s.Solve(ctx, m, []float64{0}, nil)
			Expect(err).To(MatchError(solver.ErrSolver))

			var se *solver.SolverError
			Expect(err).To(BeAssignableToTypeOf(se))
			se = err.(*solver.SolverError)
			Expect(se.MaxResidual).To(BeNumerically("~", 0.1, 1e-15))
			Expect(se.Error()).To(ContainSubstring("above tolerance"))
		})
	})

	Context("with a bounded algebraic state next to differential states", func() {
		It("solves the algebraic block and leaves the differential block alone", func() {
			m := &scalarModel{
				fp:     101,
				lenRHS: 2,
				y0:     []float64{1, 2, 1},
				lower:  []float64{math.Inf(-1), math.Inf(-1), 0},
				g:      func(y []float64, _ expr.Inputs) float64 { return y[2]*y[2] - 4 },
			}
			sol, err := s.Solve(ctx, m, []float64{0, 1, 2}, nil)
			Expect(err).NotTo(HaveOccurred())

			y, _ := sol.Y()
			Expect(mat.Row(nil, 0, y)).To(HaveEach(1.0))
			Expect(mat.Row(nil, 1, y)).To(HaveEach(2.0))
			for _, v := range mat.Row(nil, 2, y) {
				Expect(v).To(BeNumerically("~", 2, 1e-6))
			}
		})
	})

	Context("in deferred sensitivity mode", func() {
		BeforeEach(func() {
			s = solver.NewAlgebraicSolver(1e-8, solver.SensitivityDeferred, solver.Options{})
		})

		It("never short-circuits on the guess and memoises per input binding", func() {
			m := &scalarModel{
				fp: 102,
				y0: []float64{4},
				g:  func(y []float64, in expr.Inputs) float64 { return y[0] - 2*in["k"] },
			}

			sol, err := s.Solve(ctx, m, []float64{0, 1}, expr.Inputs{"k": 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(sol.IsDeferred()).To(BeTrue())

			a, err := sol.Resolve(expr.Inputs{"k": 2})
			Expect(err).NotTo(HaveOccurred())
			b, err := sol.Resolve(expr.Inputs{"k": 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(mat.Equal(a, b)).To(BeTrue())

			_, trajectories := s.CacheLen()
			Expect(trajectories).To(Equal(1))
		})
	})
})
