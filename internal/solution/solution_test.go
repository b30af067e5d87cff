package solution

import (
	"errors"
	"fmt"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/battsim/internal/expr"
)

type fakeSource map[string]expr.Func

func (f fakeSource) Variable(name string) (expr.Func, error) {
	fn, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("unknown variable %q", name)
	}
	return fn, nil
}

func (f fakeSource) VariableNames() []string { return nil }

var source = fakeSource{
	"sum": func(_ float64, y []float64, _ expr.Inputs) ([]float64, error) {
		return []float64{y[0] + y[1]}, nil
	},
	"scaled": func(t float64, y []float64, in expr.Inputs) ([]float64, error) {
		return []float64{in["k"] * y[0], t}, nil
	},
}

func TestVariable(t *testing.T) {
	y := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		10, 20, 30,
	})
	s := New([]float64{0, 1, 2}, y, source, expr.Inputs{"k": 2})

	sum, err := s.Variable("sum")
	if err != nil {
		t.Fatal(err)
	}
	if got := sum.Series(); got[0] != 11 || got[2] != 33 {
		t.Errorf("unexpected series: %v", got)
	}
	if sum.Min() != 11 || sum.Max() != 33 {
		t.Errorf("min/max = %v/%v", sum.Min(), sum.Max())
	}

	scaled, err := s.Variable("scaled")
	if err != nil {
		t.Fatal(err)
	}
	if scaled.Points() != 2 {
		t.Fatalf("expected two entries, got %d", scaled.Points())
	}
	if f := scaled.Final(); f[0] != 6 || f[1] != 2 {
		t.Errorf("unexpected final entries: %v", f)
	}

	if _, err := s.Variable("missing"); err == nil {
		t.Error("expected error for unknown variable")
	}
}

func TestDeferred(t *testing.T) {
	calls := 0
	traj := func(in expr.Inputs) (*mat.Dense, error) {
		calls++
		return mat.NewDense(1, 2, []float64{in["k"], 2 * in["k"]}), nil
	}
	s := NewDeferred([]float64{0, 1}, traj, source, nil)

	if !s.IsDeferred() {
		t.Fatal("expected deferred solution")
	}
	if _, err := s.Y(); !errors.Is(err, ErrDeferred) {
		t.Errorf("expected ErrDeferred, got %v", err)
	}
	if _, err := s.Variable("sum"); !errors.Is(err, ErrDeferred) {
		t.Errorf("expected ErrDeferred from Variable, got %v", err)
	}

	c, err := s.Realise(expr.Inputs{"k": 3})
	if err != nil {
		t.Fatal(err)
	}
	final, err := c.Final()
	if err != nil || final[0] != 6 {
		t.Errorf("final = %v (%v), want 6", final, err)
	}
	if calls != 1 {
		t.Errorf("trajectory evaluated %d times", calls)
	}
}

func TestEventTermination(t *testing.T) {
	if got := EventTermination("Minimum voltage"); got != "event: Minimum voltage" {
		t.Errorf("got %q", got)
	}
}
