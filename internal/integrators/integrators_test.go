package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/battsim/internal/expr"
)

// oscillator is y'' = -y written as a first-order system.
var oscillator = SystemFunc(func(t float64, y []float64, _ expr.Inputs) ([]float64, error) {
	return []float64{y[1], -y[0]}, nil
})

// decay is y' = -k y with k supplied as an input.
var decay = SystemFunc(func(t float64, y []float64, inputs expr.Inputs) ([]float64, error) {
	k, ok := inputs["k"]
	if !ok {
		return nil, expr.ErrMissingInput
	}
	return []float64{-k * y[0]}, nil
})

func TestFixedStepAccuracy(t *testing.T) {
	tests := []struct {
		name  string
		integ Integrator
		tol   float64
	}{
		{"euler", NewEuler(), 1e-2},
		{"rk4", NewRK4(), 1e-8},
		{"rk45", NewRK45(), 1e-8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := []float64{1, 0}
			dt := 0.01
			var err error
			for i := 0; i < 100; i++ {
				if y, err = tt.integ.Step(oscillator, y, nil, float64(i)*dt, dt); err != nil {
					t.Fatal(err)
				}
			}
			if math.Abs(y[0]-math.Cos(1)) > tt.tol {
				t.Errorf("position error too large: got %.8f, expected %.8f", y[0], math.Cos(1))
			}
		})
	}
}

func TestInputsReachTheSystem(t *testing.T) {
	y, err := NewRK4().Step(decay, []float64{1}, expr.Inputs{"k": 2}, 0, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(y[0]-math.Exp(-0.2)) > 1e-6 {
		t.Errorf("got %v, want %v", y[0], math.Exp(-0.2))
	}

	if _, err := NewEuler().Step(decay, []float64{1}, nil, 0, 0.1); !errors.Is(err, expr.ErrMissingInput) {
		t.Errorf("expected derivative error to propagate, got %v", err)
	}
}

func TestRK45AdaptiveStep(t *testing.T) {
	r := NewRK45()

	_, dtNew, accepted, err := r.StepAdaptive(oscillator, []float64{1, 0}, nil, 0, 0.01, 1e-6)
	if err != nil {
		t.Fatal(err)
	}
	if !accepted || dtNew <= 0.01 {
		t.Errorf("small step should be accepted and grown: accepted=%v dt=%v", accepted, dtNew)
	}

	_, dtNew, accepted, err = r.StepAdaptive(oscillator, []float64{1, 0}, nil, 0, 2, 1e-12)
	if err != nil {
		t.Fatal(err)
	}
	if accepted || dtNew >= 2 {
		t.Errorf("large step should be rejected and shrunk: accepted=%v dt=%v", accepted, dtNew)
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		if _, err := New(name); err != nil {
			t.Errorf("New(%q): %v", name, err)
		}
	}
	if _, err := New("verlet"); !errors.Is(err, ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}
}

func BenchmarkRK4(b *testing.B) {
	integ := NewRK4()
	y := []float64{1, 0}
	for i := 0; i < b.N; i++ {
		y, _ = integ.Step(oscillator, y, nil, 0, 0.01)
	}
}

func BenchmarkRK45(b *testing.B) {
	integ := NewRK45()
	y := []float64{1, 0}
	for i := 0; i < b.N; i++ {
		y, _ = integ.Step(oscillator, y, nil, 0, 0.01)
	}
}
