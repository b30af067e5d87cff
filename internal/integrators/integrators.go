// Package integrators advances the differential block of a model with
// explicit one-step methods.
package integrators

import (
	"errors"
	"fmt"

	"github.com/san-kum/battsim/internal/expr"
)

var ErrUnknownIntegrator = errors.New("integrators: unknown integrator")

// System is dy/dt = f(t, y, inputs).
type System interface {
	Derive(t float64, y []float64, inputs expr.Inputs) ([]float64, error)
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(t float64, y []float64, inputs expr.Inputs) ([]float64, error)

func (f SystemFunc) Derive(t float64, y []float64, inputs expr.Inputs) ([]float64, error) {
	return f(t, y, inputs)
}

type Integrator interface {
	Step(sys System, y []float64, inputs expr.Inputs, t, dt float64) ([]float64, error)
}

// AdaptiveIntegrator additionally proposes the next step size from an
// embedded error estimate. accepted is false when the step must be retried
// with dtNext.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, y []float64, inputs expr.Inputs, t, dt, tol float64) (yNew []float64, dtNext float64, accepted bool, err error)
}

// New returns the integrator registered under name.
func New(name string) (Integrator, error) {
	switch name {
	case "euler":
		return NewEuler(), nil
	case "rk4":
		return NewRK4(), nil
	case "rk45", "":
		return NewRK45(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownIntegrator, name)
}

// Names lists the registered integrators.
func Names() []string { return []string{"euler", "rk4", "rk45"} }

// axpy returns y + dt * sum(coef[i] * k[i]).
func axpy(y []float64, dt float64, coef []float64, k ...[]float64) []float64 {
	out := make([]float64, len(y))
	for i := range y {
		acc := 0.0
		for j, kj := range k {
			acc += coef[j] * kj[i]
		}
		out[i] = y[i] + dt*acc
	}
	return out
}
