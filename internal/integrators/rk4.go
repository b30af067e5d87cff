package integrators

import "github.com/san-kum/battsim/internal/expr"

// RK4 is the classical fourth-order Runge-Kutta method.
type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys System, y []float64, inputs expr.Inputs, t, dt float64) ([]float64, error) {
	k1, err := sys.Derive(t, y, inputs)
	if err != nil {
		return nil, err
	}
	k2, err := sys.Derive(t+dt/2, axpy(y, dt/2, []float64{1}, k1), inputs)
	if err != nil {
		return nil, err
	}
	k3, err := sys.Derive(t+dt/2, axpy(y, dt/2, []float64{1}, k2), inputs)
	if err != nil {
		return nil, err
	}
	k4, err := sys.Derive(t+dt, axpy(y, dt, []float64{1}, k3), inputs)
	if err != nil {
		return nil, err
	}
	return axpy(y, dt/6, []float64{1, 2, 2, 1}, k1, k2, k3, k4), nil
}
