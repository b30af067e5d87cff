package integrators

import "github.com/san-kum/battsim/internal/expr"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys System, y []float64, inputs expr.Inputs, t, dt float64) ([]float64, error) {
	dy, err := sys.Derive(t, y, inputs)
	if err != nil {
		return nil, err
	}
	result := make([]float64, len(y))
	for i := range y {
		result[i] = y[i] + dt*dy[i]
	}
	return result, nil
}
