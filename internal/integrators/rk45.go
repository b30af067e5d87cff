package integrators

import (
	"math"

	"github.com/san-kum/battsim/internal/expr"
)

// Dormand-Prince 5(4) tableau.
var (
	dpC = [7]float64{0, 1.0 / 5.0, 3.0 / 10.0, 4.0 / 5.0, 8.0 / 9.0, 1, 1}
	dpA = [7][]float64{
		nil,
		{1.0 / 5.0},
		{3.0 / 40.0, 9.0 / 40.0},
		{44.0 / 45.0, -56.0 / 15.0, 32.0 / 9.0},
		{19372.0 / 6561.0, -25360.0 / 2187.0, 64448.0 / 6561.0, -212.0 / 729.0},
		{9017.0 / 3168.0, -355.0 / 33.0, 46732.0 / 5247.0, 49.0 / 176.0, -5103.0 / 18656.0},
		{35.0 / 384.0, 0, 500.0 / 1113.0, 125.0 / 192.0, -2187.0 / 6784.0, 11.0 / 84.0},
	}
	// fifth minus fourth order weights
	dpE = [7]float64{
		35.0/384.0 - 5179.0/57600.0,
		0,
		500.0/1113.0 - 7571.0/16695.0,
		125.0/192.0 - 393.0/640.0,
		-2187.0/6784.0 + 92097.0/339200.0,
		11.0/84.0 - 187.0/2100.0,
		-1.0 / 40.0,
	}
)

type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Step takes one fixed step and discards the error estimate.
func (r *RK45) Step(sys System, y []float64, inputs expr.Inputs, t, dt float64) ([]float64, error) {
	yNew, _, _, err := r.StepAdaptive(sys, y, inputs, t, dt, math.Inf(1))
	return yNew, err
}

func (r *RK45) StepAdaptive(sys System, y []float64, inputs expr.Inputs, t, dt, tol float64) ([]float64, float64, bool, error) {
	var k [7][]float64
	var err error
	for s := 0; s < 7; s++ {
		ys := y
		if s > 0 {
			ys = axpy(y, dt, dpA[s], k[:s]...)
		}
		if k[s], err = sys.Derive(t+dpC[s]*dt, ys, inputs); err != nil {
			return nil, 0, false, err
		}
	}
	// first-same-as-last: the seventh stage is evaluated at the solution
	yNew := axpy(y, dt, dpA[6], k[:6]...)

	errMax := 0.0
	for i := range y {
		est := 0.0
		for s := range k {
			est += dpE[s] * k[s][i]
		}
		scale := math.Abs(y[i]) + math.Abs(dt*k[0][i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(dt*est)/scale)
	}

	ratio := errMax / tol
	var dtNew float64
	switch {
	case ratio > 1:
		dtNew = dt * math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25))
	case ratio > 0:
		dtNew = dt * math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2))
	default:
		dtNew = dt * r.maxScale
	}
	return yNew, dtNew, ratio <= 1, nil
}
