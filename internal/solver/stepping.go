package solver

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/battsim/internal/discretisation"
	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/solution"
)

// stepFunc advances y from t by at most h and reports the step taken.
type stepFunc func(t, h float64, y []float64) (yNew []float64, taken float64, err error)

type marchResult struct {
	times       []float64
	states      [][]float64
	termination string
}

// march steps from tEval[0] through every later evaluation time, recording
// the state at each one. A terminal event stops the march after the step
// on which it fired; that step's time and state are recorded too.
func march(ctx context.Context, tEval, y0 []float64, maxStep float64, step stepFunc, evs []discretisation.Event, inputs expr.Inputs) (*marchResult, error) {
	res := &marchResult{
		times:       []float64{tEval[0]},
		states:      [][]float64{y0},
		termination: solution.TerminationFinalTime,
	}
	t, y := tEval[0], y0
	for _, target := range tEval[1:] {
		for t < target {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("solver: interrupted at t=%g: %w", t, err)
			}
			h := min(target-t, maxStep)
			yNew, taken, err := step(t, h, y)
			if err != nil {
				return nil, err
			}
			if taken == target-t {
				t = target
			} else {
				t += taken
			}
			y = yNew

			name, fired, err := firedEvent(evs, t, y, inputs)
			if err != nil {
				return nil, err
			}
			if fired {
				res.times = append(res.times, t)
				res.states = append(res.states, y)
				res.termination = solution.EventTermination(name)
				return res, nil
			}
		}
		res.times = append(res.times, target)
		res.states = append(res.states, y)
	}
	return res, nil
}

func firedEvent(evs []discretisation.Event, t float64, y []float64, inputs expr.Inputs) (string, bool, error) {
	for _, ev := range evs {
		if !ev.Terminal() {
			continue
		}
		v, err := ev.Evaluate(t, y, inputs)
		if err != nil {
			return "", false, fmt.Errorf("solver: event %q: %w", ev.Name, err)
		}
		if v < 0 {
			return ev.Name, true, nil
		}
	}
	return "", false, nil
}

func (r *marchResult) matrix() *mat.Dense {
	y := mat.NewDense(len(r.states[0]), len(r.states), nil)
	for j, col := range r.states {
		y.SetCol(j, col)
	}
	return y
}
