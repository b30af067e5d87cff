package sim

import (
	"context"
	"sync"

	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/solution"
)

// Sweep solves the model once per input set, concurrently. The
// discretised model is shared and bound to each set's initial state; each
// worker gets its own solver.
type Sweep struct {
	base    *Simulator
	workers int
}

func NewSweep(s *Simulator, workers int) *Sweep {
	if workers <= 0 {
		workers = 1
	}
	return &Sweep{base: s, workers: workers}
}

// Run returns one solution per entry of sets, in order. The first failure
// is returned after all workers stop.
func (w *Sweep) Run(ctx context.Context, tEval []float64, sets []expr.Inputs) ([]*solution.Solution, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	if err := w.base.validate(tEval, sets[0]); err != nil {
		return nil, err
	}
	dm, err := w.base.Model(sets[0])
	if err != nil {
		return nil, err
	}

	results := make([]*solution.Solution, len(sets))
	errs := make([]error, len(sets))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range min(w.workers, len(sets)) {
		wg.Add(1)
		go func() {
			defer wg.Done()

			s, err := w.base.newSolver()
			for idx := range jobs {
				if err != nil {
					errs[idx] = err
					continue
				}
				bound, bindErr := dm.Bind(sets[idx])
				if bindErr != nil {
					errs[idx] = SimError{Inputs: sets[idx], Message: "initial conditions failed", Err: bindErr}
					continue
				}
				sol, solveErr := s.Solve(ctx, bound, tEval, sets[idx])
				if solveErr != nil {
					errs[idx] = SimError{Inputs: sets[idx], Message: "solve failed", Err: solveErr}
				}
				results[idx] = sol
				w.base.notify(Run{Inputs: sets[idx], Solution: sol, Err: solveErr})
			}
		}()
	}
	for i := range sets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}
