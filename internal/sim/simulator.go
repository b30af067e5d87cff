// Package sim ties a built model, its parameters and a solver together and
// runs solves, single or as parameter sweeps.
package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/battsim/internal/config"
	"github.com/san-kum/battsim/internal/discretisation"
	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/lithiumion"
	"github.com/san-kum/battsim/internal/logging"
	"github.com/san-kum/battsim/internal/model"
	"github.com/san-kum/battsim/internal/parameters"
	"github.com/san-kum/battsim/internal/solution"
	"github.com/san-kum/battsim/internal/solver"
)

type Simulator struct {
	model     *model.Model
	params    *parameters.Values
	mesh      discretisation.Mesh
	newSolver SolverFactory

	solver    solver.Solver
	discrete  *discretisation.DiscreteModel
	mu        sync.Mutex
	observers []Observer
}

func New(m *model.Model, params *parameters.Values, mesh discretisation.Mesh, newSolver SolverFactory) *Simulator {
	return &Simulator{
		model:     m,
		params:    params,
		mesh:      mesh,
		newSolver: newSolver,
		observers: make([]Observer, 0),
	}
}

// FromConfig builds the configured model and a matching solver factory.
func FromConfig(cfg *config.Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Model != config.DefaultModel {
		return nil, fmt.Errorf("sim: unknown model %q", cfg.Model)
	}
	sens, err := solver.ParseSensitivity(cfg.Solver.Sensitivity)
	if err != nil {
		return nil, err
	}

	params := cfg.Params()
	spm, err := lithiumion.NewSPM(params, cfg.Options)
	if err != nil {
		return nil, err
	}
	name := cfg.Solver.Name
	if name == "" {
		name = spm.DefaultSolver()
	}
	factory := func() (solver.Solver, error) {
		return solver.New(name, cfg.Solver.Tolerance, sens, cfg.Solver.Options)
	}
	if _, err := factory(); err != nil {
		return nil, err
	}

	mesh := spm.DefaultMesh()
	for domain, n := range cfg.Mesh {
		mesh[domain] = n
	}
	return New(spm.Model, params, mesh, factory), nil
}

func (s *Simulator) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Model returns the discretised model, processing it on first use. Each
// solve re-evaluates the initial conditions for its own inputs.
func (s *Simulator) Model(inputs expr.Inputs) (*discretisation.DiscreteModel, error) {
	if s.discrete != nil {
		return s.discrete, nil
	}
	dm, err := discretisation.New(s.mesh).ProcessModel(s.model, s.params, inputs)
	if err != nil {
		return nil, SimError{Inputs: inputs, Message: "discretisation failed", Err: err}
	}
	s.discrete = dm
	return dm, nil
}

// Run solves the model once at tEval. The solver is kept between runs so
// its caches carry over.
func (s *Simulator) Run(ctx context.Context, tEval []float64, inputs expr.Inputs) (*solution.Solution, error) {
	if err := s.validate(tEval, inputs); err != nil {
		return nil, err
	}
	dm, err := s.Model(inputs)
	if err != nil {
		return nil, err
	}
	if s.solver == nil {
		if s.solver, err = s.newSolver(); err != nil {
			return nil, err
		}
	}

	bound, err := dm.Bind(inputs)
	if err != nil {
		return nil, SimError{Inputs: inputs, Message: "initial conditions failed", Err: err}
	}

	sol, err := s.solver.Solve(ctx, bound, tEval, inputs)
	s.notify(Run{Inputs: inputs, Solution: sol, Err: err})
	if err != nil {
		return nil, SimError{Inputs: inputs, Message: "solve failed", Err: err}
	}
	logging.L().Debug("run finished", "model", s.model.Name, "solver", s.solver.Name(), "termination", sol.Termination)
	return sol, nil
}

func (s *Simulator) validate(tEval []float64, inputs expr.Inputs) error {
	if len(tEval) == 0 {
		return fmt.Errorf("sim: no evaluation times")
	}
	for _, name := range s.params.Names() {
		if !s.params.IsInput(name) {
			continue
		}
		if _, ok := inputs[name]; !ok {
			return fmt.Errorf("sim: input %q has no value", name)
		}
	}
	return nil
}

func (s *Simulator) notify(run Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.observers {
		o.OnSolve(run)
	}
}
