package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/battsim/internal/config"
	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/parameters"
	"github.com/san-kum/battsim/internal/solution"
	"github.com/san-kum/battsim/internal/submodel"
)

func shortConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.TEnd = 600
	cfg.Points = 4
	return cfg
}

func TestSimulatorRun(t *testing.T) {
	s, err := FromConfig(shortConfig())
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	var runs []Run
	s.AddObserver(ObserverFunc(func(r Run) { runs = append(runs, r) }))

	cfg := shortConfig()
	sol, err := s.Run(context.Background(), cfg.Times(), nil)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(sol.T) != 4 {
		t.Errorf("expected 4 times, got %d", len(sol.T))
	}
	if sol.Termination != solution.TerminationFinalTime {
		t.Errorf("unexpected termination %q", sol.Termination)
	}
	if len(runs) != 1 || runs[0].Err != nil {
		t.Errorf("observer not notified: %+v", runs)
	}

	// the discretised model is reused between runs
	first, _ := s.Model(nil)
	if _, err := s.Run(context.Background(), cfg.Times(), nil); err != nil {
		t.Fatal(err)
	}
	second, _ := s.Model(nil)
	if first != second {
		t.Error("model discretised twice")
	}
}

func TestFromConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"unknown model", func(c *config.Config) { c.Model = "dfn" }},
		{"unknown solver", func(c *config.Config) { c.Solver.Name = "idas" }},
		{"unknown option", func(c *config.Config) { c.Options = map[string]string{"porosity": "foam"} }},
		{"invalid config", func(c *config.Config) { c.TEnd = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := shortConfig()
			tt.modify(cfg)
			if _, err := FromConfig(cfg); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRunMissingInput(t *testing.T) {
	cfg := shortConfig()
	cfg.Inputs = map[string]float64{parameters.CurrentFunction: 0.68}
	s, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Run(context.Background(), cfg.Times(), nil); err == nil {
		t.Error("expected missing input error")
	}
}

func TestRunReportsSolverFailure(t *testing.T) {
	cfg := shortConfig()
	cfg.Solver.Options.MaxIterations = 1
	cfg.Solver.Tolerance = 1e-300
	s, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Run(context.Background(), cfg.Times(), nil)
	var se SimError
	if !errors.As(err, &se) {
		t.Fatalf("expected SimError, got %v", err)
	}
}

func TestSweep(t *testing.T) {
	cfg := shortConfig()
	cfg.Inputs = map[string]float64{parameters.CurrentFunction: 0.68}
	s, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var count int
	s.AddObserver(ObserverFunc(func(Run) { count++ }))

	currents := []float64{0.34, 0.68, 1.36}
	sets := make([]expr.Inputs, len(currents))
	for i, c := range currents {
		sets[i] = expr.Inputs{parameters.CurrentFunction: c}
	}

	sols, err := NewSweep(s, 2).Run(context.Background(), cfg.Times(), sets)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(sols) != len(sets) || count != len(sets) {
		t.Fatalf("expected %d solutions, got %d (%d notifications)", len(sets), len(sols), count)
	}

	// higher currents end at lower voltages
	prev := 10.0
	for i, sol := range sols {
		v, err := sol.Variable(submodel.TerminalVoltage)
		if err != nil {
			t.Fatal(err)
		}
		final := v.Final()[0]
		if final >= prev {
			t.Errorf("current %v: final voltage %v not below %v", currents[i], final, prev)
		}
		prev = final
	}
}

func TestSweepEmpty(t *testing.T) {
	s, err := FromConfig(shortConfig())
	if err != nil {
		t.Fatal(err)
	}
	sols, err := NewSweep(s, 4).Run(context.Background(), []float64{0, 1}, nil)
	if err != nil || sols != nil {
		t.Errorf("empty sweep returned %v, %v", sols, err)
	}
}

func TestInitialConditionInputs(t *testing.T) {
	cfg := shortConfig()
	cfg.Inputs = map[string]float64{parameters.NegativeInitialSto: 0.9}
	s, err := FromConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}

	starts := []float64{0.9, 0.5, 0.7}
	sets := make([]expr.Inputs, len(starts))
	for i, sto := range starts {
		sets[i] = expr.Inputs{parameters.NegativeInitialSto: sto}
	}
	initial := func(sol *solution.Solution) float64 {
		t.Helper()
		v, err := sol.Variable("X-averaged negative particle stoichiometry")
		if err != nil {
			t.Fatal(err)
		}
		return v.At(0)[0]
	}

	sols, err := NewSweep(s, 2).Run(context.Background(), cfg.Times(), sets)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	for i, sol := range sols {
		if got := initial(sol); got != starts[i] {
			t.Errorf("sweep set %d: starts at %v, want %v", i, got, starts[i])
		}
	}

	// sequential runs on one simulator
	for _, set := range sets {
		sol, err := s.Run(context.Background(), cfg.Times(), set)
		if err != nil {
			t.Fatal(err)
		}
		if got, want := initial(sol), set[parameters.NegativeInitialSto]; got != want {
			t.Errorf("run starts at %v, want %v", got, want)
		}
	}
}
