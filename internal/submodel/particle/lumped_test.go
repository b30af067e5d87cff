package particle

import (
	"math"
	"testing"

	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/parameters"
	"github.com/san-kum/battsim/internal/submodel"
)

// at evaluates sym with every state variable replaced by sto.
func at(t *testing.T, p *parameters.Values, sym expr.Symbol, sto float64) float64 {
	t.Helper()
	sym, err := expr.Map(sym, func(s expr.Symbol) (expr.Symbol, error) {
		if _, ok := s.(*expr.Variable); ok {
			return expr.NewScalar(sto), nil
		}
		return s, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	sym, err = p.Process(sym)
	if err != nil {
		t.Fatal(err)
	}
	v, err := sym.Evaluate(0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	return v[0]
}

func TestLumpedOpenCircuitPotential(t *testing.T) {
	p := parameters.Defaults()
	vars, err := NewLumped(p, submodel.Positive).GetFundamentalVariables()
	if err != nil {
		t.Fatal(err)
	}
	u := vars[submodel.OCP(submodel.Positive)]

	// half-lithiated particles sit at the reference potential
	if got := at(t, p, u, 0.5); math.Abs(got-3.9) > 1e-12 {
		t.Errorf("U(0.5) = %v, want 3.9", got)
	}
	if at(t, p, u, 0.8) >= at(t, p, u, 0.2) {
		t.Error("OCP should fall as the particle fills")
	}
}

func TestLumpedRHSAndEvents(t *testing.T) {
	p := parameters.New(map[string]float64{
		parameters.NegativeSurfaceArea:      2,
		parameters.NegativeActiveFraction:   0.5,
		parameters.NegativeMaxConcentration: 4,
		parameters.Faraday:                  1,
		parameters.NegativeInitialSto:       0.8,
	})
	lp := NewLumped(p, submodel.Negative)

	reg := submodel.NewRegistry()
	reg.Merge(submodel.Variables{submodel.InterfacialCurrent(submodel.Negative): expr.NewScalar(3)})
	if err := lp.SetRHS(reg); err != nil {
		t.Fatal(err)
	}
	if err := lp.SetInitialConditions(reg); err != nil {
		t.Fatal(err)
	}

	eqs := lp.Equations()
	rhs := eqs.RHS.Entries()
	if len(rhs) != 1 {
		t.Fatalf("expected one state, got %d", len(rhs))
	}
	// -a j / (F eps cmax) = -2*3 / (1*0.5*4)
	if got := at(t, p, rhs[0].Expr, 0.5); got != -3 {
		t.Errorf("d(sto)/dt = %v, want -3", got)
	}
	ic, _ := eqs.InitialConditions.Get(rhs[0].Var)
	if got := at(t, p, ic, 0); got != 0.8 {
		t.Errorf("initial stoichiometry = %v", got)
	}

	if len(eqs.Events) != 2 {
		t.Fatalf("expected two stoichiometry events, got %d", len(eqs.Events))
	}
	for _, ev := range eqs.Events {
		if ev.Type != submodel.EventTermination {
			t.Errorf("%s should terminate the solve", ev.Name)
		}
		if v := at(t, p, ev.Expr, 0.5); v <= 0 {
			t.Errorf("%s fired at sto=0.5 (%v)", ev.Name, v)
		}
		if v := at(t, p, ev.Expr, 0.001); ev.Name == "Minimum negative particle surface stoichiometry" && v >= 0 {
			t.Errorf("%s did not fire at sto=0.001", ev.Name)
		}
	}
}
