package parameters

import (
	"errors"
	"testing"

	"github.com/san-kum/battsim/internal/expr"
)

func TestProcessReplacesParameters(t *testing.T) {
	v := New(map[string]float64{"k": 2})
	sym := expr.Mul(v.Symbol("k"), expr.NewTime())

	out, err := v.Process(sym)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	got, err := out.Evaluate(3, nil, nil)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if got[0] != 6 {
		t.Errorf("expected 6, got %v", got[0])
	}
}

func TestProcessMissingParameter(t *testing.T) {
	v := New(nil)
	_, err := v.Process(expr.Add(v.Symbol("unknown"), expr.NewScalar(1)))
	if !errors.Is(err, ErrMissingParameter) {
		t.Errorf("expected ErrMissingParameter, got %v", err)
	}
}

func TestMarkInput(t *testing.T) {
	v := New(map[string]float64{"I": 1})
	v.MarkInput("I")

	out, err := v.Process(v.Symbol("I"))
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if _, ok := out.(*expr.InputParameter); !ok {
		t.Fatalf("expected InputParameter, got %T", out)
	}

	v.Set("I", 3)
	if v.IsInput("I") {
		t.Error("Set should clear the input marker")
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	for _, name := range []string{CurrentFunction, Faraday, NegativeThickness, PositiveReferenceOCP} {
		if _, ok := d.Get(name); !ok {
			t.Errorf("default set missing %q", name)
		}
	}
}
