package submodel

import (
	"errors"
	"testing"

	"github.com/san-kum/battsim/internal/expr"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	r.Merge(Variables{
		"b": expr.NewScalar(2),
		"a": expr.NewScalar(1),
	})
	r.Merge(Variables{"c": expr.NewScalar(3)})

	if got := r.Names(); len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("unexpected order: %v", got)
	}

	if _, err := r.Get("a"); err != nil {
		t.Errorf("lookup of registered name failed: %v", err)
	}

	_, err := Scope(r, "porosity").Get("missing")
	if !errors.Is(err, ErrVariableNotFound) {
		t.Fatalf("expected ErrVariableNotFound, got %v", err)
	}
	var le *LookupError
	if !errors.As(err, &le) {
		t.Fatalf("expected *LookupError, got %T", err)
	}
	if le.Key != "missing" || le.Submodel != "porosity" {
		t.Errorf("unexpected lookup error fields: %+v", le)
	}
}

func TestRegistryMergeReplacesInPlace(t *testing.T) {
	r := NewRegistry()
	r.Merge(Variables{"x": expr.NewScalar(1), "y": expr.NewScalar(2)})
	r.Merge(Variables{"x": expr.NewScalar(5)})

	if r.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", r.Len())
	}
	sym, _ := r.Get("x")
	if s, ok := sym.(*expr.Scalar); !ok || s.Value != 5 {
		t.Errorf("replacement not applied: %v", sym)
	}
	if r.Names()[0] != "x" {
		t.Error("replacement moved the entry")
	}
}

func TestEquationMapOrderAndIdentity(t *testing.T) {
	a := expr.NewVariable("same name", nil)
	b := expr.NewVariable("same name", nil)
	m := NewEquationMap()

	if err := m.Insert(b, expr.NewScalar(2)); err != nil {
		t.Fatal(err)
	}
	if err := m.Insert(a, expr.NewScalar(1)); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 2 {
		t.Fatalf("variables with equal names must be distinct keys, got %d entries", m.Len())
	}
	entries := m.Entries()
	if entries[0].Var != b || entries[1].Var != a {
		t.Error("insertion order not preserved")
	}

	err := m.Insert(a, expr.NewScalar(3))
	if !errors.Is(err, ErrDuplicateEquation) {
		t.Errorf("expected ErrDuplicateEquation, got %v", err)
	}
}

type fakeParams struct{}

func (fakeParams) Symbol(name string) expr.Symbol { return expr.NewParameter(name) }

func TestBaseCollections(t *testing.T) {
	b := NewBase("test", fakeParams{})
	c := expr.NewVariable("c", nil)

	if err := b.AddRHS(c, expr.Neg(c)); err != nil {
		t.Fatal(err)
	}
	if err := b.AddInitialCondition(c, expr.NewScalar(1)); err != nil {
		t.Fatal(err)
	}
	if err := b.AddAlgebraic(expr.NewScalar(1), c); err == nil {
		t.Error("non-variable key accepted")
	}

	eqs := b.Equations()
	if eqs.RHS.Len() != 1 || eqs.InitialConditions.Len() != 1 || eqs.Algebraic.Len() != 0 {
		t.Errorf("unexpected collection sizes: rhs=%d ic=%d alg=%d",
			eqs.RHS.Len(), eqs.InitialConditions.Len(), eqs.Algebraic.Len())
	}
}

func TestRequire(t *testing.T) {
	r := NewRegistry()
	r.Merge(Variables{"a": expr.NewScalar(1)})

	if _, err := Require(r, "a"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := Require(r, "a", "b"); !errors.Is(err, ErrVariableNotFound) {
		t.Errorf("expected ErrVariableNotFound, got %v", err)
	}
}
