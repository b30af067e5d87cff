package model

import (
	"fmt"

	"github.com/san-kum/battsim/internal/expr"
)

// Check verifies the model is well posed: every state has exactly one
// equation and one initial condition, every variable used by an equation
// is a state, and all expressions are domain consistent.
func (m *Model) Check() error {
	if !m.assembled {
		return ErrNotBuilt
	}
	if m.RHS.Len()+m.Algebraic.Len() == 0 {
		return &NotWellPosedError{Variable: m.Name, Reason: "model has no equations"}
	}

	for _, eq := range m.RHS.Entries() {
		if m.Algebraic.Has(eq.Var) {
			return &NotWellPosedError{Variable: eq.Var.Name(), Reason: "variable has both rhs and algebraic equations"}
		}
		if !m.InitialConditions.Has(eq.Var) {
			return &NotWellPosedError{Variable: eq.Var.Name(), Reason: "no initial condition for rhs variable"}
		}
	}
	for _, eq := range m.Algebraic.Entries() {
		if !m.InitialConditions.Has(eq.Var) {
			return &NotWellPosedError{Variable: eq.Var.Name(), Reason: "no initial condition for algebraic variable"}
		}
	}
	for _, eq := range m.InitialConditions.Entries() {
		if !m.isState(eq.Var) {
			return &NotWellPosedError{Variable: eq.Var.Name(), Reason: "initial condition for a variable with no equation"}
		}
	}

	check := func(kind, owner string, sym expr.Symbol) error {
		if err := expr.Validate(sym); err != nil {
			return fmt.Errorf("model: %s for %q: %w", kind, owner, err)
		}
		for _, v := range expr.Variables(sym) {
			if !m.isState(v) {
				return &NotWellPosedError{Variable: v.Name(), Reason: fmt.Sprintf("%s for %q uses a variable with no equation", kind, owner)}
			}
		}
		return nil
	}
	for _, eq := range m.RHS.Entries() {
		if err := check("rhs", eq.Var.Name(), eq.Expr); err != nil {
			return err
		}
	}
	for _, eq := range m.Algebraic.Entries() {
		if err := check("algebraic equation", eq.Var.Name(), eq.Expr); err != nil {
			return err
		}
	}
	for _, eq := range m.InitialConditions.Entries() {
		if len(expr.Variables(eq.Expr)) > 0 {
			return &NotWellPosedError{Variable: eq.Var.Name(), Reason: "initial condition depends on a state"}
		}
		if err := expr.Validate(eq.Expr); err != nil {
			return fmt.Errorf("model: initial condition for %q: %w", eq.Var.Name(), err)
		}
	}
	for _, ev := range m.Events {
		if err := check("event", ev.Name, ev.Expr); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) isState(v *expr.Variable) bool {
	return m.RHS.Has(v) || m.Algebraic.Has(v)
}
