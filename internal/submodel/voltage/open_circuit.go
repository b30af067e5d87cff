// Package voltage provides terminal voltage submodels.
package voltage

import (
	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/parameters"
	"github.com/san-kum/battsim/internal/submodel"
)

// Event names registered by OpenCircuit.
const (
	MinimumVoltage = "Minimum voltage [V]"
	MaximumVoltage = "Maximum voltage [V]"
)

// OpenCircuit builds the terminal voltage from the electrode open-circuit
// potentials and reaction overpotentials, ignoring electrolyte and ohmic
// losses. It stops the solve at the voltage cut-offs.
type OpenCircuit struct {
	submodel.Base
}

func NewOpenCircuit(param submodel.Params) *OpenCircuit {
	return &OpenCircuit{Base: submodel.NewBase("open-circuit voltage", param)}
}

func (o *OpenCircuit) GetCoupledVariables(vars submodel.Lookup) (submodel.Variables, error) {
	got, err := submodel.Require(vars,
		submodel.OCP(submodel.Negative), submodel.OCP(submodel.Positive),
		submodel.Overpotential(submodel.Negative), submodel.Overpotential(submodel.Positive))
	if err != nil {
		return nil, err
	}
	ocv := expr.Sub(got[1], got[0])
	eta := expr.Sub(got[3], got[2])
	return submodel.Variables{
		submodel.OpenCircuitVoltage:   ocv,
		submodel.TerminalVoltage:      expr.Add(ocv, eta),
		submodel.ReactionOverpotential: eta,
	}, nil
}

func (o *OpenCircuit) SetRHS(vars submodel.Lookup) error {
	v, err := vars.Get(submodel.TerminalVoltage)
	if err != nil {
		return err
	}
	o.AddEvent(MinimumVoltage, expr.Sub(v, o.Param.Symbol(parameters.LowerVoltageCutoff)), submodel.EventTermination)
	o.AddEvent(MaximumVoltage, expr.Sub(o.Param.Symbol(parameters.UpperVoltageCutoff), v), submodel.EventTermination)
	return nil
}
