// Package kinetics provides interfacial reaction submodels.
package kinetics

import (
	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/parameters"
	"github.com/san-kum/battsim/internal/submodel"
)

// Uniform sets the interfacial current density of one electrode from the
// applied current, assuming the reaction is spread evenly through it.
type Uniform struct {
	submodel.Base
	electrode submodel.Electrode
}

func NewUniform(param submodel.Params, e submodel.Electrode) *Uniform {
	return &Uniform{
		Base:      submodel.NewBase(e.Lower()+" uniform interfacial current", param),
		electrode: e,
	}
}

func (u *Uniform) GetCoupledVariables(lookup submodel.Lookup) (submodel.Variables, error) {
	i, err := lookup.Get(submodel.CurrentDensity)
	if err != nil {
		return nil, err
	}
	e := u.electrode
	a := u.Param.Symbol(e.Pick(parameters.NegativeSurfaceArea, parameters.PositiveSurfaceArea))
	l := u.Param.Symbol(e.Pick(parameters.NegativeThickness, parameters.PositiveThickness))

	// positive current discharges the cell: lithium leaves the negative
	// particles and enters the positive ones
	j := expr.Div(i, expr.Mul(a, l))
	if e == submodel.Positive {
		j = expr.Neg(j)
	}
	vars := submodel.Variables{submodel.InterfacialCurrent(e): j}
	vars[e.Title()+" electrode interfacial current density [A.m-2]"] = expr.PrimaryBroadcast(j, e.Domain())
	return vars, nil
}
