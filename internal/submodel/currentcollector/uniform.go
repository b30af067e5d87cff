// Package currentcollector provides the current collector submodels.
package currentcollector

import (
	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/parameters"
	"github.com/san-kum/battsim/internal/submodel"
)

// Uniform spreads the applied current evenly over the electrode area.
type Uniform struct {
	submodel.Base
}

func NewUniform(param submodel.Params) *Uniform {
	return &Uniform{Base: submodel.NewBase("uniform current collector", param)}
}

func (u *Uniform) GetFundamentalVariables() (submodel.Variables, error) {
	current := u.Param.Symbol(parameters.CurrentFunction)
	i := expr.Div(current, u.Param.Symbol(parameters.ElectrodeArea))
	return submodel.Variables{
		submodel.Current:             current,
		submodel.CurrentDensity:      i,
		submodel.TotalCurrentDensity: i,
	}, nil
}
