// Package porosity provides electrode and separator porosity submodels.
package porosity

import (
	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/parameters"
	"github.com/san-kum/battsim/internal/submodel"
)

var regions = []struct {
	domain string
	param  string
}{
	{expr.NegativeElectrode, parameters.NegativePorosity},
	{expr.Separator, parameters.SeparatorPorosity},
	{expr.PositiveElectrode, parameters.PositivePorosity},
}

var collectorAux = expr.AuxiliaryDomains{"secondary": {expr.CurrentCollector}}

// porosityVariables registers the through-cell porosity and its per-region
// averages from one averaged value per region.
func porosityVariables(averages []expr.Symbol) submodel.Variables {
	vars := submodel.Variables{}
	parts := make([]expr.Symbol, len(regions))
	for i, r := range regions {
		b := expr.FullBroadcast(averages[i], []string{r.domain}, collectorAux)
		parts[i] = b
		vars[upperFirst(r.domain)+" porosity"] = b
		vars[submodel.AveragePorosity(r.domain)] = averages[i]
	}
	vars[submodel.Porosity] = expr.Concatenate(parts...)
	return vars
}

func changeVariables(rates []expr.Symbol) submodel.Variables {
	vars := submodel.Variables{}
	parts := make([]expr.Symbol, len(rates))
	for i, r := range regions {
		b := expr.FullBroadcast(rates[i], []string{r.domain}, collectorAux)
		parts[i] = b
		vars[upperFirst(r.domain)+" porosity change"] = b
		vars[submodel.AveragePorosityChange(r.domain)] = expr.XAverageOf(b)
	}
	vars[submodel.PorosityChange] = expr.Concatenate(parts...)
	return vars
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

// Constant porosity: parameter values with zero change.
type Constant struct {
	submodel.Base
}

func NewConstant(param submodel.Params) *Constant {
	return &Constant{Base: submodel.NewBase("constant porosity", param)}
}

func (c *Constant) GetFundamentalVariables() (submodel.Variables, error) {
	averages := make([]expr.Symbol, len(regions))
	zeros := make([]expr.Symbol, len(regions))
	for i, r := range regions {
		averages[i] = c.Param.Symbol(r.param)
		zeros[i] = expr.NewScalar(0)
	}
	vars := porosityVariables(averages)
	for k, v := range changeVariables(zeros) {
		vars[k] = v
	}
	return vars, nil
}

// LeadingOrder evolves the averaged porosity of each region with the local
// reaction rate: d(eps)/dt = -beta * j in the electrodes and zero in the
// separator.
type LeadingOrder struct {
	submodel.Base
	averages []*expr.Variable
}

func NewLeadingOrder(param submodel.Params) *LeadingOrder {
	l := &LeadingOrder{Base: submodel.NewBase("leading-order reaction-driven porosity", param)}
	for _, r := range regions {
		l.averages = append(l.averages, expr.NewVariable(submodel.AveragePorosity(r.domain), nil,
			expr.WithBounds(0, 1), expr.WithAuxiliaryDomains(collectorAux)))
	}
	return l
}

func (l *LeadingOrder) GetFundamentalVariables() (submodel.Variables, error) {
	averages := make([]expr.Symbol, len(l.averages))
	for i, v := range l.averages {
		averages[i] = v
	}
	return porosityVariables(averages), nil
}

func (l *LeadingOrder) GetCoupledVariables(vars submodel.Lookup) (submodel.Variables, error) {
	j, err := submodel.Require(vars,
		submodel.InterfacialCurrent(submodel.Negative),
		submodel.InterfacialCurrent(submodel.Positive))
	if err != nil {
		return nil, err
	}
	rates := []expr.Symbol{
		expr.Neg(expr.Mul(l.Param.Symbol(parameters.NegativeSurfaceBeta), j[0])),
		expr.NewScalar(0),
		expr.Neg(expr.Mul(l.Param.Symbol(parameters.PositiveSurfaceBeta), j[1])),
	}
	return changeVariables(rates), nil
}

func (l *LeadingOrder) SetRHS(vars submodel.Lookup) error {
	for i, r := range regions {
		rate, err := vars.Get(submodel.AveragePorosityChange(r.domain))
		if err != nil {
			return err
		}
		if err := l.AddRHS(l.averages[i], rate); err != nil {
			return err
		}
	}
	return nil
}

func (l *LeadingOrder) SetInitialConditions(submodel.Lookup) error {
	for i, r := range regions {
		if err := l.AddInitialCondition(l.averages[i], l.Param.Symbol(r.param)); err != nil {
			return err
		}
	}
	return nil
}
