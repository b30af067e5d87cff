// Package particle provides electrode particle submodels.
package particle

import (
	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/parameters"
	"github.com/san-kum/battsim/internal/submodel"
)

// Stoichiometry limits outside which the open-circuit potential is not
// defined; the solve stops before a particle reaches them.
const (
	MinStoichiometry = 0.01
	MaxStoichiometry = 0.99
)

// Lumped tracks one x-averaged stoichiometry per electrode, taking the
// surface value equal to the bulk value:
//
//	d(sto)/dt = -a j / (F eps c_max)
type Lumped struct {
	submodel.Base
	electrode submodel.Electrode
	sto       *expr.Variable
}

func NewLumped(param submodel.Params, e submodel.Electrode) *Lumped {
	return &Lumped{
		Base:      submodel.NewBase(e.Lower()+" lumped particle", param),
		electrode: e,
		sto: expr.NewVariable("X-averaged "+e.Lower()+" particle stoichiometry", nil,
			expr.WithBounds(0, 1)),
	}
}

func (p *Lumped) GetFundamentalVariables() (submodel.Variables, error) {
	e := p.electrode
	cmax := p.param(parameters.NegativeMaxConcentration, parameters.PositiveMaxConcentration)

	vars := submodel.Variables{p.sto.Name(): p.sto}
	vars[submodel.SurfaceStoichiometry(e)] = p.sto
	vars[submodel.OCP(e)] = p.openCircuitPotential()
	vars["X-averaged "+e.Lower()+" particle concentration [mol.m-3]"] = expr.Mul(cmax, p.sto)
	vars[e.Title()+" particle stoichiometry"] = expr.PrimaryBroadcast(p.sto, e.Domain())
	return vars, nil
}

func (p *Lumped) SetRHS(vars submodel.Lookup) error {
	j, err := vars.Get(submodel.InterfacialCurrent(p.electrode))
	if err != nil {
		return err
	}
	a := p.param(parameters.NegativeSurfaceArea, parameters.PositiveSurfaceArea)
	eps := p.param(parameters.NegativeActiveFraction, parameters.PositiveActiveFraction)
	cmax := p.param(parameters.NegativeMaxConcentration, parameters.PositiveMaxConcentration)
	capacity := expr.Mul(p.Param.Symbol(parameters.Faraday), expr.Mul(eps, cmax))

	if err := p.AddRHS(p.sto, expr.Neg(expr.Div(expr.Mul(a, j), capacity))); err != nil {
		return err
	}

	p.AddEvent("Minimum "+p.electrode.Lower()+" particle surface stoichiometry",
		expr.Sub(p.sto, expr.NewScalar(MinStoichiometry)), submodel.EventTermination)
	p.AddEvent("Maximum "+p.electrode.Lower()+" particle surface stoichiometry",
		expr.Sub(expr.NewScalar(MaxStoichiometry), p.sto), submodel.EventTermination)
	return nil
}

func (p *Lumped) SetInitialConditions(submodel.Lookup) error {
	return p.AddInitialCondition(p.sto, p.param(parameters.NegativeInitialSto, parameters.PositiveInitialSto))
}

// openCircuitPotential is the ideal-solution OCP U0 - (RT/F) ln(sto/(1-sto)).
func (p *Lumped) openCircuitPotential() expr.Symbol {
	u0 := p.param(parameters.NegativeReferenceOCP, parameters.PositiveReferenceOCP)
	rt := expr.Mul(p.Param.Symbol(parameters.GasConstant), p.Param.Symbol(parameters.Temperature))
	ratio := expr.Div(p.sto, expr.Sub(expr.NewScalar(1), p.sto))
	return expr.Sub(u0, expr.Mul(expr.Div(rt, p.Param.Symbol(parameters.Faraday)), expr.Log(ratio)))
}

func (p *Lumped) param(neg, pos string) expr.Symbol {
	return p.Param.Symbol(p.electrode.Pick(neg, pos))
}
