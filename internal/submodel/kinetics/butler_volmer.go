package kinetics

import (
	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/parameters"
	"github.com/san-kum/battsim/internal/submodel"
)

// ButlerVolmer makes the surface overpotential of one electrode an
// algebraic state fixed by symmetric Butler-Volmer kinetics:
//
//	0 = 2 j0 sinh(F eta / 2RT) - j,  j0 = k sqrt(sto (1 - sto))
type ButlerVolmer struct {
	submodel.Base
	electrode submodel.Electrode
	eta       *expr.Variable
}

func NewButlerVolmer(param submodel.Params, e submodel.Electrode) *ButlerVolmer {
	return &ButlerVolmer{
		Base:      submodel.NewBase(e.Lower()+" Butler-Volmer kinetics", param),
		electrode: e,
		eta:       expr.NewVariable(submodel.Overpotential(e), nil),
	}
}

func (b *ButlerVolmer) GetFundamentalVariables() (submodel.Variables, error) {
	e := b.electrode
	vars := submodel.Variables{submodel.Overpotential(e): b.eta}
	vars[e.Title()+" electrode reaction overpotential [V]"] = expr.PrimaryBroadcast(b.eta, e.Domain())
	return vars, nil
}

func (b *ButlerVolmer) GetCoupledVariables(vars submodel.Lookup) (submodel.Variables, error) {
	sto, err := vars.Get(submodel.SurfaceStoichiometry(b.electrode))
	if err != nil {
		return nil, err
	}
	return submodel.Variables{b.exchangeCurrentKey(): b.exchangeCurrent(sto)}, nil
}

func (b *ButlerVolmer) SetAlgebraic(vars submodel.Lookup) error {
	got, err := submodel.Require(vars, submodel.InterfacialCurrent(b.electrode), b.exchangeCurrentKey())
	if err != nil {
		return err
	}
	j, j0 := got[0], got[1]
	rate := expr.Mul(expr.NewScalar(2), expr.Mul(j0, expr.Sinh(expr.Div(b.eta, b.thermalVoltage(2)))))
	return b.AddAlgebraic(b.eta, expr.Sub(rate, j))
}

func (b *ButlerVolmer) SetInitialConditions(submodel.Lookup) error {
	return b.AddInitialCondition(b.eta, expr.NewScalar(0))
}

func (b *ButlerVolmer) exchangeCurrentKey() string {
	return "X-averaged " + b.electrode.Lower() + " electrode exchange current density [A.m-2]"
}

func (b *ButlerVolmer) exchangeCurrent(sto expr.Symbol) expr.Symbol {
	k := b.Param.Symbol(b.electrode.Pick(parameters.NegativeExchangeCurrent, parameters.PositiveExchangeCurrent))
	return expr.Mul(k, expr.Sqrt(expr.Mul(sto, expr.Sub(expr.NewScalar(1), sto))))
}

// thermalVoltage returns n RT/F.
func (b *ButlerVolmer) thermalVoltage(n float64) expr.Symbol {
	rt := expr.Mul(b.Param.Symbol(parameters.GasConstant), b.Param.Symbol(parameters.Temperature))
	return expr.Mul(expr.NewScalar(n), expr.Div(rt, b.Param.Symbol(parameters.Faraday)))
}
