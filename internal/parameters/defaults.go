package parameters

// Parameter names used by the lumped lithium-ion submodels.
const (
	CurrentFunction          = "Current function [A]"
	ElectrodeArea            = "Electrode area [m2]"
	NegativeThickness        = "Negative electrode thickness [m]"
	SeparatorThickness       = "Separator thickness [m]"
	PositiveThickness        = "Positive electrode thickness [m]"
	NegativeSurfaceArea      = "Negative electrode surface area to volume ratio [m-1]"
	PositiveSurfaceArea      = "Positive electrode surface area to volume ratio [m-1]"
	NegativeMaxConcentration = "Maximum concentration in negative electrode [mol.m-3]"
	PositiveMaxConcentration = "Maximum concentration in positive electrode [mol.m-3]"
	NegativeInitialSto       = "Initial negative electrode stoichiometry"
	PositiveInitialSto       = "Initial positive electrode stoichiometry"
	NegativeActiveFraction   = "Negative electrode active material volume fraction"
	PositiveActiveFraction   = "Positive electrode active material volume fraction"
	NegativeExchangeCurrent  = "Negative electrode reference exchange-current density [A.m-2]"
	PositiveExchangeCurrent  = "Positive electrode reference exchange-current density [A.m-2]"
	NegativePorosity         = "Negative electrode porosity"
	SeparatorPorosity        = "Separator porosity"
	PositivePorosity         = "Positive electrode porosity"
	NegativeSurfaceBeta      = "Negative electrode reaction-driven porosity change coefficient [m3.A-1.s-1]"
	PositiveSurfaceBeta      = "Positive electrode reaction-driven porosity change coefficient [m3.A-1.s-1]"
	Temperature              = "Ambient temperature [K]"
	LowerVoltageCutoff       = "Lower voltage cut-off [V]"
	UpperVoltageCutoff       = "Upper voltage cut-off [V]"
	NegativeReferenceOCP     = "Negative electrode reference OCP [V]"
	PositiveReferenceOCP     = "Positive electrode reference OCP [V]"
	Faraday                  = "Faraday constant [C.mol-1]"
	GasConstant              = "Ideal gas constant [J.K-1.mol-1]"
)

// Defaults returns a graphite/NMC-like parameter set sized for a small
// pouch cell.
func Defaults() *Values {
	return New(map[string]float64{
		CurrentFunction:          0.68,
		ElectrodeArea:            0.1027,
		NegativeThickness:        85.2e-6,
		SeparatorThickness:       12e-6,
		PositiveThickness:        75.6e-6,
		NegativeSurfaceArea:      3.84e5,
		PositiveSurfaceArea:      3.82e5,
		NegativeMaxConcentration: 33133,
		PositiveMaxConcentration: 63104,
		NegativeInitialSto:       0.9,
		PositiveInitialSto:       0.27,
		NegativeActiveFraction:   0.75,
		PositiveActiveFraction:   0.665,
		NegativeExchangeCurrent:  0.7,
		PositiveExchangeCurrent:  1.1,
		NegativePorosity:         0.25,
		SeparatorPorosity:        0.47,
		PositivePorosity:         0.335,
		NegativeSurfaceBeta:      1e-9,
		PositiveSurfaceBeta:      -1e-9,
		Temperature:              298.15,
		LowerVoltageCutoff:       2.5,
		UpperVoltageCutoff:       4.4,
		NegativeReferenceOCP:     0.1,
		PositiveReferenceOCP:     3.9,
		Faraday:                  96485.33212,
		GasConstant:              8.314462618,
	})
}
