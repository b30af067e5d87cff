package submodel

// Shared registry keys. Per-electrode keys are built with the helpers below
// so producers and consumers cannot drift apart.
const (
	CurrentDensity      = "Current collector current density [A.m-2]"
	TotalCurrentDensity = "Total current density [A.m-2]"
	Current             = "Current [A]"
	Porosity            = "Porosity"
	PorosityChange      = "Porosity change"
	TerminalVoltage     = "Terminal voltage [V]"
	OpenCircuitVoltage  = "Measured open circuit voltage [V]"

	ReactionOverpotential = "X-averaged reaction overpotential [V]"
)

// InterfacialCurrent is the x-averaged interfacial current density key.
func InterfacialCurrent(e Electrode) string {
	return "X-averaged " + e.Lower() + " electrode interfacial current density [A.m-2]"
}

// SurfaceStoichiometry is the x-averaged particle surface stoichiometry key.
func SurfaceStoichiometry(e Electrode) string {
	return "X-averaged " + e.Lower() + " particle surface stoichiometry"
}

// Overpotential is the x-averaged reaction overpotential key.
func Overpotential(e Electrode) string {
	return "X-averaged " + e.Lower() + " electrode reaction overpotential [V]"
}

// OCP is the electrode open-circuit potential key.
func OCP(e Electrode) string {
	return e.Title() + " electrode open circuit potential [V]"
}

// AveragePorosity is the key of the averaged porosity in a region.
func AveragePorosity(domain string) string { return "Average " + domain + " porosity" }

func AveragePorosityChange(domain string) string {
	return "Average " + domain + " porosity change"
}
