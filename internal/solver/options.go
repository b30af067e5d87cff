package solver

import "fmt"

// Sensitivity selects how input sensitivities are handled.
type Sensitivity string

const (
	SensitivityNone Sensitivity = "none"
	// SensitivityExplicitForward computes dy/dp = -J_y^-1 J_p for the
	// algebraic block after every accepted time point.
	SensitivityExplicitForward Sensitivity = "explicit forward"
	// SensitivityDeferred returns the trajectory as a function of the
	// inputs, evaluated and memoised on demand.
	SensitivityDeferred Sensitivity = "deferred"
)

func ParseSensitivity(s string) (Sensitivity, error) {
	switch Sensitivity(s) {
	case "", SensitivityNone:
		return SensitivityNone, nil
	case SensitivityExplicitForward, SensitivityDeferred:
		return Sensitivity(s), nil
	}
	return "", fmt.Errorf("solver: unknown sensitivity mode %q", s)
}

// Options tune the rootfinder and time stepping.
type Options struct {
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"`
	MinDamping    float64 `yaml:"min_damping" json:"min_damping"`
	Integrator    string  `yaml:"integrator" json:"integrator"`
	MaxStep       float64 `yaml:"max_step" json:"max_step"`
}

func DefaultOptions() Options {
	return Options{
		MaxIterations: 100,
		MinDamping:    1e-4,
		Integrator:    "rk45",
		MaxStep:       10,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.MinDamping <= 0 {
		o.MinDamping = d.MinDamping
	}
	if o.Integrator == "" {
		o.Integrator = d.Integrator
	}
	if o.MaxStep <= 0 {
		o.MaxStep = d.MaxStep
	}
	return o
}
