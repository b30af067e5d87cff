package config

import (
	"sort"

	"github.com/san-kum/battsim/internal/parameters"
	"github.com/san-kum/battsim/internal/solver"
)

func preset(tEnd, current float64, opts map[string]string) *Config {
	cfg := DefaultConfig()
	cfg.TEnd = tEnd
	cfg.Options = opts
	cfg.Parameters = map[string]float64{parameters.CurrentFunction: current}
	return cfg
}

var Presets = map[string]map[string]*Config{
	"spm": {
		"1C":   preset(3600, 0.68, nil),
		"2C":   preset(1800, 1.36, nil),
		"rest": preset(600, 0, nil),
		"charge": {
			Model:      DefaultModel,
			Parameters: map[string]float64{parameters.CurrentFunction: -0.68},
			Solver: SolverConfig{
				Name:      DefaultSolver,
				Tolerance: DefaultTolerance,
				Options:   solver.DefaultOptions(),
			},
			TEnd:     3600,
			Points:   DefaultPoints,
			LogLevel: DefaultLogLevel,
		},
		"reaction-driven": preset(3600, 0.68, map[string]string{"porosity": "reaction-driven"}),
		"current-sweep": {
			Model:  DefaultModel,
			Inputs: map[string]float64{parameters.CurrentFunction: 0.68},
			Solver: SolverConfig{
				Name:        DefaultSolver,
				Tolerance:   DefaultTolerance,
				Sensitivity: string(solver.SensitivityNone),
				Options:     solver.DefaultOptions(),
			},
			TEnd:     3600,
			Points:   DefaultPoints,
			LogLevel: DefaultLogLevel,
		},
	},
	"algebraic": {
		"initial-state": {
			Model: DefaultModel,
			Solver: SolverConfig{
				Name:        "algebraic",
				Tolerance:   DefaultTolerance,
				Sensitivity: string(solver.SensitivityExplicitForward),
				Options:     solver.DefaultOptions(),
			},
			Inputs:   map[string]float64{parameters.CurrentFunction: 0.68},
			TEnd:     1,
			Points:   2,
			LogLevel: DefaultLogLevel,
		},
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetGroups lists the preset groups in sorted order.
func PresetGroups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}
