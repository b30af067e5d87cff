package config

import (
	"errors"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/battsim/internal/parameters"
	"github.com/san-kum/battsim/internal/solver"
)

const (
	DefaultModel     = "spm"
	DefaultSolver    = "dae"
	DefaultTolerance = 1e-8
	DefaultTEnd      = 3600.0
	DefaultPoints    = 61
	DefaultLogLevel  = "info"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Model      string             `yaml:"model"`
	Options    map[string]string  `yaml:"options,omitempty"`
	Parameters map[string]float64 `yaml:"parameters,omitempty"`
	Inputs     map[string]float64 `yaml:"inputs,omitempty"`
	Mesh       map[string]int     `yaml:"mesh,omitempty"`
	Solver     SolverConfig       `yaml:"solver"`
	TEnd       float64            `yaml:"t_end"`
	Points     int                `yaml:"points"`
	LogLevel   string             `yaml:"log_level"`
}

type SolverConfig struct {
	Name        string         `yaml:"name"`
	Tolerance   float64        `yaml:"tolerance"`
	Sensitivity string         `yaml:"sensitivity,omitempty"`
	Options     solver.Options `yaml:"options"`
}

func DefaultConfig() *Config {
	return &Config{
		Model: DefaultModel,
		Solver: SolverConfig{
			Name:        DefaultSolver,
			Tolerance:   DefaultTolerance,
			Sensitivity: string(solver.SensitivityNone),
			Options:     solver.DefaultOptions(),
		},
		TEnd:     DefaultTEnd,
		Points:   DefaultPoints,
		LogLevel: DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.TEnd <= 0 {
		return fmt.Errorf("%w: t_end must be positive, got %g", ErrInvalidConfig, c.TEnd)
	}
	if c.Points < 2 {
		return fmt.Errorf("%w: need at least 2 output points, got %d", ErrInvalidConfig, c.Points)
	}
	if c.Solver.Tolerance <= 0 {
		return fmt.Errorf("%w: solver tolerance must be positive", ErrInvalidConfig)
	}
	if _, err := solver.ParseSensitivity(c.Solver.Sensitivity); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	for name := range c.Inputs {
		if _, ok := c.Parameters[name]; ok {
			return fmt.Errorf("%w: %q is both a parameter override and an input", ErrInvalidConfig, name)
		}
	}
	return nil
}

// Params returns the default parameter set with the configured overrides
// applied and the configured inputs marked as input parameters.
func (c *Config) Params() *parameters.Values {
	p := parameters.Defaults()
	p.Update(c.Parameters)
	for name := range c.Inputs {
		p.MarkInput(name)
	}
	return p
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Options = maps.Clone(c.Options)
	out.Parameters = maps.Clone(c.Parameters)
	out.Inputs = maps.Clone(c.Inputs)
	out.Mesh = maps.Clone(c.Mesh)
	return &out
}

// Times returns Points evenly spaced output times over [0, TEnd].
func (c *Config) Times() []float64 {
	n := max(c.Points, 2)
	times := make([]float64, n)
	for i := range times {
		times[i] = c.TEnd * float64(i) / float64(n-1)
	}
	return times
}
