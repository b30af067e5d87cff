// Package lithiumion assembles complete lithium-ion cell models from the
// submodel catalogue.
package lithiumion

import (
	"errors"
	"fmt"

	"github.com/san-kum/battsim/internal/discretisation"
	"github.com/san-kum/battsim/internal/expr"
	"github.com/san-kum/battsim/internal/model"
	"github.com/san-kum/battsim/internal/parameters"
	"github.com/san-kum/battsim/internal/submodel"
	"github.com/san-kum/battsim/internal/submodel/currentcollector"
	"github.com/san-kum/battsim/internal/submodel/kinetics"
	"github.com/san-kum/battsim/internal/submodel/particle"
	"github.com/san-kum/battsim/internal/submodel/porosity"
	"github.com/san-kum/battsim/internal/submodel/voltage"
)

var ErrUnknownOption = errors.New("lithiumion: unknown model option")

// Option keys and values understood by NewSPM.
const (
	OptionPorosity         = "porosity"
	PorosityConstant       = "constant"
	PorosityReactionDriven = "reaction-driven"
)

// DefaultSolver is the solver an SPM is meant to be solved with.
const DefaultSolver = "dae"

// SPM is a built single particle model.
type SPM struct {
	*model.Model
	Params *parameters.Values
}

// NewSPM builds the lumped single particle model. params may be nil, in
// which case the default parameter set is used.
func NewSPM(params *parameters.Values, opts model.Options) (*SPM, error) {
	if params == nil {
		params = parameters.Defaults()
	}
	m := model.New("Single Particle Model", opts)

	poro, err := porositySubmodel(params, m.Options.Get(OptionPorosity, PorosityConstant))
	if err != nil {
		return nil, err
	}

	// interfacial currents come before porosity: the reaction-driven
	// variant reads them in its coupled pass
	subs := []struct {
		key string
		sub submodel.Submodel
	}{
		{"current collector", currentcollector.NewUniform(params)},
		{"negative interface", kinetics.NewUniform(params, submodel.Negative)},
		{"positive interface", kinetics.NewUniform(params, submodel.Positive)},
		{"porosity", poro},
		{"negative particle", particle.NewLumped(params, submodel.Negative)},
		{"positive particle", particle.NewLumped(params, submodel.Positive)},
		{"negative kinetics", kinetics.NewButlerVolmer(params, submodel.Negative)},
		{"positive kinetics", kinetics.NewButlerVolmer(params, submodel.Positive)},
		{"voltage", voltage.NewOpenCircuit(params)},
	}
	for _, s := range subs {
		if err := m.AddSubmodel(s.key, s.sub); err != nil {
			return nil, err
		}
	}

	if err := m.Build(); err != nil {
		return nil, err
	}
	return &SPM{Model: m, Params: params}, nil
}

func porositySubmodel(params *parameters.Values, option string) (submodel.Submodel, error) {
	switch option {
	case PorosityConstant:
		return porosity.NewConstant(params), nil
	case PorosityReactionDriven:
		return porosity.NewLeadingOrder(params), nil
	}
	return nil, fmt.Errorf("%w: %s=%q", ErrUnknownOption, OptionPorosity, option)
}

// DefaultMesh is the geometry the SPM is discretised on unless overridden.
func (s *SPM) DefaultMesh() discretisation.Mesh { return discretisation.DefaultMesh() }

func (s *SPM) DefaultSolver() string { return DefaultSolver }

// Discretise processes the model on mesh, or on the default mesh if mesh is
// nil. inputs are needed only when an initial condition depends on an
// input parameter.
func (s *SPM) Discretise(mesh discretisation.Mesh, inputs expr.Inputs) (*discretisation.DiscreteModel, error) {
	if mesh == nil {
		mesh = s.DefaultMesh()
	}
	return discretisation.New(mesh).ProcessModel(s.Model, s.Params, inputs)
}
