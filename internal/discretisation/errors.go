package discretisation

import "errors"

var (
	// ErrNotAState indicates an equation refers to a Variable with no slot
	// in the state vector.
	ErrNotAState = errors.New("discretisation: variable is not a state")

	// ErrEquationSize indicates an equation whose size differs from its
	// state's.
	ErrEquationSize = errors.New("discretisation: equation size does not match state")

	// ErrUnknownVariable indicates a lookup of a name the model never
	// registered.
	ErrUnknownVariable = errors.New("discretisation: unknown variable")
)
