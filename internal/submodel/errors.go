package submodel

import (
	"errors"
	"fmt"
)

var (
	// ErrVariableNotFound indicates a submodel looked up a name no submodel
	// has contributed yet: a missing or mis-ordered submodel.
	ErrVariableNotFound = errors.New("submodel: variable not found in registry")

	// ErrDuplicateEquation indicates two equations for the same state.
	ErrDuplicateEquation = errors.New("submodel: duplicate equation for variable")
)

// LookupError names the missing key and the submodel that asked for it.
type LookupError struct {
	Key       string
	Submodel  string
	Available int
}

func (e *LookupError) Error() string {
	if e.Submodel == "" {
		return fmt.Sprintf("submodel: %q not found in registry (%d variables)", e.Key, e.Available)
	}
	return fmt.Sprintf("submodel %s: %q not found in registry (%d variables)", e.Submodel, e.Key, e.Available)
}

func (e *LookupError) Unwrap() error {
	return ErrVariableNotFound
}
