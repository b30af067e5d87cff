package model

import (
	"errors"
	"fmt"
)

var (
	// ErrModelNotWellPosed indicates missing, duplicate or dangling equations.
	ErrModelNotWellPosed = errors.New("model: model is not well posed")

	// ErrNotBuilt indicates the model was used before Build.
	ErrNotBuilt = errors.New("model: model has not been built")

	// ErrDuplicateSubmodel indicates two submodels registered under one name.
	ErrDuplicateSubmodel = errors.New("model: duplicate submodel name")
)

// NotWellPosedError names the offending variable.
type NotWellPosedError struct {
	Variable string
	Reason   string
}

func (e *NotWellPosedError) Error() string {
	return fmt.Sprintf("model: %s: %q", e.Reason, e.Variable)
}

func (e *NotWellPosedError) Unwrap() error {
	return ErrModelNotWellPosed
}
