package expr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotDiscretised indicates a Variable was evaluated before being
	// replaced by a StateVector.
	ErrNotDiscretised = errors.New("expr: variable has not been discretised")

	// ErrUnprocessedParameter indicates a Parameter was evaluated before
	// being replaced by its value.
	ErrUnprocessedParameter = errors.New("expr: parameter has not been processed")

	// ErrMissingInput indicates an InputParameter had no value in the inputs.
	ErrMissingInput = errors.New("expr: missing input parameter")

	// ErrShapeMismatch indicates operands whose sizes cannot be broadcast.
	ErrShapeMismatch = errors.New("expr: operand shapes do not match")

	// ErrUnsizedBroadcast indicates a Broadcast evaluated before the
	// discretiser assigned its size.
	ErrUnsizedBroadcast = errors.New("expr: broadcast has no size")

	// ErrStateIndex indicates a StateVector slice outside the state vector.
	ErrStateIndex = errors.New("expr: state vector slice out of range")

	// ErrDomain indicates inconsistent domains between operands.
	ErrDomain = errors.New("expr: inconsistent domains")
)

// DomainError reports the node whose children carry inconsistent domains.
type DomainError struct {
	Node   string
	Left   []string
	Right  []string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("expr: %s in %s: [%s] vs [%s]",
		e.Reason, e.Node, strings.Join(e.Left, ", "), strings.Join(e.Right, ", "))
}

func (e *DomainError) Unwrap() error {
	return ErrDomain
}
