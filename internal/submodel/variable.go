package submodel

import (
	"fmt"

	"github.com/san-kum/battsim/internal/expr"
)

// AsVariable returns sym as a state variable. Registry entries for states
// are the Variable itself; anything else cannot be an equation key.
func AsVariable(sym expr.Symbol) (*expr.Variable, error) {
	v, ok := sym.(*expr.Variable)
	if !ok {
		return nil, fmt.Errorf("submodel: %s is not a state variable", sym)
	}
	return v, nil
}
