// Package discretisation turns a built model into a DiscreteModel: state
// slices are assigned, parameters processed, broadcasts sized and every
// equation compiled into a callable. Spatial operators are out of scope;
// a Mesh only records how many points each region has.
package discretisation

import "github.com/san-kum/battsim/internal/expr"

// Mesh maps a domain name to its number of points.
type Mesh map[string]int

// DefaultMesh is a coarse through-cell mesh.
func DefaultMesh() Mesh {
	return Mesh{
		expr.NegativeElectrode: 10,
		expr.Separator:         5,
		expr.PositiveElectrode: 10,
		expr.CurrentCollector:  1,
	}
}

// Points returns the number of entries a quantity on domain occupies.
// Domain-free quantities and unknown regions occupy one point each.
func (m Mesh) Points(domain []string) int {
	if len(domain) == 0 {
		return 1
	}
	n := 0
	for _, d := range domain {
		if p, ok := m[d]; ok && p > 0 {
			n += p
		} else {
			n++
		}
	}
	return n
}
