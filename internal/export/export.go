// Package export renders solved variables as PNG plots, HTML charts or
// JSON.
package export

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/battsim/internal/solution"
)

var (
	ErrNoSeries  = errors.New("export: nothing to export")
	ErrNotScalar = errors.New("export: variable has more than one point")
)

// Series is one variable over time.
type Series struct {
	Name   string    `json:"name"`
	T      []float64 `json:"t"`
	Values []float64 `json:"values"`
}

// FromSolution evaluates names over sol. Distributed variables are
// rejected.
func FromSolution(sol *solution.Solution, names []string) ([]Series, error) {
	out := make([]Series, 0, len(names))
	for _, name := range names {
		pv, err := sol.Variable(name)
		if err != nil {
			return nil, err
		}
		if pv.Points() != 1 {
			return nil, fmt.Errorf("%w: %q has %d", ErrNotScalar, name, pv.Points())
		}
		out = append(out, Series{Name: name, T: pv.T, Values: pv.Series()})
	}
	return out, nil
}

// FromColumns builds series from stored variable columns. An empty names
// list takes every column in sorted order.
func FromColumns(columns map[string][]float64, times []float64, names []string) ([]Series, error) {
	if len(names) == 0 {
		for name := range columns {
			names = append(names, name)
		}
		sort.Strings(names)
	}
	out := make([]Series, 0, len(names))
	for _, name := range names {
		values, ok := columns[name]
		if !ok {
			return nil, fmt.Errorf("export: no stored variable %q", name)
		}
		out = append(out, Series{Name: name, T: times, Values: values})
	}
	return out, nil
}
