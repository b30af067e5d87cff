package expr

import (
	"sort"
	"strconv"
	"strings"
)

// Inputs binds InputParameter names to values for one evaluation.
type Inputs map[string]float64

// Names returns the input names in sorted order.
func (in Inputs) Names() []string {
	names := make([]string, 0, len(in))
	for name := range in {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Key returns a deterministic string identifying the bound values.
func (in Inputs) Key() string {
	var sb strings.Builder
	for i, name := range in.Names() {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatFloat(in[name], 'g', -1, 64))
	}
	return sb.String()
}

// Vector returns the values in Names order.
func (in Inputs) Vector() []float64 {
	names := in.Names()
	v := make([]float64, len(names))
	for i, name := range names {
		v[i] = in[name]
	}
	return v
}

func (in Inputs) Clone() Inputs {
	c := make(Inputs, len(in))
	for k, v := range in {
		c[k] = v
	}
	return c
}
