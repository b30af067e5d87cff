package submodel

import "github.com/san-kum/battsim/internal/expr"

// Electrode selects which half of the cell a per-electrode submodel
// describes.
type Electrode int

const (
	Negative Electrode = iota
	Positive
)

// Title is "Negative" or "Positive", the prefix used in variable names.
func (e Electrode) Title() string {
	if e == Positive {
		return "Positive"
	}
	return "Negative"
}

// Lower is the lower-case prefix, e.g. "negative".
func (e Electrode) Lower() string {
	if e == Positive {
		return "positive"
	}
	return "negative"
}

// Domain is the spatial region of the electrode.
func (e Electrode) Domain() string {
	if e == Positive {
		return expr.PositiveElectrode
	}
	return expr.NegativeElectrode
}

// Pick returns neg or pos depending on the electrode.
func (e Electrode) Pick(neg, pos string) string {
	if e == Positive {
		return pos
	}
	return neg
}
