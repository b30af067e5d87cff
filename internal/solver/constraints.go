package solver

// Constraint is a per-entry sign restriction on rootfinder iterates.
type Constraint int

const (
	Unconstrained Constraint = 0
	NonNegative   Constraint = 1
	NonPositive   Constraint = -1
	Positive      Constraint = 2
	Negative      Constraint = -2
)

// Constraints derives sign constraints from declared bounds: a lower bound
// >= 0 gives NonNegative, an upper bound <= 0 gives NonPositive. Anything
// else, including two-sided finite bounds, stays unconstrained.
func Constraints(lower, upper []float64) []Constraint {
	out := make([]Constraint, len(lower))
	for i := range lower {
		switch {
		case lower[i] >= 0:
			out[i] = NonNegative
		case i < len(upper) && upper[i] <= 0:
			out[i] = NonPositive
		}
	}
	return out
}

// Satisfied reports whether x obeys the constraint.
func (c Constraint) Satisfied(x float64) bool {
	switch c {
	case NonNegative:
		return x >= 0
	case NonPositive:
		return x <= 0
	case Positive:
		return x > 0
	case Negative:
		return x < 0
	}
	return true
}

// fit resizes constraints to n entries, padding with Unconstrained.
func fit(c []Constraint, n int) []Constraint {
	out := make([]Constraint, n)
	copy(out, c)
	return out
}
