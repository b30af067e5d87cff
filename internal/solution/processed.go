package solution

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ProcessedVariable holds a variable evaluated over a solution. Entries has
// one row per spatial point and one column per time point.
type ProcessedVariable struct {
	Name    string
	T       []float64
	Entries *mat.Dense
}

// Points is the number of spatial entries.
func (p *ProcessedVariable) Points() int {
	r, _ := p.Entries.Dims()
	return r
}

// At returns the entries at time index i.
func (p *ProcessedVariable) At(i int) []float64 { return mat.Col(nil, i, p.Entries) }

// Final returns the entries at the last time point.
func (p *ProcessedVariable) Final() []float64 { return p.At(len(p.T) - 1) }

// Series returns the first spatial entry over time, which is the whole
// variable for domain-free quantities.
func (p *ProcessedVariable) Series() []float64 { return mat.Row(nil, 0, p.Entries) }

func (p *ProcessedVariable) Min() float64 { return floats.Min(p.Entries.RawMatrix().Data) }
func (p *ProcessedVariable) Max() float64 { return floats.Max(p.Entries.RawMatrix().Data) }
