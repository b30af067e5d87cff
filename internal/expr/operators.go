package expr

import (
	"fmt"
	"math"
	"strings"
)

var binaryOps = map[string]func(a, b float64) float64{
	"+": func(a, b float64) float64 { return a + b },
	"-": func(a, b float64) float64 { return a - b },
	"*": func(a, b float64) float64 { return a * b },
	"/": func(a, b float64) float64 { return a / b },
	"^": math.Pow,
}

var functions = map[string]func(float64) float64{
	"-":       func(x float64) float64 { return -x },
	"exp":     math.Exp,
	"log":     math.Log,
	"sqrt":    math.Sqrt,
	"sinh":    math.Sinh,
	"arcsinh": math.Asinh,
	"tanh":    math.Tanh,
	"abs":     math.Abs,
}

// Binary is an elementwise arithmetic operator. Length-one operands are
// broadcast against the other side.
type Binary struct {
	node
	Op string
}

func newBinary(op string, l, r Symbol) *Binary {
	domain, aux := l.Domain(), l.AuxiliaryDomains()
	if len(domain) == 0 {
		domain, aux = r.Domain(), r.AuxiliaryDomains()
	}
	return &Binary{node: newNode(op, domain, aux, l, r), Op: op}
}

func (b *Binary) Left() Symbol  { return b.children[0] }
func (b *Binary) Right() Symbol { return b.children[1] }

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left(), b.Op, b.Right())
}

func (b *Binary) Evaluate(t float64, y []float64, inputs Inputs) ([]float64, error) {
	l, err := b.Left().Evaluate(t, y, inputs)
	if err != nil {
		return nil, err
	}
	r, err := b.Right().Evaluate(t, y, inputs)
	if err != nil {
		return nil, err
	}
	return applyBinary(binaryOps[b.Op], l, r)
}

func (b *Binary) withChildren(c []Symbol) Symbol { return binaryOf(b.Op, c[0], c[1]) }

func applyBinary(op func(a, b float64) float64, l, r []float64) ([]float64, error) {
	switch {
	case len(l) == len(r):
		out := make([]float64, len(l))
		for i := range l {
			out[i] = op(l[i], r[i])
		}
		return out, nil
	case len(l) == 1:
		out := make([]float64, len(r))
		for i := range r {
			out[i] = op(l[0], r[i])
		}
		return out, nil
	case len(r) == 1:
		out := make([]float64, len(l))
		for i := range l {
			out[i] = op(l[i], r[0])
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %d vs %d", ErrShapeMismatch, len(l), len(r))
}

func scalarValue(s Symbol) (float64, bool) {
	if sc, ok := s.(*Scalar); ok {
		return sc.Value, true
	}
	return 0, false
}

func binaryOf(op string, l, r Symbol) Symbol {
	lv, lok := scalarValue(l)
	rv, rok := scalarValue(r)
	if lok && rok {
		return NewScalar(binaryOps[op](lv, rv))
	}
	switch op {
	case "+":
		if lok && lv == 0 {
			return r
		}
		if rok && rv == 0 {
			return l
		}
	case "-":
		if rok && rv == 0 {
			return l
		}
		if lok && lv == 0 {
			return Neg(r)
		}
	case "*":
		if lok && lv == 1 {
			return r
		}
		if rok && rv == 1 {
			return l
		}
	case "/", "^":
		if rok && rv == 1 {
			return l
		}
	}
	return newBinary(op, l, r)
}

func Add(a, b Symbol) Symbol { return binaryOf("+", a, b) }
func Sub(a, b Symbol) Symbol { return binaryOf("-", a, b) }
func Mul(a, b Symbol) Symbol { return binaryOf("*", a, b) }
func Div(a, b Symbol) Symbol { return binaryOf("/", a, b) }
func Pow(a, b Symbol) Symbol { return binaryOf("^", a, b) }

// Sum folds Add over all terms.
func Sum(terms ...Symbol) Symbol {
	if len(terms) == 0 {
		return NewScalar(0)
	}
	out := terms[0]
	for _, t := range terms[1:] {
		out = Add(out, t)
	}
	return out
}

// Function applies a named elementwise function.
type Function struct {
	node
}

func functionOf(name string, arg Symbol) Symbol {
	if v, ok := scalarValue(arg); ok {
		return NewScalar(functions[name](v))
	}
	if name == "-" {
		if inner, ok := arg.(*Function); ok && inner.name == "-" {
			return inner.children[0]
		}
	}
	return &Function{node: newNode(name, arg.Domain(), arg.AuxiliaryDomains(), arg)}
}

func Neg(a Symbol) Symbol     { return functionOf("-", a) }
func Exp(a Symbol) Symbol     { return functionOf("exp", a) }
func Log(a Symbol) Symbol     { return functionOf("log", a) }
func Sqrt(a Symbol) Symbol    { return functionOf("sqrt", a) }
func Sinh(a Symbol) Symbol    { return functionOf("sinh", a) }
func Arcsinh(a Symbol) Symbol { return functionOf("arcsinh", a) }
func Tanh(a Symbol) Symbol    { return functionOf("tanh", a) }
func Abs(a Symbol) Symbol     { return functionOf("abs", a) }

func (f *Function) Arg() Symbol { return f.children[0] }

func (f *Function) String() string {
	if f.name == "-" {
		return "-" + f.Arg().String()
	}
	return f.name + "(" + f.Arg().String() + ")"
}

func (f *Function) Evaluate(t float64, y []float64, inputs Inputs) ([]float64, error) {
	v, err := f.Arg().Evaluate(t, y, inputs)
	if err != nil {
		return nil, err
	}
	fn := functions[f.name]
	for i := range v {
		v[i] = fn(v[i])
	}
	return v, nil
}

func (f *Function) withChildren(c []Symbol) Symbol { return functionOf(f.name, c[0]) }

// Broadcast repeats a scalar-valued child over a domain. Size is the number
// of mesh points and is set by the discretiser.
type Broadcast struct {
	node
	Full bool
	Size int
}

// PrimaryBroadcast broadcasts child onto the given domain.
func PrimaryBroadcast(child Symbol, domain ...string) *Broadcast {
	return &Broadcast{node: newNode("broadcast", domain, child.AuxiliaryDomains(), child)}
}

// FullBroadcast broadcasts child onto domain together with auxiliary domains.
func FullBroadcast(child Symbol, domain []string, aux AuxiliaryDomains) *Broadcast {
	return &Broadcast{node: newNode("broadcast", domain, aux, child), Full: true}
}

func (b *Broadcast) Child() Symbol { return b.children[0] }

// Sized returns a copy of b with the given number of points.
func (b *Broadcast) Sized(n int) *Broadcast {
	return &Broadcast{node: newNode(b.name, b.domain, b.aux, b.children...), Full: b.Full, Size: n}
}

func (b *Broadcast) String() string {
	return fmt.Sprintf("broadcast(%s -> %s)", b.Child(), strings.Join(b.domain, ", "))
}

func (b *Broadcast) Evaluate(t float64, y []float64, inputs Inputs) ([]float64, error) {
	v, err := b.Child().Evaluate(t, y, inputs)
	if err != nil {
		return nil, err
	}
	return applyBroadcast(v, b.Size)
}

func applyBroadcast(v []float64, size int) ([]float64, error) {
	if size <= 0 {
		return nil, ErrUnsizedBroadcast
	}
	if len(v) != 1 {
		return nil, fmt.Errorf("%w: broadcast of %d entries", ErrShapeMismatch, len(v))
	}
	out := make([]float64, size)
	for i := range out {
		out[i] = v[0]
	}
	return out, nil
}

func (b *Broadcast) withChildren(c []Symbol) Symbol {
	return &Broadcast{node: newNode(b.name, b.domain, b.aux, c[0]), Full: b.Full, Size: b.Size}
}

// Concatenation stacks children defined on adjacent regions.
type Concatenation struct {
	node
}

func Concatenate(children ...Symbol) *Concatenation {
	var domain []string
	var aux AuxiliaryDomains
	for _, c := range children {
		domain = append(domain, c.Domain()...)
		if aux == nil {
			aux = c.AuxiliaryDomains()
		}
	}
	return &Concatenation{node: newNode("concatenation", domain, aux, children...)}
}

func (c *Concatenation) String() string {
	parts := make([]string, len(c.children))
	for i, ch := range c.children {
		parts[i] = ch.String()
	}
	return "concat(" + strings.Join(parts, ", ") + ")"
}

func (c *Concatenation) Evaluate(t float64, y []float64, inputs Inputs) ([]float64, error) {
	var out []float64
	for _, ch := range c.children {
		v, err := ch.Evaluate(t, y, inputs)
		if err != nil {
			return nil, err
		}
		out = append(out, v...)
	}
	return out, nil
}

func (c *Concatenation) withChildren(ch []Symbol) Symbol { return Concatenate(ch...) }

// XAverage is the through-cell average of its child; the result lives on
// the child's secondary domain.
type XAverage struct {
	node
}

func XAverageOf(child Symbol) Symbol {
	if _, ok := scalarValue(child); ok {
		return child
	}
	if b, ok := child.(*Broadcast); ok {
		return b.Child()
	}
	return &XAverage{node: newNode("x-average", child.AuxiliaryDomains().Secondary(), nil, child)}
}

func (x *XAverage) String() string { return "x-average(" + x.children[0].String() + ")" }

func (x *XAverage) Evaluate(t float64, y []float64, inputs Inputs) ([]float64, error) {
	v, err := x.children[0].Evaluate(t, y, inputs)
	if err != nil {
		return nil, err
	}
	return []float64{mean(v)}, nil
}

func (x *XAverage) withChildren(c []Symbol) Symbol { return XAverageOf(c[0]) }

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
