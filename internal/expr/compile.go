package expr

import "fmt"

// Func is a compiled expression.
type Func func(t float64, y []float64, inputs Inputs) ([]float64, error)

// Compile converts a discretised tree into a closure. Every node is
// resolved once here so the returned Func does no type dispatch.
func Compile(sym Symbol) (Func, error) {
	switch s := sym.(type) {
	case *Scalar:
		v := s.Value
		return func(float64, []float64, Inputs) ([]float64, error) {
			return []float64{v}, nil
		}, nil
	case *Vector:
		values := append([]float64(nil), s.Values...)
		return func(float64, []float64, Inputs) ([]float64, error) {
			return append([]float64(nil), values...), nil
		}, nil
	case *Time, *InputParameter, *StateVector:
		return s.Evaluate, nil
	case *Parameter:
		return nil, fmt.Errorf("%w: %q", ErrUnprocessedParameter, s.Name())
	case *Variable:
		return nil, fmt.Errorf("%w: %q", ErrNotDiscretised, s.Name())
	case *Binary:
		l, err := Compile(s.Left())
		if err != nil {
			return nil, err
		}
		r, err := Compile(s.Right())
		if err != nil {
			return nil, err
		}
		op := binaryOps[s.Op]
		return func(t float64, y []float64, inputs Inputs) ([]float64, error) {
			lv, err := l(t, y, inputs)
			if err != nil {
				return nil, err
			}
			rv, err := r(t, y, inputs)
			if err != nil {
				return nil, err
			}
			return applyBinary(op, lv, rv)
		}, nil
	case *Function:
		arg, err := Compile(s.Arg())
		if err != nil {
			return nil, err
		}
		fn := functions[s.Name()]
		return func(t float64, y []float64, inputs Inputs) ([]float64, error) {
			v, err := arg(t, y, inputs)
			if err != nil {
				return nil, err
			}
			for i := range v {
				v[i] = fn(v[i])
			}
			return v, nil
		}, nil
	case *Broadcast:
		if s.Size <= 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnsizedBroadcast, s)
		}
		child, err := Compile(s.Child())
		if err != nil {
			return nil, err
		}
		size := s.Size
		return func(t float64, y []float64, inputs Inputs) ([]float64, error) {
			v, err := child(t, y, inputs)
			if err != nil {
				return nil, err
			}
			return applyBroadcast(v, size)
		}, nil
	case *Concatenation:
		return compileAll(s.Children())
	case *XAverage:
		child, err := Compile(s.Children()[0])
		if err != nil {
			return nil, err
		}
		return func(t float64, y []float64, inputs Inputs) ([]float64, error) {
			v, err := child(t, y, inputs)
			if err != nil {
				return nil, err
			}
			return []float64{mean(v)}, nil
		}, nil
	}
	return nil, fmt.Errorf("expr: cannot compile %T", sym)
}

// CompileConcatenated compiles syms into one Func returning their stacked
// values, in order.
func CompileConcatenated(syms []Symbol) (Func, error) {
	return compileAll(syms)
}

func compileAll(syms []Symbol) (Func, error) {
	parts := make([]Func, len(syms))
	for i, s := range syms {
		f, err := Compile(s)
		if err != nil {
			return nil, err
		}
		parts[i] = f
	}
	return func(t float64, y []float64, inputs Inputs) ([]float64, error) {
		var out []float64
		for _, f := range parts {
			v, err := f(t, y, inputs)
			if err != nil {
				return nil, err
			}
			out = append(out, v...)
		}
		return out, nil
	}, nil
}
