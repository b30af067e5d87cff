// Package expr provides the symbolic expression graph shared by submodels,
// the model assembler, the discretiser and the solvers.
//
// Nodes are immutable once constructed:
//
//   - leaves: [Scalar], [Vector], [Parameter], [InputParameter], [Time],
//     [Variable] and [StateVector]
//   - operators: [Binary], [Function], [Broadcast], [Concatenation], [XAverage]
//
// A [Variable] is a named unknown of the continuous model. Its identity (not
// its name) is the key of RHS, algebraic and initial-condition mappings. The
// discretiser replaces every Variable with a [StateVector] slice, sizes each
// [Broadcast] and processes every [Parameter], after which a tree can be
// turned into a callable with [Compile].
//
// # Example
//
//	c := expr.NewVariable("Concentration", nil, expr.WithBounds(0, 1))
//	rate := expr.NewParameter("Rate constant")
//	dcdt := expr.Neg(expr.Mul(rate, c))
package expr
