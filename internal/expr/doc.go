// Package expr provides a small symbolic expression kernel for real functions
// of one variable.
//
// The package covers the three collaborators a critical-point search needs:
//
//   - [Parse]: infix text to an expression tree
//   - [Expr.Eval]: numeric evaluation under a set of variable bindings
//   - [Diff]: exact symbolic differentiation with light simplification
//
// # Example
//
//	f, _ := expr.Parse("x^2 - 4x")
//	df := expr.Diff(f, "x")         // 2 * x - 4
//	v, _ := df.Eval(map[string]float64{"x": 2})
//
// # Rendering
//
// String renders with spaced binary operators ("2 * x - 4"). A derivative
// that no longer depends on any symbol always renders as a plain numeral,
// so callers can recognise constant derivatives from text alone.
package expr
