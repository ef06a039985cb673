// Package analysis turns a function typed by the user into a full report.
//
// [Analyzer.Run] parses the function, derives it, and short-circuits with
// [ErrDegenerateDerivative] when the derivative has no variable term.
// Otherwise it runs the critical point search and evaluates the function at
// the critical points and the interval endpoints:
//
//	a := analysis.New(engine.New(nil), calculus.DefaultConfig())
//	report, err := a.Run(ctx, analysis.Request{Function: "x^2 - 4x"})
//	// report.Extrema.Minimum == {2, -4}
//
// # Stationary points
//
// Each distinct root is labelled [Minimum], [Maximum] or [Flat] by the sign
// of the second derivative.
//
// # Derivative check
//
// With Request.CheckDerivative set, the symbolic derivative is compared
// against a central finite difference at every root and curve sample.
//
// # Batches
//
// An Analyzer holds no per-run state, so [Analyzer.RunBatch] fans several
// requests out over a bounded pool of goroutines.
package analysis
