// Package calculus locates critical points of a real function from its
// symbolic derivative.
//
// The package is independent of any concrete expression representation.
// Callers inject an [Engine] that can evaluate and differentiate their
// expressions:
//
//   - [IsConstantOrZero]: short-circuit for derivatives with no variable term
//   - [Finder]: coarse fixed-step scan seeded Newton-Raphson refinement
//   - [Refine]: a single bounded refinement with a tagged outcome
//
// # Example
//
//	finder := calculus.NewFinder(eng, calculus.DefaultConfig())
//	var log calculus.Log
//	res, err := finder.Find(ctx, derivative, calculus.DefaultInterval(), &log)
//
// # Failure handling
//
// A candidate whose refinement diverges or exceeds the iteration cap is
// skipped and recorded in [Result.Failures]; the scan continues. Evaluator
// failures abort the search with an [*EvaluationError].
//
// # Thread Safety
//
// A Finder is immutable after construction and may be shared. The [Log]
// passed to Find is owned by the caller and must not be shared between
// concurrent calls.
package calculus
