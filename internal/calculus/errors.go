package calculus

import (
	"errors"
	"fmt"
)

// Per-candidate refinement failures. Both are recovered by the Finder.
var (
	// ErrDivergentRefinement indicates a Newton-Raphson update that was not
	// finite, usually a vanishing second derivative.
	ErrDivergentRefinement = errors.New("calculus: divergent refinement")

	// ErrRefinementTimeout indicates the iteration cap was reached before
	// the derivative fell inside the convergence tolerance.
	ErrRefinementTimeout = errors.New("calculus: refinement did not converge")

	// ErrInvalidConfig indicates a non-positive step or tolerance.
	ErrInvalidConfig = errors.New("calculus: invalid finder config")
)

// EvaluationError wraps an evaluator or differentiator failure with the
// offending input. It aborts the whole search.
type EvaluationError struct {
	Input   string
	X       float64
	Wrapped error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("calculus: evaluating %q at x = %s: %v", e.Input, formatValue(e.X), e.Wrapped)
}

func (e *EvaluationError) Unwrap() error {
	return e.Wrapped
}
