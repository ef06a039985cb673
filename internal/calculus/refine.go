package calculus

import (
	"fmt"
	"math"
)

// Refinement is the tagged outcome of one Newton-Raphson polish: either
// converged with Value, or failed with Err.
type Refinement struct {
	Seed       float64
	Value      float64
	Residual   float64
	Iterations int
	Err        error
}

func (r Refinement) Converged() bool { return r.Err == nil }

// Refine polishes seed towards a zero of derivative using the second
// derivative as slope. It stops once |derivative| < cfg.ConvergenceTolerance
// or after cfg.MaxIterations updates.
//
// Only evaluator failures at the seed itself are returned as an error; any
// failure after the first update is reported through Refinement.Err.
func Refine(engine Engine, derivative, second Expression, seed float64, cfg Config) (Refinement, error) {
	cfg = cfg.withDefaults()
	v := cfg.Variable

	d, err := engine.Evaluate(derivative, map[string]float64{v: seed})
	if err != nil {
		return Refinement{}, &EvaluationError{Input: derivative.String(), X: seed, Wrapped: err}
	}

	r := Refinement{Seed: seed, Value: seed, Residual: d}
	if math.IsNaN(d) {
		r.Err = fmt.Errorf("%w: derivative is NaN at the seed", ErrDivergentRefinement)
		return r, nil
	}
	x := seed
	for math.Abs(d) >= cfg.ConvergenceTolerance {
		if r.Iterations >= cfg.MaxIterations {
			r.Err = fmt.Errorf("%w after %d iterations (|f'| = %s)", ErrRefinementTimeout, r.Iterations, formatValue(math.Abs(d)))
			return r, nil
		}

		slope, err := engine.Evaluate(second, map[string]float64{v: x})
		if err != nil {
			r.Err = fmt.Errorf("%w: %w", ErrDivergentRefinement, err)
			return r, nil
		}
		next := x - d/slope
		if math.IsNaN(next) || math.IsInf(next, 0) {
			r.Err = fmt.Errorf("%w: second derivative %s at x = %s", ErrDivergentRefinement, formatValue(slope), formatValue(x))
			return r, nil
		}

		x = next
		r.Iterations++
		d, err = engine.Evaluate(derivative, map[string]float64{v: x})
		if err != nil {
			r.Err = fmt.Errorf("%w: %w", ErrDivergentRefinement, err)
			return r, nil
		}
		if math.IsNaN(d) || math.IsInf(d, 0) {
			r.Err = fmt.Errorf("%w: derivative %s at x = %s", ErrDivergentRefinement, formatValue(d), formatValue(x))
			return r, nil
		}
		r.Value = x
		r.Residual = d
	}
	return r, nil
}
