package analysis

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/extrema/internal/calculus"
	"github.com/san-kum/extrema/internal/engine"
)

var ErrInvalidInterval = errors.New("analysis: invalid range format, enter a range like [-1/2, 2]")

// ParseInterval reads "lo, hi" with optional surrounding brackets. Each bound
// may be a constant expression such as -1/2 or pi. Empty text yields the
// default interval.
func ParseInterval(text string) (calculus.Interval, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return calculus.DefaultInterval(), nil
	}
	text = strings.TrimPrefix(text, "[")
	text = strings.TrimSuffix(text, "]")

	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return calculus.Interval{}, ErrInvalidInterval
	}

	eng := engine.New(nil)
	var bounds [2]float64
	for i, part := range parts {
		e, err := eng.Parse(strings.TrimSpace(part))
		if err != nil {
			return calculus.Interval{}, fmt.Errorf("%w: %w", ErrInvalidInterval, err)
		}
		v, err := eng.Evaluate(e, nil)
		if err != nil {
			return calculus.Interval{}, fmt.Errorf("%w: %w", ErrInvalidInterval, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return calculus.Interval{}, fmt.Errorf("%w: bound %q is not finite", ErrInvalidInterval, strings.TrimSpace(part))
		}
		bounds[i] = v
	}
	return calculus.Interval{Lo: bounds[0], Hi: bounds[1]}, nil
}
