package analysis

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
)

// DerivativeCheck compares the symbolic derivative with a central finite
// difference of the function.
type DerivativeCheck struct {
	Samples      int     `json:"samples"`
	MaxDeviation float64 `json:"max_deviation"`
	At           float64 `json:"at"`
}

// CheckDerivative evaluates f and df at each x and records the largest
// deviation, relative to max(1, |df(x)|). Points where either side is not
// finite are skipped.
func CheckDerivative(f, df func(float64) float64, xs []float64) *DerivativeCheck {
	check := &DerivativeCheck{}
	settings := &fd.Settings{Formula: fd.Central}
	for _, x := range xs {
		want := df(x)
		if math.IsNaN(want) || math.IsInf(want, 0) {
			continue
		}
		got := fd.Derivative(f, x, settings)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			continue
		}
		check.Samples++
		dev := math.Abs(got-want) / math.Max(1, math.Abs(want))
		if dev > check.MaxDeviation {
			check.MaxDeviation = dev
			check.At = x
		}
	}
	return check
}
