package utils

import (
	"fmt"

	"gonum.org/v1/gonum/interp"
)

// Interpolate evaluates the piecewise linear curve through (xs, ys) at each
// location in at. Locations outside the span of xs take the end values.
func Interpolate(xs, ys, at []float64) (out []float64, err error) {
	var pl interp.PiecewiseLinear
	if len(xs) != len(ys) {
		err = fmt.Errorf("interpolate: length mismatch %d != %d", len(xs), len(ys))
		return
	}
	if len(xs) < 2 {
		err = fmt.Errorf("interpolate: need at least 2 points, have %d", len(xs))
		return
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			err = fmt.Errorf("interpolate: abscissae not strictly increasing at %d", i)
			return
		}
	}
	if err = pl.Fit(xs, ys); err != nil {
		return
	}
	out = make([]float64, len(at))
	for i, x := range at {
		out[i] = pl.Predict(x)
	}
	return
}
