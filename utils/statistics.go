package utils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

func RMSE(resid []float64) float64 {
	if len(resid) == 0 {
		return 0
	}
	return math.Sqrt(floats.Dot(resid, resid) / float64(len(resid)))
}

func MAE(resid []float64) float64 {
	if len(resid) == 0 {
		return 0
	}
	return floats.Norm(resid, 1) / float64(len(resid))
}

// Trapezoid integrates the piecewise linear curve through (xs, ys)
func Trapezoid(xs, ys []float64) (sum float64) {
	for i := 1; i < len(xs); i++ {
		sum += 0.5 * (ys[i] + ys[i-1]) * (xs[i] - xs[i-1])
	}
	return
}
