package utils

import (
	"errors"
	"math"
)

var ErrNoConvergence = errors.New("root not converged")

// Secant locates a root of f from the starting pair x0, x1. It stops once
// |f| <= fTol and successive iterates agree to xTol relative to max(1, |x|).
// Errors returned by f end the iteration and are passed through.
func Secant(f func(x float64) (float64, error), x0, x1, xTol, fTol float64, maxIter int) (x, fx float64, iter int, err error) {
	var (
		f0, f1 float64
	)
	if f0, err = f(x0); err != nil {
		return x0, f0, 0, err
	}
	if math.Abs(f0) <= fTol {
		return x0, f0, 0, nil
	}
	if f1, err = f(x1); err != nil {
		return x1, f1, 0, err
	}
	for iter = 1; iter <= maxIter; iter++ {
		if math.Abs(f1) <= fTol && math.Abs(x1-x0) <= xTol*math.Max(1, math.Abs(x1)) {
			return x1, f1, iter, nil
		}
		denom := f1 - f0
		if denom == 0 || math.IsNaN(denom) {
			if math.Abs(f1) <= fTol {
				return x1, f1, iter, nil
			}
			return x1, f1, iter, ErrNoConvergence
		}
		x2 := x1 - f1*(x1-x0)/denom
		x0, f0 = x1, f1
		x1 = x2
		if f1, err = f(x1); err != nil {
			return x1, f1, iter, err
		}
	}
	if math.Abs(f1) <= fTol && math.Abs(x1-x0) <= xTol*math.Max(1, math.Abs(x1)) {
		return x1, f1, maxIter, nil
	}
	return x1, f1, maxIter, ErrNoConvergence
}
