package utils

import (
	"math"
)

func ConstArray(N int, val float64) (v []float64) {
	v = make([]float64, N)
	for i := range v {
		v[i] = val
	}
	return
}

// POW raises x to an integer power, multiplying out small exponents
func POW(x float64, pp int) (y float64) {
	var (
		p       = pp
		flipped bool
	)
	if pp > 8 || pp < -8 {
		return math.Pow(x, float64(pp))
	}
	if p < 0 {
		p = -pp
		flipped = true
	}
	y = 1
	for ; p > 0; p-- {
		y *= x
	}
	if flipped {
		y = 1. / y
	}
	return
}

// Power uses POW when the exponent is integral, which is the common case for
// reaction orders
func Power(x, p float64) float64 {
	if ip := math.Trunc(p); ip == p && math.Abs(p) <= 8 {
		return POW(x, int(ip))
	}
	return math.Pow(x, p)
}

func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func ClampSlice(x, lo, hi []float64) (y []float64) {
	y = make([]float64, len(x))
	for i := range x {
		y[i] = Clamp(x[i], lo[i], hi[i])
	}
	return
}

// Normalize scales v in place to unit sum, returning the original sum
func Normalize(v []float64) (sum float64) {
	for _, f := range v {
		sum += f
	}
	if sum == 0 {
		return
	}
	for i := range v {
		v[i] /= sum
	}
	return
}

func HasNonFinite(v []float64) bool {
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
	}
	return false
}
