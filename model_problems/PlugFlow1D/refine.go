package PlugFlow1D

import (
	"fmt"
	"math"

	"github.com/notargets/gopfr/chemistry"
)

// RefinementLevel holds the outlet values of one march in a slice refinement study
type RefinementLevel struct {
	NumberOfSlices    int
	Dz                float64
	OutletTemperature float64
	DepositedMass     float64
	OutletRate        float64
}

/*
Refine repeats the march at each slice count and collects the outlet values.
Successive levels should differ by a constant ratio for the observed order to
be meaningful, see ObservedOrder.
*/
func Refine(cfg Config, provider chemistry.Provider, kp chemistry.KineticParameters, counts []int,
	opts ...Option) (levels []RefinementLevel, err error) {
	var res *Result
	for _, n := range counts {
		c := cfg
		c.NumberOfSlices = n
		if res, err = March(c, provider, kp, opts...); err != nil {
			return nil, fmt.Errorf("refinement level %d slices: %w", n, err)
		}
		out := res.Outlet()
		levels = append(levels, RefinementLevel{
			NumberOfSlices:    n,
			Dz:                c.Geometry().Dz,
			OutletTemperature: out.Temperature,
			DepositedMass:     out.DepositedMass,
			OutletRate:        out.DepositionRate,
		})
	}
	return
}

// ObservedOrder estimates the convergence order from three successive values
// at constant refinement ratio r
func ObservedOrder(coarse, medium, fine, r float64) float64 {
	d1, d2 := math.Abs(coarse-medium), math.Abs(medium-fine)
	if d1 == 0 || d2 == 0 {
		return math.NaN()
	}
	return math.Log(d1/d2) / math.Log(r)
}
