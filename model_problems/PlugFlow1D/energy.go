package PlugFlow1D

import (
	"errors"
	"fmt"
	"math"

	"github.com/notargets/gopfr/chemistry"
	"github.com/notargets/gopfr/utils"
)

var errNonPhysicalTemperature = errors.New("non-physical temperature")

// segmentEnergy holds the terms of the energy balance over one segment.
// cp is the mixture heat capacity at the outlet composition, evaluated at the
// mean of the inlet and candidate outlet temperatures.
type segmentEnergy struct {
	slice        int
	mdot         float64 // Outlet mass flow rate
	Tin          float64
	power        float64
	reactionHeat float64
	cp           func(Tmean float64) (float64, error)
}

func (seg *segmentEnergy) residual(T float64) (R float64, err error) {
	var cp float64
	if !(T > 0) || math.IsInf(T, 0) {
		return math.NaN(), errNonPhysicalTemperature
	}
	if cp, err = seg.cp(0.5 * (seg.Tin + T)); err != nil {
		return
	}
	R = SensibleEnthalpyChange(seg.mdot, cp, seg.Tin, T) - seg.reactionHeat - seg.power
	return
}

/*
solve finds the outlet temperature closing the segment energy balance. The
secant starts from the inlet temperature and the estimate using the inlet
heat capacity; with no heat added it returns the inlet temperature exactly.
Chemistry errors from the heat capacity are returned as is, everything else
is a NonConvergentEnergyBalance.
*/
func (seg *segmentEnergy) solve(tol Tolerances) (Tout float64, rec EnergyBalanceRecord, err error) {
	var (
		heat  = seg.power + seg.reactionHeat
		scale = math.Max(math.Abs(seg.power)+math.Abs(seg.reactionHeat), 1.e-30)
		fTol  = tol.EnergyClosure * scale
		cpIn  float64
		R     float64
		iter  int
	)
	rec.Slice = seg.slice
	if cpIn, err = seg.cp(seg.Tin); err != nil {
		return
	}
	x1 := seg.Tin + heat/(seg.mdot*cpIn)
	if !(x1 > 0) {
		x1 = 0.5 * seg.Tin
	}
	Tout, R, iter, err = utils.Secant(seg.residual, seg.Tin, x1, tol.TemperatureTolerance, fTol, tol.MaxEnergyIterations)
	rec.Iterations = iter
	rec.Residual = R
	if err != nil {
		if errors.Is(err, chemistry.ErrChemistryQuery) {
			return
		}
		err = &NonConvergentEnergyBalance{Slice: seg.slice, Residual: R, Iterations: iter, Err: err}
		return
	}
	var cp float64
	if cp, err = seg.cp(0.5 * (seg.Tin + Tout)); err != nil {
		return
	}
	rec.ImposedPower = seg.power
	rec.ReactionHeatRelease = seg.reactionHeat
	rec.SensibleEnthalpyChange = SensibleEnthalpyChange(seg.mdot, cp, seg.Tin, Tout)
	rec.Residual = rec.SensibleEnthalpyChange - rec.ReactionHeatRelease - rec.ImposedPower
	closureScale := math.Max(scale, math.Abs(rec.SensibleEnthalpyChange))
	if math.Abs(rec.Residual) > tol.EnergyClosure*closureScale {
		err = &NonConvergentEnergyBalance{Slice: seg.slice, Residual: rec.Residual, Iterations: iter,
			Err: fmt.Errorf("closure exceeds %g of %g W", tol.EnergyClosure, closureScale)}
	}
	return
}
