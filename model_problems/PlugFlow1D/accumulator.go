package PlugFlow1D

import (
	"math"

	"github.com/notargets/gopfr/chemistry"
)

// Accumulator books the deposit increments and energy terms of each segment
// and keeps the running totals
type Accumulator struct {
	NonNegative bool
	Totals      Totals
	records     []EnergyBalanceRecord
}

func NewAccumulator(nonNegative bool, nSlices int) *Accumulator {
	return &Accumulator{
		NonNegative: nonNegative,
		records:     make([]EnergyBalanceRecord, 0, nSlices),
	}
}

// DepositionRate clamps an etching (negative) rate to zero when non-negative
// deposition was requested, otherwise it is passed through
func (acc *Accumulator) DepositionRate(molarRate float64) float64 {
	if acc.NonNegative && molarRate < 0 {
		return 0
	}
	return molarRate
}

// Deposit adds the mass laid down over one segment, rate * wall area *
// residence time * molar mass, and returns the increment
func (acc *Accumulator) Deposit(molarRate, wallArea, residenceTime, molarMass float64) (increment float64) {
	rate := acc.DepositionRate(molarRate)
	increment = rate * wallArea * residenceTime * molarMass
	acc.Totals.DepositedMass += increment
	acc.Totals.DepositFormation += rate * wallArea * molarMass
	return
}

// Record appends a segment energy record, filling in its running sums
func (acc *Accumulator) Record(rec EnergyBalanceRecord) EnergyBalanceRecord {
	t := &acc.Totals
	t.ImposedPower += rec.ImposedPower
	t.ReactionHeatRelease += rec.ReactionHeatRelease
	t.SensibleChange += rec.SensibleEnthalpyChange
	t.ResidualSum += rec.Residual
	t.MaxAbsResidual = math.Max(t.MaxAbsResidual, math.Abs(rec.Residual))
	rec.CumulativePower = t.ImposedPower
	rec.CumulativeReactionHeat = t.ReactionHeatRelease
	rec.CumulativeSensible = t.SensibleChange
	rec.CumulativeResidual = t.ResidualSum
	acc.records = append(acc.records, rec)
	return rec
}

func (acc *Accumulator) Records() []EnergyBalanceRecord {
	return append([]EnergyBalanceRecord(nil), acc.records...)
}

// ReactionHeatRelease is the heat released by reaction in a segment, W.
// Surface rates act over the wall area, gas rates over the volume.
func ReactionHeatRelease(dH chemistry.Enthalpies, q chemistry.Progress, wallArea, volume float64) (Q float64) {
	for j := range q.Surface {
		Q -= dH.Surface[j] * q.Surface[j] * wallArea
	}
	for j := range q.Gas {
		Q -= dH.Gas[j] * q.Gas[j] * volume
	}
	return
}

func SensibleEnthalpyChange(mdot, cp, Tin, Tout float64) float64 {
	return mdot * cp * (Tout - Tin)
}
