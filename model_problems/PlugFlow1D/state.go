package PlugFlow1D

import (
	"github.com/notargets/gopfr/chemistry"
)

// SliceState is the reactor state at axial position Z. Slice i is computed
// from slice i-1 and is never modified after it is appended to a Result.
type SliceState struct {
	Index         int
	Z             float64 // m
	Temperature   float64 // K
	Pressure      float64 // Pa
	MassFractions []float64
	MoleFractions []float64
	Coverages     []float64
	MassFlowRate  float64 // kg/s
	Density       float64 // kg/m3
	Velocity      float64 // m/s
	ResidenceTime float64 // s, of the segment ending at this slice
	// Surface reaction rates of progress, kmol/m2/s
	SurfaceRates []float64
	// Deposit growth; the molar rate is signed, negative values are etching
	MolarDepositionRate float64 // kmol/m2/s
	DepositionRate      float64 // kg/m2/s
	DepositedMass       float64 // kg, cumulative from the inlet
}

// EnergyBalanceRecord is the closure of the energy equation over the segment
// ending at a slice. Residual = SensibleEnthalpyChange - ReactionHeatRelease - ImposedPower.
type EnergyBalanceRecord struct {
	Slice                  int
	SensibleEnthalpyChange float64 // W
	ReactionHeatRelease    float64 // W, positive when exothermic
	ImposedPower           float64 // W
	Residual               float64 // W
	Iterations             int
	// Running sums from the inlet
	CumulativePower        float64
	CumulativeReactionHeat float64
	CumulativeSensible     float64
	CumulativeResidual     float64
}

type Totals struct {
	DepositedMass       float64 // kg
	DepositFormation    float64 // kg/s, wall integral of the deposition rate
	ImposedPower        float64 // W
	ReactionHeatRelease float64 // W
	SensibleChange      float64 // W
	ResidualSum         float64 // W
	MaxAbsResidual      float64 // W
}

type Result struct {
	Species chemistry.Species
	Slices  []SliceState
	Energy  []EnergyBalanceRecord // Energy[0] is the inlet with all terms zero
	Totals  Totals
}

func (r *Result) column(f func(s *SliceState) float64) (col []float64) {
	col = make([]float64, len(r.Slices))
	for i := range r.Slices {
		col[i] = f(&r.Slices[i])
	}
	return
}

func (r *Result) Positions() []float64 {
	return r.column(func(s *SliceState) float64 { return s.Z })
}

func (r *Result) Temperatures() []float64 {
	return r.column(func(s *SliceState) float64 { return s.Temperature })
}

func (r *Result) DepositionRates() []float64 {
	return r.column(func(s *SliceState) float64 { return s.DepositionRate })
}

func (r *Result) DepositedMass() []float64 {
	return r.column(func(s *SliceState) float64 { return s.DepositedMass })
}

func (r *Result) Velocities() []float64 {
	return r.column(func(s *SliceState) float64 { return s.Velocity })
}

// MoleFraction profile of a gas species, nil if the species is unknown
func (r *Result) MoleFraction(name string) []float64 {
	k := r.Species.GasIndex(name)
	if k < 0 {
		return nil
	}
	return r.column(func(s *SliceState) float64 { return s.MoleFractions[k] })
}

func (r *Result) Coverage(name string) []float64 {
	k := r.Species.SurfaceIndex(name)
	if k < 0 {
		return nil
	}
	return r.column(func(s *SliceState) float64 { return s.Coverages[k] })
}

func (r *Result) Outlet() SliceState {
	return r.Slices[len(r.Slices)-1]
}
