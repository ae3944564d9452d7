package PlugFlow1D

import (
	"math"
	"sort"

	"github.com/notargets/gopfr/utils"
)

// ProfilePoint is a relative axial heat flux weight at Position, a fraction
// of the reactor length in [0, 1]
type ProfilePoint struct {
	Position, Weight float64
}

type Tolerances struct {
	MaxEnergyIterations  int     // Secant iterations per segment
	TemperatureTolerance float64 // Relative change between secant iterates
	EnergyClosure        float64 // Residual relative to the heat added to the segment
	CompositionFloor     float64 // Mass fractions below -CompositionFloor are an error
}

func DefaultTolerances() Tolerances {
	return Tolerances{
		MaxEnergyIterations:  50,
		TemperatureTolerance: 1.e-10,
		EnergyClosure:        1.e-8,
		CompositionFloor:     1.e-10,
	}
}

func (tol Tolerances) withDefaults() Tolerances {
	def := DefaultTolerances()
	if tol.MaxEnergyIterations <= 0 {
		tol.MaxEnergyIterations = def.MaxEnergyIterations
	}
	if !(tol.TemperatureTolerance > 0) {
		tol.TemperatureTolerance = def.TemperatureTolerance
	}
	if !(tol.EnergyClosure > 0) {
		tol.EnergyClosure = def.EnergyClosure
	}
	if !(tol.CompositionFloor > 0) {
		tol.CompositionFloor = def.CompositionFloor
	}
	return tol
}

// Config describes a heated tube reactor in SI units. VolumetricFlowRate is
// measured at ReferenceTemperature and InletPressure.
type Config struct {
	Length, Diameter      float64 // m
	Power                 float64 // W, added through the wall
	VolumetricFlowRate    float64 // m3/s
	InletTemperature      float64 // K
	InletPressure         float64 // Pa
	ReferenceTemperature  float64 // K
	NumberOfSlices        int
	InletComposition      map[string]float64 // Mole fractions
	InitialCoverage       map[string]float64 // Site fractions
	PowerProfile          []ProfilePoint
	NonNegativeDeposition bool
	Tolerances            Tolerances
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Validate checks the configuration independent of any chemistry; species
// names are checked against the provider when marching
func (cfg *Config) Validate() error {
	switch {
	case !positive(cfg.Length):
		return configErrorf("length", "must be positive, have %v", cfg.Length)
	case !positive(cfg.Diameter):
		return configErrorf("diameter", "must be positive, have %v", cfg.Diameter)
	case cfg.Power < 0 || math.IsNaN(cfg.Power) || math.IsInf(cfg.Power, 0):
		return configErrorf("power", "must be non-negative, have %v", cfg.Power)
	case !positive(cfg.VolumetricFlowRate):
		return configErrorf("volumetric_flow_rate", "must be positive, have %v", cfg.VolumetricFlowRate)
	case !positive(cfg.InletTemperature):
		return configErrorf("T0", "must be positive, have %v", cfg.InletTemperature)
	case !positive(cfg.InletPressure):
		return configErrorf("P0", "must be positive, have %v", cfg.InletPressure)
	case !positive(cfg.ReferenceTemperature):
		return configErrorf("reference_temperature", "must be positive, have %v", cfg.ReferenceTemperature)
	case cfg.NumberOfSlices < 2:
		return configErrorf("number_of_slices", "must be at least 2, have %d", cfg.NumberOfSlices)
	}
	if err := validateFractions("inlet_composition", cfg.InletComposition, true); err != nil {
		return err
	}
	if err := validateFractions("initial_coverage", cfg.InitialCoverage, false); err != nil {
		return err
	}
	return validateProfile(cfg.PowerProfile)
}

func validateFractions(field string, comp map[string]float64, required bool) error {
	var sum float64
	if len(comp) == 0 {
		if required {
			return configErrorf(field, "is empty")
		}
		return nil
	}
	for name, v := range comp {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return configErrorf(field, "has invalid fraction %v for %q", v, name)
		}
		sum += v
	}
	if sum <= 0 {
		return configErrorf(field, "sums to zero")
	}
	return nil
}

func validateProfile(profile []ProfilePoint) error {
	if len(profile) == 0 {
		return nil
	}
	if len(profile) < 2 {
		return configErrorf("power_profile", "needs at least 2 points, have %d", len(profile))
	}
	if !sort.SliceIsSorted(profile, func(i, j int) bool { return profile[i].Position < profile[j].Position }) {
		return configErrorf("power_profile", "positions must be increasing")
	}
	for i, pp := range profile {
		switch {
		case pp.Position < 0 || pp.Position > 1 || math.IsNaN(pp.Position):
			return configErrorf("power_profile", "position %v outside [0, 1]", pp.Position)
		case i > 0 && pp.Position <= profile[i-1].Position:
			return configErrorf("power_profile", "positions must be strictly increasing")
		case pp.Weight < 0 || math.IsNaN(pp.Weight) || math.IsInf(pp.Weight, 0):
			return configErrorf("power_profile", "weight %v must be non-negative", pp.Weight)
		}
	}
	if profileIntegral(profile) <= 0 {
		return configErrorf("power_profile", "integrates to zero")
	}
	return nil
}

// profileIntegral integrates the weights over [0, 1], holding the end values
// outside the listed positions
func profileIntegral(profile []ProfilePoint) (sum float64) {
	var (
		first, last = profile[0], profile[len(profile)-1]
		pos, w      = make([]float64, len(profile)), make([]float64, len(profile))
	)
	for i, pp := range profile {
		pos[i], w[i] = pp.Position, pp.Weight
	}
	sum = first.Weight*first.Position + last.Weight*(1-last.Position) + utils.Trapezoid(pos, w)
	return
}

// Geometry of one axial segment
type Geometry struct {
	Dz, CrossSection, WallArea, Volume float64
}

func (cfg *Config) Geometry() Geometry {
	var (
		dz   = cfg.Length / float64(cfg.NumberOfSlices)
		area = 0.25 * math.Pi * cfg.Diameter * cfg.Diameter
	)
	return Geometry{
		Dz:           dz,
		CrossSection: area,
		WallArea:     math.Pi * cfg.Diameter * dz,
		Volume:       area * dz,
	}
}
