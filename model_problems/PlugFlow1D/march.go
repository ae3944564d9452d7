package PlugFlow1D

import (
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/notargets/gopfr/chemistry"
	"github.com/notargets/gopfr/utils"
)

type options struct {
	log logrus.FieldLogger
}

type Option func(*options)

func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type marcher struct {
	cfg          Config
	tol          Tolerances
	geom         Geometry
	provider     chemistry.Provider
	species      chemistry.Species
	W            []float64
	Wdep         float64
	segmentPower []float64 // Power added over the segment ending at slice i
	acc          *Accumulator
	log          logrus.FieldLogger
}

// localChemistry holds the rates queried at a slice, used to step to the next
type localChemistry struct {
	rates    chemistry.Rates
	progress chemistry.Progress
}

/*
March integrates the reactor from inlet to outlet in NumberOfSlices slices.
When kp is not nil the march uses a provider handle carrying those kinetic
parameters; the provider passed in is not modified. Any chemistry or energy
balance failure ends the march, no partial result is returned.
*/
func March(cfg Config, provider chemistry.Provider, kp chemistry.KineticParameters, opts ...Option) (res *Result, err error) {
	o := options{log: discardLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if err = cfg.Validate(); err != nil {
		return
	}
	if kp != nil {
		if provider, err = provider.WithKineticParameters(kp); err != nil {
			return nil, chemistry.AtSlice(err, 0, "kinetics")
		}
	}
	m := &marcher{
		cfg:      cfg,
		tol:      cfg.Tolerances.withDefaults(),
		geom:     cfg.Geometry(),
		provider: provider,
		species:  provider.Species(),
		W:        provider.GasMolarMasses(),
		Wdep:     provider.DepositMolarMass(),
		acc:      NewAccumulator(cfg.NonNegativeDeposition, cfg.NumberOfSlices),
		log:      o.log,
	}
	if m.segmentPower, err = m.apportionPower(); err != nil {
		return
	}
	return m.run()
}

func (m *marcher) inlet() (Y, theta []float64, mdot float64, err error) {
	var (
		X   []float64
		rho float64
	)
	if X, err = chemistry.Vector(m.species.Gas, m.cfg.InletComposition); err != nil {
		return nil, nil, 0, configErrorf("inlet_composition", "%v", err)
	}
	if len(m.species.Surface) > 0 {
		if len(m.cfg.InitialCoverage) == 0 {
			return nil, nil, 0, configErrorf("initial_coverage", "is required with surface species %v",
				m.species.Surface)
		}
		if theta, err = chemistry.Vector(m.species.Surface, m.cfg.InitialCoverage); err != nil {
			return nil, nil, 0, configErrorf("initial_coverage", "%v", err)
		}
	} else if len(m.cfg.InitialCoverage) > 0 {
		return nil, nil, 0, configErrorf("initial_coverage", "given but the mechanism has no surface species")
	}
	Y = chemistry.MassFractions(m.W, X)
	ref := chemistry.State{T: m.cfg.ReferenceTemperature, P: m.cfg.InletPressure, Y: Y, Coverages: theta}
	if rho, err = m.provider.Density(ref); err != nil {
		return nil, nil, 0, chemistry.AtSlice(err, 0, "density")
	}
	mdot = rho * m.cfg.VolumetricFlowRate
	return
}

func (m *marcher) apportionPower() (q []float64, err error) {
	var (
		N       = m.cfg.NumberOfSlices
		frac    = m.geom.Dz / m.cfg.Length
		profile = m.cfg.PowerProfile
	)
	q = make([]float64, N)
	if len(profile) == 0 {
		for i := 1; i < N; i++ {
			q[i] = m.cfg.Power * frac
		}
		return
	}
	var (
		pos, w   = make([]float64, len(profile)), make([]float64, len(profile))
		mids     = make([]float64, N-1)
		integral = profileIntegral(profile)
		weights  []float64
	)
	for i, pp := range profile {
		pos[i], w[i] = pp.Position, pp.Weight
	}
	for i := 1; i < N; i++ {
		mids[i-1] = (float64(i) - 0.5) * frac
	}
	if weights, err = utils.Interpolate(pos, w, mids); err != nil {
		return nil, configErrorf("power_profile", "%v", err)
	}
	for i := 1; i < N; i++ {
		q[i] = m.cfg.Power * weights[i-1] * frac / integral
	}
	return
}

func (m *marcher) run() (res *Result, err error) {
	var (
		N           = m.cfg.NumberOfSlices
		Y, theta    []float64
		mdot        float64
		chem        localChemistry
		slice, next SliceState
	)
	if Y, theta, mdot, err = m.inlet(); err != nil {
		return
	}
	res = &Result{
		Species: m.species,
		Slices:  make([]SliceState, 0, N),
	}
	if slice, chem, err = m.evaluate(0, m.cfg.InletTemperature, Y, theta, mdot); err != nil {
		return nil, err
	}
	res.Slices = append(res.Slices, slice)
	m.acc.Record(EnergyBalanceRecord{Slice: 0})
	for i := 1; i < N; i++ {
		if next, chem, err = m.step(i, &res.Slices[i-1], chem); err != nil {
			return nil, err
		}
		res.Slices = append(res.Slices, next)
		m.log.WithFields(logrus.Fields{
			"slice":          i,
			"z":              next.Z,
			"T":              next.Temperature,
			"deposition":     next.DepositionRate,
			"deposited_mass": next.DepositedMass,
		}).Debug("slice")
	}
	res.Energy = m.acc.Records()
	res.Totals = m.acc.Totals
	out := res.Outlet()
	m.log.WithFields(logrus.Fields{
		"slices":         N,
		"outlet_T":       out.Temperature,
		"deposited_mass": res.Totals.DepositedMass,
		"max_residual":   res.Totals.MaxAbsResidual,
	}).Info("march complete")
	return
}

// evaluate fills a slice from its primary state and queries the rates used
// to step past it
func (m *marcher) evaluate(i int, T float64, Y, theta []float64, mdot float64) (s SliceState, chem localChemistry, err error) {
	var (
		st  = chemistry.State{T: T, P: m.cfg.InletPressure, Y: Y, Coverages: theta}
		rho float64
	)
	if rho, err = m.provider.Density(st); err != nil {
		err = chemistry.AtSlice(err, i, "density")
		return
	}
	if chem.rates, err = m.provider.NetProductionRates(st); err != nil {
		err = chemistry.AtSlice(err, i, "rates")
		return
	}
	if chem.progress, err = m.provider.RatesOfProgress(st); err != nil {
		err = chemistry.AtSlice(err, i, "progress")
		return
	}
	if m.species.Deposit >= len(chem.rates.Bulk) {
		err = chemistry.AtSlice(fmt.Errorf("no production rate for deposit species"), i, "rates")
		return
	}
	molar := chem.rates.Bulk[m.species.Deposit]
	s = SliceState{
		Index:               i,
		Z:                   float64(i) * m.geom.Dz,
		Temperature:         T,
		Pressure:            m.cfg.InletPressure,
		MassFractions:       Y,
		MoleFractions:       chemistry.MoleFractions(m.W, Y),
		Coverages:           theta,
		MassFlowRate:        mdot,
		Density:             rho,
		Velocity:            mdot / (rho * m.geom.CrossSection),
		SurfaceRates:        chem.progress.Surface,
		MolarDepositionRate: molar,
		DepositionRate:      m.acc.DepositionRate(molar) * m.Wdep,
	}
	return
}

func valueAt(v []float64, k int) float64 {
	if k < len(v) {
		return v[k]
	}
	return 0
}

// step advances from slice i-1 across one segment using the rates of slice i-1
func (m *marcher) step(i int, prev *SliceState, chem localChemistry) (next SliceState, nextChem localChemistry, err error) {
	var (
		g          = m.geom
		P          = m.cfg.InletPressure
		tau        = prev.Density * g.Volume / prev.MassFlowRate
		throughput = prev.MassFlowRate * tau
		mass       = throughput
		Y          = make([]float64, len(prev.MassFractions))
		theta      []float64
		dH         chemistry.Enthalpies
		rec        EnergyBalanceRecord
		Tout       float64
	)
	for k := range Y {
		produced := tau * m.W[k] * (g.WallArea*valueAt(chem.rates.Gas, k) + g.Volume*valueAt(chem.rates.GasVolume, k))
		Y[k] = throughput*prev.MassFractions[k] + produced
		mass += produced
	}
	if !(mass > 0) {
		err = chemistry.AtSlice(fmt.Errorf("gas phase fully consumed"), i, "composition")
		return
	}
	for k := range Y {
		Y[k] /= mass
		if Y[k] < -m.tol.CompositionFloor || math.IsNaN(Y[k]) {
			err = chemistry.AtSlice(fmt.Errorf("mass fraction of %s is %g", m.species.Gas[k], Y[k]), i, "composition")
			return
		}
		Y[k] = math.Max(Y[k], 0)
	}
	utils.Normalize(Y)
	mdot := mass / tau

	prevState := chemistry.State{T: prev.Temperature, P: P, Y: prev.MassFractions, Coverages: prev.Coverages}
	if theta, err = m.provider.SurfaceCoverages(prevState); err != nil {
		err = chemistry.AtSlice(err, i, "coverages")
		return
	}

	increment := m.acc.Deposit(prev.MolarDepositionRate, g.WallArea, tau, m.Wdep)

	refState := prevState
	refState.T = m.cfg.ReferenceTemperature
	if dH, err = m.provider.ReactionEnthalpies(refState); err != nil {
		err = chemistry.AtSlice(err, i, "enthalpies")
		return
	}
	if len(dH.Surface) != len(chem.progress.Surface) || len(dH.Gas) != len(chem.progress.Gas) {
		err = chemistry.AtSlice(fmt.Errorf("enthalpies do not match reactions"), i, "enthalpies")
		return
	}
	seg := &segmentEnergy{
		slice:        i,
		mdot:         mdot,
		Tin:          prev.Temperature,
		power:        m.segmentPower[i],
		reactionHeat: ReactionHeatRelease(dH, chem.progress, g.WallArea, g.Volume),
		cp: func(T float64) (cp float64, err error) {
			st := chemistry.State{T: T, P: P, Y: Y, Coverages: theta}
			if cp, err = m.provider.SpecificHeat(st); err != nil {
				err = chemistry.AtSlice(err, i, "cp")
			}
			return
		},
	}
	if Tout, rec, err = seg.solve(m.tol); err != nil {
		return
	}
	m.acc.Record(rec)

	if next, nextChem, err = m.evaluate(i, Tout, Y, theta, mdot); err != nil {
		return
	}
	next.ResidenceTime = tau
	next.DepositedMass = prev.DepositedMass + increment
	return
}
