package PlugFlow1D

import (
	"fmt"

	"github.com/notargets/gopfr/chemistry"
)

// fakeProvider has one surface reaction A(g) -> C(B) with rate of progress
// k(T) [A] + q0 and an inert gas I
type fakeProvider struct {
	kp        chemistry.KineticParameters
	q0        float64 // Constant part of the rate of progress, negative etches
	dH        float64 // J/kmol
	cp0, cp1  float64 // cp = cp0 + cp1 T, J/kg/K
	failAbove float64 // Rate queries above this temperature fail
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		kp:  chemistry.KineticParameters{{A: 0.05, Ea: 2.e7}},
		dH:  -5.e7,
		cp0: 1000,
	}
}

var fakeW = []float64{12, 28}

func (fp *fakeProvider) Species() chemistry.Species {
	return chemistry.Species{Gas: []string{"A", "I"}, Surface: []string{"S(s)"}, Bulk: []string{"C(B)"}}
}
func (fp *fakeProvider) GasMolarMasses() []float64 { return append([]float64(nil), fakeW...) }
func (fp *fakeProvider) DepositMolarMass() float64 { return 12 }

func (fp *fakeProvider) Density(s chemistry.State) (float64, error) {
	if err := chemistry.CheckState(s, 2, 1); err != nil {
		return 0, chemistry.NewQueryError("density", err)
	}
	return s.P * chemistry.MeanMolarMass(fakeW, s.Y) / (chemistry.GasConstant * s.T), nil
}

func (fp *fakeProvider) SpecificHeat(s chemistry.State) (float64, error) {
	return fp.cp0 + fp.cp1*s.T, nil
}

func (fp *fakeProvider) progress(s chemistry.State) (q float64, err error) {
	if fp.failAbove > 0 && s.T > fp.failAbove {
		return 0, fmt.Errorf("temperature %g above table range", s.T)
	}
	rho, err := fp.Density(s)
	if err != nil {
		return
	}
	return fp.kp[0].Rate(s.T)*rho*s.Y[0]/fakeW[0] + fp.q0, nil
}

func (fp *fakeProvider) NetProductionRates(s chemistry.State) (r chemistry.Rates, err error) {
	var q float64
	if q, err = fp.progress(s); err != nil {
		return r, chemistry.NewQueryError("rates", err)
	}
	return chemistry.Rates{
		Gas:       []float64{-q, 0},
		GasVolume: []float64{0, 0},
		Surface:   []float64{0},
		Bulk:      []float64{q},
	}, nil
}

func (fp *fakeProvider) RatesOfProgress(s chemistry.State) (p chemistry.Progress, err error) {
	var q float64
	if q, err = fp.progress(s); err != nil {
		return p, chemistry.NewQueryError("progress", err)
	}
	return chemistry.Progress{Surface: []float64{q}}, nil
}

func (fp *fakeProvider) SurfaceCoverages(s chemistry.State) ([]float64, error) {
	return append([]float64(nil), s.Coverages...), nil
}

func (fp *fakeProvider) ReactionEnthalpies(s chemistry.State) (chemistry.Enthalpies, error) {
	return chemistry.Enthalpies{Surface: []float64{fp.dH}}, nil
}

func (fp *fakeProvider) CalibratableReactions() []string { return []string{"r1"} }

func (fp *fakeProvider) KineticParameters() chemistry.KineticParameters { return fp.kp.Clone() }

func (fp *fakeProvider) WithKineticParameters(kp chemistry.KineticParameters) (chemistry.Provider, error) {
	if kp == nil {
		return fp, nil
	}
	if len(kp) != 1 {
		return nil, chemistry.NewQueryError("kinetics", fmt.Errorf("need 1 parameter set"))
	}
	np := *fp
	np.kp = kp.Clone()
	return &np, nil
}

func testConfig(n int) Config {
	return Config{
		Length:               1,
		Diameter:             0.01,
		Power:                10,
		VolumetricFlowRate:   1.e-4,
		InletTemperature:     500,
		InletPressure:        1.e5,
		ReferenceTemperature: 300,
		NumberOfSlices:       n,
		InletComposition:     map[string]float64{"A": 0.5, "I": 0.5},
		InitialCoverage:      map[string]float64{"S(s)": 1},
	}
}
