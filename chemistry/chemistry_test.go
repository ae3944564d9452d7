package chemistry

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider returns rates proportional to T and counts evaluations
type countingProvider struct {
	mu    sync.Mutex
	calls int
	kp    KineticParameters
}

func (cp *countingProvider) count() {
	cp.mu.Lock()
	cp.calls++
	cp.mu.Unlock()
}

func (cp *countingProvider) Species() Species {
	return Species{Gas: []string{"A", "B"}, Surface: []string{"S(s)"}, Bulk: []string{"C(B)"}}
}
func (cp *countingProvider) GasMolarMasses() []float64 { return []float64{2, 4} }
func (cp *countingProvider) DepositMolarMass() float64 { return 12 }
func (cp *countingProvider) Density(s State) (float64, error) {
	cp.count()
	return s.P / (GasConstant * s.T), nil
}
func (cp *countingProvider) SpecificHeat(s State) (float64, error) { cp.count(); return 1000, nil }
func (cp *countingProvider) NetProductionRates(s State) (Rates, error) {
	cp.count()
	if s.T > 5000 {
		return Rates{}, fmt.Errorf("temperature out of range")
	}
	k := cp.kp[0].Rate(s.T)
	return Rates{Gas: []float64{-k, k}, GasVolume: []float64{0, 0}, Surface: []float64{0}, Bulk: []float64{k}}, nil
}
func (cp *countingProvider) RatesOfProgress(s State) (Progress, error) {
	cp.count()
	return Progress{Surface: []float64{cp.kp[0].Rate(s.T)}}, nil
}
func (cp *countingProvider) SurfaceCoverages(s State) ([]float64, error) {
	cp.count()
	return []float64{1}, nil
}
func (cp *countingProvider) ReactionEnthalpies(s State) (Enthalpies, error) {
	cp.count()
	return Enthalpies{Surface: []float64{-1.e6}}, nil
}
func (cp *countingProvider) CalibratableReactions() []string      { return []string{"r1"} }
func (cp *countingProvider) KineticParameters() KineticParameters { return cp.kp.Clone() }
func (cp *countingProvider) WithKineticParameters(kp KineticParameters) (Provider, error) {
	if len(kp) != 1 {
		return nil, fmt.Errorf("need 1 parameter set, have %d", len(kp))
	}
	return &countingProvider{kp: kp.Clone()}, nil
}

func TestComposition(t *testing.T) {
	{
		comp, err := ParseComposition("RP2:1.0, H2:0.25")
		require.NoError(t, err)
		assert.Equal(t, map[string]float64{"RP2": 1, "H2": 0.25}, comp)
		assert.Equal(t, "H2:0.25, RP2:1", FormatComposition(comp))
	}
	{
		comp, err := ParseComposition("CC(s):1.0")
		require.NoError(t, err)
		assert.Equal(t, 1., comp["CC(s)"])
	}
	for _, bad := range []string{"", "RP2", "RP2:x", "A:1,A:2", ":1"} {
		_, err := ParseComposition(bad)
		assert.Errorf(t, err, "input %q", bad)
	}
	{
		v, err := Vector([]string{"A", "B", "C"}, map[string]float64{"C": 3, "A": 1})
		require.NoError(t, err)
		assert.Equal(t, []float64{0.25, 0, 0.75}, v)
		_, err = Vector([]string{"A"}, map[string]float64{"Z": 1})
		assert.Error(t, err)
		_, err = Vector([]string{"A"}, map[string]float64{"A": -1})
		assert.Error(t, err)
		_, err = Vector([]string{"A"}, map[string]float64{"A": 0})
		assert.Error(t, err)
	}
	{ // Mass/mole fraction round trip
		W := []float64{2, 32}
		X := []float64{0.5, 0.5}
		Y := MassFractions(W, X)
		assert.InDelta(t, 2./34., Y[0], 1.e-15)
		assert.InDelta(t, 17., MeanMolarMass(W, Y), 1.e-12)
		X2 := MoleFractions(W, Y)
		assert.InDeltaSlice(t, X, X2, 1.e-15)
	}
}

func TestKinetics(t *testing.T) {
	ar := Arrhenius{A: 10, B: 0, Ea: 0}
	assert.Equal(t, 10., ar.Rate(500))
	ar = Arrhenius{A: 2, B: 1, Ea: GasConstant * 1000}
	assert.InDelta(t, 2*500*math.Exp(-2), ar.Rate(500), 1.e-12)

	kp := KineticParameters{{A: 1, Ea: 2}, {A: 3, B: 0.5, Ea: 4}}
	assert.NoError(t, kp.Validate())
	assert.Equal(t, kp.Fingerprint(), kp.Clone().Fingerprint())
	kp2 := kp.Clone()
	kp2[1].Ea = math.Nextafter(4, 5)
	assert.NotEqual(t, kp.Fingerprint(), kp2.Fingerprint())
	assert.Error(t, KineticParameters{{A: 0}}.Validate())
	assert.Error(t, KineticParameters{{A: 1, Ea: math.NaN()}}.Validate())
	assert.Nil(t, KineticParameters(nil).Clone())
}

func TestErrors(t *testing.T) {
	base := errors.New("bad state")
	err := AtSlice(NewQueryError("rates", base), 7, "ignored")
	assert.ErrorIs(t, err, ErrChemistryQuery)
	assert.ErrorIs(t, err, base)
	var cqe *ChemistryQueryError
	require.ErrorAs(t, err, &cqe)
	assert.Equal(t, 7, cqe.Slice)
	assert.Equal(t, "rates", cqe.Op)
	assert.Contains(t, err.Error(), "slice 7")

	err = AtSlice(base, 3, "density")
	require.ErrorAs(t, err, &cqe)
	assert.Equal(t, "density", cqe.Op)

	assert.NoError(t, CheckState(State{T: 300, P: 1.e5, Y: []float64{1}}, 1, 0))
	assert.Error(t, CheckState(State{T: -1, P: 1.e5, Y: []float64{1}}, 1, 0))
	assert.Error(t, CheckState(State{T: 300, P: 1.e5, Y: []float64{math.NaN()}}, 1, 0))
	assert.Error(t, CheckState(State{T: 300, P: 1.e5, Y: []float64{1}}, 2, 0))
	assert.Error(t, CheckState(State{T: 300, P: 1.e5, Y: []float64{1}}, 1, 1))
}

func TestCache(t *testing.T) {
	inner := &countingProvider{kp: KineticParameters{{A: 1.e-3, Ea: 1.e7}}}
	c := NewCache(inner, 64)
	s := State{T: 700, P: 4.e6, Y: []float64{0.5, 0.5}, Coverages: []float64{1}}
	{ // Hits return identical values without calling the provider
		r1, err := c.NetProductionRates(s)
		require.NoError(t, err)
		r2, err := c.NetProductionRates(s.Clone())
		require.NoError(t, err)
		assert.Equal(t, r1, r2)
		assert.Equal(t, 1, inner.calls)
		hits, misses := c.Stats()
		assert.Equal(t, int64(1), hits)
		assert.Equal(t, int64(1), misses)
		r2.Gas[0] = 42
		r3, _ := c.NetProductionRates(s)
		assert.Equal(t, r1.Gas[0], r3.Gas[0])
	}
	{ // Different bits miss
		s2 := s.Clone()
		s2.T = math.Nextafter(s.T, 1000)
		_, err := c.NetProductionRates(s2)
		require.NoError(t, err)
		assert.Equal(t, 2, inner.calls)
		rho, err := c.Density(s)
		require.NoError(t, err)
		assert.InDelta(t, 4.e6/(GasConstant*700), rho, 1.e-12)
	}
	{ // Errors are not cached
		bad := s.Clone()
		bad.T = 6000
		_, err := c.NetProductionRates(bad)
		assert.Error(t, err)
		_, err = c.NetProductionRates(bad)
		assert.Error(t, err)
		assert.Equal(t, 5, inner.calls)
	}
	{ // New kinetic parameters get a fresh cache
		p, err := c.WithKineticParameters(KineticParameters{{A: 2.e-3, Ea: 1.e7}})
		require.NoError(t, err)
		c2, ok := p.(*Cache)
		require.True(t, ok)
		hits, misses := c2.Stats()
		assert.Zero(t, hits+misses)
		r, err := c2.NetProductionRates(s)
		require.NoError(t, err)
		r0, _ := c.NetProductionRates(s)
		assert.InDelta(t, 2*r0.Bulk[0], r.Bulk[0], 1.e-15)
		assert.InDelta(t, 1.e-3, c.KineticParameters()[0].A, 1.e-18)
		_, err = c.WithKineticParameters(nil)
		assert.Error(t, err)
	}
}
