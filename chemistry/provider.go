package chemistry

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// GasConstant is the universal gas constant in J/kmol/K
const GasConstant = 8314.462618

// State is the local thermochemical state at which a Provider is queried.
// Y holds gas mass fractions in Species().Gas order, Coverages holds site
// fractions in Species().Surface order.
type State struct {
	T, P      float64
	Y         []float64
	Coverages []float64
}

func (s State) Clone() State {
	return State{
		T:         s.T,
		P:         s.P,
		Y:         append([]float64(nil), s.Y...),
		Coverages: append([]float64(nil), s.Coverages...),
	}
}

type Species struct {
	Gas, Surface, Bulk []string
	Deposit            int // Index into Bulk of the species whose growth is tracked
}

func (sp Species) GasIndex(name string) int {
	return indexOf(sp.Gas, name)
}

func (sp Species) SurfaceIndex(name string) int {
	return indexOf(sp.Surface, name)
}

func (sp Species) DepositName() string {
	if sp.Deposit < 0 || sp.Deposit >= len(sp.Bulk) {
		return ""
	}
	return sp.Bulk[sp.Deposit]
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// Rates are net molar production rates. Gas, Surface and Bulk are produced by
// surface reactions [kmol/m2/s], GasVolume by homogeneous reactions [kmol/m3/s].
type Rates struct {
	Gas, GasVolume, Surface, Bulk []float64
}

func (r Rates) Clone() Rates {
	return Rates{
		Gas:       append([]float64(nil), r.Gas...),
		GasVolume: append([]float64(nil), r.GasVolume...),
		Surface:   append([]float64(nil), r.Surface...),
		Bulk:      append([]float64(nil), r.Bulk...),
	}
}

// Progress holds reaction rates of progress, surface [kmol/m2/s] and gas [kmol/m3/s]
type Progress struct {
	Surface, Gas []float64
}

func (p Progress) Clone() Progress {
	return Progress{
		Surface: append([]float64(nil), p.Surface...),
		Gas:     append([]float64(nil), p.Gas...),
	}
}

// Enthalpies holds reaction enthalpies [J/kmol] aligned with Progress
type Enthalpies struct {
	Surface, Gas []float64
}

func (e Enthalpies) Clone() Enthalpies {
	return Enthalpies{
		Surface: append([]float64(nil), e.Surface...),
		Gas:     append([]float64(nil), e.Gas...),
	}
}

/*
Provider answers the thermochemical questions asked while marching a reactor.
Implementations must be safe for concurrent use; a handle returned from
WithKineticParameters is independent of the receiver, which is never mutated.
*/
type Provider interface {
	Species() Species
	GasMolarMasses() []float64 // kg/kmol, Species().Gas order
	DepositMolarMass() float64 // kg/kmol
	Density(s State) (float64, error)
	SpecificHeat(s State) (float64, error) // mass specific, J/kg/K
	NetProductionRates(s State) (Rates, error)
	RatesOfProgress(s State) (Progress, error)
	SurfaceCoverages(s State) ([]float64, error) // pseudo-steady site fractions
	ReactionEnthalpies(s State) (Enthalpies, error)
	CalibratableReactions() []string
	KineticParameters() KineticParameters
	WithKineticParameters(kp KineticParameters) (Provider, error)
}

// MassFractions converts mole fractions X to mass fractions
func MassFractions(W, X []float64) (Y []float64) {
	var wbar float64
	Y = make([]float64, len(X))
	for k := range X {
		wbar += X[k] * W[k]
	}
	for k := range X {
		Y[k] = X[k] * W[k] / wbar
	}
	return
}

// MoleFractions converts mass fractions Y to mole fractions
func MoleFractions(W, Y []float64) (X []float64) {
	var sum float64
	X = make([]float64, len(Y))
	for k := range Y {
		X[k] = Y[k] / W[k]
		sum += X[k]
	}
	for k := range X {
		X[k] /= sum
	}
	return
}

// MeanMolarMass from mass fractions
func MeanMolarMass(W, Y []float64) float64 {
	var inv float64
	for k := range Y {
		inv += Y[k] / W[k]
	}
	return 1. / inv
}

/*
ParseComposition reads a "name:value, name:value" list as written in reactor
input files, e.g. "RP2:1.0, H2:0.05". Names may contain parentheses, the value
follows the last colon.
*/
func ParseComposition(s string) (comp map[string]float64, err error) {
	comp = make(map[string]float64)
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		ind := strings.LastIndex(item, ":")
		if ind <= 0 {
			return nil, fmt.Errorf("composition entry %q is not of the form name:value", item)
		}
		name := strings.TrimSpace(item[:ind])
		var val float64
		if val, err = strconv.ParseFloat(strings.TrimSpace(item[ind+1:]), 64); err != nil {
			return nil, fmt.Errorf("composition entry %q: %w", item, err)
		}
		if _, dup := comp[name]; dup {
			return nil, fmt.Errorf("composition lists %q twice", name)
		}
		comp[name] = val
	}
	if len(comp) == 0 {
		return nil, fmt.Errorf("composition %q is empty", s)
	}
	return
}

// FormatComposition is the inverse of ParseComposition, with sorted names
func FormatComposition(comp map[string]float64) string {
	names := make([]string, 0, len(comp))
	for name := range comp {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ":" + strconv.FormatFloat(comp[name], 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}

// Vector orders comp by names and normalizes it to unit sum. Unknown species,
// negative or non-finite entries and an all-zero composition are errors.
func Vector(names []string, comp map[string]float64) (v []float64, err error) {
	var sum float64
	v = make([]float64, len(names))
	for name, val := range comp {
		ind := indexOf(names, name)
		if ind < 0 {
			return nil, fmt.Errorf("unknown species %q", name)
		}
		if val < 0 || math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("species %q has invalid fraction %v", name, val)
		}
		v[ind] = val
		sum += val
	}
	if sum <= 0 {
		return nil, fmt.Errorf("composition sums to zero")
	}
	for i := range v {
		v[i] /= sum
	}
	return
}
