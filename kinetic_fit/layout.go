package kinetic_fit

import (
	"fmt"
	"math"

	"github.com/notargets/gopfr/chemistry"
)

// KcalPerMolToJPerKmol converts activation energies from kcal/mol to J/kmol
const KcalPerMolToJPerKmol = 4.184e6

var (
	DefaultLogABounds = [2]float64{-10, 20}
	DefaultEaBounds   = [2]float64{0.1, 200} // kcal/mol
	DefaultBBounds    = [2]float64{-3, 3}
)

/*
Layout maps the kinetic parameters of the calibrated reactions to the flat
vector searched by the optimizer. Each reaction contributes log10(A), then B
when the temperature exponent is fitted, then Ea in kcal/mol. Calibratable
reactions past the first len(Reactions) keep their Base values.
*/
type Layout struct {
	Reactions              []string
	FitTemperatureExponent bool
	Base                   chemistry.KineticParameters
}

// NewLayout calibrates the first n reactions of the provider, all of them
// when n is zero
func NewLayout(provider chemistry.Provider, n int, fitExponent bool) (l Layout, err error) {
	ids := provider.CalibratableReactions()
	if len(ids) == 0 {
		err = fmt.Errorf("mechanism has no calibratable reactions")
		return
	}
	if n == 0 {
		n = len(ids)
	}
	if n < 0 || n > len(ids) {
		err = fmt.Errorf("cannot calibrate %d reactions, mechanism has %d calibratable", n, len(ids))
		return
	}
	l = Layout{
		Reactions:              ids[:n],
		FitTemperatureExponent: fitExponent,
		Base:                   provider.KineticParameters(),
	}
	return
}

func (l Layout) PerReaction() int {
	if l.FitTemperatureExponent {
		return 3
	}
	return 2
}

func (l Layout) Len() int { return l.PerReaction() * len(l.Reactions) }

func (l Layout) Labels() (labels []string) {
	for _, id := range l.Reactions {
		labels = append(labels, "logA["+id+"]")
		if l.FitTemperatureExponent {
			labels = append(labels, "b["+id+"]")
		}
		labels = append(labels, "Ea["+id+"]")
	}
	return
}

func (l Layout) Flatten(kp chemistry.KineticParameters) (x []float64) {
	x = make([]float64, 0, l.Len())
	for j := range l.Reactions {
		x = append(x, math.Log10(kp[j].A))
		if l.FitTemperatureExponent {
			x = append(x, kp[j].B)
		}
		x = append(x, kp[j].Ea/KcalPerMolToJPerKmol)
	}
	return
}

func (l Layout) Expand(x []float64) (kp chemistry.KineticParameters) {
	var (
		np = l.PerReaction()
	)
	kp = l.Base.Clone()
	for j := range l.Reactions {
		p := x[j*np : (j+1)*np]
		kp[j].A = math.Pow(10, p[0])
		if l.FitTemperatureExponent {
			kp[j].B = p[1]
		}
		kp[j].Ea = p[np-1] * KcalPerMolToJPerKmol
	}
	return
}

func (l Layout) DefaultBounds() (lower, upper []float64) {
	for range l.Reactions {
		lower = append(lower, DefaultLogABounds[0])
		upper = append(upper, DefaultLogABounds[1])
		if l.FitTemperatureExponent {
			lower = append(lower, DefaultBBounds[0])
			upper = append(upper, DefaultBBounds[1])
		}
		lower = append(lower, DefaultEaBounds[0])
		upper = append(upper, DefaultEaBounds[1])
	}
	return
}
