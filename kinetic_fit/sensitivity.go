package kinetic_fit

import (
	"fmt"
	"math"

	"github.com/notargets/gopfr/chemistry"
	"github.com/notargets/gopfr/model_problems/PlugFlow1D"
	"github.com/notargets/gopfr/utils"
)

// ParameterSensitivity holds d(profile)/d(parameter) along the reactor
type ParameterSensitivity struct {
	Index       int
	Label       string
	Value, Step float64
	Deposition  []float64 // kg/m2/s per parameter unit
	Temperature []float64 // K per parameter unit
}

type SensitivityResult struct {
	Z           []float64
	Baseline    []float64 // Flat layout vector
	Deposition  []float64 // Baseline profiles
	Temperature []float64
	Delta       float64
	Parameters  []ParameterSensitivity
}

/*
Sensitivity takes central differences of the deposition rate and temperature
profiles with respect to each flat parameter. Each parameter p is perturbed by
delta*|p|, or by delta when p is zero. The marches are spread over GOMAXPROCS
goroutines.
*/
func Sensitivity(cfg PlugFlow1D.Config, provider chemistry.Provider, base []float64, layout Layout,
	delta float64) (sens *SensitivityResult, err error) {
	var (
		n       = layout.Len()
		results = make([]*PlugFlow1D.Result, 2*n+1)
		errs    = make([]error, 2*n+1)
		trials  = make([][]float64, 2*n+1)
		steps   = make([]float64, n)
	)
	if len(base) != n {
		return nil, fmt.Errorf("parameter vector has length %d, layout needs %d", len(base), n)
	}
	if !(delta > 0) {
		return nil, fmt.Errorf("relative perturbation must be positive, have %v", delta)
	}
	trials[0] = base
	for j := 0; j < n; j++ {
		steps[j] = delta * math.Abs(base[j])
		if steps[j] == 0 {
			steps[j] = delta
		}
		plus := append([]float64(nil), base...)
		minus := append([]float64(nil), base...)
		plus[j] += steps[j]
		minus[j] -= steps[j]
		trials[2*j+1], trials[2*j+2] = plus, minus
	}
	utils.ParallelFor(0, len(trials), func(slot int) {
		results[slot], errs[slot] = PlugFlow1D.March(cfg, provider, layout.Expand(trials[slot]))
	})
	for slot, e := range errs {
		if e != nil {
			return nil, fmt.Errorf("sensitivity march %d: %w", slot, e)
		}
	}
	baseline := results[0]
	sens = &SensitivityResult{
		Z:           baseline.Positions(),
		Baseline:    append([]float64(nil), base...),
		Deposition:  baseline.DepositionRates(),
		Temperature: baseline.Temperatures(),
		Delta:       delta,
	}
	labels := layout.Labels()
	diff := func(plus, minus []float64, h float64) (d []float64) {
		d = make([]float64, len(plus))
		for i := range plus {
			d[i] = (plus[i] - minus[i]) / (2 * h)
		}
		return
	}
	for j := 0; j < n; j++ {
		plus, minus := results[2*j+1], results[2*j+2]
		sens.Parameters = append(sens.Parameters, ParameterSensitivity{
			Index:       j,
			Label:       labels[j],
			Value:       base[j],
			Step:        steps[j],
			Deposition:  diff(plus.DepositionRates(), minus.DepositionRates(), steps[j]),
			Temperature: diff(plus.Temperatures(), minus.Temperatures(), steps[j]),
		})
	}
	return
}
