package InputParameters

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/ghodss/yaml"

	"github.com/notargets/gopfr/chemistry"
	"github.com/notargets/gopfr/model_problems/PlugFlow1D"
)

const (
	DefaultInletComposition     = "RP2:1.0"
	DefaultInitialCoverage      = "CC(s):1.0"
	DefaultReferenceTemperature = 300. // K
)

var (
	RequiredInputs = []string{"length", "diameter", "power", "volumetric_flow_rate", "T0", "P0", "number_of_slices"}
	OptionalInputs = []string{"inlet_composition", "initial_coverage", "reference_temperature",
		"power_profile", "non_negative_deposition"}
)

// Quantity is one input entry, written in the file as
//
//	key:
//	 - value: 24.0
//	 - units: 'in'
type Quantity struct {
	Value interface{}
	Units string
}

// InputParameters holds the entries of a reactor input file by key
type InputParameters struct {
	Entries map[string]Quantity
}

func inputError(key, format string, args ...interface{}) error {
	return &PlugFlow1D.ConfigurationError{Field: key, Reason: fmt.Sprintf(format, args...)}
}

func Load(path string) (ip *InputParameters, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	ip = &InputParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return
}

// Parse reads the value/units lists of every key and checks that all
// required inputs are present
func (ip *InputParameters) Parse(data []byte) (err error) {
	var raw map[string]interface{}
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return
	}
	ip.Entries = make(map[string]Quantity, len(raw))
	for key, v := range raw {
		var q Quantity
		if q, err = parseQuantity(key, v); err != nil {
			return
		}
		ip.Entries[key] = q
	}
	for _, key := range RequiredInputs {
		if _, ok := ip.Entries[key]; !ok {
			return inputError(key, "missing required input: '%s'", key)
		}
	}
	return
}

func parseQuantity(key string, v interface{}) (q Quantity, err error) {
	var (
		haveValue, haveUnits bool
	)
	list, ok := v.([]interface{})
	if !ok {
		return q, inputError(key, "must be a list of value and units entries, have %v", v)
	}
	if len(list) == 0 {
		return q, inputError(key, "is an empty list")
	}
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return q, inputError(key, "entry %v is not a mapping", item)
		}
		if val, ok := m["value"]; ok {
			q.Value, haveValue = val, true
		}
		if u, ok := m["units"]; ok {
			if q.Units, ok = u.(string); !ok {
				return q, inputError(key, "units %v is not a string", u)
			}
			haveUnits = true
		}
	}
	switch {
	case !haveValue:
		err = inputError(key, "has no value entry")
	case !haveUnits:
		err = inputError(key, "has no units entry")
	}
	return
}

func (ip *InputParameters) Has(key string) bool {
	_, ok := ip.Entries[key]
	return ok
}

// Float returns the value of key converted to SI
func (ip *InputParameters) Float(key string, dim Dimension) (v float64, err error) {
	q, ok := ip.Entries[key]
	if !ok {
		return 0, inputError(key, "missing input")
	}
	if v, ok = q.Value.(float64); !ok {
		return 0, inputError(key, "value %v is not a number", q.Value)
	}
	if v, err = ToSI(v, q.Units, dim); err != nil {
		return 0, inputError(key, "%v", err)
	}
	return
}

func (ip *InputParameters) Int(key string) (n int, err error) {
	var v float64
	if v, err = ip.Float(key, Dim_None); err != nil {
		return
	}
	if v != math.Trunc(v) {
		return 0, inputError(key, "value %v is not an integer", v)
	}
	return int(v), nil
}

func (ip *InputParameters) Bool(key string) (b bool, err error) {
	q, ok := ip.Entries[key]
	if !ok {
		return false, inputError(key, "missing input")
	}
	if b, ok = q.Value.(bool); !ok {
		return false, inputError(key, "value %v is not a boolean", q.Value)
	}
	return
}

// Composition parses a "NAME:fraction, ..." value, def is used when key is absent
func (ip *InputParameters) Composition(key, def string) (comp map[string]float64, err error) {
	s := def
	if q, ok := ip.Entries[key]; ok {
		if s, ok = q.Value.(string); !ok {
			return nil, inputError(key, "value %v is not a composition string", q.Value)
		}
	}
	if comp, err = chemistry.ParseComposition(s); err != nil {
		return nil, inputError(key, "%v", err)
	}
	return
}

// PowerProfile reads a list of [position, weight] pairs, positions as
// fractions of the reactor length
func (ip *InputParameters) PowerProfile() (profile []PlugFlow1D.ProfilePoint, err error) {
	const key = "power_profile"
	q, ok := ip.Entries[key]
	if !ok {
		return nil, nil
	}
	pairs, ok := q.Value.([]interface{})
	if !ok {
		return nil, inputError(key, "value must be a list of [position, weight] pairs")
	}
	for _, p := range pairs {
		pair, ok := p.([]interface{})
		if !ok || len(pair) != 2 {
			return nil, inputError(key, "entry %v is not a [position, weight] pair", p)
		}
		pos, ok1 := pair[0].(float64)
		w, ok2 := pair[1].(float64)
		if !ok1 || !ok2 {
			return nil, inputError(key, "entry %v is not numeric", p)
		}
		profile = append(profile, PlugFlow1D.ProfilePoint{Position: pos, Weight: w})
	}
	return
}

// Config converts the inputs to a validated reactor configuration in SI units
func (ip *InputParameters) Config() (cfg PlugFlow1D.Config, err error) {
	floats := []struct {
		key string
		dim Dimension
		dst *float64
	}{
		{"length", Dim_Length, &cfg.Length},
		{"diameter", Dim_Length, &cfg.Diameter},
		{"power", Dim_Power, &cfg.Power},
		{"volumetric_flow_rate", Dim_VolumetricFlow, &cfg.VolumetricFlowRate},
		{"T0", Dim_Temperature, &cfg.InletTemperature},
		{"P0", Dim_Pressure, &cfg.InletPressure},
	}
	for _, f := range floats {
		if *f.dst, err = ip.Float(f.key, f.dim); err != nil {
			return
		}
	}
	cfg.ReferenceTemperature = DefaultReferenceTemperature
	if ip.Has("reference_temperature") {
		if cfg.ReferenceTemperature, err = ip.Float("reference_temperature", Dim_Temperature); err != nil {
			return
		}
	}
	if cfg.NumberOfSlices, err = ip.Int("number_of_slices"); err != nil {
		return
	}
	if cfg.InletComposition, err = ip.Composition("inlet_composition", DefaultInletComposition); err != nil {
		return
	}
	if cfg.InitialCoverage, err = ip.Composition("initial_coverage", DefaultInitialCoverage); err != nil {
		return
	}
	if cfg.PowerProfile, err = ip.PowerProfile(); err != nil {
		return
	}
	if ip.Has("non_negative_deposition") {
		if cfg.NonNegativeDeposition, err = ip.Bool("non_negative_deposition"); err != nil {
			return
		}
	}
	err = cfg.Validate()
	return
}

func (ip *InputParameters) Print(w io.Writer) {
	keys := make([]string, 0, len(ip.Entries))
	for k := range ip.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		q := ip.Entries[key]
		fmt.Fprintf(w, "%-24s = %v [%s]\n", key, q.Value, q.Units)
	}
}
