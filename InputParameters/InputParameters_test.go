package InputParameters

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gopfr/model_problems/PlugFlow1D"
)

var validInput = `
length:
 - value: 24.0
 - units: 'in'

diameter:
 - value: 0.055
 - units: 'in'

power:
 - value: 789
 - units: 'watts'

volumetric_flow_rate:
 - value: 53.9
 - units: 'mL/min'

T0:
 - value: 700
 - units: 'K'

P0:
 - value: 600
 - units: 'psi'

number_of_slices:
 - value: 101
 - units: 'unitless'
`

func TestParseValid(t *testing.T) {
	ip := &InputParameters{}
	require.NoError(t, ip.Parse([]byte(validInput)))
	for _, key := range RequiredInputs {
		assert.True(t, ip.Has(key), key)
	}
	cfg, err := ip.Config()
	require.NoError(t, err)
	assert.InDelta(t, 0.6096, cfg.Length, 1.e-12)
	assert.InDelta(t, 0.001397, cfg.Diameter, 1.e-12)
	assert.Equal(t, 789., cfg.Power)
	assert.InDelta(t, 53.9e-6/60, cfg.VolumetricFlowRate, 1.e-18)
	assert.Equal(t, 700., cfg.InletTemperature)
	assert.InDelta(t, 4136854.38, cfg.InletPressure, 1.e-2)
	assert.Equal(t, 101, cfg.NumberOfSlices)
	assert.Equal(t, 300., cfg.ReferenceTemperature)
	assert.Equal(t, map[string]float64{"RP2": 1}, cfg.InletComposition)
	assert.Equal(t, map[string]float64{"CC(s)": 1}, cfg.InitialCoverage)
	assert.Nil(t, cfg.PowerProfile)
	assert.False(t, cfg.NonNegativeDeposition)

	var buf bytes.Buffer
	ip.Print(&buf)
	assert.Contains(t, buf.String(), "P0")
	assert.Contains(t, buf.String(), "[psi]")
}

func TestParseErrors(t *testing.T) {
	{ // Missing required input
		ip := &InputParameters{}
		err := ip.Parse([]byte("length:\n - value: 24.0\n - units: 'in'\n"))
		require.ErrorIs(t, err, PlugFlow1D.ErrConfiguration)
		assert.Contains(t, err.Error(), "missing required input: 'diameter'")
	}
	{ // Malformed list
		ip := &InputParameters{}
		err := ip.Parse([]byte("length:\n - value: 24.0\n"))
		assert.ErrorIs(t, err, PlugFlow1D.ErrConfiguration)
	}
	{ // Empty list
		ip := &InputParameters{}
		err := ip.Parse([]byte("length: []\n"))
		assert.ErrorIs(t, err, PlugFlow1D.ErrConfiguration)
	}
	{ // Not a list
		ip := &InputParameters{}
		err := ip.Parse([]byte("length: 24\n"))
		assert.ErrorIs(t, err, PlugFlow1D.ErrConfiguration)
	}
	{ // Invalid YAML
		ip := &InputParameters{}
		assert.Error(t, ip.Parse([]byte("length: [\n")))
	}
}

func TestConfigErrors(t *testing.T) {
	cases := []struct {
		extra, field string
	}{
		{"power_profile:\n - value: [[0, 1]]\n - units: ''\n", "power_profile"},
		{"power_profile:\n - value: [[0, 1, 2]]\n - units: ''\n", "power_profile"},
		{"inlet_composition:\n - value: 'RP2'\n - units: ''\n", "inlet_composition"},
		{"non_negative_deposition:\n - value: 3\n - units: ''\n", "non_negative_deposition"},
		{"reference_temperature:\n - value: 300\n - units: 'psi'\n", "reference_temperature"},
	}
	for _, c := range cases {
		ip := &InputParameters{}
		require.NoError(t, ip.Parse([]byte(validInput+"\n"+c.extra)))
		_, err := ip.Config()
		require.Error(t, err, c.extra)
		var ce *PlugFlow1D.ConfigurationError
		require.ErrorAs(t, err, &ce, c.extra)
		assert.Equal(t, c.field, ce.Field)
	}
	{ // Units and values
		for _, bad := range []struct {
			key string
			q   Quantity
		}{
			{"length", Quantity{24., "furlong"}},
			{"length", Quantity{24., "psi"}},
			{"length", Quantity{"long", "in"}},
			{"number_of_slices", Quantity{10.5, "unitless"}},
			{"power", Quantity{-1., "W"}},
		} {
			ip := &InputParameters{}
			require.NoError(t, ip.Parse([]byte(validInput)))
			ip.Entries[bad.key] = bad.q
			_, err := ip.Config()
			var ce *PlugFlow1D.ConfigurationError
			require.ErrorAs(t, err, &ce, bad.key)
			assert.Equal(t, bad.key, ce.Field)
		}
	}
}

func TestUnits(t *testing.T) {
	for _, c := range []struct {
		v     float64
		units string
		dim   Dimension
		si    float64
	}{
		{1, "ft", Dim_Length, 0.3048},
		{100, "degC", Dim_Temperature, 373.15},
		{32, "F", Dim_Temperature, 273.15},
		{1, "atm", Dim_Pressure, 101325},
		{2, "kW", Dim_Power, 2000},
		{60, "L/min", Dim_VolumetricFlow, 1.e-3},
		{3, "", Dim_None, 3},
	} {
		si, err := ToSI(c.v, c.units, c.dim)
		require.NoError(t, err, c.units)
		assert.InDelta(t, c.si, si, 1.e-9*c.si, c.units)
	}
	_, err := ToSI(1, "K", Dim_Pressure)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	ip, err := Load("../config.yaml")
	require.NoError(t, err)
	cfg, err := ip.Config()
	require.NoError(t, err)
	assert.Equal(t, 101, cfg.NumberOfSlices)

	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validInput+`
power_profile:
 - value: [[0, 1], [0.5, 3], [1, 1]]
 - units: 'unitless'
non_negative_deposition:
 - value: true
 - units: 'unitless'
`), 0644))
	ip, err = Load(path)
	require.NoError(t, err)
	cfg, err = ip.Config()
	require.NoError(t, err)
	assert.Equal(t, []PlugFlow1D.ProfilePoint{{Position: 0, Weight: 1}, {Position: 0.5, Weight: 3}, {Position: 1, Weight: 1}}, cfg.PowerProfile)
	assert.True(t, cfg.NonNegativeDeposition)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
