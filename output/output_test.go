package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gopfr/chemistry"
	"github.com/notargets/gopfr/kinetic_fit"
	"github.com/notargets/gopfr/model_problems/PlugFlow1D"
	"github.com/notargets/gopfr/types"
)

func sampleResult() *PlugFlow1D.Result {
	res := &PlugFlow1D.Result{
		Species: chemistry.Species{Gas: []string{"RP2", "H2"}, Surface: []string{"CC(s)"}, Bulk: []string{"C(B)"}},
	}
	for i := 0; i < 3; i++ {
		x := float64(i)
		res.Slices = append(res.Slices, PlugFlow1D.SliceState{
			Index:          i,
			Z:              0.5 * x,
			Temperature:    700 + 10*x,
			Pressure:       4.e6,
			MassFractions:  []float64{1 - 0.01*x, 0.01 * x},
			MoleFractions:  []float64{1 - 0.1*x, 0.1 * x},
			Coverages:      []float64{1},
			SurfaceRates:   []float64{1.e-6 * x},
			DepositionRate: 1.e-4 * x,
			DepositedMass:  1.e-7 * x * x,
		})
		res.Energy = append(res.Energy, PlugFlow1D.EnergyBalanceRecord{Slice: i, ImposedPower: 10 * x})
	}
	return res
}

func readTable(t *testing.T, data []byte) [][]string {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteSlices(t *testing.T) {
	var buf bytes.Buffer
	res := sampleResult()
	require.NoError(t, WriteSlices(&buf, res))
	records := readTable(t, buf.Bytes())
	require.Len(t, records, 4)
	header := records[0]
	assert.Equal(t, "index", header[0])
	assert.Equal(t, []string{"Y_RP2", "Y_H2", "X_RP2", "X_H2", "theta_CC(s)", "surface_rate_0"}, header[11:])
	for _, rec := range records[1:] {
		assert.Len(t, rec, len(header))
	}
	assert.Equal(t, "710", records[2][2])
	assert.Equal(t, "0.1", records[2][14])
}

func TestWriteEnergy(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEnergy(&buf, sampleResult()))
	records := readTable(t, buf.Bytes())
	require.Len(t, records, 4)
	assert.Equal(t, "imposed_power", records[0][4])
	assert.Equal(t, "20", records[3][4])
	assert.Equal(t, "1", records[3][1])
}

func TestWriteRefinement(t *testing.T) {
	var buf bytes.Buffer
	levels := []PlugFlow1D.RefinementLevel{
		{NumberOfSlices: 10, Dz: 0.1, OutletTemperature: 900, DepositedMass: 1.e-6},
		{NumberOfSlices: 20, Dz: 0.05, OutletTemperature: 905, DepositedMass: 1.1e-6},
	}
	require.NoError(t, WriteRefinement(&buf, "rp2", levels))
	records := readTable(t, buf.Bytes())
	require.Len(t, records, 3)
	assert.Equal(t, []string{"rp2", "20", "0.05", "905", "1.1e-06", "0"}, records[2])
}

func TestEncode(t *testing.T) {
	result := &kinetic_fit.OptimizationResult{
		Parameters:    []float64{0.3, 20},
		Labels:        []string{"logA[r]", "Ea[r]"},
		Kinetics:      chemistry.KineticParameters{{A: 2, Ea: 8.368e7}},
		Objective:     1.e-12,
		ObjectiveType: types.Objective_MAE,
		Residuals:     []float64{1.e-7, -1.e-7},
		Converged:     true,
		Strategy:      "levenberg-marquardt",
	}
	assert.Equal(t, Format_YAML, FormatFromPath("fit.YML"))
	assert.Equal(t, Format_JSON, FormatFromPath("fit.json"))
	assert.Equal(t, Format_JSON, FormatFromPath("fit"))
	{ // JSON
		var (
			buf bytes.Buffer
			m   map[string]interface{}
		)
		require.NoError(t, Encode(&buf, result.Flatten(), Format_JSON))
		require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
		assert.Equal(t, 20., m["Ea[r]"])
		assert.Equal(t, "mae", m["objective_type"])
		assert.Equal(t, true, m["converged"])
		assert.Equal(t, 2., m["reaction_0_A"])
	}
	{ // YAML
		var (
			buf bytes.Buffer
			m   map[string]interface{}
		)
		require.NoError(t, Encode(&buf, result.Flatten(), Format_YAML))
		assert.True(t, strings.Contains(buf.String(), "strategy: levenberg-marquardt"))
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &m))
		assert.Equal(t, 0.3, m["logA[r]"])
	}
	{ // Files
		dir := t.TempDir()
		path := filepath.Join(dir, "fit.yaml")
		require.NoError(t, SaveOptimization(path, result))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "objective_type: mae")
		assert.Error(t, Save(filepath.Join(dir, "missing", "fit.json"), result))
	}
}

func TestSensitivityReport(t *testing.T) {
	s := &kinetic_fit.SensitivityResult{
		Z:           []float64{0, 1},
		Deposition:  []float64{0, 1.e-4},
		Temperature: []float64{700, 800},
		Delta:       1.e-3,
		Parameters: []kinetic_fit.ParameterSensitivity{
			{Label: "logA[r]", Value: 0.3, Step: 3.e-4, Deposition: []float64{0, 2.3e-4}, Temperature: []float64{0, -1}},
		},
	}
	r := NewSensitivityReport(s)
	assert.Equal(t, 0.3, r.Baseline["logA[r]"])
	assert.Equal(t, []float64{0, 2.3e-4}, r.Derivatives["logA[r]"].Deposition)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, r, Format_JSON))
	assert.Contains(t, buf.String(), `"deposition_rate"`)
}

func TestPlot(t *testing.T) {
	dir := t.TempDir()
	files, err := PlotAll(dir, "run_", sampleResult())
	require.NoError(t, err)
	require.Len(t, files, 4)
	for _, f := range files {
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	err = PlotProfile(filepath.Join(dir, "bad.png"), "", "z", "y", []float64{0, 1}, Series{"y", []float64{1}})
	assert.Error(t, err)
}
