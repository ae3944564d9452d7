package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/gopfr/kinetic_fit"
)

type Format uint8

const (
	Format_JSON Format = iota
	Format_YAML
)

// FormatFromPath picks the encoding from the file extension, JSON unless .yaml or .yml
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return Format_YAML
	default:
		return Format_JSON
	}
}

// Encode writes v indented as JSON, or as YAML through its JSON form
func Encode(w io.Writer, v interface{}, f Format) (err error) {
	var data []byte
	switch f {
	case Format_YAML:
		data, err = yaml.Marshal(v)
	default:
		if data, err = json.MarshalIndent(v, "", "  "); err == nil {
			data = append(data, '\n')
		}
	}
	if err != nil {
		return
	}
	_, err = w.Write(data)
	return
}

// Save encodes v into path, the format follows the extension
func Save(path string, v interface{}) (err error) {
	var f *os.File
	if f, err = os.Create(path); err != nil {
		return
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err = Encode(f, v, FormatFromPath(path)); err != nil {
		err = fmt.Errorf("%s: %w", path, err)
	}
	return
}

// SaveOptimization writes the flat key-value form of an optimization result
func SaveOptimization(path string, result *kinetic_fit.OptimizationResult) error {
	return Save(path, result.Flatten())
}

// SensitivityReport is the serialized form of a sensitivity study
type SensitivityReport struct {
	Z           []float64            `json:"z"`
	Baseline    map[string]float64   `json:"baseline"`
	Deposition  []float64            `json:"deposition_rate"`
	Temperature []float64            `json:"temperature"`
	Delta       float64              `json:"delta"`
	Derivatives map[string]Sensitive `json:"derivatives"`
}

type Sensitive struct {
	Step        float64   `json:"step"`
	Deposition  []float64 `json:"deposition_rate"`
	Temperature []float64 `json:"temperature"`
}

func NewSensitivityReport(s *kinetic_fit.SensitivityResult) (r *SensitivityReport) {
	r = &SensitivityReport{
		Z:           s.Z,
		Baseline:    make(map[string]float64),
		Deposition:  s.Deposition,
		Temperature: s.Temperature,
		Delta:       s.Delta,
		Derivatives: make(map[string]Sensitive),
	}
	for _, p := range s.Parameters {
		r.Baseline[p.Label] = p.Value
		r.Derivatives[p.Label] = Sensitive{Step: p.Step, Deposition: p.Deposition, Temperature: p.Temperature}
	}
	return
}
