package kinetic_fit

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ExperimentalPoint is a measured deposition rate [kg/m2/s] at axial position Z [m]
type ExperimentalPoint struct {
	Z, DepositionRate float64
}

func Split(points []ExperimentalPoint) (z, rate []float64) {
	z, rate = make([]float64, len(points)), make([]float64, len(points))
	for i, pt := range points {
		z[i], rate[i] = pt.Z, pt.DepositionRate
	}
	return
}

func LoadExperimental(path string) (points []ExperimentalPoint, err error) {
	var f *os.File
	if f, err = os.Open(path); err != nil {
		return
	}
	defer f.Close()
	if points, err = ReadExperimental(f); err != nil {
		err = fmt.Errorf("%s: %w", path, err)
	}
	return
}

// ReadExperimental reads a CSV with z and deposition_rate columns in any order
func ReadExperimental(r io.Reader) (points []ExperimentalPoint, err error) {
	var (
		records [][]string
		z, rate float64
	)
	zCol, rCol := -1, -1
	csvr := csv.NewReader(r)
	csvr.TrimLeadingSpace = true
	if records, err = csvr.ReadAll(); err != nil {
		return
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("experimental data is empty")
	}
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "z":
			zCol = i
		case "deposition_rate":
			rCol = i
		}
	}
	if zCol < 0 || rCol < 0 {
		return nil, fmt.Errorf("experimental data needs z and deposition_rate columns, have %v", records[0])
	}
	for i, rec := range records[1:] {
		if z, err = strconv.ParseFloat(strings.TrimSpace(rec[zCol]), 64); err != nil {
			return nil, fmt.Errorf("row %d: z: %w", i+2, err)
		}
		if rate, err = strconv.ParseFloat(strings.TrimSpace(rec[rCol]), 64); err != nil {
			return nil, fmt.Errorf("row %d: deposition_rate: %w", i+2, err)
		}
		points = append(points, ExperimentalPoint{Z: z, DepositionRate: rate})
	}
	return
}
