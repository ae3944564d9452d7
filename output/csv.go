package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/notargets/gopfr/model_problems/PlugFlow1D"
)

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeTable(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// SliceHeader names the slice table columns for the species of a result
func SliceHeader(res *PlugFlow1D.Result) (header []string) {
	header = []string{
		"index", "z", "temperature", "pressure", "density", "velocity", "mass_flow_rate",
		"residence_time", "molar_deposition_rate", "deposition_rate", "deposited_mass",
	}
	for _, name := range res.Species.Gas {
		header = append(header, "Y_"+name)
	}
	for _, name := range res.Species.Gas {
		header = append(header, "X_"+name)
	}
	for _, name := range res.Species.Surface {
		header = append(header, "theta_"+name)
	}
	if len(res.Slices) != 0 {
		for j := range res.Slices[0].SurfaceRates {
			header = append(header, fmt.Sprintf("surface_rate_%d", j))
		}
	}
	return
}

// WriteSlices writes one row per slice
func WriteSlices(w io.Writer, res *PlugFlow1D.Result) error {
	rows := make([][]string, len(res.Slices))
	for i, s := range res.Slices {
		row := []string{
			strconv.Itoa(s.Index), ftoa(s.Z), ftoa(s.Temperature), ftoa(s.Pressure), ftoa(s.Density),
			ftoa(s.Velocity), ftoa(s.MassFlowRate), ftoa(s.ResidenceTime), ftoa(s.MolarDepositionRate),
			ftoa(s.DepositionRate), ftoa(s.DepositedMass),
		}
		for _, cols := range [][]float64{s.MassFractions, s.MoleFractions, s.Coverages, s.SurfaceRates} {
			for _, v := range cols {
				row = append(row, ftoa(v))
			}
		}
		rows[i] = row
	}
	return writeTable(w, SliceHeader(res), rows)
}

// WriteEnergy writes the energy balance record of every segment, the inlet row is zero
func WriteEnergy(w io.Writer, res *PlugFlow1D.Result) error {
	header := []string{
		"slice", "z", "sensible_enthalpy_change", "reaction_heat_release", "imposed_power", "residual",
		"iterations", "cumulative_power", "cumulative_reaction_heat", "cumulative_sensible", "cumulative_residual",
	}
	rows := make([][]string, len(res.Energy))
	for i, e := range res.Energy {
		rows[i] = []string{
			strconv.Itoa(e.Slice), ftoa(res.Slices[i].Z), ftoa(e.SensibleEnthalpyChange),
			ftoa(e.ReactionHeatRelease), ftoa(e.ImposedPower), ftoa(e.Residual), strconv.Itoa(e.Iterations),
			ftoa(e.CumulativePower), ftoa(e.CumulativeReactionHeat), ftoa(e.CumulativeSensible),
			ftoa(e.CumulativeResidual),
		}
	}
	return writeTable(w, header, rows)
}

// WriteRefinement writes a slice refinement study, read back by tools/convOrder
func WriteRefinement(w io.Writer, title string, levels []PlugFlow1D.RefinementLevel) error {
	header := []string{"title", "slices", "dz", "outlet_temperature", "deposited_mass", "outlet_deposition_rate"}
	rows := make([][]string, len(levels))
	for i, l := range levels {
		rows[i] = []string{
			title, strconv.Itoa(l.NumberOfSlices), ftoa(l.Dz), ftoa(l.OutletTemperature),
			ftoa(l.DepositedMass), ftoa(l.OutletRate),
		}
	}
	return writeTable(w, header, rows)
}
