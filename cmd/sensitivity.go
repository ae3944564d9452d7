/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/notargets/gopfr/kinetic_fit"
	"github.com/notargets/gopfr/output"
)

// SensitivityCmd represents the sensitivity command
var SensitivityCmd = &cobra.Command{
	Use:   "sensitivity",
	Short: "Local sensitivity of deposition and temperature to the kinetic parameters",
	Long: `
Perturbs each calibratable kinetic parameter by a relative amount and writes
the central difference derivatives of the deposition rate and temperature
profiles.

gopfr sensitivity --delta 0.01 -r sensitivity.json -p`,
	Run: func(cmd *cobra.Command, args []string) {
		f := cmd.Flags()
		resultFile, _ := f.GetString("result")
		delta, _ := f.GetFloat64("delta")
		reactions, _ := f.GetInt("reactions")
		fitB, _ := f.GetBool("fit-b")
		plot, _ := f.GetBool("plot")
		if err := Sensitivity(resultFile, delta, reactions, fitB, plot); err != nil {
			exitOnError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(SensitivityCmd)
	f := SensitivityCmd.Flags()
	f.StringP("result", "r", "sensitivity.json", "result file in the output directory, .json or .yaml")
	f.Float64("delta", 0.01, "relative perturbation of each parameter")
	f.Int("reactions", 0, "number of leading calibratable reactions, 0 uses all")
	f.Bool("fit-b", false, "include the temperature exponent of each reaction")
	f.BoolP("plot", "p", false, "plot the deposition rate sensitivities")
}

func Sensitivity(resultFile string, delta float64, reactions int, fitB, plot bool) (err error) {
	var (
		c      *Case
		layout kinetic_fit.Layout
		sens   *kinetic_fit.SensitivityResult
	)
	if c, err = loadCase(); err != nil {
		return
	}
	if layout, err = kinetic_fit.NewLayout(c.Provider, reactions, fitB); err != nil {
		return
	}
	base := layout.Flatten(layout.Base)
	if sens, err = kinetic_fit.Sensitivity(c.Config, c.Provider, base, layout, delta); err != nil {
		return
	}
	if err = output.Save(c.Path(resultFile), output.NewSensitivityReport(sens)); err != nil {
		return
	}
	if plot {
		var series []output.Series
		for _, p := range sens.Parameters {
			series = append(series, output.Series{Name: p.Label, Y: p.Deposition})
		}
		if err = output.PlotProfile(c.Path("deposition_sensitivity.png"), "Deposition rate sensitivity",
			"z [m]", "d(rate)/d(parameter)", sens.Z, series...); err != nil {
			return
		}
	}
	log.WithFields(logrus.Fields{"parameters": layout.Labels(), "delta": delta}).Info("sensitivity complete")
	return
}
