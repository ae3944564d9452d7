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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/notargets/gopfr/model_problems/PlugFlow1D"
	"github.com/notargets/gopfr/output"
	"github.com/notargets/gopfr/utils"
)

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "March the reactor and write slice and energy tables",
	Long: `
Marches the reactor described by the input file and writes the slice table
(slices.csv) and the per segment energy balance (energy.csv), optionally with
profile plots.

gopfr run -I config.yaml -M mech/rp2_surf.yaml -p`,
	Run: func(cmd *cobra.Command, args []string) {
		plot, _ := cmd.Flags().GetBool("plot")
		if err := Run(plot); err != nil {
			exitOnError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().BoolP("plot", "p", false, "write temperature, deposition and composition plots")
}

func Run(plot bool) (err error) {
	var (
		c   *Case
		res *PlugFlow1D.Result
	)
	if c, err = loadCase(); err != nil {
		return
	}
	if res, err = PlugFlow1D.March(c.Config, c.Provider, nil, PlugFlow1D.WithLogger(log)); err != nil {
		return
	}
	if err = c.create("slices.csv", func(f *os.File) error { return output.WriteSlices(f, res) }); err != nil {
		return
	}
	if err = c.create("energy.csv", func(f *os.File) error { return output.WriteEnergy(f, res) }); err != nil {
		return
	}
	if plot {
		if _, err = output.PlotAll(c.OutputDir, "", res); err != nil {
			return
		}
	}
	out := res.Outlet()
	log.WithFields(logrus.Fields{
		"outlet_temperature": out.Temperature,
		"deposited_mass":     res.Totals.DepositedMass,
		"imposed_power":      res.Totals.ImposedPower,
		"max_abs_residual":   res.Totals.MaxAbsResidual,
	}).Info("march complete")
	mem := utils.GetMemUsage()
	log.WithFields(logrus.Fields{
		"alloc_mib":       mem.Alloc,
		"total_alloc_mib": mem.TotalAlloc,
		"sys_mib":         mem.Sys,
		"num_gc":          mem.NumGC,
	}).Debug("memory usage")
	return
}
