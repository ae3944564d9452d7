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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/gopfr/chemistry"
	"github.com/notargets/gopfr/model_problems/PlugFlow1D"
	"github.com/notargets/gopfr/output"
)

// RefineCmd represents the refine command
var RefineCmd = &cobra.Command{
	Use:   "refine",
	Short: "Slice refinement study of the outlet values",
	Long: `
Repeats the march with the slice count doubled at each level and writes the
outlet temperature, deposited mass and deposition rate per level. The table is
read by tools/convOrder to report the observed order of convergence.

gopfr refine --levels 4 --slices 25`,
	Run: func(cmd *cobra.Command, args []string) {
		levels, _ := cmd.Flags().GetInt("levels")
		slices, _ := cmd.Flags().GetInt("slices")
		resultFile, _ := cmd.Flags().GetString("result")
		if err := Refine(levels, slices, resultFile); err != nil {
			exitOnError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(RefineCmd)
	RefineCmd.Flags().Int("levels", 4, "number of refinement levels")
	RefineCmd.Flags().Int("slices", 0, "slices of the coarsest level, the input file value when 0")
	RefineCmd.Flags().StringP("result", "r", "refinement.csv", "result CSV in the output directory")
}

func Refine(nLevels, slices int, resultFile string) (err error) {
	var (
		c      *Case
		levels []PlugFlow1D.RefinementLevel
		counts []int
	)
	if nLevels < 1 {
		return fmt.Errorf("need at least one refinement level, have %d", nLevels)
	}
	if c, err = loadCase(); err != nil {
		return
	}
	if slices == 0 {
		slices = c.Config.NumberOfSlices
	}
	for i := 0; i < nLevels; i++ {
		counts = append(counts, slices<<i)
	}
	if levels, err = PlugFlow1D.Refine(c.Config, c.Provider, nil, counts, PlugFlow1D.WithLogger(log)); err != nil {
		return
	}
	return c.create(resultFile, func(f *os.File) error {
		return output.WriteRefinement(f, chemistry.FormatComposition(c.Config.InletComposition), levels)
	})
}
