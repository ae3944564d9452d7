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
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/notargets/gopfr/kinetic_fit"
	"github.com/notargets/gopfr/output"
	"github.com/notargets/gopfr/types"
)

// OptimizeCmd represents the optimize command
var OptimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Calibrate surface kinetics against measured deposition rates",
	Long: `
Fits log10(A), Ea [kcal/mol] and optionally the temperature exponent of the
calibratable surface reactions so the marched deposition rate profile matches
an experimental CSV with z and deposition_rate columns.

gopfr optimize -E exp_deposition.csv -r fit.json --objective mae`,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			s   kinetic_fit.Settings
			err error
		)
		f := cmd.Flags()
		expFile, _ := f.GetString("experimental")
		resultFile, _ := f.GetString("result")
		objective, _ := f.GetString("objective")
		strategy, _ := f.GetString("strategy")
		if s.Objective, err = types.NewObjectiveType(objective); err != nil {
			exitOnError(err)
		}
		st, err := types.NewStrategyType(strategy)
		if err != nil {
			exitOnError(err)
		}
		s.Strategy = kinetic_fit.NewStrategy(st)
		s.Reactions, _ = f.GetInt("reactions")
		s.FitTemperatureExponent, _ = f.GetBool("fit-b")
		s.MaxEvaluations, _ = f.GetInt("max-evaluations")
		s.Tolerance, _ = f.GetFloat64("tolerance")
		for name, dst := range map[string]*[]float64{"initial": &s.Initial, "lower": &s.Lower, "upper": &s.Upper} {
			if *dst, err = floatsFlag(cmd, name); err != nil {
				exitOnError(err)
			}
		}
		s.Log = log
		if err = Optimize(expFile, resultFile, s); err != nil {
			exitOnError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(OptimizeCmd)
	f := OptimizeCmd.Flags()
	f.StringP("experimental", "E", "", "experimental deposition CSV with z and deposition_rate columns")
	f.StringP("result", "r", "optimized_params.json", "result file in the output directory, .json or .yaml")
	f.String("objective", "l2", "objective: l2 (sum of squares) or mae (sum of magnitudes)")
	f.String("strategy", "lm", "search strategy: lm (Levenberg-Marquardt) or neldermead")
	f.Int("reactions", 0, "number of leading calibratable reactions to fit, 0 fits all")
	f.Bool("fit-b", false, "also fit the temperature exponent of each reaction")
	f.Int("max-evaluations", 200, "maximum marches per calibration")
	f.Float64("tolerance", 1.e-6, "relative objective tolerance")
	f.StringSlice("initial", nil, "initial flat parameter vector, mechanism values when absent")
	f.StringSlice("lower", nil, "lower bounds of the flat parameter vector")
	f.StringSlice("upper", nil, "upper bounds of the flat parameter vector")
}

// floatsFlag parses a comma separated list flag, nil when it was not given
func floatsFlag(cmd *cobra.Command, name string) (v []float64, err error) {
	var list []string
	if !cmd.Flags().Changed(name) {
		return
	}
	if list, err = cmd.Flags().GetStringSlice(name); err != nil {
		return
	}
	for _, item := range list {
		var x float64
		if x, err = strconv.ParseFloat(strings.TrimSpace(item), 64); err != nil {
			return nil, fmt.Errorf("--%s: %w", name, err)
		}
		v = append(v, x)
	}
	return
}

func Optimize(expFile, resultFile string, s kinetic_fit.Settings) (err error) {
	var (
		c      *Case
		points []kinetic_fit.ExperimentalPoint
		result *kinetic_fit.OptimizationResult
	)
	if len(expFile) == 0 {
		return fmt.Errorf("must supply an experimental data file (-E, --experimental)")
	}
	if points, err = kinetic_fit.LoadExperimental(expFile); err != nil {
		return
	}
	if c, err = loadCase(); err != nil {
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if result, err = kinetic_fit.Optimize(ctx, c.Config, c.Provider, points, s); err != nil {
		return
	}
	if err = output.SaveOptimization(c.Path(resultFile), result); err != nil {
		return
	}
	fields := logrus.Fields{"message": result.Message, "rmse": result.RMSE, "mae": result.MAE}
	for i, label := range result.Labels {
		fields[label] = result.Parameters[i]
	}
	log.WithFields(fields).Info("optimized parameters")
	if !result.Converged {
		log.Warn("calibration stopped before converging")
	}
	return
}
