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
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	log      = logrus.New()
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gopfr",
	Short: "Plug flow reactor deposition solver and kinetic calibrator",
	Long: `
Marches a heated tube reactor from inlet to outlet in axial slices, tracking
gas composition, temperature and the solid deposit on the wall, and calibrates
surface reaction kinetics against measured deposition rate profiles.

gopfr run -I config.yaml -M mech/rp2_surf.yaml`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(viper.GetString("log-level"))
		if err != nil {
			exitOnError(err)
		}
		log.SetLevel(level)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		switch viper.GetString("profile") {
		case "":
		case "cpu":
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath("."))
		case "mem":
			profiler = profile.Start(profile.MemProfile, profile.ProfilePath("."))
		default:
			exitOnError(fmt.Errorf("unknown profile mode %q, use cpu or mem", viper.GetString("profile")))
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gopfr.yaml)")
	pf.StringP("input", "I", "config.yaml", "reactor input file, YAML with value and units entries")
	pf.StringP("mechanism", "M", "mech/rp2_surf.yaml", "reaction mechanism YAML")
	pf.StringP("output", "o", ".", "directory for result files")
	pf.Int("cache-size", 4096, "chemistry query cache entries per kinetic parameter set, 0 disables")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("profile", "", "write a cpu or mem profile to the working directory")
	for _, name := range []string{"input", "mechanism", "output", "cache-size", "log-level", "profile"} {
		if err := viper.BindPFlag(name, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			exitOnError(err)
		}
		// Search config in home directory with name ".gopfr" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".gopfr")
	}
	viper.SetEnvPrefix("GOPFR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
	os.Exit(1)
}
