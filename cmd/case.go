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
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/notargets/gopfr/InputParameters"
	"github.com/notargets/gopfr/chemistry"
	"github.com/notargets/gopfr/chemistry/massaction"
	"github.com/notargets/gopfr/model_problems/PlugFlow1D"
)

// Case is a reactor input paired with the chemistry that runs it
type Case struct {
	Config    PlugFlow1D.Config
	Provider  chemistry.Provider
	OutputDir string
}

func loadCase() (c *Case, err error) {
	var (
		ip   *InputParameters.InputParameters
		mech *massaction.Provider
	)
	if ip, err = InputParameters.Load(viper.GetString("input")); err != nil {
		return
	}
	c = &Case{OutputDir: viper.GetString("output")}
	if c.Config, err = ip.Config(); err != nil {
		return nil, err
	}
	if mech, err = massaction.Load(viper.GetString("mechanism")); err != nil {
		return nil, err
	}
	c.Provider = mech
	if n := viper.GetInt("cache-size"); n > 0 {
		c.Provider = chemistry.NewCache(mech, n)
	}
	if err = os.MkdirAll(c.OutputDir, 0755); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"input":     viper.GetString("input"),
		"mechanism": viper.GetString("mechanism"),
		"slices":    c.Config.NumberOfSlices,
	}).Info("case loaded")
	return
}

func (c *Case) Path(name string) string {
	return filepath.Join(c.OutputDir, name)
}

// create opens a result file and reports the write error through err
func (c *Case) create(name string, write func(f *os.File) error) (err error) {
	var f *os.File
	if f, err = os.Create(c.Path(name)); err != nil {
		return
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err = write(f); err == nil {
		log.WithField("file", c.Path(name)).Info("wrote")
	}
	return
}
