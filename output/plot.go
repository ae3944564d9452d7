package output

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/notargets/gopfr/model_problems/PlugFlow1D"
)

const (
	figWidth  = 6 * vg.Inch
	figHeight = 4 * vg.Inch
)

type Series struct {
	Name string
	Y    []float64
}

func toXYs(x, y []float64) (xy plotter.XYs) {
	xy = make(plotter.XYs, len(x))
	for i := range x {
		xy[i].X, xy[i].Y = x[i], y[i]
	}
	return
}

// PlotProfile renders one or more axial profiles sharing x to an image file,
// the format follows the extension (png, svg, pdf)
func PlotProfile(path, title, xLabel, yLabel string, x []float64, series ...Series) (err error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	for i, s := range series {
		if len(s.Y) != len(x) {
			return fmt.Errorf("series %s has %d values for %d positions", s.Name, len(s.Y), len(x))
		}
		var l *plotter.Line
		if l, err = plotter.NewLine(toXYs(x, s.Y)); err != nil {
			return
		}
		l.Color = plotutil.Color(i)
		l.Width = vg.Points(1.5)
		p.Add(l)
		if len(series) > 1 {
			p.Legend.Add(s.Name, l)
		}
	}
	p.Legend.Top = true
	return p.Save(figWidth, figHeight, path)
}

// PlotAll writes temperature, deposition rate, deposited mass and gas
// composition profiles of a march into dir, returning the files written
func PlotAll(dir, prefix string, res *PlugFlow1D.Result) (files []string, err error) {
	var (
		z    = res.Positions()
		comp []Series
	)
	for _, name := range res.Species.Gas {
		comp = append(comp, Series{Name: name, Y: res.MoleFraction(name)})
	}
	plots := []struct {
		name, title, yLabel string
		series              []Series
	}{
		{"temperature", "Gas temperature", "T [K]", []Series{{"T", res.Temperatures()}}},
		{"deposition_rate", "Deposition rate", "rate [kg/m2/s]", []Series{{"rate", res.DepositionRates()}}},
		{"deposited_mass", "Cumulative deposit", "mass [kg]", []Series{{"mass", res.DepositedMass()}}},
		{"composition", "Gas composition", "mole fraction", comp},
	}
	for _, pl := range plots {
		path := filepath.Join(dir, prefix+pl.name+".png")
		if err = PlotProfile(path, pl.title, "z [m]", pl.yLabel, z, pl.series...); err != nil {
			return
		}
		files = append(files, path)
	}
	return
}
