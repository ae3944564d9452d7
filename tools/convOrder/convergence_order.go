package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/notargets/gopfr/model_problems/PlugFlow1D"
)

var (
	csvFile string
)

func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "file containing the levels of a slice refinement study")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	studies, titles, err := readCSV(csvFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
	for _, title := range titles {
		cs := studies[title]
		fmt.Printf("Title = %s\n", title)
		fmt.Printf("%8s, %14s, %14s, %14s, %8s, %8s, %8s\n",
			"slices", "T_out", "mass", "rate_out", "p(T)", "p(mass)", "p(rate)")
		for i, l := range cs.levels {
			pT, pM, pR := cs.order(i)
			fmt.Printf("%8d, %14.8g, %14.8g, %14.8g, %8.3f, %8.3f, %8.3f\n",
				l.NumberOfSlices, l.OutletTemperature, l.DepositedMass, l.OutletRate, pT, pM, pR)
		}
	}
}

type ConvergenceStudy struct {
	title  string
	levels []PlugFlow1D.RefinementLevel
}

func NewConvergenceStudy(title string) *ConvergenceStudy {
	return &ConvergenceStudy{
		title: title,
	}
}

func (cs *ConvergenceStudy) Add(l PlugFlow1D.RefinementLevel) {
	cs.levels = append(cs.levels, l)
}

// order is the observed order at level i from levels i-2, i-1 and i, NaN
// for the two coarsest levels
func (cs *ConvergenceStudy) order(i int) (pT, pM, pR float64) {
	if i < 2 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	c, m, f := cs.levels[i-2], cs.levels[i-1], cs.levels[i]
	r := float64(f.NumberOfSlices) / float64(m.NumberOfSlices)
	pT = PlugFlow1D.ObservedOrder(c.OutletTemperature, m.OutletTemperature, f.OutletTemperature, r)
	pM = PlugFlow1D.ObservedOrder(c.DepositedMass, m.DepositedMass, f.DepositedMass, r)
	pR = PlugFlow1D.ObservedOrder(c.OutletRate, m.OutletRate, f.OutletRate, r)
	return
}

func readCSV(csvFile string) (studies map[string]*ConvergenceStudy, titles []string, err error) {
	var (
		records [][]string
		f       *os.File
		ok      bool
		cs      *ConvergenceStudy
	)
	studies = make(map[string]*ConvergenceStudy)
	if f, err = os.Open(csvFile); err != nil {
		return
	}
	defer f.Close()
	r := csv.NewReader(bufio.NewReader(f))
	if records, err = r.ReadAll(); err != nil {
		return
	}
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) < 6 {
			return nil, nil, fmt.Errorf("line %d: need 6 columns, have %d", i+1, len(rec))
		}
		var (
			l    PlugFlow1D.RefinementLevel
			vals [4]float64
		)
		if l.NumberOfSlices, err = strconv.Atoi(rec[1]); err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		for j := range vals {
			if vals[j], err = strconv.ParseFloat(rec[j+2], 64); err != nil {
				return nil, nil, fmt.Errorf("line %d: %w", i+1, err)
			}
		}
		l.Dz, l.OutletTemperature, l.DepositedMass, l.OutletRate = vals[0], vals[1], vals[2], vals[3]
		title := rec[0]
		if cs, ok = studies[title]; !ok {
			cs = NewConvergenceStudy(title)
			studies[title] = cs
			titles = append(titles, title)
		}
		cs.Add(l)
	}
	return
}
