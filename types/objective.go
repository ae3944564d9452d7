package types

import (
	"fmt"
	"math"
	"strings"
)

type ObjectiveType uint8

const (
	Objective_L2 ObjectiveType = iota
	Objective_MAE
)

var ObjectiveNameMap = map[string]ObjectiveType{
	"l2":  Objective_L2,
	"lsq": Objective_L2,
	"mae": Objective_MAE,
	"l1":  Objective_MAE,
}

func NewObjectiveType(label string) (ot ObjectiveType, err error) {
	var ok bool
	if ot, ok = ObjectiveNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown objective %q, must be one of l2 or mae", label)
	}
	return
}

func (ot ObjectiveType) String() string {
	switch ot {
	case Objective_L2:
		return "l2"
	case Objective_MAE:
		return "mae"
	}
	return fmt.Sprintf("ObjectiveType(%d)", ot)
}

// Loss reduces a residual vector to the scalar the objective minimizes: the
// sum of squares for l2, the sum of magnitudes for mae
func (ot ObjectiveType) Loss(resid []float64) (loss float64) {
	switch ot {
	case Objective_MAE:
		for _, r := range resid {
			loss += math.Abs(r)
		}
	default:
		for _, r := range resid {
			loss += r * r
		}
	}
	return
}

type StrategyType uint8

const (
	Strategy_LevenbergMarquardt StrategyType = iota
	Strategy_NelderMead
)

var StrategyNameMap = map[string]StrategyType{
	"lm":                  Strategy_LevenbergMarquardt,
	"levenberg-marquardt": Strategy_LevenbergMarquardt,
	"trf":                 Strategy_LevenbergMarquardt,
	"neldermead":          Strategy_NelderMead,
	"nelder-mead":         Strategy_NelderMead,
	"simplex":             Strategy_NelderMead,
}

func NewStrategyType(label string) (st StrategyType, err error) {
	var ok bool
	if st, ok = StrategyNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown search strategy %q, must be one of lm or neldermead", label)
	}
	return
}

func (st StrategyType) String() string {
	switch st {
	case Strategy_LevenbergMarquardt:
		return "levenberg-marquardt"
	case Strategy_NelderMead:
		return "nelder-mead"
	}
	return fmt.Sprintf("StrategyType(%d)", st)
}
