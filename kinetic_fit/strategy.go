package kinetic_fit

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/notargets/gopfr/types"
	"github.com/notargets/gopfr/utils"
)

// Problem is a bounded residual minimization. Residuals writes NumResiduals
// values for parameter vector x into dst and must be safe for concurrent use.
type Problem struct {
	Residuals      func(dst, x []float64)
	NumResiduals   int
	Loss           types.ObjectiveType
	X0             []float64
	Lower, Upper   []float64
	MaxEvaluations int
	Tolerance      float64
	Concurrent     int     // Parallel residual evaluations, 0 or 1 is serial
	Penalty        float64 // Residual value of a failed trial, 0 if trials cannot fail
}

// failed reports whether r is the residual vector of a failed trial
func (p *Problem) failed(r []float64) bool {
	if p.Penalty == 0 || len(r) == 0 {
		return false
	}
	for _, v := range r {
		if v != p.Penalty {
			return false
		}
	}
	return true
}

func (p *Problem) centre() (c []float64) {
	c = make([]float64, len(p.Lower))
	for j := range c {
		lo, hi := p.Lower[j], p.Upper[j]
		if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			c[j] = utils.Clamp(0, lo, hi)
			continue
		}
		c[j] = 0.5 * (lo + hi)
	}
	return
}

type SearchResult struct {
	X           []float64
	Residuals   []float64
	Objective   float64
	Converged   bool
	Iterations  int
	Evaluations int
	Message     string
}

// Strategy searches a Problem for its minimum
type Strategy interface {
	Name() string
	Search(ctx context.Context, p Problem) (*SearchResult, error)
}

func NewStrategy(st types.StrategyType) Strategy {
	switch st {
	case types.Strategy_NelderMead:
		return &NelderMead{}
	default:
		return &LevenbergMarquardt{}
	}
}

// evaluator counts residual evaluations across goroutines
type evaluator struct {
	p     *Problem
	count atomic.Int64
}

func (ev *evaluator) eval(dst, x []float64) {
	ev.count.Add(1)
	ev.p.Residuals(dst, x)
}

func (ev *evaluator) evaluations() int { return int(ev.count.Load()) }

func (ev *evaluator) exhausted() bool {
	return ev.p.MaxEvaluations > 0 && ev.evaluations() >= ev.p.MaxEvaluations
}
