package kinetic_fit

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gopfr/types"
	"github.com/notargets/gopfr/utils"
)

/*
LevenbergMarquardt is a bounded damped Gauss-Newton search. Steps are
projected onto the bounds and the Jacobian is taken by forward differences.
For the mae objective each iteration reweights the residuals by
1/sqrt(|r|), so the weighted sum of squares matches the sum of magnitudes.
*/
type LevenbergMarquardt struct {
	InitialDamping float64 // Default 1e-3
	Step           float64 // Finite difference step, default 1e-6
}

const (
	maxDamping  = 1.e12
	minDamping  = 1.e-12
	maxRetreats = 8
	gradientTol = 1.e-6
)

func (lm *LevenbergMarquardt) Name() string { return types.Strategy_LevenbergMarquardt.String() }

func irlsWeights(loss types.ObjectiveType, r []float64) (w []float64) {
	w = utils.ConstArray(len(r), 1)
	if loss != types.Objective_MAE {
		return
	}
	floor := 1.e-8*floats.Norm(r, math.Inf(1)) + 1.e-300
	for i := range r {
		w[i] = 1. / math.Sqrt(math.Max(math.Abs(r[i]), floor))
	}
	return
}

func (lm *LevenbergMarquardt) Search(ctx context.Context, p Problem) (sr *SearchResult, err error) {
	var (
		n, m   = len(p.X0), p.NumResiduals
		ev     = &evaluator{p: &p}
		lambda = lm.InitialDamping
		step   = lm.Step
		x      = utils.ClampSlice(p.X0, p.Lower, p.Upper)
		r      = make([]float64, m)
		rNew   = make([]float64, m)
		J      = mat.NewDense(m, n, nil)
		JtJ    = mat.NewSymDense(n, nil)
		A      = mat.NewDense(n, n, nil)
		g      = mat.NewVecDense(n, nil)
		dx     mat.VecDense
		cost   float64
		cost0  float64
	)
	if lambda <= 0 {
		lambda = 1.e-3
	}
	if step <= 0 {
		step = 1.e-6
	}
	ev.eval(r, x)
	cost = p.Loss.Loss(r)
	cost0 = cost
	sr = &SearchResult{Message: "evaluation limit reached"}
	finish := func() (*SearchResult, error) {
		sr.X, sr.Residuals, sr.Objective = x, r, cost
		sr.Evaluations = ev.evaluations()
		return sr, nil
	}
	for !ev.exhausted() {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		sr.Iterations++
		w := irlsWeights(p.Loss, r)
		fd.Jacobian(J, ev.eval, x, &fd.JacobianSettings{
			Formula:     fd.Forward,
			OriginValue: r,
			Step:        step,
			Concurrent:  p.Concurrent > 1,
		})
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				J.Set(i, j, w[i]*J.At(i, j))
			}
		}
		rw := make([]float64, m)
		for i := range r {
			rw[i] = w[i] * r[i]
		}
		JtJ.SymOuterK(1, J.T())
		g.MulVec(J.T(), mat.NewVecDense(m, rw))
		if floats.Norm(g.RawVector().Data, math.Inf(1)) == 0 {
			if !p.failed(r) {
				sr.Converged, sr.Message = true, "zero gradient"
				return finish()
			}
			if !retreat(ev, &p, x, r) {
				sr.Message = "no successful trial near the start point"
				return finish()
			}
			cost = p.Loss.Loss(r)
			cost0 = cost
			continue
		}
		var accepted bool
		for !accepted {
			if ev.exhausted() {
				return finish()
			}
			A.Copy(JtJ)
			for j := 0; j < n; j++ {
				d := JtJ.At(j, j)
				A.Set(j, j, d+lambda*math.Max(d, 1.e-12))
			}
			if err = dx.SolveVec(A, g); err != nil {
				if _, ok := err.(mat.Condition); !ok {
					return nil, fmt.Errorf("levenberg-marquardt: %w", err)
				}
				err = nil
			}
			xNew := make([]float64, n)
			for j := range xNew {
				xNew[j] = utils.Clamp(x[j]-dx.AtVec(j), p.Lower[j], p.Upper[j])
			}
			ev.eval(rNew, xNew)
			costNew := p.Loss.Loss(rNew)
			if costNew < cost && !math.IsNaN(costNew) {
				accepted = true
				var (
					reduction = (cost - costNew) / cost
					moved     = floats.Distance(xNew, x, 2)
					used      = lambda
				)
				x, cost = xNew, costNew
				r, rNew = rNew, r
				lambda = math.Max(lambda/10, minDamping)
				switch {
				case cost == 0:
					sr.Converged, sr.Message = true, "exact fit"
					return finish()
				case used <= 1 && reduction <= p.Tolerance:
					sr.Converged, sr.Message = true, "objective converged"
					return finish()
				case used <= 1 && moved <= p.Tolerance*(floats.Norm(x, 2)+p.Tolerance):
					sr.Converged, sr.Message = true, "step converged"
					return finish()
				}
			} else {
				lambda *= 10
				if lambda > maxDamping {
					// Only a stationary point that is not a failed trial counts as converged
					sr.Message = "damping saturated"
					if !p.failed(r) && stationary(g.RawVector().Data, x, math.Max(cost, cost0)) {
						sr.Converged, sr.Message = true, "no further descent"
					}
					return finish()
				}
			}
		}
	}
	return finish()
}

func stationary(g, x []float64, scale float64) bool {
	for j := range g {
		if math.Abs(g[j])*math.Max(math.Abs(x[j]), 1) > gradientTol*scale {
			return false
		}
	}
	return true
}

// retreat backs x off toward the centre of the bounds, halving the distance
// each time, until a trial succeeds. x and r hold the successful trial on return.
func retreat(ev *evaluator, p *Problem, x, r []float64) (ok bool) {
	var (
		c    = p.centre()
		xTry = make([]float64, len(x))
	)
	for k := 1; k <= maxRetreats && !ev.exhausted(); k++ {
		s := math.Ldexp(1, -k)
		for j := range x {
			xTry[j] = c[j] + s*(x[j]-c[j])
		}
		ev.eval(r, xTry)
		if !p.failed(r) {
			copy(x, xTry)
			return true
		}
	}
	return false
}
