package kinetic_fit

import (
	"context"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/notargets/gopfr/types"
)

// NelderMead runs the gonum simplex search on an unconstrained space mapped
// onto the bounds with tanh
type NelderMead struct {
	SimplexSize float64 // In the mapped space, default 0.1
}

func (nm *NelderMead) Name() string { return types.Strategy_NelderMead.String() }

type boundsMap struct {
	lower, upper []float64
}

func (bm boundsMap) bounded(j int) bool {
	return !math.IsInf(bm.lower[j], 0) && !math.IsInf(bm.upper[j], 0)
}

func (bm boundsMap) toX(y []float64) (x []float64) {
	x = make([]float64, len(y))
	for j, yj := range y {
		if !bm.bounded(j) {
			x[j] = yj
			continue
		}
		x[j] = bm.lower[j] + 0.5*(bm.upper[j]-bm.lower[j])*(1+math.Tanh(yj))
	}
	return
}

func (bm boundsMap) toY(x []float64) (y []float64) {
	y = make([]float64, len(x))
	for j, xj := range x {
		if !bm.bounded(j) {
			y[j] = xj
			continue
		}
		u := 2*(xj-bm.lower[j])/(bm.upper[j]-bm.lower[j]) - 1
		// Stay off ±1 where atanh diverges
		y[j] = math.Atanh(math.Max(-0.9999, math.Min(0.9999, u)))
	}
	return
}

func (nm *NelderMead) Search(ctx context.Context, p Problem) (sr *SearchResult, err error) {
	var (
		ev     = &evaluator{p: &p}
		bm     = boundsMap{p.Lower, p.Upper}
		result *optimize.Result
		size   = nm.SimplexSize
	)
	if size <= 0 {
		size = 0.1
	}
	problem := optimize.Problem{
		Func: func(y []float64) float64 {
			if ctx.Err() != nil {
				return math.Inf(1)
			}
			r := make([]float64, p.NumResiduals)
			ev.eval(r, bm.toX(y))
			return p.Loss.Loss(r)
		},
	}
	settings := optimize.Settings{
		FuncEvaluations: p.MaxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   p.Tolerance * 1.e-6,
			Relative:   p.Tolerance,
			Iterations: 5 * (len(p.X0) + 1),
		},
	}
	result, err = optimize.Minimize(problem, bm.toY(p.X0), &settings, &optimize.NelderMead{SimplexSize: size})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if result == nil {
		return nil, err
	}
	sr = &SearchResult{
		X:          bm.toX(result.X),
		Residuals:  make([]float64, p.NumResiduals),
		Iterations: result.Stats.MajorIterations,
		Message:    result.Status.String(),
	}
	switch result.Status {
	case optimize.Success, optimize.FunctionThreshold, optimize.FunctionConvergence,
		optimize.GradientThreshold, optimize.StepConvergence, optimize.MethodConverge:
		sr.Converged = true
	}
	p.Residuals(sr.Residuals, sr.X)
	if p.failed(sr.Residuals) {
		sr.Converged, sr.Message = false, "no successful trial found"
	}
	sr.Objective = p.Loss.Loss(sr.Residuals)
	sr.Evaluations = ev.evaluations()
	return sr, nil
}
