package massaction

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gopfr/chemistry"
	"github.com/notargets/gopfr/utils"
)

/*
SurfaceCoverages relaxes the site fractions to the pseudo-steady state where
every surface species has zero net production. The largest coverage row of
the Newton system is replaced by site conservation, sum(theta) = 1.
*/
func (p *Provider) SurfaceCoverages(s chemistry.State) (theta []float64, err error) {
	var (
		n    = len(p.species.Surface)
		conc []float64
		pin  int
	)
	if err = p.check("coverages", s); err != nil {
		return
	}
	switch n {
	case 0:
		return nil, nil
	case 1:
		return []float64{1}, nil
	}
	theta = make([]float64, n)
	for k := range theta {
		theta[k] = math.Max(s.Coverages[k], 0)
	}
	if utils.Normalize(theta) == 0 {
		copy(theta, utils.ConstArray(n, 1./float64(n)))
	}
	conc = p.concentrations(s)
	for k := range theta {
		if theta[k] > theta[pin] {
			pin = k
		}
	}
	residual := func(F, th []float64) {
		pr := p.progress(s.T, conc, th)
		copy(F, p.nuSurf.mul(pr.Surface))
		F[pin] = -1
		for _, v := range th {
			F[pin] += v
		}
	}
	var (
		F   = make([]float64, n)
		J   = mat.NewDense(n, n, nil)
		rhs = mat.NewVecDense(n, nil)
		dx  mat.VecDense
	)
	residual(F, theta)
	F[pin] = 0
	if allZero(F) {
		return
	}
	for iter := 0; iter < p.MaxCoverageIterations; iter++ {
		residual(F, theta)
		fd.Jacobian(J, residual, theta, &fd.JacobianSettings{
			Formula:     fd.Central,
			OriginValue: F,
		})
		for k := range F {
			rhs.SetVec(k, -F[k])
		}
		if err = dx.SolveVec(J, rhs); err != nil {
			if cond, ok := err.(mat.Condition); !ok || math.IsInf(float64(cond), 1) {
				return nil, chemistry.NewQueryError("coverages", fmt.Errorf("singular coverage Jacobian: %w", err))
			}
			err = nil
		}
		var step float64
		for k := range theta {
			d := dx.AtVec(k)
			if math.IsNaN(d) {
				return nil, chemistry.NewQueryError("coverages", fmt.Errorf("coverage update is NaN"))
			}
			next := utils.Clamp(theta[k]+d, 0, 1)
			step = math.Max(step, math.Abs(next-theta[k]))
			theta[k] = next
		}
		if step <= p.CoverageTolerance {
			utils.Normalize(theta)
			return
		}
	}
	return nil, chemistry.NewQueryError("coverages",
		fmt.Errorf("site fractions not converged in %d iterations", p.MaxCoverageIterations))
}

func allZero(v []float64) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}
