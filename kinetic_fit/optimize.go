package kinetic_fit

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/notargets/gopfr/chemistry"
	"github.com/notargets/gopfr/model_problems/PlugFlow1D"
	"github.com/notargets/gopfr/types"
	"github.com/notargets/gopfr/utils"
)

type Settings struct {
	Objective              types.ObjectiveType
	Strategy               Strategy // Levenberg-Marquardt when nil
	Reactions              int      // Leading calibratable reactions to fit, 0 fits all
	FitTemperatureExponent bool
	Initial                []float64 // Flat layout vector, provider parameters when nil
	Lower, Upper           []float64 // Layout bounds, DefaultBounds when nil
	MaxEvaluations         int       // Default 200
	Tolerance              float64   // Default 1e-6
	Penalty                float64   // Residual for a failed trial, default 1e6
	Concurrent             int       // Parallel marches, default GOMAXPROCS
	Log                    logrus.FieldLogger
}

func (s Settings) withDefaults() Settings {
	if s.Strategy == nil {
		s.Strategy = &LevenbergMarquardt{}
	}
	if s.MaxEvaluations <= 0 {
		s.MaxEvaluations = 200
	}
	if !(s.Tolerance > 0) {
		s.Tolerance = 1.e-6
	}
	if !(s.Penalty > 0) {
		s.Penalty = 1.e6
	}
	if s.Concurrent <= 0 {
		s.Concurrent = runtime.GOMAXPROCS(0)
	}
	if s.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.Log = l
	}
	return s
}

type OptimizationResult struct {
	Parameters    []float64 // Flat layout vector
	Labels        []string
	Kinetics      chemistry.KineticParameters
	Objective     float64
	ObjectiveType types.ObjectiveType
	Residuals     []float64 // Predicted minus measured, per point
	Converged     bool
	Iterations    int
	Evaluations   int
	RMSE, MAE     float64
	Strategy      string
	Message       string
}

// Flatten returns the result as a key-value map for JSON or YAML output
func (r *OptimizationResult) Flatten() (m map[string]interface{}) {
	m = map[string]interface{}{
		"objective":      r.Objective,
		"objective_type": r.ObjectiveType.String(),
		"converged":      r.Converged,
		"iterations":     r.Iterations,
		"evaluations":    r.Evaluations,
		"rmse":           r.RMSE,
		"mae":            r.MAE,
		"strategy":       r.Strategy,
		"message":        r.Message,
		"residuals":      r.Residuals,
	}
	for i, label := range r.Labels {
		m[label] = r.Parameters[i]
	}
	for j, ar := range r.Kinetics {
		key := fmt.Sprintf("reaction_%d", j)
		m[key+"_A"] = ar.A
		m[key+"_b"] = ar.B
		m[key+"_Ea_J_per_kmol"] = ar.Ea
	}
	return
}

// trial runs a full march per candidate vector and interpolates the slice
// deposition rates at the experimental positions
type trial struct {
	cfg      PlugFlow1D.Config
	provider chemistry.Provider
	layout   Layout
	z, rate  []float64
	penalty  float64
	log      logrus.FieldLogger
}

func (tr *trial) residuals(dst, x []float64) {
	var (
		res  *PlugFlow1D.Result
		pred []float64
		err  error
	)
	if res, err = PlugFlow1D.March(tr.cfg, tr.provider, tr.layout.Expand(x)); err == nil {
		pred, err = utils.Interpolate(res.Positions(), res.DepositionRates(), tr.z)
	}
	if err != nil {
		tr.log.WithFields(logrus.Fields{"x": x, "error": err}).Debug("trial failed, applying penalty")
		for i := range dst {
			dst[i] = tr.penalty
		}
		return
	}
	for i := range dst {
		dst[i] = pred[i] - tr.rate[i]
	}
}

/*
Optimize calibrates the kinetic parameters of the provider's calibratable
reactions against measured deposition rates. Every trial is a full march
using its own provider handle; failed trials score the penalty residual.
*/
func Optimize(ctx context.Context, cfg PlugFlow1D.Config, provider chemistry.Provider,
	points []ExperimentalPoint, s Settings) (result *OptimizationResult, err error) {
	var (
		layout Layout
		sr     *SearchResult
	)
	s = s.withDefaults()
	if err = cfg.Validate(); err != nil {
		return
	}
	if layout, err = NewLayout(provider, s.Reactions, s.FitTemperatureExponent); err != nil {
		return
	}
	if len(points) < layout.Len()+1 {
		return nil, &InsufficientDataError{Points: len(points), Parameters: layout.Len()}
	}
	lower, upper := layout.DefaultBounds()
	if s.Lower != nil {
		lower = s.Lower
	}
	if s.Upper != nil {
		upper = s.Upper
	}
	x0 := s.Initial
	if x0 == nil {
		x0 = layout.Flatten(layout.Base)
	}
	for _, v := range [][]float64{lower, upper, x0} {
		if len(v) != layout.Len() {
			return nil, fmt.Errorf("parameter vector has length %d, layout %v needs %d", len(v), layout.Labels(), layout.Len())
		}
	}
	for j := range lower {
		if !(lower[j] < upper[j]) {
			return nil, fmt.Errorf("bounds for %s are empty: [%v, %v]", layout.Labels()[j], lower[j], upper[j])
		}
	}
	z, rate := Split(points)
	tr := &trial{cfg: cfg, provider: provider, layout: layout, z: z, rate: rate, penalty: s.Penalty, log: s.Log}
	s.Log.WithFields(logrus.Fields{
		"strategy":   s.Strategy.Name(),
		"objective":  s.Objective.String(),
		"parameters": layout.Labels(),
		"points":     len(points),
	}).Info("starting kinetic calibration")
	if sr, err = s.Strategy.Search(ctx, Problem{
		Residuals:      tr.residuals,
		NumResiduals:   len(points),
		Loss:           s.Objective,
		X0:             utils.ClampSlice(x0, lower, upper),
		Lower:          lower,
		Upper:          upper,
		MaxEvaluations: s.MaxEvaluations,
		Tolerance:      s.Tolerance,
		Concurrent:     s.Concurrent,
		Penalty:        s.Penalty,
	}); err != nil {
		return
	}
	result = &OptimizationResult{
		Parameters:    sr.X,
		Labels:        layout.Labels(),
		Kinetics:      layout.Expand(sr.X),
		Objective:     sr.Objective,
		ObjectiveType: s.Objective,
		Residuals:     sr.Residuals,
		Converged:     sr.Converged,
		Iterations:    sr.Iterations,
		Evaluations:   sr.Evaluations,
		RMSE:          utils.RMSE(sr.Residuals),
		MAE:           utils.MAE(sr.Residuals),
		Strategy:      s.Strategy.Name(),
		Message:       sr.Message,
	}
	s.Log.WithFields(logrus.Fields{
		"converged":   result.Converged,
		"objective":   result.Objective,
		"rmse":        result.RMSE,
		"evaluations": result.Evaluations,
	}).Info("kinetic calibration complete")
	return
}
