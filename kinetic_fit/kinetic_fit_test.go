package kinetic_fit

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gopfr/chemistry"
	"github.com/notargets/gopfr/chemistry/massaction"
	"github.com/notargets/gopfr/model_problems/PlugFlow1D"
	"github.com/notargets/gopfr/types"
	"github.com/notargets/gopfr/utils"
)

func loadRP2(t *testing.T) *massaction.Provider {
	p, err := massaction.Load("../mech/rp2_surf.yaml")
	require.NoError(t, err)
	return p
}

func heatedTube(n int) PlugFlow1D.Config {
	return PlugFlow1D.Config{
		Length:               24 * 0.0254,
		Diameter:             0.055 * 0.0254,
		Power:                789,
		VolumetricFlowRate:   53.9e-6 / 60,
		InletTemperature:     700,
		InletPressure:        600 * 6894.757293168,
		ReferenceTemperature: 300,
		NumberOfSlices:       n,
		InletComposition:     map[string]float64{"RP2": 1},
		InitialCoverage:      map[string]float64{"CC(s)": 1},
	}
}

// syntheticData samples the march with the given kinetics midway between
// evenly spaced stations
func syntheticData(t *testing.T, cfg PlugFlow1D.Config, p chemistry.Provider, kp chemistry.KineticParameters,
	nPoints int) (points []ExperimentalPoint) {
	res, err := PlugFlow1D.March(cfg, p, kp)
	require.NoError(t, err)
	z := make([]float64, nPoints)
	for i := range z {
		z[i] = cfg.Length * (float64(i) + 0.5) / float64(nPoints)
	}
	rate, err := utils.Interpolate(res.Positions(), res.DepositionRates(), z)
	require.NoError(t, err)
	for i := range z {
		points = append(points, ExperimentalPoint{Z: z[i], DepositionRate: rate[i]})
	}
	return
}

func TestLayout(t *testing.T) {
	p := loadRP2(t)
	l, err := NewLayout(p, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, []string{"logA[rp2-deposition]", "Ea[rp2-deposition]"}, l.Labels())
	x := l.Flatten(p.KineticParameters())
	assert.InDelta(t, math.Log10(2), x[0], 1.e-15)
	assert.InDelta(t, 20, x[1], 1.e-12)
	kp := l.Expand(x)
	assert.InDelta(t, 2, kp[0].A, 1.e-14)
	assert.InDelta(t, 8.368e7, kp[0].Ea, 1.e-6)

	l3, err := NewLayout(p, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 3, l3.Len())
	lower, upper := l3.DefaultBounds()
	assert.Equal(t, []float64{-10, -3, 0.1}, lower)
	assert.Equal(t, []float64{20, 3, 200}, upper)
	kp = l3.Expand([]float64{1, 0.5, 10})
	assert.Equal(t, chemistry.Arrhenius{A: 10, B: 0.5, Ea: 10 * KcalPerMolToJPerKmol}, kp[0])

	_, err = NewLayout(p, 2, false)
	assert.Error(t, err)
}

func TestReadExperimental(t *testing.T) {
	points, err := ReadExperimental(strings.NewReader("deposition_rate, z\n1.5e-4, 0.1\n2.0e-4, 0.2\n"))
	require.NoError(t, err)
	assert.Equal(t, []ExperimentalPoint{{0.1, 1.5e-4}, {0.2, 2.0e-4}}, points)

	_, err = ReadExperimental(strings.NewReader("x,y\n1,2\n"))
	assert.Error(t, err)
	_, err = ReadExperimental(strings.NewReader("z,deposition_rate\n1,abc\n"))
	assert.Error(t, err)
	_, err = ReadExperimental(strings.NewReader(""))
	assert.Error(t, err)
	_, err = LoadExperimental("testdata/missing.csv")
	assert.Error(t, err)
}

func TestInsufficientData(t *testing.T) {
	p := loadRP2(t)
	points := []ExperimentalPoint{{0.1, 1.e-4}, {0.3, 2.e-4}}
	_, err := Optimize(context.Background(), heatedTube(11), p, points, Settings{FitTemperatureExponent: true})
	require.ErrorIs(t, err, ErrInsufficientData)
	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, 2, ide.Points)
	assert.Equal(t, 3, ide.Parameters)
}

func TestPenalty(t *testing.T) {
	p := loadRP2(t)
	l, err := NewLayout(p, 0, false)
	require.NoError(t, err)
	tr := &trial{
		cfg:      heatedTube(11),
		provider: p,
		layout:   l,
		z:        []float64{0.1, 0.2},
		rate:     []float64{0, 0},
		penalty:  1.e6,
		log:      Settings{}.withDefaults().Log,
	}
	dst := make([]float64, 2)
	tr.residuals(dst, []float64{20, 0.1}) // Consumes the feed within one slice
	assert.Equal(t, []float64{1.e6, 1.e6}, dst)
	tr.residuals(dst, l.Flatten(p.KineticParameters()))
	assert.Greater(t, dst[1], 0.)
	assert.Less(t, dst[1], 1.)
}

func TestOptimizeRecovery(t *testing.T) {
	var (
		p      = loadRP2(t)
		cfg    = heatedTube(21)
		truth  = chemistry.KineticParameters{{A: 2, Ea: 20 * KcalPerMolToJPerKmol}}
		points = syntheticData(t, cfg, p, truth, 8)
		start  = []float64{math.Log10(2) + 0.5, 23}
	)
	{ // Least squares
		res, err := Optimize(context.Background(), cfg, p, points, Settings{
			Objective:      types.Objective_L2,
			Initial:        start,
			MaxEvaluations: 300,
		})
		require.NoError(t, err)
		assert.True(t, res.Converged, res.Message)
		assert.InDelta(t, math.Log10(2), res.Parameters[0], 1.e-3)
		assert.InDelta(t, 20, res.Parameters[1], 1.e-2)
		assert.Less(t, res.RMSE, 1.e-3*points[len(points)-1].DepositionRate)
		assert.Greater(t, res.Evaluations, res.Iterations)
		assert.Equal(t, "levenberg-marquardt", res.Strategy)
		flat := res.Flatten()
		assert.Equal(t, res.Parameters[0], flat["logA[rp2-deposition]"])
		assert.Equal(t, "l2", flat["objective_type"])
	}
	{ // Absolute error
		res, err := Optimize(context.Background(), cfg, p, points, Settings{
			Objective:      types.Objective_MAE,
			Initial:        start,
			MaxEvaluations: 400,
		})
		require.NoError(t, err)
		assert.InDelta(t, math.Log10(2), res.Parameters[0], 1.e-2)
		assert.InDelta(t, 20, res.Parameters[1], 1.e-1)
		assert.Less(t, res.MAE, 1.e-2*points[len(points)-1].DepositionRate)
	}
	// The provider is untouched by the search
	assert.Equal(t, chemistry.KineticParameters{{A: 2, Ea: 8.368e7}}, p.KineticParameters())
}

func TestOptimizeCancel(t *testing.T) {
	p := loadRP2(t)
	cfg := heatedTube(11)
	points := syntheticData(t, cfg, p, p.KineticParameters(), 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Optimize(ctx, cfg, p, points, Settings{Initial: []float64{1, 25}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStrategies(t *testing.T) {
	// Residuals of a bounded exponential fit, y = a exp(-b t)
	var (
		ts     = []float64{0, 0.5, 1, 1.5, 2, 3}
		a, b   = 2.5, 0.7
		target = make([]float64, len(ts))
	)
	for i, tt := range ts {
		target[i] = a * math.Exp(-b*tt)
	}
	problem := Problem{
		Residuals: func(dst, x []float64) {
			for i, tt := range ts {
				dst[i] = x[0]*math.Exp(-x[1]*tt) - target[i]
			}
		},
		NumResiduals:   len(ts),
		X0:             []float64{1, 0.1},
		Lower:          []float64{0, 0},
		Upper:          []float64{10, 5},
		MaxEvaluations: 2000,
		Tolerance:      1.e-10,
	}
	for _, st := range []Strategy{NewStrategy(types.Strategy_LevenbergMarquardt), NewStrategy(types.Strategy_NelderMead)} {
		for _, loss := range []types.ObjectiveType{types.Objective_L2, types.Objective_MAE} {
			problem.Loss = loss
			sr, err := st.Search(context.Background(), problem)
			require.NoError(t, err, st.Name())
			assert.InDeltaf(t, a, sr.X[0], 1.e-3, "%s %s", st.Name(), loss)
			assert.InDeltaf(t, b, sr.X[1], 1.e-3, "%s %s", st.Name(), loss)
			assert.LessOrEqual(t, sr.Evaluations, problem.MaxEvaluations+len(problem.X0)+1)
		}
	}
	{ // Bounds are respected when the optimum lies outside
		problem.Loss = types.Objective_L2
		problem.Upper = []float64{2, 5}
		sr, err := NewStrategy(types.Strategy_LevenbergMarquardt).Search(context.Background(), problem)
		require.NoError(t, err)
		assert.LessOrEqual(t, sr.X[0], 2.)
		assert.InDelta(t, 2., sr.X[0], 1.e-2)
	}
}

func TestFailedTrials(t *testing.T) {
	const penalty = 1.e6
	// Trials fail above x[0] = 5.5; the unconstrained minimum is at (1, 2)
	problem := Problem{
		Residuals: func(dst, x []float64) {
			if x[0] > 5.5 {
				for i := range dst {
					dst[i] = penalty
				}
				return
			}
			dst[0], dst[1], dst[2] = x[0]-1, x[1]-2, x[0]+x[1]-3
		},
		NumResiduals:   3,
		Loss:           types.Objective_L2,
		X0:             []float64{8, 1},
		Lower:          []float64{0, 0},
		Upper:          []float64{8, 8},
		MaxEvaluations: 200,
		Tolerance:      1.e-10,
		Penalty:        penalty,
	}
	{ // The search backs off the failed region and then converges
		sr, err := NewStrategy(types.Strategy_LevenbergMarquardt).Search(context.Background(), problem)
		require.NoError(t, err)
		assert.True(t, sr.Converged, sr.Message)
		assert.InDelta(t, 1., sr.X[0], 1.e-6)
		assert.InDelta(t, 2., sr.X[1], 1.e-6)
	}
	// Every trial fails
	problem.Residuals = func(dst, x []float64) {
		for i := range dst {
			dst[i] = penalty
		}
	}
	for _, st := range []Strategy{NewStrategy(types.Strategy_LevenbergMarquardt), NewStrategy(types.Strategy_NelderMead)} {
		sr, err := st.Search(context.Background(), problem)
		require.NoError(t, err, st.Name())
		assert.False(t, sr.Converged, st.Name())
		assert.Equal(t, []float64{penalty, penalty, penalty}, sr.Residuals)
	}
	{ // A start deep in the failed region of the tube march
		var (
			p      = loadRP2(t)
			cfg    = heatedTube(11)
			points = syntheticData(t, cfg, p, p.KineticParameters(), 5)
		)
		res, err := Optimize(context.Background(), cfg, p, points, Settings{
			Initial:        []float64{20, 0.1},
			MaxEvaluations: 40,
		})
		require.NoError(t, err)
		assert.Greater(t, res.Evaluations, 3)
		assert.Less(t, res.RMSE, 1.)
		assert.NotEqual(t, "zero gradient", res.Message)
	}
}

func TestBoundsMap(t *testing.T) {
	bm := boundsMap{lower: []float64{-10, math.Inf(-1)}, upper: []float64{20, math.Inf(1)}}
	x := []float64{5, 3}
	y := bm.toY(x)
	assert.Equal(t, 3., y[1])
	assert.InDeltaSlice(t, x, bm.toX(y), 1.e-12)
	xb := bm.toX([]float64{50, 0})
	assert.LessOrEqual(t, xb[0], 20.)
}

func TestSensitivity(t *testing.T) {
	p := loadRP2(t)
	cfg := heatedTube(11)
	l, err := NewLayout(p, 0, false)
	require.NoError(t, err)
	base := l.Flatten(p.KineticParameters())
	sens, err := Sensitivity(cfg, p, base, l, 1.e-3)
	require.NoError(t, err)
	require.Len(t, sens.Parameters, 2)
	assert.Len(t, sens.Z, 11)
	assert.Equal(t, base, sens.Baseline)
	logA, ea := sens.Parameters[0], sens.Parameters[1]
	assert.Equal(t, "logA[rp2-deposition]", logA.Label)
	assert.InDelta(t, 1.e-3*math.Log10(2), logA.Step, 1.e-15)
	assert.InDelta(t, 2.e-2, ea.Step, 1.e-15)
	// Rate is proportional to A near the inlet
	assert.InEpsilon(t, math.Ln10*sens.Deposition[1], logA.Deposition[1], 0.1)
	assert.Less(t, ea.Deposition[1], 0.)
	assert.Equal(t, 0., logA.Temperature[0])

	_, err = Sensitivity(cfg, p, base, l, 0)
	assert.Error(t, err)
	_, err = Sensitivity(cfg, p, base[:1], l, 1.e-3)
	assert.Error(t, err)
}
