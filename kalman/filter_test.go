package kalman_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
	"github.com/katalvlaran/statespace/kalman"
)

// syntheticSeries produces a deterministic univariate series with a slow
// level drift, long enough for the recursion to reach steady state.
func syntheticSeries(n int) []float64 {
	obs := make([]float64, n)
	for i := 0; i < n; i++ {
		obs[i] = 0.05*float64(i) + math.Sin(0.7*float64(i))
	}

	return obs
}

// localLevel builds y_t = α_t + ε_t, α_{t+1} = α_t + η_t with the given
// noise variances and a diffuse-ish initial covariance.
func localLevel(t *testing.T, obs []float64, h, q float64) *core.Representation {
	t.Helper()

	y := mat.NewDense(len(obs), 1, obs)
	rep, err := core.NewTimeInvariant(y,
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewSymDense(1, []float64{h}),
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewDense(1, 1, []float64{1}),
		mat.NewSymDense(1, []float64{q}),
		mat.NewVecDense(1, []float64{0}),
		mat.NewSymDense(1, []float64{1e4}))
	require.NoError(t, err)

	return rep
}

// bivariateCommonLevel builds a two-series model sharing one local-level
// state, with a correlated observation covariance. Exercises the univariate
// method's Cholesky diagonalization.
func bivariateCommonLevel(t *testing.T, n int) *core.Representation {
	t.Helper()

	data := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		data[2*i] = math.Sin(0.4 * float64(i))
		data[2*i+1] = 0.8*math.Sin(0.4*float64(i)) + 0.1*math.Cos(1.1*float64(i))
	}
	y := mat.NewDense(n, 2, data)

	rep, err := core.NewTimeInvariant(y,
		mat.NewDense(2, 1, []float64{1, 0.8}), nil,
		mat.NewSymDense(2, []float64{1, 0.3, 0.3, 1.5}),
		mat.NewDense(1, 1, []float64{0.95}), nil,
		mat.NewDense(1, 1, []float64{1}),
		mat.NewSymDense(1, []float64{0.4}),
		mat.NewVecDense(1, []float64{0}),
		mat.NewSymDense(1, []float64{10}))
	require.NoError(t, err)

	return rep
}

// TestFilter_NilRepresentation verifies the nil-input sentinel.
func TestFilter_NilRepresentation(t *testing.T) {
	_, err := kalman.Filter(nil, nil)
	assert.ErrorIs(t, err, core.ErrNilRepresentation)
}

// TestFilter_BadMethod verifies that an unknown method errors.
func TestFilter_BadMethod(t *testing.T) {
	rep := localLevel(t, []float64{1}, 1, 1)
	opts := kalman.DefaultOptions()
	opts.Method = kalman.Method(42)

	_, err := kalman.Filter(rep, &opts)
	assert.ErrorIs(t, err, kalman.ErrBadMethod)
}

// TestFilter_BadOptions verifies that a negative univariate tolerance errors.
func TestFilter_BadOptions(t *testing.T) {
	rep := localLevel(t, []float64{1}, 1, 1)
	opts := kalman.DefaultOptions()
	opts.UnivariateTol = -1

	_, err := kalman.Filter(rep, &opts)
	assert.ErrorIs(t, err, kalman.ErrBadOptions)
}

// TestFilter_SinglePeriodKnownValues checks one update step against hand
// computation: with a1=0, P1=2, H=1, y=1.5 the forecast variance is F=3,
// the filtered mean 1.0 and the filtered variance 2/3.
func TestFilter_SinglePeriodKnownValues(t *testing.T) {
	y := mat.NewDense(1, 1, []float64{1.5})
	rep, err := core.NewTimeInvariant(y,
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewSymDense(1, []float64{1}),
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewDense(1, 1, []float64{1}),
		mat.NewSymDense(1, []float64{0.5}),
		mat.NewVecDense(1, []float64{0}),
		mat.NewSymDense(1, []float64{2}))
	require.NoError(t, err)

	wantLL := -0.5 * (math.Log(2*math.Pi) + math.Log(3) + 1.5*1.5/3)

	for _, method := range []kalman.Method{
		kalman.MethodConventional, kalman.MethodInversion, kalman.MethodUnivariate,
	} {
		opts := kalman.DefaultOptions()
		opts.Method = method

		res, ferr := kalman.Filter(rep, &opts)
		require.NoError(t, ferr, method.String())
		assert.InDelta(t, wantLL, res.LogLikelihood, 1e-12, method.String())
		assert.InDelta(t, 1.0, res.Filtered[0].AtVec(0), 1e-12, method.String())
		assert.InDelta(t, 2.0/3.0, res.FilteredCov[0].At(0, 0), 1e-12, method.String())
	}
}

// TestFilter_MethodsAgree verifies that all three methods produce the same
// log-likelihood and filtered states on a long univariate series.
func TestFilter_MethodsAgree(t *testing.T) {
	rep := localLevel(t, syntheticSeries(60), 0.9, 0.3)

	conv, err := kalman.Filter(rep, nil)
	require.NoError(t, err)

	for _, method := range []kalman.Method{kalman.MethodInversion, kalman.MethodUnivariate} {
		opts := kalman.DefaultOptions()
		opts.Method = method

		res, ferr := kalman.Filter(rep, &opts)
		require.NoError(t, ferr, method.String())
		assert.InDelta(t, conv.LogLikelihood, res.LogLikelihood, 1e-6, method.String())
		for i := 0; i < rep.NumPeriods(); i++ {
			assert.InDelta(t, conv.Filtered[i].AtVec(0), res.Filtered[i].AtVec(0), 1e-8,
				"filtered state at period %d (%s)", i, method)
			assert.InDelta(t, conv.FilteredCov[i].At(0, 0), res.FilteredCov[i].At(0, 0), 1e-8,
				"filtered covariance at period %d (%s)", i, method)
		}
	}
}

// TestFilter_UnivariateCorrelatedH verifies that the univariate method's
// observation rotation reproduces the multivariate likelihood under a
// non-diagonal H.
func TestFilter_UnivariateCorrelatedH(t *testing.T) {
	rep := bivariateCommonLevel(t, 40)

	conv, err := kalman.Filter(rep, nil)
	require.NoError(t, err)

	opts := kalman.DefaultOptions()
	opts.Method = kalman.MethodUnivariate
	uni, err := kalman.Filter(rep, &opts)
	require.NoError(t, err)

	assert.InDelta(t, conv.LogLikelihood, uni.LogLikelihood, 1e-6)
	for i := 0; i < rep.NumPeriods(); i++ {
		assert.InDelta(t, conv.Filtered[i].AtVec(0), uni.Filtered[i].AtVec(0), 1e-8,
			"filtered state at period %d", i)
	}
	require.NotNil(t, uni.Univariate, "univariate filter must record its scalar trail")
	assert.Nil(t, conv.Univariate, "multivariate filter must not")
}

// TestFilter_MissingPeriod verifies that a fully missing period contributes
// nothing to the likelihood and leaves filtered equal to predicted.
func TestFilter_MissingPeriod(t *testing.T) {
	obs := syntheticSeries(20)
	obs[7] = math.NaN()
	rep := localLevel(t, obs, 0.9, 0.3)

	for _, method := range []kalman.Method{
		kalman.MethodConventional, kalman.MethodInversion, kalman.MethodUnivariate,
	} {
		opts := kalman.DefaultOptions()
		opts.Method = method

		res, err := kalman.Filter(rep, &opts)
		require.NoError(t, err, method.String())
		assert.Zero(t, res.LoglikContrib[7], "missing period contributes zero (%s)", method)
		assert.Equal(t, res.Predicted[7].AtVec(0), res.Filtered[7].AtVec(0),
			"filtered equals predicted at missing period (%s)", method)
		assert.Equal(t, res.PredictedCov[7].At(0, 0), res.FilteredCov[7].At(0, 0),
			"filtered covariance equals predicted (%s)", method)
	}
}

// TestFilter_AllMissingSeries verifies the degenerate case of no data at
// all: zero log-likelihood and a pure prediction recursion.
func TestFilter_AllMissingSeries(t *testing.T) {
	obs := make([]float64, 10)
	for i := range obs {
		obs[i] = math.NaN()
	}
	rep := localLevel(t, obs, 0.9, 0.3)

	res, err := kalman.Filter(rep, nil)
	require.NoError(t, err)
	assert.Zero(t, res.LogLikelihood, "no observations, no likelihood")
	for i := 0; i < 10; i++ {
		assert.Equal(t, res.Predicted[i].AtVec(0), res.Filtered[i].AtVec(0), "period %d", i)
	}
	// Pure prediction: P grows by Q each period.
	assert.InDelta(t, res.PredictedCov[0].At(0, 0)+0.3, res.PredictedCov[1].At(0, 0), 1e-9)
}

// TestFilter_NonPositiveDefinite verifies that a negative forecast-error
// variance surfaces as a wrapped core.ErrNonPositiveDefinite.
func TestFilter_NonPositiveDefinite(t *testing.T) {
	y := mat.NewDense(2, 1, []float64{1, 2})
	rep, err := core.NewTimeInvariant(y,
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewSymDense(1, []float64{-1}), // invalid variance
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewDense(1, 1, []float64{1}),
		mat.NewSymDense(1, []float64{1e-6}),
		mat.NewVecDense(1, []float64{0}),
		mat.NewSymDense(1, []float64{1e-4}))
	require.NoError(t, err)

	for _, method := range []kalman.Method{
		kalman.MethodConventional, kalman.MethodInversion, kalman.MethodUnivariate,
	} {
		opts := kalman.DefaultOptions()
		opts.Method = method

		_, ferr := kalman.Filter(rep, &opts)
		assert.ErrorIs(t, ferr, core.ErrNonPositiveDefinite, method.String())
	}
}

// TestFilter_SteadyState verifies that the local-level recursion converges:
// the predicted variance and the gain stabilize.
func TestFilter_SteadyState(t *testing.T) {
	rep := localLevel(t, syntheticSeries(120), 1.0, 0.25)

	res, err := kalman.Filter(rep, nil)
	require.NoError(t, err)

	n := rep.NumPeriods()
	assert.InDelta(t, res.PredictedCov[n-2].At(0, 0), res.PredictedCov[n-1].At(0, 0), 1e-10,
		"predicted variance reaches a fixed point")
	assert.InDelta(t, res.Gain[n-2].At(0, 0), res.Gain[n-1].At(0, 0), 1e-10,
		"gain reaches a fixed point")

	// Steady state of p = p+q − p²/(p+h) for the local level solves
	// p² − q·p − q·h = 0.
	p := res.PredictedCov[n-1].At(0, 0)
	assert.InDelta(t, 0.0, p*p-0.25*p-0.25*1.0, 1e-8, "steady-state Riccati equation")
}

// TestMethod_String covers the method labels.
func TestMethod_String(t *testing.T) {
	assert.Equal(t, "conventional", kalman.MethodConventional.String())
	assert.Equal(t, "inversion", kalman.MethodInversion.String())
	assert.Equal(t, "univariate", kalman.MethodUnivariate.String())
}
