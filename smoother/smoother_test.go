package smoother_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
	"github.com/katalvlaran/statespace/kalman"
	"github.com/katalvlaran/statespace/smoother"
)

// localLevel builds y_t = α_t + ε_t, α_{t+1} = α_t + η_t over a
// deterministic series of length n, with optional NaN positions.
func localLevel(t *testing.T, n int, missing ...int) *core.Representation {
	t.Helper()

	obs := make([]float64, n)
	for i := 0; i < n; i++ {
		obs[i] = 0.02*float64(i) + math.Sin(0.6*float64(i))
	}
	for _, i := range missing {
		obs[i] = math.NaN()
	}

	rep, err := core.NewTimeInvariant(mat.NewDense(n, 1, obs),
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewSymDense(1, []float64{0.8}),
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewDense(1, 1, []float64{1}),
		mat.NewSymDense(1, []float64{0.3}),
		mat.NewVecDense(1, []float64{0}),
		mat.NewSymDense(1, []float64{1e3}))
	require.NoError(t, err)

	return rep
}

// trendModel builds a bivariate observation of a two-dimensional
// level+slope state, with correlated measurement noise and a NaN entry,
// so every smoother branch (reduction, embedding, disturbances) is active.
func trendModel(t *testing.T, n int) *core.Representation {
	t.Helper()

	data := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		data[2*i] = 0.1*float64(i) + math.Sin(0.5*float64(i))
		data[2*i+1] = 0.1*float64(i) + 0.3*math.Cos(0.9*float64(i))
	}
	data[2*(n/2)+1] = math.NaN() // one partially missing period

	y := mat.NewDense(n, 2, data)
	rep, err := core.NewTimeInvariant(y,
		mat.NewDense(2, 2, []float64{1, 0, 1, 0}), nil,
		mat.NewSymDense(2, []float64{0.6, 0.2, 0.2, 0.9}),
		mat.NewDense(2, 2, []float64{1, 1, 0, 1}), nil,
		mat.NewDense(2, 1, []float64{0, 1}),
		mat.NewSymDense(1, []float64{0.05}),
		mat.NewVecDense(2, nil),
		mat.NewSymDense(2, []float64{50, 0, 0, 5}))
	require.NoError(t, err)

	return rep
}

// TestSmooth_NilInputs verifies the nil-input sentinels.
func TestSmooth_NilInputs(t *testing.T) {
	rep := localLevel(t, 5)
	fres, err := kalman.Filter(rep, nil)
	require.NoError(t, err)

	_, err = smoother.Smooth(nil, fres, nil)
	assert.ErrorIs(t, err, core.ErrNilRepresentation)

	_, err = smoother.Smooth(rep, nil, nil)
	assert.ErrorIs(t, err, smoother.ErrNilFilterResult)
}

// TestSmooth_BadMethod verifies that an unknown method errors.
func TestSmooth_BadMethod(t *testing.T) {
	rep := localLevel(t, 5)
	fres, err := kalman.Filter(rep, nil)
	require.NoError(t, err)

	opts := smoother.DefaultOptions()
	opts.Method = smoother.Method(42)
	_, err = smoother.Smooth(rep, fres, &opts)
	assert.ErrorIs(t, err, smoother.ErrBadMethod)
}

// TestSmooth_IncompatibleFilter verifies the filter/smoother pairing rules:
// the univariate smoother needs the scalar trail, the multivariate
// recursions need the multivariate one.
func TestSmooth_IncompatibleFilter(t *testing.T) {
	rep := localLevel(t, 5)

	conv, err := kalman.Filter(rep, nil)
	require.NoError(t, err)

	uniOpts := kalman.DefaultOptions()
	uniOpts.Method = kalman.MethodUnivariate
	uni, err := kalman.Filter(rep, &uniOpts)
	require.NoError(t, err)

	sOpts := smoother.DefaultOptions()
	sOpts.Method = smoother.MethodUnivariate
	_, err = smoother.Smooth(rep, conv, &sOpts)
	assert.ErrorIs(t, err, smoother.ErrIncompatibleFilter, "univariate smoother on multivariate filter")

	_, err = smoother.Smooth(rep, uni, nil)
	assert.ErrorIs(t, err, smoother.ErrIncompatibleFilter, "conventional smoother on univariate filter")
}

// TestSmooth_ShapeMismatch verifies that a filter result from a different
// representation is rejected.
func TestSmooth_ShapeMismatch(t *testing.T) {
	short := localLevel(t, 5)
	long := localLevel(t, 8)

	fres, err := kalman.Filter(short, nil)
	require.NoError(t, err)

	_, err = smoother.Smooth(long, fres, nil)
	assert.ErrorIs(t, err, smoother.ErrShapeMismatch)
}

// TestSmooth_MethodsAgree verifies that all four smoother variants produce
// the same smoothed moments and disturbances on a model with time-varying
// missingness and correlated noise.
func TestSmooth_MethodsAgree(t *testing.T) {
	rep := trendModel(t, 30)
	n, m := rep.NumPeriods(), rep.StateDim()

	conv, err := kalman.Filter(rep, nil)
	require.NoError(t, err)
	ref, err := smoother.Smooth(rep, conv, nil)
	require.NoError(t, err)

	uniOpts := kalman.DefaultOptions()
	uniOpts.Method = kalman.MethodUnivariate
	uni, err := kalman.Filter(rep, &uniOpts)
	require.NoError(t, err)

	cases := []struct {
		method smoother.Method
		fres   *kalman.Result
	}{
		{smoother.MethodClassical, conv},
		{smoother.MethodAlternative, conv},
		{smoother.MethodUnivariate, uni},
	}
	for _, tc := range cases {
		opts := smoother.DefaultOptions()
		opts.Method = tc.method

		res, serr := smoother.Smooth(rep, tc.fres, &opts)
		require.NoError(t, serr, tc.method.String())
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				assert.InDelta(t, ref.Smoothed[i].AtVec(j), res.Smoothed[i].AtVec(j), 1e-6,
					"smoothed state at period %d dim %d (%s)", i, j, tc.method)
				assert.InDelta(t, ref.SmoothedCov[i].At(j, j), res.SmoothedCov[i].At(j, j), 1e-6,
					"smoothed variance at period %d dim %d (%s)", i, j, tc.method)
			}
			assert.InDelta(t, ref.StateDisturbance[i].AtVec(0), res.StateDisturbance[i].AtVec(0), 1e-6,
				"state disturbance at period %d (%s)", i, tc.method)
			for j := 0; j < rep.ObsDim(); j++ {
				assert.InDelta(t, ref.ObsDisturbance[i].AtVec(j), res.ObsDisturbance[i].AtVec(j), 1e-6,
					"observation disturbance at period %d series %d (%s)", i, j, tc.method)
				assert.InDelta(t, ref.ObsDisturbanceCov[i].At(j, j), res.ObsDisturbanceCov[i].At(j, j), 1e-6,
					"observation disturbance variance at period %d series %d (%s)", i, j, tc.method)
			}
		}
	}
}

// TestSmooth_MissingObsDisturbanceCoupling pins the correlated-noise case:
// at a partially missing period the missing series' smoothed disturbance is
// H_mo·H_oo⁻¹·ε̂_o, not zero, and every smoother route agrees on it.
func TestSmooth_MissingObsDisturbanceCoupling(t *testing.T) {
	rep := trendModel(t, 25)
	miss := 25 / 2 // series 1 is NaN at this period

	conv, err := kalman.Filter(rep, nil)
	require.NoError(t, err)
	ref, err := smoother.Smooth(rep, conv, nil)
	require.NoError(t, err)

	// H = [[0.6, 0.2], [0.2, 0.9]]: conditioning on series 0 scales its
	// disturbance by H_10/H_00.
	want := 0.2 / 0.6 * ref.ObsDisturbance[miss].AtVec(0)
	assert.NotZero(t, ref.ObsDisturbance[miss].AtVec(0), "observed entry must carry signal")
	assert.InDelta(t, want, ref.ObsDisturbance[miss].AtVec(1), 1e-8,
		"missing entry couples through H")

	opts := smoother.DefaultOptions()
	opts.Method = smoother.MethodClassical
	res, err := smoother.Smooth(rep, conv, &opts)
	require.NoError(t, err)
	assert.InDelta(t, ref.ObsDisturbance[miss].AtVec(1), res.ObsDisturbance[miss].AtVec(1), 1e-8,
		"classical route agrees at the missing entry")
	assert.InDelta(t, ref.ObsDisturbanceCov[miss].At(1, 1), res.ObsDisturbanceCov[miss].At(1, 1), 1e-8,
		"classical route agrees on the missing-entry variance")
}

// TestSmooth_ClassicalOnUnivariateFilter verifies that the classical
// recursion, which only consumes filtered moments, accepts univariate
// filter output.
func TestSmooth_ClassicalOnUnivariateFilter(t *testing.T) {
	rep := localLevel(t, 25)

	conv, err := kalman.Filter(rep, nil)
	require.NoError(t, err)
	ref, err := smoother.Smooth(rep, conv, nil)
	require.NoError(t, err)

	uniOpts := kalman.DefaultOptions()
	uniOpts.Method = kalman.MethodUnivariate
	uni, err := kalman.Filter(rep, &uniOpts)
	require.NoError(t, err)

	opts := smoother.DefaultOptions()
	opts.Method = smoother.MethodClassical
	res, err := smoother.Smooth(rep, uni, &opts)
	require.NoError(t, err)

	for i := 0; i < rep.NumPeriods(); i++ {
		assert.InDelta(t, ref.Smoothed[i].AtVec(0), res.Smoothed[i].AtVec(0), 1e-6, "period %d", i)
	}
}

// TestSmooth_FinalPeriodMatchesFiltered verifies the terminal condition of
// the backward recursion: at the last period smoothing adds no information.
func TestSmooth_FinalPeriodMatchesFiltered(t *testing.T) {
	rep := trendModel(t, 20)
	n := rep.NumPeriods()

	fres, err := kalman.Filter(rep, nil)
	require.NoError(t, err)

	for _, method := range []smoother.Method{
		smoother.MethodConventional, smoother.MethodClassical, smoother.MethodAlternative,
	} {
		opts := smoother.DefaultOptions()
		opts.Method = method

		res, serr := smoother.Smooth(rep, fres, &opts)
		require.NoError(t, serr, method.String())
		for j := 0; j < rep.StateDim(); j++ {
			assert.InDelta(t, fres.Filtered[n-1].AtVec(j), res.Smoothed[n-1].AtVec(j), 1e-10,
				"final smoothed state dim %d (%s)", j, method)
			assert.InDelta(t, fres.FilteredCov[n-1].At(j, j), res.SmoothedCov[n-1].At(j, j), 1e-10,
				"final smoothed variance dim %d (%s)", j, method)
		}
	}
}

// TestSmooth_ConstantLevel verifies an exactly solvable case: with zero
// state noise the level is constant, so every smoothed mean coincides.
func TestSmooth_ConstantLevel(t *testing.T) {
	y := mat.NewDense(4, 1, []float64{0.8, 1.2, 1.0, 1.0})
	rep, err := core.NewTimeInvariant(y,
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewSymDense(1, []float64{1}),
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewDense(1, 1, []float64{1}),
		mat.NewSymDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{0}),
		mat.NewSymDense(1, []float64{1e6}))
	require.NoError(t, err)

	fres, err := kalman.Filter(rep, nil)
	require.NoError(t, err)
	res, err := smoother.Smooth(rep, fres, nil)
	require.NoError(t, err)

	for i := 1; i < 4; i++ {
		assert.InDelta(t, res.Smoothed[0].AtVec(0), res.Smoothed[i].AtVec(0), 1e-8,
			"constant level must smooth to a single value")
	}
	// With a near-diffuse prior the smoothed level tends to the sample mean.
	assert.InDelta(t, 1.0, res.Smoothed[0].AtVec(0), 1e-3)
}

// TestSmooth_DisturbanceIdentities verifies the conditional-expectation
// identities linking smoothed states and disturbances:
// α̂_{t+1} = T·α̂_t + R·η̂_t, and ε̂_t = y_t − Z·α̂_t at observed entries.
func TestSmooth_DisturbanceIdentities(t *testing.T) {
	rep := trendModel(t, 24)
	n := rep.NumPeriods()

	fres, err := kalman.Filter(rep, nil)
	require.NoError(t, err)
	res, err := smoother.Smooth(rep, fres, nil)
	require.NoError(t, err)

	for i := 0; i < n-1; i++ {
		var next, shock mat.VecDense
		next.MulVec(rep.Transition(i), res.Smoothed[i])
		shock.MulVec(rep.Selection(i), res.StateDisturbance[i])
		next.AddVec(&next, &shock)
		for j := 0; j < rep.StateDim(); j++ {
			assert.InDelta(t, res.Smoothed[i+1].AtVec(j), next.AtVec(j), 1e-8,
				"state transition identity at period %d dim %d", i, j)
		}
	}

	for i := 0; i < n; i++ {
		var fit mat.VecDense
		fit.MulVec(rep.Design(i), res.Smoothed[i])
		for _, j := range rep.ObservedAt(i) {
			assert.InDelta(t, rep.Observations().At(i, j)-fit.AtVec(j), res.ObsDisturbance[i].AtVec(j), 1e-8,
				"observation identity at period %d series %d", i, j)
		}
	}
}

// TestSmooth_AllMissingSeries verifies that with no data the smoothed path
// equals the unconditional prediction and disturbances vanish.
func TestSmooth_AllMissingSeries(t *testing.T) {
	rep := localLevel(t, 6, 0, 1, 2, 3, 4, 5)

	fres, err := kalman.Filter(rep, nil)
	require.NoError(t, err)
	res, err := smoother.Smooth(rep, fres, nil)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		assert.InDelta(t, fres.Predicted[i].AtVec(0), res.Smoothed[i].AtVec(0), 1e-12, "period %d", i)
		assert.Zero(t, res.StateDisturbance[i].AtVec(0), "no data, no disturbance signal")
		assert.Zero(t, res.ObsDisturbance[i].AtVec(0))
	}
}

// TestMethod_String covers the method labels.
func TestMethod_String(t *testing.T) {
	assert.Equal(t, "conventional", smoother.MethodConventional.String())
	assert.Equal(t, "classical", smoother.MethodClassical.String())
	assert.Equal(t, "alternative", smoother.MethodAlternative.String())
	assert.Equal(t, "univariate", smoother.MethodUnivariate.String())
}
