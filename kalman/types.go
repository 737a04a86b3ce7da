// Package kalman: method selection, options and the filter Result.

package kalman

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Method selects the numerical strategy used for the measurement update.
// All methods implement the same mathematical contract; they differ in the
// linear-algebra path and therefore in speed and conditioning behavior.
type Method int

const (
	// MethodConventional inverts F_t explicitly via Cholesky factorization.
	MethodConventional Method = iota

	// MethodInversion avoids the explicit inverse, using Cholesky solves of
	// the linear systems F_t·x = v_t and F_t·X = Z_t·P_t.
	MethodInversion

	// MethodUnivariate decomposes each period's observation vector into
	// sequential scalar updates (after diagonalizing H_t if needed), with no
	// matrix inversion at all.
	MethodUnivariate
)

// String returns the method name for diagnostics.
func (m Method) String() string {
	switch m {
	case MethodConventional:
		return "conventional"
	case MethodInversion:
		return "inversion"
	case MethodUnivariate:
		return "univariate"
	default:
		return "unknown"
	}
}

// Sentinel errors for the filter entry points.
var (
	// ErrBadMethod indicates an unrecognized Method value.
	ErrBadMethod = errors.New("kalman: unknown filter method")

	// ErrBadOptions indicates nonsensical option values (negative tolerance).
	ErrBadOptions = errors.New("kalman: invalid options")
)

// Options configures one filter pass.
//
// Fields:
//   - Method        — numerical update strategy; default MethodConventional.
//   - UnivariateTol — scalar forecast-error variances at or below this
//     threshold are treated as exactly zero and their update is skipped
//     (univariate method only). Must be ≥ 0.
type Options struct {
	Method        Method
	UnivariateTol float64
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Method:        MethodConventional,
		UnivariateTol: 1e-12,
	}
}

// Result is the complete output of one filter pass. Slices are indexed by
// period t = 0..n-1. Innovation-related entries are reduced to the observed
// entries of y_t and are nil for fully missing periods. The Result is owned
// by the caller and consumed read-only by the smoother.
type Result struct {
	// Predicted holds a_t = E[α_t | y_{1..t-1}]; PredictedCov holds its
	// covariance P_t. Predicted[0] is the initial state mean a1.
	Predicted    []*mat.VecDense
	PredictedCov []*mat.SymDense

	// Filtered holds a_{t|t} = E[α_t | y_{1..t}]; FilteredCov holds P_{t|t}.
	Filtered    []*mat.VecDense
	FilteredCov []*mat.SymDense

	// Innovation holds v_t, InnovationCov holds F_t, and Gain holds the
	// prediction-form Kalman gain K_t = T_t·P_t·Z'_t·F_t⁻¹, so that
	// L_t = T_t − K_t·Z_t feeds the smoother recursion directly.
	// All nil when method is MethodUnivariate (see Univariate) or when the
	// period is fully missing.
	Innovation    []*mat.VecDense
	InnovationCov []*mat.SymDense
	Gain          []*mat.Dense

	// LoglikContrib holds the per-period log-likelihood contributions;
	// LogLikelihood is their sum, clamped to −Inf instead of NaN.
	LoglikContrib []float64
	LogLikelihood float64

	// Method records which strategy produced this Result.
	Method Method

	// Univariate carries the scalar update trail, non-nil exactly when
	// Method == MethodUnivariate.
	Univariate *UnivariateStats
}

// UnivariateStats records the sequential scalar-update quantities needed by
// the univariate smoother. Outer index is the period; inner index runs over
// that period's observed entries, in the (possibly H-diagonalized) update
// order.
type UnivariateStats struct {
	// V and F are the scalar innovations and their variances. An entry of F
	// at or below the configured tolerance means that scalar update was
	// skipped.
	V [][]float64
	F [][]float64

	// K holds K_{t,i} = P_{t,i}·z_{t,i}, the m-vector gain of each scalar step.
	K [][]*mat.VecDense

	// Design holds the per-period design matrix actually used for the scalar
	// updates: reduced to observed rows and transformed by the Cholesky
	// factor of H_t when H_t was not diagonal.
	Design []*mat.Dense
}
