// Package regime: options, sentinel errors and result types.

package regime

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
)

// Sentinel errors for regime filtering and smoothing.
var (
	// ErrBadRegimeCount indicates fewer than two per-regime representations.
	ErrBadRegimeCount = errors.New("regime: need at least two regimes")

	// ErrBadTransition indicates a transition matrix that is not k×k
	// row-stochastic (non-negative rows summing to 1).
	ErrBadTransition = errors.New("regime: invalid transition matrix")

	// ErrBadLagOrder indicates a non-positive collapse lag order.
	ErrBadLagOrder = errors.New("regime: lag order must be ≥ 1")

	// ErrMismatchedRepresentations indicates per-regime representations that
	// disagree in shape or missing-data pattern.
	ErrMismatchedRepresentations = errors.New("regime: representations disagree in shape or missing pattern")

	// ErrBadInitialProbs indicates initial probabilities that are not a
	// length-k distribution.
	ErrBadInitialProbs = errors.New("regime: invalid initial probabilities")

	// ErrBadCollapseInput indicates a Collapser invoked with empty or
	// inconsistent moments/weights.
	ErrBadCollapseInput = errors.New("regime: invalid collapse input")

	// ErrNilFilterResult indicates a nil *FilterResult passed to KimSmooth.
	ErrNilFilterResult = errors.New("regime: filter result is nil")
)

// Collapser reduces a set of path-conditional moments to a single
// moment-matched pair. Weights are a probability vector over the paths
// (renormalized internally against floating drift).
//
// Exposed as a replaceable component so alternative approximations can be
// tested against the default; see MomentMatchingCollapse.
type Collapser func(means []*mat.VecDense, covs []*mat.SymDense, weights []float64) (*mat.VecDense, *mat.SymDense, error)

// Options configures the Hamilton filter.
//
// Fields:
//   - LagOrder     — r ≥ 1: collapsed paths span the r most recent regimes,
//     bounding the tracked hypotheses to k^r. Default 1 (Kim's algorithm).
//   - InitialProbs — distribution of the pre-sample regime; nil selects the
//     ergodic (stationary) distribution of the chain.
//   - Collapse     — path-collapsing policy; nil selects
//     MomentMatchingCollapse.
type Options struct {
	LagOrder     int
	InitialProbs []float64
	Collapse     Collapser
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{LagOrder: 1}
}

// FilterResult is the output of one Hamilton filter pass, indexed by period
// t = 0..n-1 and regime j = 0..k-1. Every probability vector sums to 1.
type FilterResult struct {
	// Regimes is k; LagOrder is the collapse order r.
	Regimes  int
	LagOrder int

	// Transition is the validated row-stochastic matrix (copy).
	Transition *mat.Dense

	// PredictedProbs[t][j] is P(S_t = j | y_{1..t-1}); FilteredProbs[t][j]
	// is P(S_t = j | y_{1..t}).
	PredictedProbs [][]float64
	FilteredProbs  [][]float64

	// JointProbs[t] is the filtered distribution over collapsed paths
	// (S_t, …, S_{t-r+1}), base-k encoded with S_t as the lowest digit.
	JointProbs [][]float64

	// FilteredStates[t][j] and FilteredCovs[t][j] are the per-regime
	// collapsed moments E[α_t | y_{1..t}, S_t=j] and its covariance.
	FilteredStates [][]*mat.VecDense
	FilteredCovs   [][]*mat.SymDense

	// LoglikContrib[t] is log p(y_t | y_{1..t-1}); LogLikelihood their sum,
	// clamped to −Inf instead of NaN.
	LoglikContrib []float64
	LogLikelihood float64

	// reps retains the per-regime representations for the Kim smoother.
	reps []*core.Representation
}

// SmoothResult is the output of the Kim smoother.
type SmoothResult struct {
	// SmoothedProbs[t][i] is P(S_t = i | y_{1..n}).
	SmoothedProbs [][]float64

	// JointSmoothedProbs[t][i*k+j] is P(S_t = i, S_{t+1} = j | y_{1..n}),
	// defined for t = 0..n-2 (the final entry is nil).
	JointSmoothedProbs [][]float64

	// SmoothedStates[t][i] and SmoothedCovs[t][i] are the collapsed smoothed
	// moments conditional on S_t = i.
	SmoothedStates [][]*mat.VecDense
	SmoothedCovs   [][]*mat.SymDense

	// CombinedStates[t] and CombinedCovs[t] are the regime-probability-
	// weighted (moment-matched) overall smoothed moments.
	CombinedStates []*mat.VecDense
	CombinedCovs   []*mat.SymDense
}
