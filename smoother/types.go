// Package smoother: method selection, options and the smoother Result.

package smoother

import (
	"errors"

	"gonum.org/v1/gonum/mat"
)

// Method selects the algebraic organization of the backward recursion.
type Method int

const (
	// MethodConventional runs the Durbin–Koopman r/N recursion directly.
	MethodConventional Method = iota

	// MethodClassical runs the Anderson–Moore fixed-interval smoother on
	// filtered moments, inverting predicted covariances.
	MethodClassical

	// MethodAlternative runs Koopman's filtered-moment reorganization.
	MethodAlternative

	// MethodUnivariate runs scalar backward steps; the filter Result must
	// have been produced by kalman.MethodUnivariate.
	MethodUnivariate
)

// String returns the method name for diagnostics.
func (m Method) String() string {
	switch m {
	case MethodConventional:
		return "conventional"
	case MethodClassical:
		return "classical"
	case MethodAlternative:
		return "alternative"
	case MethodUnivariate:
		return "univariate"
	default:
		return "unknown"
	}
}

// Sentinel errors for the smoother entry point.
var (
	// ErrBadMethod indicates an unrecognized Method value.
	ErrBadMethod = errors.New("smoother: unknown smoother method")

	// ErrNilFilterResult indicates a nil *kalman.Result.
	ErrNilFilterResult = errors.New("smoother: filter result is nil")

	// ErrIncompatibleFilter indicates the filter Result does not carry the
	// quantities this smoother method consumes (the univariate smoother
	// needs a univariate filter pass, the multivariate ones need the
	// multivariate innovation trail).
	ErrIncompatibleFilter = errors.New("smoother: filter result incompatible with smoother method")

	// ErrShapeMismatch indicates the filter Result does not match the
	// Representation it is being smoothed against.
	ErrShapeMismatch = errors.New("smoother: filter result does not match representation")
)

// Options configures one smoother pass.
type Options struct {
	Method Method
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{Method: MethodConventional}
}

// Result is the complete output of one smoother pass, indexed by period
// t = 0..n-1.
//
// Index pairing of the scaled smoothing error: SmoothingError[t] holds
// r_{t-1} and Precision[t] holds N_{t-1} — the quantities that satisfy
// α̂_t = a_t + P_t·r_{t-1} and V_t = P_t − P_t·N_{t-1}·P_t against the
// filter's predicted moments.
type Result struct {
	// Smoothed holds α̂_t = E[α_t | y_{1..n}]; SmoothedCov holds V_t.
	Smoothed    []*mat.VecDense
	SmoothedCov []*mat.SymDense

	// SmoothingError holds r_{t-1}; Precision holds N_{t-1} (see above).
	SmoothingError []*mat.VecDense
	Precision      []*mat.SymDense

	// StateDisturbance holds η̂_t = E[η_t | y_{1..n}] (length r) with its
	// covariance; ObsDisturbance holds ε̂_t (length p, zero at missing
	// entries) with its covariance.
	StateDisturbance    []*mat.VecDense
	StateDisturbanceCov []*mat.SymDense
	ObsDisturbance      []*mat.VecDense
	ObsDisturbanceCov   []*mat.SymDense

	// Method records which strategy produced this Result.
	Method Method
}
