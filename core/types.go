// Package core: the Representation type and its construction inputs.
// This file declares System, Representation and the functional Option set.
// Constructors and validation live in representation.go; per-period access
// in accessors.go.

package core

import "gonum.org/v1/gonum/mat"

// System bundles the state-space system matrices. Each field is a slice of
// length 1 (time-invariant: the single element is reused for every period)
// or length n (time-varying: one element per period). The two intercept
// fields may be nil, which is read as identically zero.
//
// Shapes, with p = observed series, m = state dimension, r = shock dimension:
//
//	Design         Z_t  p×m
//	ObsIntercept   d_t  p
//	ObsCov         H_t  p×p
//	Transition     T_t  m×m
//	StateIntercept c_t  m
//	Selection      R_t  m×r
//	StateCov       Q_t  r×r
type System struct {
	Design         []*mat.Dense
	ObsIntercept   []*mat.VecDense
	ObsCov         []*mat.SymDense
	Transition     []*mat.Dense
	StateIntercept []*mat.VecDense
	Selection      []*mat.Dense
	StateCov       []*mat.SymDense
}

// Representation is the immutable state-space model consumed by the filter,
// smoother and simulation kernels. Construct with New or NewTimeInvariant;
// all inputs are deep-copied, so the caller may reuse its buffers freely.
//
// Zero value is not usable.
type Representation struct {
	n int // number of periods
	p int // observed series per period
	m int // state dimension
	r int // state-shock dimension

	y   *mat.Dense // n×p observations; NaN marks missing
	sys System     // deep-copied system matrices

	a1 *mat.VecDense // initial state mean, m
	p1 *mat.SymDense // initial state covariance, m×m

	// observed[t] holds the sorted indices of non-missing entries of y_t.
	// Precomputed once at construction; len(observed[t])==0 means the whole
	// period is missing and the measurement update is skipped.
	observed [][]int
}

// Option configures Representation construction.
type Option func(*repConfig)

// repConfig carries construction-time settings gathered from Options.
type repConfig struct {
	mask [][]bool // explicit missing mask; mask[t][i]==true ⇒ y[t,i] observed
}

// WithMissingMask supplies an explicit observation mask instead of the NaN
// convention: mask[t][i] == true means y[t,i] is observed. The mask must have
// exactly n rows of p entries each, otherwise construction fails with
// ErrMissingData. Entries that are NaN in y must not be marked observed.
func WithMissingMask(mask [][]bool) Option {
	return func(c *repConfig) { c.mask = mask }
}
