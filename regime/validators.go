// Package regime: input validation for the Hamilton filter.
//
// Validation order (enforced in tests): regime count -> per-regime shape
// and missing-pattern agreement -> transition matrix -> options.

package regime

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
)

// validateInputs checks the per-regime representations, the transition
// matrix, and the options, returning the regime count k and period count n.
func validateInputs(reps []*core.Representation, transition *mat.Dense, o *Options) (k, n int, err error) {
	k = len(reps)
	if k < 2 {
		return 0, 0, fmt.Errorf("%d regimes: %w", k, ErrBadRegimeCount)
	}
	for j, rep := range reps {
		if rep == nil {
			return 0, 0, fmt.Errorf("regime %d: %w", j, core.ErrNilRepresentation)
		}
	}

	n = reps[0].NumPeriods()
	p := reps[0].ObsDim()
	m := reps[0].StateDim()
	for j := 1; j < k; j++ {
		if reps[j].NumPeriods() != n || reps[j].ObsDim() != p || reps[j].StateDim() != m {
			return 0, 0, fmt.Errorf("regime %d is (n=%d,p=%d,m=%d), regime 0 is (n=%d,p=%d,m=%d): %w",
				j, reps[j].NumPeriods(), reps[j].ObsDim(), reps[j].StateDim(), n, p, m, ErrMismatchedRepresentations)
		}
		for t := 0; t < n; t++ {
			if !sameIndices(reps[j].ObservedAt(t), reps[0].ObservedAt(t)) {
				return 0, 0, fmt.Errorf("regime %d missing pattern differs at period %d: %w", j, t, ErrMismatchedRepresentations)
			}
		}
	}

	if transition == nil {
		return 0, 0, fmt.Errorf("transition matrix is nil: %w", ErrBadTransition)
	}
	tr, tc := transition.Dims()
	if tr != k || tc != k {
		return 0, 0, fmt.Errorf("transition is %d×%d, want %d×%d: %w", tr, tc, k, k, ErrBadTransition)
	}
	for i := 0; i < k; i++ {
		rowSum := 0.0
		for j := 0; j < k; j++ {
			v := transition.At(i, j)
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, 0, fmt.Errorf("transition[%d,%d]=%v: %w", i, j, v, ErrBadTransition)
			}
			rowSum += v
		}
		if math.Abs(rowSum-1) > probTol {
			return 0, 0, fmt.Errorf("transition row %d sums to %v: %w", i, rowSum, ErrBadTransition)
		}
	}

	if o.LagOrder < 1 {
		return 0, 0, fmt.Errorf("lag order %d: %w", o.LagOrder, ErrBadLagOrder)
	}
	if o.InitialProbs != nil {
		if len(o.InitialProbs) != k {
			return 0, 0, fmt.Errorf("%d initial probabilities for %d regimes: %w", len(o.InitialProbs), k, ErrBadInitialProbs)
		}
		sum := 0.0
		for i, v := range o.InitialProbs {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, 0, fmt.Errorf("initial probability %d is %v: %w", i, v, ErrBadInitialProbs)
			}
			sum += v
		}
		if math.Abs(sum-1) > probTol {
			return 0, 0, fmt.Errorf("initial probabilities sum to %v: %w", sum, ErrBadInitialProbs)
		}
	}

	return k, n, nil
}

// sameIndices reports equality of two sorted index slices.
func sameIndices(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
