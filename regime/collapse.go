// Package regime: the moment-matching collapse policy and base-k path
// index arithmetic.

package regime

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MomentMatchingCollapse is the default Collapser (Kim 1994): the collapsed
// distribution keeps the exact mixture mean and covariance,
//
//	m = Σ_h w_h·m_h
//	C = Σ_h w_h·(C_h + (m_h − m)(m_h − m)')
//
// Weights are renormalized internally; an all-zero weight vector (a path
// set with vanishing posterior mass) falls back to equal weights, which
// keeps the recursion defined and is harmless since the mass is zero.
func MomentMatchingCollapse(means []*mat.VecDense, covs []*mat.SymDense, weights []float64) (*mat.VecDense, *mat.SymDense, error) {
	n := len(means)
	if n == 0 || len(covs) != n || len(weights) != n {
		return nil, nil, fmt.Errorf("%d means, %d covs, %d weights: %w", len(means), len(covs), len(weights), ErrBadCollapseInput)
	}
	dim := means[0].Len()

	w := make([]float64, n)
	copy(w, weights)
	for i, x := range w {
		if x < 0 || math.IsNaN(x) {
			return nil, nil, fmt.Errorf("weight[%d]=%v: %w", i, x, ErrBadCollapseInput)
		}
	}
	if total := floats.Sum(w); total > 0 {
		floats.Scale(1/total, w)
	} else {
		for i := range w {
			w[i] = 1 / float64(n)
		}
	}

	mean := mat.NewVecDense(dim, nil)
	var scaled mat.VecDense
	for h := 0; h < n; h++ {
		if means[h].Len() != dim || covs[h].SymmetricDim() != dim {
			return nil, nil, fmt.Errorf("moment %d has mismatched dim: %w", h, ErrBadCollapseInput)
		}
		scaled.ScaleVec(w[h], means[h])
		mean.AddVec(mean, &scaled)
	}

	cov := mat.NewSymDense(dim, nil)
	var dev mat.VecDense
	for h := 0; h < n; h++ {
		dev.SubVec(means[h], mean)
		for i := 0; i < dim; i++ {
			for j := i; j < dim; j++ {
				cov.SetSym(i, j, cov.At(i, j)+w[h]*(covs[h].At(i, j)+dev.AtVec(i)*dev.AtVec(j)))
			}
		}
	}

	return mean, cov, nil
}

// pathIndex encodes a regime path (digits[0] = most recent regime) in base
// k: idx = Σ_l digits[l]·k^l.
func pathIndex(digits []int, k int) int {
	idx := 0
	for l := len(digits) - 1; l >= 0; l-- {
		idx = idx*k + digits[l]
	}

	return idx
}

// pathDigit extracts digit l (0 = most recent regime) of a base-k path index.
func pathDigit(idx, k, l int) int {
	for ; l > 0; l-- {
		idx /= k
	}

	return idx % k
}

// intPow computes k^r for small non-negative r.
func intPow(k, r int) int {
	out := 1
	for ; r > 0; r-- {
		out *= k
	}

	return out
}
