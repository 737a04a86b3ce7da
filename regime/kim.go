// Kim smoother: backward smoothing of regime probabilities and
// probability-weighted state moments, using the same collapsing policy
// as the filter.
//
// Probability recursion, for t = n−1..1:
//
//	P(S_t=i, S_{t+1}=j | Y_n) = P(S_{t+1}=j | Y_n)·P(S_t=i | Y_t)·p_ij
//	                            / P(S_{t+1}=j | Y_t)
//	P(S_t=i | Y_n) = Σ_j joint
//
// State recursion (Kim 1994): condition on the regime pair (i, j), smooth
// with the Anderson–Moore gain against the pair's predicted moments, then
// collapse the j dimension under the joint smoothed probabilities.

package regime

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
)

// KimSmooth runs the backward Kim recursion over a Hamilton filter result.
// opts == nil selects DefaultOptions; only the Collapse policy is consulted.
//
// Errors: ErrNilFilterResult, collapse sentinels, and wrapped
// core.ErrNonPositiveDefinite when a pair's predicted covariance cannot be
// inverted.
func KimSmooth(fres *FilterResult, opts *Options) (*SmoothResult, error) {
	if fres == nil || fres.reps == nil {
		return nil, ErrNilFilterResult
	}

	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	collapse := o.Collapse
	if collapse == nil {
		collapse = MomentMatchingCollapse
	}

	k := fres.Regimes
	n := len(fres.FilteredProbs)
	m := fres.reps[0].StateDim()

	res := &SmoothResult{
		SmoothedProbs:      make([][]float64, n),
		JointSmoothedProbs: make([][]float64, n),
		SmoothedStates:     make([][]*mat.VecDense, n),
		SmoothedCovs:       make([][]*mat.SymDense, n),
		CombinedStates:     make([]*mat.VecDense, n),
		CombinedCovs:       make([]*mat.SymDense, n),
	}

	// Terminal condition: smoothed == filtered at the final period.
	res.SmoothedProbs[n-1] = append([]float64(nil), fres.FilteredProbs[n-1]...)
	res.SmoothedStates[n-1] = make([]*mat.VecDense, k)
	res.SmoothedCovs[n-1] = make([]*mat.SymDense, k)
	for j := 0; j < k; j++ {
		res.SmoothedStates[n-1][j] = mat.VecDenseCopyOf(fres.FilteredStates[n-1][j])
		res.SmoothedCovs[n-1][j] = cloneSym(fres.FilteredCovs[n-1][j])
	}

	for t := n - 2; t >= 0; t-- {
		joint, sp := smoothProbs(fres, res.SmoothedProbs[t+1], t, k)
		res.JointSmoothedProbs[t] = joint
		res.SmoothedProbs[t] = sp

		states := make([]*mat.VecDense, k)
		covs := make([]*mat.SymDense, k)
		for i := 0; i < k; i++ {
			ms := make([]*mat.VecDense, k)
			cs := make([]*mat.SymDense, k)
			ws := make([]float64, k)
			for j := 0; j < k; j++ {
				am, ac, err := pairSmooth(fres, res, t, i, j, m)
				if err != nil {
					return nil, err
				}
				ms[j], cs[j] = am, ac
				ws[j] = joint[i*k+j]
			}
			cm, cc, err := collapse(ms, cs, ws)
			if err != nil {
				return nil, err
			}
			states[i], covs[i] = cm, cc
		}
		res.SmoothedStates[t] = states
		res.SmoothedCovs[t] = covs
	}

	// Overall moments: moment-matched mixture across regimes.
	for t := 0; t < n; t++ {
		cm, cc, err := collapse(res.SmoothedStates[t], res.SmoothedCovs[t], res.SmoothedProbs[t])
		if err != nil {
			return nil, err
		}
		res.CombinedStates[t], res.CombinedCovs[t] = cm, cc
	}

	return res, nil
}

// smoothProbs computes the joint and marginal smoothed regime probabilities
// at period t from the period-t+1 smoothed marginals.
func smoothProbs(fres *FilterResult, spNext []float64, t, k int) (joint, sp []float64) {
	joint = make([]float64, k*k)
	sp = make([]float64, k)

	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			pred := fres.PredictedProbs[t+1][j]
			if pred <= 0 {
				continue
			}
			w := spNext[j] * fres.FilteredProbs[t][i] * fres.Transition.At(i, j) / pred
			joint[i*k+j] = w
			sp[i] += w
		}
	}
	normalize(joint)
	normalize(sp)

	return joint, sp
}

// pairSmooth computes the (S_t=i, S_{t+1}=j)-conditional smoothed moments
// with the Anderson–Moore gain against the pair's predicted moments.
func pairSmooth(fres *FilterResult, res *SmoothResult, t, i, j, m int) (*mat.VecDense, *mat.SymDense, error) {
	aF := fres.FilteredStates[t][i]
	pF := fres.FilteredCovs[t][i]

	aPred, pPred := predictMoments(fres.reps[j], t, aF, pF)

	var chol mat.Cholesky
	if ok := chol.Factorize(pPred); !ok {
		return nil, nil, fmt.Errorf("regime: predicted state covariance at period %d (pair %d->%d): %w",
			t+1, i, j, core.ErrNonPositiveDefinite)
	}
	pinv := mat.NewSymDense(m, nil)
	if err := chol.InverseTo(pinv); err != nil {
		return nil, nil, fmt.Errorf("regime: predicted state covariance at period %d (pair %d->%d): %w",
			t+1, i, j, core.ErrNonPositiveDefinite)
	}

	// J = P_{t|t}·T'·P⁻¹
	var pt, gain mat.Dense
	pt.Mul(pF, fres.reps[j].Transition(t).T())
	gain.Mul(&pt, pinv)

	// α = a_{t|t} + J·(α̂_{t+1}^j − a_pred)
	var diff, corr mat.VecDense
	diff.SubVec(res.SmoothedStates[t+1][j], aPred)
	corr.MulVec(&gain, &diff)
	alpha := mat.NewVecDense(m, nil)
	alpha.AddVec(aF, &corr)

	// V = P_{t|t} + J·(V_{t+1}^j − P_pred)·J'
	var vdiff, jv, jvj, v mat.Dense
	vdiff.Sub(res.SmoothedCovs[t+1][j], pPred)
	jv.Mul(&gain, &vdiff)
	jvj.Mul(&jv, gain.T())
	v.Add(pF, &jvj)

	// Guard: collapse arithmetic downstream assumes finite moments.
	for r := 0; r < m; r++ {
		if math.IsNaN(alpha.AtVec(r)) || math.IsInf(alpha.AtVec(r), 0) {
			return nil, nil, fmt.Errorf("regime: smoothed state at period %d (pair %d->%d): %w",
				t, i, j, core.ErrNaNInf)
		}
	}

	return alpha, symFromDense(&v), nil
}
