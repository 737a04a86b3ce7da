// Package smoother: classical Anderson–Moore fixed-interval smoother.
//
// Works entirely on filtered/predicted moments:
//
//	J_t  = P_{t|t}·T'_t·P_{t+1}⁻¹
//	α̂_t = a_{t|t} + J_t·(α̂_{t+1} − a_{t+1})
//	V_t  = P_{t|t} + J_t·(V_{t+1} − P_{t+1})·J'_t
//
// The scaled error pair is recovered from the inverse identities
// r_{t-1} = P_t⁻¹·(α̂_t − a_t), N_{t-1} = P_t⁻¹·(P_t − V_t)·P_t⁻¹, reusing
// the predicted-covariance factorization the gain already needs.

package smoother

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
	"github.com/katalvlaran/statespace/kalman"
)

// smoothClassical fills smoothed moments backwards from the final filtered
// state. It needs every predicted covariance to be invertible; a
// factorization failure surfaces as the shared non-PD sentinel.
func smoothClassical(rep *core.Representation, fres *kalman.Result, res *Result) (*obsAux, error) {
	n := rep.NumPeriods()
	m := rep.StateDim()

	// pinv[t] caches P_t⁻¹, built on demand.
	pinv := make([]*mat.SymDense, n)
	invertPredicted := func(t int) (*mat.SymDense, error) {
		if pinv[t] != nil {
			return pinv[t], nil
		}
		var chol mat.Cholesky
		if ok := chol.Factorize(fres.PredictedCov[t]); !ok {
			return nil, nonPDErr("predicted state covariance", t)
		}
		inv := mat.NewSymDense(m, nil)
		if err := chol.InverseTo(inv); err != nil {
			return nil, nonPDErr("predicted state covariance", t)
		}
		pinv[t] = inv

		return inv, nil
	}

	for t := n - 1; t >= 0; t-- {
		if t == n-1 {
			res.Smoothed[t] = mat.VecDenseCopyOf(fres.Filtered[t])
			res.SmoothedCov[t] = cloneSym(fres.FilteredCov[t])
		} else {
			inv, err := invertPredicted(t + 1)
			if err != nil {
				return nil, err
			}

			// J = P_{t|t}·T'·P_{t+1}⁻¹
			var pt, j mat.Dense
			pt.Mul(fres.FilteredCov[t], rep.Transition(t).T())
			j.Mul(&pt, inv)

			// α̂_t = a_{t|t} + J·(α̂_{t+1} − a_{t+1})
			var diff, corr mat.VecDense
			diff.SubVec(res.Smoothed[t+1], fres.Predicted[t+1])
			corr.MulVec(&j, &diff)
			alpha := mat.NewVecDense(m, nil)
			alpha.AddVec(fres.Filtered[t], &corr)

			// V_t = P_{t|t} + J·(V_{t+1} − P_{t+1})·J'
			var vdiff, jv, jvj, v mat.Dense
			vdiff.Sub(res.SmoothedCov[t+1], fres.PredictedCov[t+1])
			jv.Mul(&j, &vdiff)
			jvj.Mul(&jv, j.T())
			v.Add(fres.FilteredCov[t], &jvj)

			res.Smoothed[t] = alpha
			res.SmoothedCov[t] = symFromDense(&v)
		}

		// Scaled error pair via the inverse identities.
		inv, err := invertPredicted(t)
		if err != nil {
			return nil, err
		}
		r := mat.NewVecDense(m, nil)
		var diff mat.VecDense
		diff.SubVec(res.Smoothed[t], fres.Predicted[t])
		r.MulVec(inv, &diff)

		var gap, ig, igi mat.Dense
		gap.Sub(fres.PredictedCov[t], res.SmoothedCov[t])
		ig.Mul(inv, &gap)
		igi.Mul(&ig, inv)

		res.SmoothingError[t] = r
		res.Precision[t] = symFromDense(&igi)
	}

	// No observation-side aux: ε̂ is derived from smoothed states instead.
	return nil, nil
}

// cloneSym copies a SymDense.
func cloneSym(s *mat.SymDense) *mat.SymDense {
	out := mat.NewSymDense(s.SymmetricDim(), nil)
	out.CopySym(s)

	return out
}
