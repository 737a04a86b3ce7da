// Package smoother: Koopman's alternative reorganization of the backward
// recursion. Algebraically identical to the conventional form, but the
// period-t moments come from the *filtered* state and the *incoming* (r_t,
// N_t) pair:
//
//	α̂_t = a_{t|t} + P_{t|t}·T'_t·r_t
//	V_t  = P_{t|t} − P_{t|t}·T'_t·N_t·T_t·P_{t|t}
//
// which decouples the stored moments from the within-period r update and
// keeps the subtraction against the better-conditioned filtered covariance.

package smoother

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
	"github.com/katalvlaran/statespace/kalman"
)

// smoothAlternative fills the smoothed state moments from filtered moments,
// then advances (r, N) with the same observed/missing steps as the
// conventional method.
func smoothAlternative(rep *core.Representation, fres *kalman.Result, res *Result) (*obsAux, error) {
	n := rep.NumPeriods()
	m := rep.StateDim()

	aux := newObsAux(n)
	r := mat.NewVecDense(m, nil)
	nMat := mat.NewDense(m, m, nil)

	for t := n - 1; t >= 0; t-- {
		storeAlternativeMoments(rep, fres, res, t, r, nMat)

		if rep.AllMissing(t) {
			propagateMissing(rep.Transition(t), r, nMat)
		} else {
			sq, err := observedStep(rep, fres, t, r, nMat)
			if err != nil {
				return nil, err
			}
			aux.embed(rep, fres, t, sq)
		}

		// SmoothingError/Precision keep the conventional pairing
		// (r_{t-1}, N_{t-1}) regardless of reorganization.
		res.SmoothingError[t] = mat.VecDenseCopyOf(r)
		res.Precision[t] = symFromDense(nMat)
	}

	return aux, nil
}

// storeAlternativeMoments writes α̂_t and V_t from the filtered moments and
// the incoming (r_t, N_t). At t = n−1 the incoming pair is zero, so the
// smoothed state equals the filtered state exactly.
func storeAlternativeMoments(rep *core.Representation, fres *kalman.Result, res *Result, t int, r *mat.VecDense, nMat *mat.Dense) {
	tt := rep.Transition(t)
	pf := fres.FilteredCov[t]

	// α̂ = a_{t|t} + P_{t|t}·T'·r
	var tr, ptr mat.VecDense
	tr.MulVec(tt.T(), r)
	ptr.MulVec(pf, &tr)
	alpha := mat.NewVecDense(ptr.Len(), nil)
	alpha.AddVec(fres.Filtered[t], &ptr)

	// V = P_{t|t} − P_{t|t}·T'·N·T·P_{t|t}
	var tn, tnt mat.Dense
	tn.Mul(tt.T(), nMat)
	tnt.Mul(&tn, tt)
	var pn, pnp, v mat.Dense
	pn.Mul(pf, &tnt)
	pnp.Mul(&pn, pf)
	v.Sub(pf, &pnp)

	res.Smoothed[t] = alpha
	res.SmoothedCov[t] = symFromDense(&v)
}
