// Package smoother: univariate backward recursion mirroring the univariate
// filter's sequential scalar updates. Within period t the observed scalars
// are unwound in reverse order i = p_t..1:
//
//	L_{t,i}   = I − K_{t,i}·z'_{t,i}/f_{t,i}
//	r_{t,i-1} = z_{t,i}·v_{t,i}/f_{t,i} + L'_{t,i}·r_{t,i}
//	N_{t,i-1} = z_{t,i}·z'_{t,i}/f_{t,i} + L'_{t,i}·N_{t,i}·L_{t,i}
//
// with the period boundary r_{t-1,p} = T'_{t-1}·r_{t,0} (and likewise for
// N). Scalars whose f was treated as zero during filtering are skipped.

package smoother

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
	"github.com/katalvlaran/statespace/kalman"
)

// smoothUnivariate fills the smoothed state moments from the scalar update
// trail recorded by the univariate filter.
func smoothUnivariate(rep *core.Representation, fres *kalman.Result, res *Result) (*obsAux, error) {
	n := rep.NumPeriods()
	m := rep.StateDim()
	uni := fres.Univariate

	r := mat.NewVecDense(m, nil)
	nMat := mat.NewDense(m, m, nil)

	zi := mat.NewVecDense(m, nil)
	for t := n - 1; t >= 0; t-- {
		design := uni.Design[t]
		for i := len(uni.F[t]) - 1; i >= 0; i-- {
			f := uni.F[t][i]
			if f <= 0 {
				// Degenerate scalar carried no information forward; it
				// carries none backward either.
				continue
			}
			v := uni.V[t][i]
			k := uni.K[t][i]
			for j := 0; j < m; j++ {
				zi.SetVec(j, design.At(i, j))
			}

			// L = I − K·z'/f applied as two rank-one corrections.
			// L'·r = r − z·(K'·r)/f
			kr := mat.Dot(k, r) / f
			var zkr mat.VecDense
			zkr.ScaleVec(kr, zi)
			var lr mat.VecDense
			lr.SubVec(r, &zkr)

			// r ← z·v/f + L'·r
			var zv mat.VecDense
			zv.ScaleVec(v/f, zi)
			r.AddVec(&zv, &lr)

			// N ← z·z'/f + L'·N·L
			var l mat.Dense
			var kz mat.Dense
			kz.Outer(1/f, k, zi)
			l.Sub(eye(m), &kz)
			var ln, lnl mat.Dense
			ln.Mul(l.T(), nMat)
			lnl.Mul(&ln, &l)
			var zz mat.Dense
			zz.Outer(1/f, zi, zi)
			nMat.Add(&zz, &lnl)
		}

		storeStateMoments(fres, res, t, r, nMat)

		if t > 0 {
			// Period boundary back to t-1.
			propagateMissing(rep.Transition(t-1), r, nMat)
		}
	}

	// No multivariate observation aux; ε̂ is derived from smoothed states.
	return nil, nil
}

// eye returns the m×m identity.
func eye(m int) *mat.Dense {
	d := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		d.Set(i, i, 1)
	}

	return d
}
