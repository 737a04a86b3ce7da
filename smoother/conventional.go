// Package smoother: conventional (Durbin–Koopman) backward recursion, plus
// the per-period step shared with the alternative reorganization.

package smoother

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
	"github.com/katalvlaran/statespace/kalman"
)

// stepQuantities holds one period's recomputed observation-side terms.
type stepQuantities struct {
	z    *mat.Dense    // reduced design, pt×m
	fv   *mat.VecDense // F⁻¹·v, pt
	finv *mat.SymDense // F⁻¹, pt×pt
}

// observedStep recomputes F_t⁻¹ from the stored innovation covariance and
// advances (r, N) through an observed period:
//
//	L = T_t − K_t·Z_t
//	r ← Z'_t·F_t⁻¹·v_t + L'·r
//	N ← Z'_t·F_t⁻¹·Z_t + L'·N·L
//
// The factorization succeeded during filtering, so a failure here means the
// stored covariance was corrupted; it surfaces as the shared sentinel.
func observedStep(rep *core.Representation, fres *kalman.Result, t int, r *mat.VecDense, n *mat.Dense) (*stepQuantities, error) {
	_, z, _, _ := rep.ObservedSystem(t)
	f := fres.InnovationCov[t]
	v := fres.Innovation[t]
	k := fres.Gain[t]
	pt := v.Len()

	var chol mat.Cholesky
	if ok := chol.Factorize(f); !ok {
		return nil, nonPDErr("forecast error covariance", t)
	}
	finv := mat.NewSymDense(pt, nil)
	if err := chol.InverseTo(finv); err != nil {
		return nil, nonPDErr("forecast error covariance", t)
	}

	fv := mat.NewVecDense(pt, nil)
	fv.MulVec(finv, v)

	// L = T − K·Z
	var kz, l mat.Dense
	kz.Mul(k, z)
	l.Sub(rep.Transition(t), &kz)

	// r ← Z'·fv + L'·r
	var zfv, lr mat.VecDense
	zfv.MulVec(z.T(), fv)
	lr.MulVec(l.T(), r)
	r.AddVec(&zfv, &lr)

	// N ← Z'·F⁻¹·Z + L'·N·L
	var fz, zfz mat.Dense
	fz.Mul(finv, z)
	zfz.Mul(z.T(), &fz)
	var ln, lnl mat.Dense
	ln.Mul(l.T(), n)
	lnl.Mul(&ln, &l)
	n.Add(&zfz, &lnl)

	return &stepQuantities{z: z, fv: fv, finv: finv}, nil
}

// smoothConventional fills the smoothed state moments directly from the
// predicted moments and the r/N pair.
func smoothConventional(rep *core.Representation, fres *kalman.Result, res *Result) (*obsAux, error) {
	n := rep.NumPeriods()
	m := rep.StateDim()

	aux := newObsAux(n)
	r := mat.NewVecDense(m, nil)
	nMat := mat.NewDense(m, m, nil)

	for t := n - 1; t >= 0; t-- {
		if rep.AllMissing(t) {
			propagateMissing(rep.Transition(t), r, nMat)
		} else {
			sq, err := observedStep(rep, fres, t, r, nMat)
			if err != nil {
				return nil, err
			}
			aux.embed(rep, fres, t, sq)
		}
		storeStateMoments(fres, res, t, r, nMat)
	}

	return aux, nil
}

// newObsAux allocates an empty aux trail (nil per-period entries mean "no
// observations that period").
func newObsAux(n int) *obsAux {
	return &obsAux{
		fv:   make([]*mat.VecDense, n),
		finv: make([]*mat.SymDense, n),
		gain: make([]*mat.Dense, n),
	}
}

// embed zero-expands the reduced period-t quantities to full observation
// dimension, so the disturbance formulas apply verbatim under missing data.
func (aux *obsAux) embed(rep *core.Representation, fres *kalman.Result, t int, sq *stepQuantities) {
	obs := rep.ObservedAt(t)
	p := rep.ObsDim()
	m := rep.StateDim()

	fv := mat.NewVecDense(p, nil)
	finv := mat.NewSymDense(p, nil)
	gain := mat.NewDense(m, p, nil)
	k := fres.Gain[t]

	for i, oi := range obs {
		fv.SetVec(oi, sq.fv.AtVec(i))
		for j := i; j < len(obs); j++ {
			finv.SetSym(oi, obs[j], sq.finv.At(i, j))
		}
		for s := 0; s < m; s++ {
			gain.Set(s, oi, k.At(s, i))
		}
	}

	aux.fv[t] = fv
	aux.finv[t] = finv
	aux.gain[t] = gain
}
