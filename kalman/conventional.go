// Package kalman: conventional measurement update.
//
// The textbook path: factorize F_t by Cholesky, form F_t⁻¹ explicitly, and
// apply it to both the state update and the likelihood. Cheapest to read,
// adequate for small, well-conditioned observation vectors.

package kalman

import (
	"gonum.org/v1/gonum/mat"
)

// updateConventional performs the period-t measurement update with an
// explicit inverse of the forecast-error covariance.
//
//	v = y* − Z*·a − d*
//	F = Z*·P·Z*' + H*          (reduced to observed entries)
//	a_{t|t} = a + P·Z*'·F⁻¹·v
//	P_{t|t} = P − P·Z*'·F⁻¹·Z*·P
//	K_t     = T_t·P·Z*'·F⁻¹
//	ℓ_t     = −½·(p_t·log 2π + log|F| + v'·F⁻¹·v)
func updateConventional(st *state, t int) error {
	y, z, d, h := st.rep.ObservedSystem(t)
	pt := y.Len()

	// v = y − Z·a − d
	v := mat.NewVecDense(pt, nil)
	v.MulVec(z, st.a)
	v.AddVec(v, d)
	v.SubVec(y, v)

	// PZt = P·Z' (m×pt), F = Z·PZt + H
	var pzt mat.Dense
	pzt.Mul(st.p, z.T())
	var zpz mat.Dense
	zpz.Mul(z, &pzt)
	f := mat.NewSymDense(pt, nil)
	for i := 0; i < pt; i++ {
		for j := i; j < pt; j++ {
			f.SetSym(i, j, 0.5*(zpz.At(i, j)+zpz.At(j, i))+h.At(i, j))
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(f); !ok {
		return nonPDErr(t)
	}

	finv := mat.NewSymDense(pt, nil)
	if err := chol.InverseTo(finv); err != nil {
		return nonPDErr(t)
	}

	// Gain pieces: PZtFinv = P·Z'·F⁻¹ (m×pt)
	var pztFinv mat.Dense
	pztFinv.Mul(&pzt, finv)

	// a_{t|t} = a + PZtFinv·v
	var upd mat.VecDense
	upd.MulVec(&pztFinv, v)
	st.aFilt.AddVec(st.a, &upd)

	// P_{t|t} = P − PZtFinv·(PZt)'
	var corr mat.Dense
	corr.Mul(&pztFinv, pzt.T())
	st.pFilt.Sub(st.p, &corr)
	symmetrizeInPlace(st.pFilt)

	// K_t = T_t·P·Z'·F⁻¹
	gain := mat.NewDense(st.rep.StateDim(), pt, nil)
	gain.Mul(st.rep.Transition(t), &pztFinv)

	// ℓ_t: quadratic form via the explicit inverse.
	var fv mat.VecDense
	fv.MulVec(finv, v)
	quad := mat.Dot(v, &fv)
	st.res.LoglikContrib[t] = -0.5 * (float64(pt)*ln2pi + chol.LogDet() + quad)

	st.res.Innovation[t] = v
	st.res.InnovationCov[t] = f
	st.res.Gain[t] = gain

	return nil
}
