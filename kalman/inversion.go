// Package kalman: inversion-optimized measurement update.
//
// Identical mathematics to the conventional path, but F_t⁻¹ is never formed:
// every occurrence of F⁻¹·x is a triangular solve against the Cholesky
// factor. This keeps the conditioning of F rather than of F⁻¹ and saves the
// O(p³) explicit inversion per period.

package kalman

import (
	"gonum.org/v1/gonum/mat"
)

// updateInversion performs the period-t measurement update with Cholesky
// solves in place of the explicit inverse. With W := F⁻¹·Z·P (pt×m):
//
//	a_{t|t} = a + W'·v
//	P_{t|t} = P − (Z·P)'·W
//	K_t     = T_t·W'
//	ℓ_t     = −½·(p_t·log 2π + log|F| + v'·(F⁻¹·v))
func updateInversion(st *state, t int) error {
	y, z, d, h := st.rep.ObservedSystem(t)
	pt := y.Len()

	v := mat.NewVecDense(pt, nil)
	v.MulVec(z, st.a)
	v.AddVec(v, d)
	v.SubVec(y, v)

	// ZP = Z·P (pt×m), F = ZP·Z' + H
	var zp mat.Dense
	zp.Mul(z, st.p)
	var zpz mat.Dense
	zpz.Mul(&zp, z.T())
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

	// Solve F·fv = v and F·W = Z·P.
	fv := mat.NewVecDense(pt, nil)
	if err := chol.SolveVecTo(fv, v); err != nil {
		return nonPDErr(t)
	}
	w := mat.NewDense(pt, st.rep.StateDim(), nil)
	if err := chol.SolveTo(w, &zp); err != nil {
		return nonPDErr(t)
	}

	// a_{t|t} = a + W'·v
	var upd mat.VecDense
	upd.MulVec(w.T(), v)
	st.aFilt.AddVec(st.a, &upd)

	// P_{t|t} = P − (Z·P)'·W
	var corr mat.Dense
	corr.Mul(zp.T(), w)
	st.pFilt.Sub(st.p, &corr)
	symmetrizeInPlace(st.pFilt)

	// K_t = T_t·W'
	gain := mat.NewDense(st.rep.StateDim(), pt, nil)
	gain.Mul(st.rep.Transition(t), w.T())

	st.res.LoglikContrib[t] = -0.5 * (float64(pt)*ln2pi + chol.LogDet() + mat.Dot(v, fv))

	st.res.Innovation[t] = v
	st.res.InnovationCov[t] = f
	st.res.Gain[t] = gain

	return nil
}
