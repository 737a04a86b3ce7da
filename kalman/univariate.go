// Package kalman: univariate (sequential scalar) measurement update,
// after Durbin & Koopman's univariate treatment of multivariate series.
//
// Each observed entry of y_t is absorbed one scalar at a time, so no matrix
// is ever inverted. When H_t is not diagonal the observation equation is
// first rotated by the Cholesky factor L of H_t (y* = L⁻¹y, Z* = L⁻¹Z,
// d* = L⁻¹d, H* = I), which leaves the state distribution untouched and
// shifts the likelihood by −log|L|.

package kalman

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// updateUnivariate performs the period-t update as a sequence of scalar
// steps. For observed entry i with design row z_i and variance h_i:
//
//	v_i = y_i − z_i'·a − d_i
//	f_i = z_i'·P·z_i + h_i
//	a ← a + (P·z_i)·v_i/f_i
//	P ← P − (P·z_i)(P·z_i)'/f_i
//	ℓ_t += −½·(log 2π + log f_i + v_i²/f_i)
//
// Scalar steps with f_i ≤ UnivariateTol carry no information and are
// skipped; a materially negative f_i is a positive-definiteness failure.
func updateUnivariate(st *state, t int) error {
	y, z, d, h := st.rep.ObservedSystem(t)
	pt := y.Len()
	m := st.rep.StateDim()
	tol := st.opts.UnivariateTol

	hdiag := make([]float64, pt)
	contrib := 0.0

	if !isDiagonal(h, tol) {
		var chol mat.Cholesky
		if ok := chol.Factorize(h); !ok {
			return nonPDErr(t)
		}
		var l mat.TriDense
		chol.LTo(&l)

		ystar := mat.NewVecDense(pt, nil)
		dstar := mat.NewVecDense(pt, nil)
		zstar := mat.NewDense(pt, m, nil)
		if err := ystar.SolveVec(&l, y); err != nil {
			return nonPDErr(t)
		}
		if err := dstar.SolveVec(&l, d); err != nil {
			return nonPDErr(t)
		}
		if err := zstar.Solve(&l, z); err != nil {
			return nonPDErr(t)
		}

		// Jacobian of the rotation: log f(y) = log f(y*) − Σ log L_ii.
		for i := 0; i < pt; i++ {
			contrib -= math.Log(l.At(i, i))
			hdiag[i] = 1
		}
		y, d, z = ystar, dstar, zstar
	} else {
		for i := 0; i < pt; i++ {
			hdiag[i] = h.At(i, i)
		}
		// The stored design must survive the caller's buffers.
		z = mat.DenseCopyOf(z)
	}

	vs := make([]float64, pt)
	fs := make([]float64, pt)
	ks := make([]*mat.VecDense, pt)

	st.aFilt.CopyVec(st.a)
	st.pFilt.Copy(st.p)

	zi := mat.NewVecDense(m, nil)
	pz := mat.NewVecDense(m, nil)
	for i := 0; i < pt; i++ {
		for j := 0; j < m; j++ {
			zi.SetVec(j, z.At(i, j))
		}

		pz.MulVec(st.pFilt, zi)
		f := mat.Dot(zi, pz) + hdiag[i]
		v := y.AtVec(i) - mat.Dot(zi, st.aFilt) - d.AtVec(i)

		vs[i] = v
		fs[i] = f
		ks[i] = mat.VecDenseCopyOf(pz)

		if f < -tol {
			return nonPDErr(t)
		}
		if f <= tol {
			// Degenerate scalar: no update, no likelihood term.
			fs[i] = 0
			continue
		}

		var step mat.VecDense
		step.ScaleVec(v/f, pz)
		st.aFilt.AddVec(st.aFilt, &step)

		var op mat.Dense
		op.Outer(1/f, pz, pz)
		st.pFilt.Sub(st.pFilt, &op)
		symmetrizeInPlace(st.pFilt)

		contrib += -0.5 * (ln2pi + math.Log(f) + v*v/f)
	}

	st.res.LoglikContrib[t] = contrib
	st.res.Univariate.V[t] = vs
	st.res.Univariate.F[t] = fs
	st.res.Univariate.K[t] = ks
	st.res.Univariate.Design[t] = z

	return nil
}

// isDiagonal reports whether every off-diagonal entry of s is within tol of
// zero.
func isDiagonal(s *mat.SymDense, tol float64) bool {
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(s.At(i, j)) > tol {
				return false
			}
		}
	}

	return true
}
