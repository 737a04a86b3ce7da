// Package smoother: smoothed disturbance pass, shared by every state method.
//
// State disturbances use the Durbin–Koopman identities against the scaled
// error trail already stored on the Result:
//
//	η̂_t = Q_t·R'_t·r_t
//	Var(η_t|Y) = Q_t − Q_t·R'_t·N_t·R_t·Q_t
//
// Observation disturbances come from one of two equivalent routes. When the
// state pass recorded the zero-embedded (F⁻¹v, F⁻¹, K) trail:
//
//	ε̂_t = H_t·(F_t⁻¹·v_t − K'_t·r_t)
//	Var(ε_t|Y) = H_t − H_t·(F_t⁻¹ + K'_t·N_t·K_t)·H_t
//
// Otherwise (classical and univariate passes) the exact measurement
// identity ε̂ = y − d − Z·α̂ with covariance Z·V·Z' serves the observed
// entries. Missing entries couple to the data only through the observed
// disturbances, so with A = H_mo·H_oo⁻¹ they are recovered as
//
//	ε̂_m = A·ε̂_o
//	Var(ε_m|Y) = H_mm − A·H_om + A·Var(ε_o|Y)·A'
//	Cov(ε_m, ε_o|Y) = A·Var(ε_o|Y)
//
// which reproduces the DK-trail route exactly, non-diagonal H included.

package smoother

import (
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
)

// smoothDisturbances fills the disturbance fields of res in one pass.
func smoothDisturbances(rep *core.Representation, res *Result, aux *obsAux) {
	n := rep.NumPeriods()
	m := rep.StateDim()

	zeroR := mat.NewVecDense(m, nil)
	zeroN := mat.NewSymDense(m, nil)

	for t := 0; t < n; t++ {
		// Incoming pair (r_t, N_t): the scaled error paired with period t+1,
		// zero at the end of the sample.
		rIn, nIn := zeroR, mat.Matrix(zeroN)
		if t < n-1 {
			rIn = res.SmoothingError[t+1]
			nIn = res.Precision[t+1]
		}

		res.StateDisturbance[t], res.StateDisturbanceCov[t] = stateDisturbance(rep, t, rIn, nIn)

		if aux != nil {
			res.ObsDisturbance[t], res.ObsDisturbanceCov[t] = obsDisturbanceDK(rep, t, aux, rIn, nIn)
		} else {
			res.ObsDisturbance[t], res.ObsDisturbanceCov[t] = obsDisturbanceIdentity(rep, res, t)
		}
	}
}

// stateDisturbance computes η̂_t and its covariance.
func stateDisturbance(rep *core.Representation, t int, rIn *mat.VecDense, nIn mat.Matrix) (*mat.VecDense, *mat.SymDense) {
	q := rep.StateCov(t)
	rsel := rep.Selection(t)
	rdim := rep.ShockDim()

	// η̂ = Q·R'·r
	var rr mat.VecDense
	rr.MulVec(rsel.T(), rIn)
	eta := mat.NewVecDense(rdim, nil)
	eta.MulVec(q, &rr)

	// Q − Q·R'·N·R·Q
	var nr, rnr mat.Dense
	nr.Mul(nIn, rsel)
	rnr.Mul(rsel.T(), &nr)
	var qr, qrq, cov mat.Dense
	qr.Mul(q, &rnr)
	qrq.Mul(&qr, q)
	cov.Sub(q, &qrq)

	return eta, symFromDense(&cov)
}

// obsDisturbanceDK computes ε̂_t from the zero-embedded innovation trail.
func obsDisturbanceDK(rep *core.Representation, t int, aux *obsAux, rIn *mat.VecDense, nIn mat.Matrix) (*mat.VecDense, *mat.SymDense) {
	h := rep.ObsCov(t)
	p := rep.ObsDim()

	if aux.fv[t] == nil {
		// Fully missing period: ε̂ = 0, Var = H.
		return mat.NewVecDense(p, nil), cloneSym(h)
	}

	k := aux.gain[t]

	// u = F⁻¹·v − K'·r
	var kr mat.VecDense
	kr.MulVec(k.T(), rIn)
	var u mat.VecDense
	u.SubVec(aux.fv[t], &kr)

	eps := mat.NewVecDense(p, nil)
	eps.MulVec(h, &u)

	// D = F⁻¹ + K'·N·K, Var = H − H·D·H
	var nk, knk mat.Dense
	nk.Mul(nIn, k)
	knk.Mul(k.T(), &nk)
	var d mat.Dense
	d.Add(aux.finv[t], &knk)
	var hd, hdh, cov mat.Dense
	hd.Mul(h, &d)
	hdh.Mul(&hd, h)
	cov.Sub(h, &hdh)

	return eps, symFromDense(&cov)
}

// obsDisturbanceIdentity computes ε̂_t from the smoothed state via the
// measurement identity, reconstructing missing entries through the H
// coupling to the observed ones.
func obsDisturbanceIdentity(rep *core.Representation, res *Result, t int) (*mat.VecDense, *mat.SymDense) {
	h := rep.ObsCov(t)
	p := rep.ObsDim()

	eps := mat.NewVecDense(p, nil)

	obs := rep.ObservedAt(t)
	if len(obs) == 0 {
		return eps, cloneSym(h)
	}

	y, z, d, hoo := rep.ObservedSystem(t)

	// ε̂_o = y_o − d_o − Z_o·α̂
	var za mat.VecDense
	za.MulVec(z, res.Smoothed[t])
	var e mat.VecDense
	e.SubVec(y, d)
	e.SubVec(&e, &za)

	// Var(ε_o|Y) = Z_o·V·Z'_o
	var zv, zvz mat.Dense
	zv.Mul(z, res.SmoothedCov[t])
	zvz.Mul(&zv, z.T())

	full := mat.NewDense(p, p, nil)
	for i, oi := range obs {
		eps.SetVec(oi, e.AtVec(i))
		for j, oj := range obs {
			full.Set(oi, oj, zvz.At(i, j))
		}
	}

	miss := missingAt(obs, p)
	if len(miss) > 0 {
		fillMissingObsDisturbance(h, hoo, obs, miss, &e, &zvz, eps, full)
	}

	return eps, symFromDense(full)
}

// fillMissingObsDisturbance writes the missing-entry mean and covariance
// blocks via the conditioning A = H_mo·H_oo⁻¹ (computed as X' with
// H_oo·X = H_om). A singular observed noise block leaves the missing
// entries at their unconditional moments.
func fillMissingObsDisturbance(h, hoo *mat.SymDense, obs, miss []int, e *mat.VecDense, zvz *mat.Dense, eps *mat.VecDense, full *mat.Dense) {
	no, nm := len(obs), len(miss)

	hom := mat.NewDense(no, nm, nil)
	for i, oi := range obs {
		for j, mj := range miss {
			hom.Set(i, j, h.At(oi, mj))
		}
	}

	var chol mat.Cholesky
	x := mat.NewDense(no, nm, nil)
	coupled := chol.Factorize(hoo) && chol.SolveTo(x, hom) == nil
	if !coupled {
		x.Zero()
	}

	// ε̂_m = X'·ε̂_o
	var em mat.VecDense
	em.MulVec(x.T(), e)
	for j, mj := range miss {
		eps.SetVec(mj, em.AtVec(j))
	}

	// Cov(ε_m, ε_o|Y) = X'·C_oo
	var cmo mat.Dense
	cmo.Mul(x.T(), zvz)
	for j, mj := range miss {
		for i, oi := range obs {
			full.Set(mj, oi, cmo.At(j, i))
			full.Set(oi, mj, cmo.At(j, i))
		}
	}

	// Var(ε_m|Y) = H_mm − X'·H_om + X'·C_oo·X
	var xh, cx mat.Dense
	xh.Mul(x.T(), hom)
	cx.Mul(&cmo, x)
	for j, mj := range miss {
		for l, ml := range miss {
			full.Set(mj, ml, h.At(mj, ml)-xh.At(j, l)+cx.At(j, l))
		}
	}
}

// missingAt returns the complement of the sorted observed-index set.
func missingAt(obs []int, p int) []int {
	miss := make([]int, 0, p-len(obs))
	next := 0
	for i := 0; i < p; i++ {
		if next < len(obs) && obs[next] == i {
			next++
			continue
		}
		miss = append(miss, i)
	}

	return miss
}
