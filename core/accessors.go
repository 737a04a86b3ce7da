// Package core: read-only per-period access to the Representation.
// Time-invariant matrices return the same view for every t; callers must
// treat every returned matrix as read-only (kernels copy before mutating).

package core

import "gonum.org/v1/gonum/mat"

// NumPeriods returns n, the number of observation periods.
func (rep *Representation) NumPeriods() int { return rep.n }

// ObsDim returns p, the number of observed series per period.
func (rep *Representation) ObsDim() int { return rep.p }

// StateDim returns m, the state dimension.
func (rep *Representation) StateDim() int { return rep.m }

// ShockDim returns r, the state-shock dimension.
func (rep *Representation) ShockDim() int { return rep.r }

// Observations returns the n×p observation matrix view (NaN marks missing).
func (rep *Representation) Observations() *mat.Dense { return rep.y }

// Design returns Z_t (p×m).
func (rep *Representation) Design(t int) *mat.Dense {
	return rep.sys.Design[sliceIndex(len(rep.sys.Design), t)]
}

// ObsIntercept returns d_t (p).
func (rep *Representation) ObsIntercept(t int) *mat.VecDense {
	return rep.sys.ObsIntercept[sliceIndex(len(rep.sys.ObsIntercept), t)]
}

// ObsCov returns H_t (p×p).
func (rep *Representation) ObsCov(t int) *mat.SymDense {
	return rep.sys.ObsCov[sliceIndex(len(rep.sys.ObsCov), t)]
}

// Transition returns T_t (m×m).
func (rep *Representation) Transition(t int) *mat.Dense {
	return rep.sys.Transition[sliceIndex(len(rep.sys.Transition), t)]
}

// StateIntercept returns c_t (m).
func (rep *Representation) StateIntercept(t int) *mat.VecDense {
	return rep.sys.StateIntercept[sliceIndex(len(rep.sys.StateIntercept), t)]
}

// Selection returns R_t (m×r).
func (rep *Representation) Selection(t int) *mat.Dense {
	return rep.sys.Selection[sliceIndex(len(rep.sys.Selection), t)]
}

// StateCov returns Q_t (r×r).
func (rep *Representation) StateCov(t int) *mat.SymDense {
	return rep.sys.StateCov[sliceIndex(len(rep.sys.StateCov), t)]
}

// InitialState returns a1 (m).
func (rep *Representation) InitialState() *mat.VecDense { return rep.a1 }

// InitialCov returns P1 (m×m).
func (rep *Representation) InitialCov() *mat.SymDense { return rep.p1 }

// ObservedAt returns the sorted indices of non-missing entries of y_t.
// The returned slice is internal — read-only.
func (rep *Representation) ObservedAt(t int) []int { return rep.observed[t] }

// AllMissing reports whether every entry of y_t is missing, in which case
// the measurement update for period t is skipped entirely.
func (rep *Representation) AllMissing(t int) bool { return len(rep.observed[t]) == 0 }

// ObservedSystem returns the period-t observation equation reduced to the
// observed entries: y*_t (p_t), Z*_t (p_t×m), d*_t (p_t), H*_t (p_t×p_t),
// where p_t = len(ObservedAt(t)). When nothing is missing the full internal
// views are returned without copying; otherwise fresh reduced matrices are
// built. Either way the results are read-only for the caller.
//
// Complexity: O(1) fully-observed fast path; O(p_t·m + p_t²) otherwise.
func (rep *Representation) ObservedSystem(t int) (y *mat.VecDense, z *mat.Dense, d *mat.VecDense, h *mat.SymDense) {
	obs := rep.observed[t]
	if len(obs) == rep.p {
		y = mat.NewVecDense(rep.p, nil)
		for i := 0; i < rep.p; i++ {
			y.SetVec(i, rep.y.At(t, i))
		}

		return y, rep.Design(t), rep.ObsIntercept(t), rep.ObsCov(t)
	}

	pt := len(obs)
	if pt == 0 {
		return nil, nil, nil, nil
	}

	y = mat.NewVecDense(pt, nil)
	z = mat.NewDense(pt, rep.m, nil)
	d = mat.NewVecDense(pt, nil)
	h = mat.NewSymDense(pt, nil)

	fullZ, fullD, fullH := rep.Design(t), rep.ObsIntercept(t), rep.ObsCov(t)
	for i, oi := range obs {
		y.SetVec(i, rep.y.At(t, oi))
		d.SetVec(i, fullD.AtVec(oi))
		for j := 0; j < rep.m; j++ {
			z.Set(i, j, fullZ.At(oi, j))
		}
		for j := i; j < pt; j++ {
			h.SetSym(i, j, fullH.At(oi, obs[j]))
		}
	}

	return y, z, d, h
}

// sliceIndex maps period t onto a system slice: a single slice serves every
// period, otherwise the slice is indexed directly.
func sliceIndex(length, t int) int {
	if length == 1 {
		return 0
	}

	return t
}
