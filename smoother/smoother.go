// Package smoother: entry point and shared backward-pass plumbing.
// Method-specific state recursions live in conventional.go, classical.go,
// alternative.go and univariate.go; disturbance smoothing in disturbance.go.

package smoother

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
	"github.com/katalvlaran/statespace/kalman"
)

// obsAux carries the observation-side quantities the disturbance pass needs,
// zero-embedded into full p-dimensional structures (zeros at missing
// entries). Only the conventional and alternative recursions populate it;
// the classical and univariate paths derive ε̂ from the smoothed states
// instead.
type obsAux struct {
	fv   []*mat.VecDense // F_t⁻¹·v_t, p
	finv []*mat.SymDense // F_t⁻¹, p×p
	gain []*mat.Dense    // K_t, m×p
}

// stateMethod runs one backward state pass, filling res.Smoothed,
// res.SmoothedCov, res.SmoothingError and res.Precision. It may return a
// populated obsAux.
type stateMethod func(rep *core.Representation, fres *kalman.Result, res *Result) (*obsAux, error)

// Smooth runs one backward smoothing pass over the filter output fres,
// which must have been produced from the same rep. opts == nil selects
// DefaultOptions.
//
// Errors: core.ErrNilRepresentation, ErrNilFilterResult, ErrBadMethod,
// ErrIncompatibleFilter, ErrShapeMismatch, and wrapped
// core.ErrNonPositiveDefinite when a stored covariance fails to factorize.
//
// Complexity: O(n·(m³ + m²·p + p³)) time, O(n·(m² + p²)) memory.
func Smooth(rep *core.Representation, fres *kalman.Result, opts *Options) (*Result, error) {
	if rep == nil {
		return nil, core.ErrNilRepresentation
	}
	if fres == nil {
		return nil, ErrNilFilterResult
	}

	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}

	n := rep.NumPeriods()
	if len(fres.Predicted) != n || len(fres.Filtered) != n {
		return nil, fmt.Errorf("filter holds %d periods, representation %d: %w", len(fres.Predicted), n, ErrShapeMismatch)
	}
	if n > 0 && fres.Predicted[0].Len() != rep.StateDim() {
		return nil, fmt.Errorf("filter state dim %d, representation %d: %w", fres.Predicted[0].Len(), rep.StateDim(), ErrShapeMismatch)
	}

	var step stateMethod
	switch o.Method {
	case MethodConventional, MethodAlternative:
		if fres.Univariate != nil {
			return nil, fmt.Errorf("%s smoother on univariate filter output: %w", o.Method, ErrIncompatibleFilter)
		}
		if o.Method == MethodConventional {
			step = smoothConventional
		} else {
			step = smoothAlternative
		}
	case MethodClassical:
		step = smoothClassical
	case MethodUnivariate:
		if fres.Univariate == nil {
			return nil, fmt.Errorf("univariate smoother needs a univariate filter pass: %w", ErrIncompatibleFilter)
		}
		step = smoothUnivariate
	default:
		return nil, fmt.Errorf("method %d: %w", o.Method, ErrBadMethod)
	}

	res := &Result{
		Smoothed:            make([]*mat.VecDense, n),
		SmoothedCov:         make([]*mat.SymDense, n),
		SmoothingError:      make([]*mat.VecDense, n),
		Precision:           make([]*mat.SymDense, n),
		StateDisturbance:    make([]*mat.VecDense, n),
		StateDisturbanceCov: make([]*mat.SymDense, n),
		ObsDisturbance:      make([]*mat.VecDense, n),
		ObsDisturbanceCov:   make([]*mat.SymDense, n),
		Method:              o.Method,
	}

	aux, err := step(rep, fres, res)
	if err != nil {
		return nil, err
	}

	smoothDisturbances(rep, res, aux)

	return res, nil
}

// nonPDErr wraps the shared sentinel with the failing period and matrix role.
func nonPDErr(role string, t int) error {
	return fmt.Errorf("smoother: %s at period %d: %w", role, t, core.ErrNonPositiveDefinite)
}

// storeStateMoments writes the period-t smoothed moments from the scaled
// error pair (rCur = r_{t-1}, nCur = N_{t-1}) against the predicted moments:
// α̂_t = a_t + P_t·r_{t-1}, V_t = P_t − P_t·N_{t-1}·P_t.
func storeStateMoments(fres *kalman.Result, res *Result, t int, rCur *mat.VecDense, nCur *mat.Dense) {
	p := fres.PredictedCov[t]

	alpha := mat.NewVecDense(rCur.Len(), nil)
	alpha.MulVec(p, rCur)
	alpha.AddVec(fres.Predicted[t], alpha)

	var pn, pnp mat.Dense
	pn.Mul(p, nCur)
	pnp.Mul(&pn, p)
	var v mat.Dense
	v.Sub(p, &pnp)

	res.Smoothed[t] = alpha
	res.SmoothedCov[t] = symFromDense(&v)
	res.SmoothingError[t] = mat.VecDenseCopyOf(rCur)
	res.Precision[t] = symFromDense(nCur)
}

// propagateMissing advances (r, N) across a period with no observations:
// r_{t-1} = T'_t·r_t, N_{t-1} = T'_t·N_t·T_t.
func propagateMissing(tt *mat.Dense, r *mat.VecDense, n *mat.Dense) {
	var rNew mat.VecDense
	rNew.MulVec(tt.T(), r)
	r.CopyVec(&rNew)

	var tn, tnt mat.Dense
	tn.Mul(tt.T(), n)
	tnt.Mul(&tn, tt)
	n.Copy(&tnt)
}

// symFromDense averages a numerically near-symmetric Dense into a SymDense.
func symFromDense(d *mat.Dense) *mat.SymDense {
	n, _ := d.Dims()
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			s.SetSym(i, j, 0.5*(d.At(i, j)+d.At(j, i)))
		}
	}

	return s
}
