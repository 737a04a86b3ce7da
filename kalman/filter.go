// Package kalman: the forward recursion driver shared by all methods.
// Method-specific measurement updates live in conventional.go, inversion.go
// and univariate.go; this file owns prediction, storage and the likelihood.

package kalman

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
)

// ln2pi is log(2π), the constant term of the Gaussian log-density.
var ln2pi = math.Log(2 * math.Pi)

// update is the per-period measurement-update contract implemented by each
// Method. It consumes the predicted moments (a, P) and the reduced period-t
// observation system, and returns filtered moments, innovation quantities
// (nil-able for the univariate path) and the log-likelihood contribution.
type update func(st *state, t int) error

// state carries the mutable recursion buffers of one filter pass.
type state struct {
	rep  *core.Representation
	opts Options
	res  *Result

	a *mat.VecDense // current predicted mean, m
	p *mat.Dense    // current predicted covariance, m×m (kept Dense for algebra)

	aFilt *mat.VecDense // filtered mean after update
	pFilt *mat.Dense    // filtered covariance after update
}

// Filter runs one forward Kalman pass over rep and returns the filter
// Result together with any error. opts == nil selects DefaultOptions.
//
// Errors:
//   - core.ErrNilRepresentation — rep is nil.
//   - ErrBadMethod / ErrBadOptions — malformed options.
//   - core.ErrNonPositiveDefinite (wrapped) — a forecast-error covariance
//     failed to factorize; callers in an optimization loop reject the
//     parameter point rather than aborting.
//
// Complexity: O(n·(m³ + m²·p + p³)) time, O(n·(m² + p²)) memory.
func Filter(rep *core.Representation, opts *Options) (*Result, error) {
	if rep == nil {
		return nil, core.ErrNilRepresentation
	}

	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.UnivariateTol < 0 {
		return nil, fmt.Errorf("UnivariateTol must be ≥ 0: %w", ErrBadOptions)
	}

	var step update
	switch o.Method {
	case MethodConventional:
		step = updateConventional
	case MethodInversion:
		step = updateInversion
	case MethodUnivariate:
		step = updateUnivariate
	default:
		return nil, fmt.Errorf("method %d: %w", o.Method, ErrBadMethod)
	}

	n, m := rep.NumPeriods(), rep.StateDim()
	res := &Result{
		Predicted:     make([]*mat.VecDense, n),
		PredictedCov:  make([]*mat.SymDense, n),
		Filtered:      make([]*mat.VecDense, n),
		FilteredCov:   make([]*mat.SymDense, n),
		Innovation:    make([]*mat.VecDense, n),
		InnovationCov: make([]*mat.SymDense, n),
		Gain:          make([]*mat.Dense, n),
		LoglikContrib: make([]float64, n),
		Method:        o.Method,
	}
	if o.Method == MethodUnivariate {
		res.Univariate = &UnivariateStats{
			V:      make([][]float64, n),
			F:      make([][]float64, n),
			K:      make([][]*mat.VecDense, n),
			Design: make([]*mat.Dense, n),
		}
	}

	st := &state{
		rep:   rep,
		opts:  o,
		res:   res,
		a:     mat.VecDenseCopyOf(rep.InitialState()),
		p:     denseFromSym(rep.InitialCov()),
		aFilt: mat.NewVecDense(m, nil),
		pFilt: mat.NewDense(m, m, nil),
	}

	for t := 0; t < n; t++ {
		res.Predicted[t] = mat.VecDenseCopyOf(st.a)
		res.PredictedCov[t] = symFromDense(st.p)

		if rep.AllMissing(t) {
			// No information this period: filtered moments equal predicted
			// moments exactly and the likelihood is untouched.
			st.aFilt.CopyVec(st.a)
			st.pFilt.Copy(st.p)
			if res.Univariate != nil {
				res.Univariate.V[t] = []float64{}
				res.Univariate.F[t] = []float64{}
				res.Univariate.K[t] = []*mat.VecDense{}
			}
		} else if err := step(st, t); err != nil {
			return nil, err
		}

		res.Filtered[t] = mat.VecDenseCopyOf(st.aFilt)
		res.FilteredCov[t] = symFromDense(st.pFilt)

		if t < n-1 {
			st.predict(t)
		}
	}

	res.LogLikelihood = 0
	for _, c := range res.LoglikContrib {
		res.LogLikelihood += c
	}
	if math.IsNaN(res.LogLikelihood) {
		// Underflow/overflow in accumulation is a rejected point, not a NaN.
		res.LogLikelihood = math.Inf(-1)
	}

	return res, nil
}

// predict advances the filtered moments of period t to the predicted moments
// of period t+1:
//
//	a_{t+1} = T_t·a_{t|t} + c_t
//	P_{t+1} = T_t·P_{t|t}·T'_t + R_t·Q_t·R'_t
func (st *state) predict(t int) {
	tt := st.rep.Transition(t)

	st.a.MulVec(tt, st.aFilt)
	st.a.AddVec(st.a, st.rep.StateIntercept(t))

	var tp, tpt mat.Dense
	tp.Mul(tt, st.pFilt)
	tpt.Mul(&tp, tt.T())

	rsel := st.rep.Selection(t)
	var rq, rqr mat.Dense
	rq.Mul(rsel, st.rep.StateCov(t))
	rqr.Mul(&rq, rsel.T())

	st.p.Add(&tpt, &rqr)
	symmetrizeInPlace(st.p)
}

// nonPDErr wraps the shared sentinel with the failing period.
func nonPDErr(t int) error {
	return fmt.Errorf("kalman: forecast error covariance at period %d: %w", t, core.ErrNonPositiveDefinite)
}

// denseFromSym copies a SymDense into a fresh Dense.
func denseFromSym(s *mat.SymDense) *mat.Dense {
	n := s.SymmetricDim()
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d.Set(i, j, s.At(i, j))
		}
	}

	return d
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

// symmetrizeInPlace forces exact symmetry on a square Dense, damping the
// drift that accumulates over long recursions.
func symmetrizeInPlace(d *mat.Dense) {
	n, _ := d.Dims()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := 0.5 * (d.At(i, j) + d.At(j, i))
			d.Set(i, j, v)
			d.Set(j, i, v)
		}
	}
}
