// Package regime: the Hamilton filter — forward filtering of the regime
// path jointly with per-path Kalman recursions, bounded by moment-matching
// collapse.

package regime

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
)

// ln2pi is log(2π).
var ln2pi = math.Log(2 * math.Pi)

// probTol bounds the acceptable floating drift of a probability vector
// before renormalization is considered a hard failure upstream (transition
// rows, initial probabilities).
const probTol = 1e-8

// Filter runs the Hamilton filter over the per-regime representations.
// reps[j] carries regime j's system matrices; all representations must share
// the observation shape and missing pattern. transition is row-stochastic:
// entry (i, j) is P(S_t = j | S_{t-1} = i). opts == nil selects
// DefaultOptions.
//
// Errors: validation sentinels from this package, plus wrapped
// core.ErrNonPositiveDefinite when a path's forecast-error covariance fails
// to factorize.
//
// Complexity: O(n·k^{r+1}·(m³ + p³)) time with r = LagOrder.
func Filter(reps []*core.Representation, transition *mat.Dense, opts *Options) (*FilterResult, error) {
	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}

	k, n, err := validateInputs(reps, transition, &o)
	if err != nil {
		return nil, err
	}
	r := o.LagOrder
	collapse := o.Collapse
	if collapse == nil {
		collapse = MomentMatchingCollapse
	}

	initial := o.InitialProbs
	if initial == nil {
		initial = ergodicDistribution(transition, k)
	}

	nodes := intPow(k, r)
	res := &FilterResult{
		Regimes:        k,
		LagOrder:       r,
		Transition:     mat.DenseCopyOf(transition),
		PredictedProbs: make([][]float64, n),
		FilteredProbs:  make([][]float64, n),
		JointProbs:     make([][]float64, n),
		FilteredStates: make([][]*mat.VecDense, n),
		FilteredCovs:   make([][]*mat.SymDense, n),
		LoglikContrib:  make([]float64, n),
		reps:           reps,
	}

	// Prior over the pre-sample path (S_1, S_0, …, S_{2-r}): the earliest
	// digit follows the initial distribution, later digits chain through the
	// transition matrix.
	prob := presamplePathPrior(transition, initial, k, r)
	mean := make([]*mat.VecDense, nodes)
	cov := make([]*mat.SymDense, nodes)
	for h := 0; h < nodes; h++ {
		j0 := pathDigit(h, k, 0)
		mean[h] = mat.VecDenseCopyOf(reps[j0].InitialState())
		cov[h] = cloneSym(reps[j0].InitialCov())
	}

	lw := make([]float64, nodes)
	for t := 0; t < n; t++ {
		res.PredictedProbs[t] = marginalProbs(prob, k)

		// Update every path hypothesis against y_t under its current
		// regime's observation equation. The per-path updates are mutually
		// independent; the collapse below is the synchronization point.
		for h := 0; h < nodes; h++ {
			if prob[h] == 0 {
				lw[h] = math.Inf(-1)
				continue
			}
			j0 := pathDigit(h, k, 0)
			aF, pF, ld, uErr := gaussianUpdate(reps[j0], t, mean[h], cov[h])
			if uErr != nil {
				return nil, fmt.Errorf("regime %d: %w", j0, uErr)
			}
			mean[h], cov[h] = aF, pF
			lw[h] = math.Log(prob[h]) + ld
		}

		// Posterior over paths and the likelihood contribution, in log
		// space for numerical range.
		lse := floats.LogSumExp(lw)
		res.LoglikContrib[t] = lse
		for h := 0; h < nodes; h++ {
			if math.IsInf(lse, -1) {
				prob[h] = 0
				continue
			}
			prob[h] = math.Exp(lw[h] - lse)
		}
		normalize(prob)

		res.JointProbs[t] = append([]float64(nil), prob...)
		res.FilteredProbs[t] = marginalProbs(prob, k)

		// Per-regime collapsed filtered moments.
		res.FilteredStates[t] = make([]*mat.VecDense, k)
		res.FilteredCovs[t] = make([]*mat.SymDense, k)
		for j := 0; j < k; j++ {
			ms, cs, ws := groupByCurrentRegime(mean, cov, prob, k, j)
			cm, cc, cErr := collapse(ms, cs, ws)
			if cErr != nil {
				return nil, cErr
			}
			res.FilteredStates[t][j] = cm
			res.FilteredCovs[t][j] = cc
		}

		if t < n-1 {
			if prob, mean, cov, err = advance(reps, transition, collapse, prob, mean, cov, k, r, t); err != nil {
				return nil, err
			}
		}
	}

	res.LogLikelihood = 0
	for _, c := range res.LoglikContrib {
		res.LogLikelihood += c
	}
	if math.IsNaN(res.LogLikelihood) {
		res.LogLikelihood = math.Inf(-1)
	}

	return res, nil
}

// advance expands the filtered path set through the transition matrix,
// propagates each hypothesis' state moments through its new regime's
// transition equation, and collapses the oldest regime digit away.
func advance(reps []*core.Representation, transition *mat.Dense, collapse Collapser,
	prob []float64, mean []*mat.VecDense, cov []*mat.SymDense, k, r, t int,
) ([]float64, []*mat.VecDense, []*mat.SymDense, error) {
	nodes := intPow(k, r)
	older := intPow(k, r-1)

	newProb := make([]float64, nodes)
	newMean := make([]*mat.VecDense, nodes)
	newCov := make([]*mat.SymDense, nodes)

	for hn := 0; hn < nodes; hn++ {
		j := pathDigit(hn, k, 0) // regime of period t+1
		stem := hn / k           // digits (S_t, …, S_{t+2-r})

		// Source nodes: every oldest-digit extension of the stem.
		ms := make([]*mat.VecDense, 0, k)
		cs := make([]*mat.SymDense, 0, k)
		ws := make([]float64, 0, k)
		total := 0.0
		for old := 0; old < k; old++ {
			h := stem + old*older
			i := pathDigit(h, k, 0) // regime of period t
			w := prob[h] * transition.At(i, j)
			total += w
			if w == 0 {
				continue
			}
			am, ac := predictMoments(reps[j], t, mean[h], cov[h])
			ms = append(ms, am)
			cs = append(cs, ac)
			ws = append(ws, w)
		}

		newProb[hn] = total
		if len(ms) == 0 {
			// Unreachable path: park it on the new regime's initial moments.
			newMean[hn] = mat.VecDenseCopyOf(reps[j].InitialState())
			newCov[hn] = cloneSym(reps[j].InitialCov())
			continue
		}
		cm, cc, err := collapse(ms, cs, ws)
		if err != nil {
			return nil, nil, nil, err
		}
		newMean[hn], newCov[hn] = cm, cc
	}

	normalize(newProb)

	return newProb, newMean, newCov, nil
}

// predictMoments propagates filtered moments through regime rep's
// transition equation from period t to t+1.
func predictMoments(rep *core.Representation, t int, a *mat.VecDense, p *mat.SymDense) (*mat.VecDense, *mat.SymDense) {
	tt := rep.Transition(t)

	ap := mat.NewVecDense(a.Len(), nil)
	ap.MulVec(tt, a)
	ap.AddVec(ap, rep.StateIntercept(t))

	var tp, tpt mat.Dense
	tp.Mul(tt, p)
	tpt.Mul(&tp, tt.T())

	rsel := rep.Selection(t)
	var rq, rqr mat.Dense
	rq.Mul(rsel, rep.StateCov(t))
	rqr.Mul(&rq, rsel.T())

	var pp mat.Dense
	pp.Add(&tpt, &rqr)

	return ap, symFromDense(&pp)
}

// gaussianUpdate performs one conventional Kalman measurement update under
// rep's period-t observation equation and returns the filtered moments plus
// the log conditional density of y_t. A fully missing period is a no-op
// with zero log density.
func gaussianUpdate(rep *core.Representation, t int, a *mat.VecDense, p *mat.SymDense) (*mat.VecDense, *mat.SymDense, float64, error) {
	if rep.AllMissing(t) {
		return mat.VecDenseCopyOf(a), cloneSym(p), 0, nil
	}

	y, z, d, h := rep.ObservedSystem(t)
	pt := y.Len()

	v := mat.NewVecDense(pt, nil)
	v.MulVec(z, a)
	v.AddVec(v, d)
	v.SubVec(y, v)

	var pzt mat.Dense
	pzt.Mul(p, z.T())
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
		return nil, nil, 0, fmt.Errorf("regime: forecast error covariance at period %d: %w", t, core.ErrNonPositiveDefinite)
	}

	fv := mat.NewVecDense(pt, nil)
	if err := chol.SolveVecTo(fv, v); err != nil {
		return nil, nil, 0, fmt.Errorf("regime: forecast error covariance at period %d: %w", t, core.ErrNonPositiveDefinite)
	}

	var upd mat.VecDense
	upd.MulVec(&pzt, fv)
	aF := mat.NewVecDense(a.Len(), nil)
	aF.AddVec(a, &upd)

	w := mat.NewDense(pt, a.Len(), nil)
	if err := chol.SolveTo(w, pzt.T()); err != nil {
		return nil, nil, 0, fmt.Errorf("regime: forecast error covariance at period %d: %w", t, core.ErrNonPositiveDefinite)
	}
	var corr mat.Dense
	corr.Mul(&pzt, w)
	var pFd mat.Dense
	pFd.Sub(p, &corr)

	ld := -0.5 * (float64(pt)*ln2pi + chol.LogDet() + mat.Dot(v, fv))

	return aF, symFromDense(&pFd), ld, nil
}

// groupByCurrentRegime gathers the moments and weights of every path whose
// most recent regime equals j.
func groupByCurrentRegime(mean []*mat.VecDense, cov []*mat.SymDense, prob []float64, k, j int) ([]*mat.VecDense, []*mat.SymDense, []float64) {
	ms := make([]*mat.VecDense, 0, len(mean)/k)
	cs := make([]*mat.SymDense, 0, len(mean)/k)
	ws := make([]float64, 0, len(mean)/k)
	for h := range mean {
		if pathDigit(h, k, 0) != j {
			continue
		}
		ms = append(ms, mean[h])
		cs = append(cs, cov[h])
		ws = append(ws, prob[h])
	}

	return ms, cs, ws
}

// marginalProbs sums path probabilities by their most recent regime and
// renormalizes the result to absorb floating drift.
func marginalProbs(prob []float64, k int) []float64 {
	out := make([]float64, k)
	for h, p := range prob {
		out[pathDigit(h, k, 0)] += p
	}
	normalize(out)

	return out
}

// presamplePathPrior chains the initial distribution of the earliest
// pre-sample regime forward through the transition matrix, yielding the
// prior over length-r paths ending at the first sample period. Appending
// each newer regime as the least significant digit lands directly on the
// package's recent-first base-k encoding.
func presamplePathPrior(transition *mat.Dense, initial []float64, k, r int) []float64 {
	probs := append([]float64(nil), initial...)
	for length := 1; length < r; length++ {
		grown := make([]float64, len(probs)*k)
		for h, p := range probs {
			last := h % k // most recent regime so far
			for j := 0; j < k; j++ {
				grown[h*k+j] = p * transition.At(last, j)
			}
		}
		probs = grown
	}

	return probs
}

// ergodicDistribution computes the stationary distribution of the chain by
// power iteration, which is robust for any irreducible row-stochastic
// matrix and exact enough at double precision after a few hundred steps.
func ergodicDistribution(transition *mat.Dense, k int) []float64 {
	pi := make([]float64, k)
	for i := range pi {
		pi[i] = 1 / float64(k)
	}
	next := make([]float64, k)
	for iter := 0; iter < 500; iter++ {
		for j := 0; j < k; j++ {
			s := 0.0
			for i := 0; i < k; i++ {
				s += pi[i] * transition.At(i, j)
			}
			next[j] = s
		}
		normalize(next)
		if floats.Distance(pi, next, 1) < 1e-14 {
			copy(pi, next)
			break
		}
		copy(pi, next)
	}

	return pi
}

// normalize rescales a non-negative vector to sum 1 in place (no-op on a
// zero vector).
func normalize(p []float64) {
	if total := floats.Sum(p); total > 0 {
		floats.Scale(1/total, p)
	}
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

// cloneSym copies a SymDense.
func cloneSym(s *mat.SymDense) *mat.SymDense {
	out := mat.NewSymDense(s.SymmetricDim(), nil)
	out.CopySym(s)

	return out
}
