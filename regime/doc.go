// Package regime implements Markov-switching state-space estimation: the
// Hamilton filter over a mixture of per-regime linear Gaussian models, and
// the Kim smoother for regime probabilities and states.
//
// 🚀 What does it do?
//
//	The model augments a state-space Representation with an unobserved
//	discrete Markov chain S_t ∈ {0..k-1}: each regime j carries its own
//	system matrices (one core.Representation per regime, sharing the same
//	observed series). Filtering tracks, per period,
//	  (a) predict — joint probabilities of the recent regime path via the
//	      transition matrix,
//	  (b) update  — reweighting by the conditional Gaussian density of y_t
//	      under each path's Kalman innovation,
//	  (c) collapse — moment-matching approximation that bounds the
//	      exponentially growing path set to paths over the most recent
//	      LagOrder regimes (Kim 1994).
//
// The transition matrix convention is row-stochastic: entry (i, j) is
// P(S_t = j | S_{t-1} = i), rows summing to 1. Marginal filtered
// probabilities are renormalized each period to absorb floating-point
// drift, and always sum to 1.
//
// The collapse step is a replaceable Collapser; MomentMatchingCollapse is
// the default and the documented reference formula:
//
//	m = Σ_h w_h·m_h
//	C = Σ_h w_h·(C_h + (m_h − m)(m_h − m)')
//
// Failures inside a collapse (singular collapsed covariance downstream)
// surface as core.ErrNonPositiveDefinite, like any other factorization
// failure: an optimizer rejects the parameter point.
//
// ⚙️ Usage:
//
//	fres, err := regime.Filter([]*core.Representation{rep0, rep1}, trans, nil)
//	sres, err := regime.KimSmooth(fres, nil)
//
// Performance: O(n·k^{LagOrder+1}·(m³ + p³)) time; the per-path Kalman
// updates inside one period are independent until the collapse barrier.
package regime
