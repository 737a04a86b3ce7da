// Package statespace is a toolkit for linear Gaussian state-space
// estimation — Kalman filtering, smoothing, simulation smoothing and
// Markov-switching (regime) filtering — built on gonum linear algebra.
//
// 🚀 What is statespace?
//
//	A library of recursive estimation kernels for models of the form
//		y_t     = Z_t·α_t + d_t + ε_t,   ε_t ~ N(0, H_t)
//		α_{t+1} = T_t·α_t + c_t + R_t·η_t, η_t ~ N(0, Q_t)
//	It consumes a state-space representation and produces filtered,
//	smoothed and simulated trajectories plus a log-likelihood — the inner
//	loop of maximum-likelihood time-series estimation (ARIMA, VAR,
//	unobserved components, dynamic factor models, …).
//
// ✨ Key features:
//   - Multiple numerically distinct filter strategies (conventional,
//     inversion-free solves, univariate sequential updates) behind one contract
//   - Four smoother variants (conventional, classical, alternative, univariate)
//   - Mean-correction simulation smoother with reproducible parallel draws
//   - Hamilton regime-switching filter + Kim smoother with a pluggable
//     moment-matching collapse policy
//   - Missing observations handled per period, degrading gracefully
//
// Under the hood, everything is organized under five subpackages:
//
//	core/      — the Representation: system matrices, initial conditions, validation
//	kalman/    — forward filtering recursions & likelihood evaluation
//	smoother/  — backward state/disturbance smoothing recursions
//	simsmooth/ — posterior simulation (simulation smoothing)
//	regime/    — Markov-switching filtering & smoothing
//
// Typical pipeline:
//
//	rep, err := core.NewTimeInvariant(y, z, d, h, tt, c, r, q, a1, p1)
//	fres, err := kalman.Filter(rep, nil)
//	sres, err := smoother.Smooth(rep, fres, nil)
//
// All kernels are deterministic, allocation-conscious, and return sentinel
// errors (no panics on user input). See each package's doc.go and
// example_test.go for walkthroughs.
//
//	go get github.com/katalvlaran/statespace
package statespace
