// Package kalman implements the forward Kalman filtering recursion for
// linear Gaussian state-space models, producing predicted and filtered
// state moments, innovations, and the Gaussian log-likelihood.
//
// 🚀 What does the filter do?
//
//	Given a core.Representation, one forward pass over t = 1..n computes
//	  predict: a_t = T_{t-1}·a_{t-1|t-1} + c_{t-1}
//	           P_t = T_{t-1}·P_{t-1|t-1}·T'_{t-1} + R_{t-1}·Q_{t-1}·R'_{t-1}
//	  update:  v_t = y_t − Z_t·a_t − d_t,  F_t = Z_t·P_t·Z'_t + H_t
//	           a_{t|t} = a_t + P_t·Z'_t·F_t⁻¹·v_t
//	           P_{t|t} = P_t − P_t·Z'_t·F_t⁻¹·Z_t·P_t
//	and accumulates −½·(p_t·log 2π + log|F_t| + v'_t·F_t⁻¹·v_t).
//	The filter runs once per likelihood evaluation inside an outer
//	optimization loop, so it dominates estimation runtime.
//
// ✨ Method variants (same contract, different numerical path):
//   - MethodConventional — factorize F_t by Cholesky and form F_t⁻¹ explicitly.
//   - MethodInversion    — never form F_t⁻¹; solve the linear systems instead
//     (better conditioning, fewer flops for large p).
//   - MethodUnivariate   — process the observation vector one scalar at a
//     time (Durbin–Koopman sequential updating), avoiding matrix inversion
//     altogether; the method of choice for ill-conditioned F_t or large p.
//     A non-diagonal H_t is first diagonalized by its Cholesky factor.
//
// Missing observations (NaN entries of y) are dropped from that period's
// update; a fully missing period keeps a_{t|t} = a_t, P_{t|t} = P_t exactly
// and contributes zero to the likelihood.
//
// A forecast-error covariance that fails to factorize yields an error
// matching core.ErrNonPositiveDefinite. Outer optimizers treat it as a
// rejected parameter point (log-likelihood −∞), not a fatal fault.
//
// ⚙️ Usage:
//
//	opts := kalman.DefaultOptions()
//	opts.Method = kalman.MethodUnivariate
//	res, err := kalman.Filter(rep, &opts)
//	if err != nil { ... }
//	fmt.Println("loglike:", res.LogLikelihood)
//
// Performance: O(n·(m³ + m²·p + p³)) time, O(n·(m² + p²)) memory.
package kalman
