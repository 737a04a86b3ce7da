// Package smoother implements backward Kalman smoothing: state and
// disturbance estimates conditional on the full observation sample,
// consuming a kalman.Result read-only.
//
// The reference recursion (Durbin–Koopman) runs t = n..1 with r_n = 0,
// N_n = 0:
//
//	L_t     = T_t − K_t·Z_t
//	r_{t-1} = Z'_t·F_t⁻¹·v_t + L'_t·r_t
//	N_{t-1} = Z'_t·F_t⁻¹·Z_t + L'_t·N_t·L_t
//	α̂_t    = a_t + P_t·r_{t-1}
//	V_t     = P_t − P_t·N_{t-1}·P_t
//
// Method variants reorganize this algebra for numerical stability and cost;
// the mathematical result is identical (the test suite enforces cross-method
// agreement to tight tolerance):
//
//   - MethodConventional — recursion above, verbatim.
//   - MethodClassical    — Anderson–Moore fixed-interval form on filtered
//     moments: α̂_t = a_{t|t} + J_t·(α̂_{t+1} − a_{t+1}) with
//     J_t = P_{t|t}·T'_t·P_{t+1}⁻¹.
//   - MethodAlternative  — Koopman's reorganization on filtered moments:
//     α̂_t = a_{t|t} + P_{t|t}·T'_t·r_t, avoiding the r_{t-1} coupling
//     inside the period.
//   - MethodUnivariate   — scalar backward steps mirroring the univariate
//     filter; requires a kalman.Result produced by kalman.MethodUnivariate.
//
// Fully missing periods propagate r_{t-1} = T'_t·r_t, N_{t-1} = T'_t·N_t·T_t.
// The final-period invariant α̂_n = a_{n|n} holds for every method.
//
// Smoothed disturbances follow the same pass: η̂_t = Q_t·R'_t·r_t with
// covariance Q_t − Q_t·R'_t·N_t·R_t·Q_t, and ε̂_t = H_t·(F_t⁻¹·v_t − K'_t·r_t)
// with its Durbin–Koopman covariance (observation-side quantities reduced to
// observed entries and zero-embedded, which also yields the correct
// cross-correlation of missing entries).
package smoother
