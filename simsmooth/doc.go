// Package simsmooth draws samples from the joint posterior distribution of
// states and disturbances conditional on the observed series — simulation
// smoothing in the mean-correction (de Jong–Shephard style) form.
//
// Algorithm, per draw:
//
//  1. Sample an unconditional trajectory: α⁺_1 ~ N(a1, P1), then for each t
//     ε⁺_t ~ N(0, H_t), η⁺_t ~ N(0, Q_t),
//     y⁺_t = Z_t·α⁺_t + d_t + ε⁺_t,
//     α⁺_{t+1} = T_t·α⁺_t + c_t + R_t·η⁺_t,
//     masking y⁺ with the real series' missing pattern.
//  2. Run the Kalman filter + smoother on the synthetic series y⁺.
//  3. Mean-correct: α̃_t = α̂_t + (α⁺_t − α̂⁺_t), where α̂ is the smoothed
//     mean of the real data and α̂⁺ that of the synthetic data. The result
//     is an exact draw from p(α | y). Disturbance draws are corrected the
//     same way.
//
// Each draw costs one full filter+smoother pass — the dominant expense —
// and draws are independent, so Run fans them out across errgroup workers
// when Options.Parallel > 1. Reproducibility survives the concurrency: each
// draw's generator is seeded by a SplitMix64 mix of the base seed and the
// draw index, never by scheduling order.
//
// Sampling requires the disturbance covariances (and P1) to be positive
// definite or exactly zero; a zero covariance simply pins that disturbance
// to zero.
package simsmooth
