// Package core defines the central Representation type — the system
// matrices and initial conditions of a linear Gaussian state-space model —
// and the shared error taxonomy used across the statespace packages.
//
// The model is
//
//	y_t     = Z_t·α_t + d_t + ε_t,    ε_t ~ N(0, H_t)   (observation)
//	α_{t+1} = T_t·α_t + c_t + R_t·η_t, η_t ~ N(0, Q_t)   (transition)
//	α_1 ~ N(a1, P1)
//
// with y_t a p-vector, α_t an m-vector and η_t an r-vector. Every system
// matrix is either time-invariant (one slice reused for all t) or
// time-varying (one slice per period).
//
// Storage convention:
//
//	All matrices are gonum mat.Dense / mat.VecDense / mat.SymDense values,
//	i.e. row-major contiguous float64 buffers. Observations are stored as an
//	n×p Dense: one row per period, one column per observed series. This
//	convention is fixed here once; every downstream kernel relies on it.
//
// Missing data:
//
//	NaN entries of y mark missing observations. An explicit mask may be
//	supplied instead via WithMissingMask; it must match y's shape. Periods
//	with every entry missing skip the measurement update entirely.
//
// A Representation is immutable once constructed: the constructor deep-copies
// its inputs, and all accessors return internal read-only views. It may
// therefore be shared freely across concurrent filter passes or simulation
// draws without synchronization.
//
// Errors:
//
//	ErrNilRepresentation   - nil *Representation passed to a kernel.
//	ErrDimensionMismatch   - matrix shapes disagree with each other or with n.
//	ErrMissingData         - malformed missing-data mask.
//	ErrNonPositiveDefinite - covariance factorization failed (returned by
//	                         downstream kernels, defined here so every
//	                         package shares one sentinel).
//	ErrNaNInf              - non-finite entry in a system matrix.
//	ErrNoObservations      - empty observation matrix.
package core
