// Package core: sentinel error set shared by every statespace package.
// All kernels MUST return these sentinels (possibly wrapped with package
// context via fmt.Errorf("...: %w", Err)) and tests MUST check them via
// errors.Is. No kernel panics on user-triggered error conditions.

package core

import "errors"

var (
	// ErrNilRepresentation indicates a nil *Representation was passed to a kernel.
	ErrNilRepresentation = errors.New("core: representation is nil")

	// ErrDimensionMismatch indicates incompatible matrix shapes: across time
	// slices, against the declared state/observation dimensions, or against
	// the number of periods. Raised at construction; fatal to that call.
	ErrDimensionMismatch = errors.New("core: dimension mismatch")

	// ErrMissingData indicates a malformed missing-data pattern, e.g. a mask
	// whose shape disagrees with the observation matrix. Fatal to that call.
	ErrMissingData = errors.New("core: invalid missing-data mask")

	// ErrNonPositiveDefinite indicates a covariance factorization failed
	// mid-recursion (forecast-error covariance, collapsed regime covariance).
	// Callers running an outer optimization treat it as a rejected parameter
	// point (log-likelihood -Inf), not as a fatal fault.
	ErrNonPositiveDefinite = errors.New("core: matrix not positive definite")

	// ErrNaNInf indicates a NaN or ±Inf entry in a system matrix or initial
	// condition. Only the observation matrix may carry NaN (missing values).
	ErrNaNInf = errors.New("core: NaN or Inf in system matrix")

	// ErrNoObservations indicates an observation matrix with zero periods or
	// zero observed series.
	ErrNoObservations = errors.New("core: observation matrix is empty")
)
