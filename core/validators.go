// Package core: construction-time validation.
//
// Purpose:
//   - Single canonical source of shape/finiteness checks so the constructor
//     stays minimal and every failure carries one of the package sentinels.
//   - All checks are pure and deterministic; nothing here allocates beyond
//     error construction on the failure path.
//
// Validation order (documented, enforced in tests):
// required-slice presence -> slice length (1 or n) -> per-period shape
// agreement -> finiteness.

package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// validateSystem checks every System slice against the observation shape
// (n periods, p series) and returns the deduced state dimension m and shock
// dimension r. The first Design slice fixes m; the first StateCov slice
// fixes r; everything else must agree.
func validateSystem(n, p int, sys System) (m, r int, err error) {
	if len(sys.Design) == 0 || len(sys.ObsCov) == 0 || len(sys.Transition) == 0 ||
		len(sys.Selection) == 0 || len(sys.StateCov) == 0 {
		return 0, 0, fmt.Errorf("system matrices incomplete: %w", ErrDimensionMismatch)
	}

	zr, zc := sys.Design[0].Dims()
	if zr != p {
		return 0, 0, fmt.Errorf("design has %d rows, want %d observed series: %w", zr, p, ErrDimensionMismatch)
	}
	m = zc
	if m == 0 {
		return 0, 0, fmt.Errorf("design has zero state columns: %w", ErrDimensionMismatch)
	}
	r = sys.StateCov[0].SymmetricDim()
	if r == 0 {
		return 0, 0, fmt.Errorf("state covariance has zero dim: %w", ErrDimensionMismatch)
	}

	checks := []struct {
		name  string
		count int
		shape func(t int) error
	}{
		{"design", len(sys.Design), func(t int) error {
			return checkDense(sys.Design[t], p, m, "design")
		}},
		{"obs intercept", len(sys.ObsIntercept), func(t int) error {
			return checkVec(sys.ObsIntercept[t], p, "obs intercept")
		}},
		{"obs covariance", len(sys.ObsCov), func(t int) error {
			return checkSym(sys.ObsCov[t], p, "obs covariance")
		}},
		{"transition", len(sys.Transition), func(t int) error {
			return checkDense(sys.Transition[t], m, m, "transition")
		}},
		{"state intercept", len(sys.StateIntercept), func(t int) error {
			return checkVec(sys.StateIntercept[t], m, "state intercept")
		}},
		{"selection", len(sys.Selection), func(t int) error {
			return checkDense(sys.Selection[t], m, r, "selection")
		}},
		{"state covariance", len(sys.StateCov), func(t int) error {
			return checkSym(sys.StateCov[t], r, "state covariance")
		}},
	}

	for _, c := range checks {
		if c.count == 0 {
			continue // optional slice (intercepts)
		}
		if c.count != 1 && c.count != n {
			return 0, 0, fmt.Errorf("%s has %d slices, want 1 or %d: %w", c.name, c.count, n, ErrDimensionMismatch)
		}
		for t := 0; t < c.count; t++ {
			if err = c.shape(t); err != nil {
				return 0, 0, err
			}
		}
	}

	return m, r, nil
}

// checkDense verifies shape and finiteness of one Dense slice.
func checkDense(d *mat.Dense, rows, cols int, name string) error {
	if d == nil {
		return fmt.Errorf("%s slice is nil: %w", name, ErrDimensionMismatch)
	}
	r, c := d.Dims()
	if r != rows || c != cols {
		return fmt.Errorf("%s is %d×%d, want %d×%d: %w", name, r, c, rows, cols, ErrDimensionMismatch)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := d.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%s[%d,%d]: %w", name, i, j, ErrNaNInf)
			}
		}
	}

	return nil
}

// checkVec verifies length and finiteness of one VecDense slice.
func checkVec(v *mat.VecDense, length int, name string) error {
	if v == nil {
		return fmt.Errorf("%s slice is nil: %w", name, ErrDimensionMismatch)
	}
	if v.Len() != length {
		return fmt.Errorf("%s has length %d, want %d: %w", name, v.Len(), length, ErrDimensionMismatch)
	}

	return validateFiniteVec(v, name)
}

// checkSym verifies dimension and finiteness of one SymDense slice.
func checkSym(s *mat.SymDense, dim int, name string) error {
	if s == nil {
		return fmt.Errorf("%s slice is nil: %w", name, ErrDimensionMismatch)
	}
	if s.SymmetricDim() != dim {
		return fmt.Errorf("%s has dim %d, want %d: %w", name, s.SymmetricDim(), dim, ErrDimensionMismatch)
	}

	return validateFiniteSym(s, name)
}

// validateFiniteVec rejects NaN/Inf entries.
func validateFiniteVec(v *mat.VecDense, name string) error {
	for i := 0; i < v.Len(); i++ {
		if x := v.AtVec(i); math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%s[%d]: %w", name, i, ErrNaNInf)
		}
	}

	return nil
}

// validateFiniteSym rejects NaN/Inf entries (upper triangle suffices).
func validateFiniteSym(s *mat.SymDense, name string) error {
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if x := s.At(i, j); math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%s[%d,%d]: %w", name, i, j, ErrNaNInf)
			}
		}
	}

	return nil
}
