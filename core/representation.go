// Package core: Representation constructors and deep-copy plumbing.
// Validation helpers live in validators.go.

package core

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// New builds an immutable Representation from observations y (n×p, NaN marks
// missing), the system matrices sys, and the initial state distribution
// N(a1, P1). Every input is deep-copied.
//
// Returns ErrNoObservations for an empty y, ErrDimensionMismatch when any
// shape disagrees with the others or a time-varying slice is neither length 1
// nor length n, ErrNaNInf for non-finite system entries, and ErrMissingData
// for a malformed WithMissingMask option.
//
// Complexity: O(total matrix storage) for copies plus O(n·p) for the
// missing-data scan.
func New(y *mat.Dense, sys System, a1 *mat.VecDense, p1 *mat.SymDense, opts ...Option) (*Representation, error) {
	if y == nil {
		return nil, ErrNoObservations
	}
	n, p := y.Dims()
	if n == 0 || p == 0 {
		return nil, ErrNoObservations
	}

	var cfg repConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	// Shape validation runs before any allocation beyond the config.
	m, r, err := validateSystem(n, p, sys)
	if err != nil {
		return nil, err
	}
	if a1 == nil || p1 == nil {
		return nil, fmt.Errorf("initial state: %w", ErrDimensionMismatch)
	}
	if a1.Len() != m {
		return nil, fmt.Errorf("a1 length %d, want state dim %d: %w", a1.Len(), m, ErrDimensionMismatch)
	}
	if sp := p1.SymmetricDim(); sp != m {
		return nil, fmt.Errorf("P1 dim %d, want state dim %d: %w", sp, m, ErrDimensionMismatch)
	}
	if err = validateFiniteVec(a1, "a1"); err != nil {
		return nil, err
	}
	if err = validateFiniteSym(p1, "P1"); err != nil {
		return nil, err
	}

	observed, err := scanObserved(y, cfg.mask)
	if err != nil {
		return nil, err
	}

	owned := cloneSystem(sys)
	// Nil intercepts are materialized as shared zero vectors so accessors
	// never return nil.
	if owned.ObsIntercept == nil {
		owned.ObsIntercept = []*mat.VecDense{mat.NewVecDense(p, nil)}
	}
	if owned.StateIntercept == nil {
		owned.StateIntercept = []*mat.VecDense{mat.NewVecDense(m, nil)}
	}

	rep := &Representation{
		n:        n,
		p:        p,
		m:        m,
		r:        r,
		y:        mat.DenseCopyOf(y),
		sys:      owned,
		a1:       mat.VecDenseCopyOf(a1),
		p1:       cloneSym(p1),
		observed: observed,
	}

	return rep, nil
}

// NewTimeInvariant builds a Representation whose system matrices are all
// constant over time. d and c may be nil (zero intercepts). Shapes follow
// the System documentation.
func NewTimeInvariant(y, z *mat.Dense, d *mat.VecDense, h *mat.SymDense, t *mat.Dense, c *mat.VecDense, r *mat.Dense, q *mat.SymDense, a1 *mat.VecDense, p1 *mat.SymDense) (*Representation, error) {
	sys := System{
		Design:     []*mat.Dense{z},
		ObsCov:     []*mat.SymDense{h},
		Transition: []*mat.Dense{t},
		Selection:  []*mat.Dense{r},
		StateCov:   []*mat.SymDense{q},
	}
	if d != nil {
		sys.ObsIntercept = []*mat.VecDense{d}
	}
	if c != nil {
		sys.StateIntercept = []*mat.VecDense{c}
	}

	return New(y, sys, a1, p1)
}

// WithObservations returns a new Representation sharing this one's system
// matrices and initial conditions but carrying different observations
// (same n×p shape, NaN marks missing). Because a Representation is
// immutable, the system matrices are shared rather than copied — the cheap
// path the simulation smoother takes once per synthetic draw.
func (rep *Representation) WithObservations(y *mat.Dense) (*Representation, error) {
	if y == nil {
		return nil, ErrNoObservations
	}
	n, p := y.Dims()
	if n != rep.n || p != rep.p {
		return nil, fmt.Errorf("observations are %d×%d, want %d×%d: %w", n, p, rep.n, rep.p, ErrDimensionMismatch)
	}

	observed, err := scanObserved(y, nil)
	if err != nil {
		return nil, err
	}

	out := *rep
	out.y = mat.DenseCopyOf(y)
	out.observed = observed

	return &out, nil
}

// scanObserved derives the per-period observed-index sets, either from NaN
// entries of y or from an explicit mask. A mask entry marking a NaN value as
// observed is a contradiction and fails with ErrMissingData.
func scanObserved(y *mat.Dense, mask [][]bool) ([][]int, error) {
	n, p := y.Dims()
	if mask != nil && len(mask) != n {
		return nil, fmt.Errorf("mask has %d rows, want %d: %w", len(mask), n, ErrMissingData)
	}

	observed := make([][]int, n)
	for t := 0; t < n; t++ {
		if mask != nil && len(mask[t]) != p {
			return nil, fmt.Errorf("mask row %d has %d entries, want %d: %w", t, len(mask[t]), p, ErrMissingData)
		}
		idx := make([]int, 0, p)
		for i := 0; i < p; i++ {
			v := y.At(t, i)
			switch {
			case mask == nil:
				if !math.IsNaN(v) {
					idx = append(idx, i)
				}
			case mask[t][i]:
				if math.IsNaN(v) {
					return nil, fmt.Errorf("mask marks NaN y[%d,%d] observed: %w", t, i, ErrMissingData)
				}
				idx = append(idx, i)
			}
		}
		observed[t] = idx
	}

	return observed, nil
}

// cloneSystem deep-copies every slice of sys so the Representation owns its
// matrices exclusively.
func cloneSystem(sys System) System {
	out := System{
		Design:         cloneDenseSlice(sys.Design),
		ObsIntercept:   cloneVecSlice(sys.ObsIntercept),
		ObsCov:         cloneSymSlice(sys.ObsCov),
		Transition:     cloneDenseSlice(sys.Transition),
		StateIntercept: cloneVecSlice(sys.StateIntercept),
		Selection:      cloneDenseSlice(sys.Selection),
		StateCov:       cloneSymSlice(sys.StateCov),
	}

	return out
}

func cloneDenseSlice(in []*mat.Dense) []*mat.Dense {
	if in == nil {
		return nil
	}
	out := make([]*mat.Dense, len(in))
	for i, d := range in {
		out[i] = mat.DenseCopyOf(d)
	}

	return out
}

func cloneVecSlice(in []*mat.VecDense) []*mat.VecDense {
	if in == nil {
		return nil
	}
	out := make([]*mat.VecDense, len(in))
	for i, v := range in {
		out[i] = mat.VecDenseCopyOf(v)
	}

	return out
}

func cloneSymSlice(in []*mat.SymDense) []*mat.SymDense {
	if in == nil {
		return nil
	}
	out := make([]*mat.SymDense, len(in))
	for i, s := range in {
		out[i] = cloneSym(s)
	}

	return out
}

func cloneSym(s *mat.SymDense) *mat.SymDense {
	out := mat.NewSymDense(s.SymmetricDim(), nil)
	out.CopySym(s)

	return out
}
