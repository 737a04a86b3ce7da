// Package simsmooth - RNG utilities for reproducible parallel draws.
//
// Goals:
//   - Determinism: same seed ⇒ identical draws across platforms and for any
//     Parallel setting.
//   - Encapsulation: a single seed-derivation scheme; no time-based sources
//     hidden anywhere.
//   - Independence: per-draw streams derived by SplitMix64 mixing, so
//     workers never share generator state.

package simsmooth

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// defaultSeed is the fixed "zero" seed used when callers pass Seed==0.
// The value is arbitrary but stable to keep reproducible defaults.
const defaultSeed int64 = 1

// deriveSeed mixes the base seed and a draw index into an independent
// 64-bit stream seed via a SplitMix64-style finalizer (Vigna 2014 constants
// for strong bit diffusion).
func deriveSeed(base int64, draw uint64) uint64 {
	x := uint64(base) ^ (draw + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31

	return x
}

// drawSource returns the deterministic generator for one draw index.
// Policy: seed==0 ⇒ defaultSeed; otherwise the provided seed verbatim.
func drawSource(seed int64, draw uint64) rand.Source {
	s := seed
	if s == 0 {
		s = defaultSeed
	}

	return rand.NewSource(deriveSeed(s, draw))
}

// mvn wraps a multivariate normal sampler, with a nil inner sampler for an
// exactly zero covariance (the draw is then deterministically zero).
type mvn struct {
	dim    int
	normal *distmv.Normal
}

// newMVN builds a zero-mean sampler for the covariance sigma. A zero matrix
// yields the degenerate sampler; a non-zero matrix that fails the positive-
// definiteness check yields ok=false.
func newMVN(sigma *mat.SymDense, src rand.Source) (*mvn, bool) {
	dim := sigma.SymmetricDim()
	if isZeroSym(sigma) {
		return &mvn{dim: dim}, true
	}

	normal, ok := distmv.NewNormal(make([]float64, dim), sigma, src)
	if !ok {
		return nil, false
	}

	return &mvn{dim: dim, normal: normal}, true
}

// sample writes one draw into dst (allocating when dst is nil).
func (s *mvn) sample(dst *mat.VecDense) *mat.VecDense {
	if dst == nil {
		dst = mat.NewVecDense(s.dim, nil)
	}
	if s.normal == nil {
		dst.Zero()

		return dst
	}

	buf := s.normal.Rand(nil)
	for i := 0; i < s.dim; i++ {
		dst.SetVec(i, buf[i])
	}

	return dst
}

// isZeroSym reports whether every entry of s is exactly zero.
func isZeroSym(s *mat.SymDense) bool {
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if s.At(i, j) != 0 {
				return false
			}
		}
	}

	return true
}

// nanMask marks every column of dst row t that is not in the sorted
// observed-index set as NaN, mirroring the real series' missing pattern.
func nanMask(dst *mat.Dense, t int, observedCols []int) {
	_, p := dst.Dims()
	obs := 0
	for i := 0; i < p; i++ {
		if obs < len(observedCols) && observedCols[obs] == i {
			obs++
			continue
		}
		dst.Set(t, i, math.NaN())
	}
}
