// Package simsmooth: options, the Simulator and the Draw type.

package simsmooth

import (
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
	"github.com/katalvlaran/statespace/kalman"
	"github.com/katalvlaran/statespace/smoother"
)

// Sentinel errors for the simulation smoother.
var (
	// ErrBadDrawCount indicates a non-positive number of requested draws.
	ErrBadDrawCount = errors.New("simsmooth: draw count must be positive")

	// ErrBadOptions indicates nonsensical option values.
	ErrBadOptions = errors.New("simsmooth: invalid options")
)

// Options configures a Simulator.
//
// Fields:
//   - Seed     — base seed for all draws; 0 selects a fixed default so the
//     zero value stays reproducible (never time-based).
//   - Parallel — maximum concurrent draws; values ≤ 1 run sequentially.
//     Results are identical for any Parallel value.
//   - Filter   — options for the internal filter passes on synthetic series;
//     nil selects kalman.DefaultOptions.
//   - Smoother — options for the internal smoother passes; nil selects
//     smoother.DefaultOptions.
type Options struct {
	Seed     int64
	Parallel int
	Filter   *kalman.Options
	Smoother *smoother.Options
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{Seed: 0, Parallel: 1}
}

// Draw is one sampled trajectory from p(α, ε, η | y). Slices are indexed by
// period; draws are independent of each other.
type Draw struct {
	// States holds α̃_t (length m).
	States []*mat.VecDense

	// StateDisturbances holds η̃_t (length r); ObsDisturbances holds ε̃_t
	// (length p).
	StateDisturbances []*mat.VecDense
	ObsDisturbances   []*mat.VecDense
}

// Simulator produces posterior draws for one Representation. It is safe for
// concurrent use: all retained inputs are read-only.
type Simulator struct {
	rep  *core.Representation
	real *smoother.Result // smoothed moments of the observed series

	fopts kalman.Options
	sopts smoother.Options

	seed     int64
	parallel int
}
