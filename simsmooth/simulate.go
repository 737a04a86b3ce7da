// Package simsmooth: the Simulator — unconditional trajectory generation,
// synthetic filter+smoother passes, and mean correction.

package simsmooth

import (
	"fmt"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
	"github.com/katalvlaran/statespace/kalman"
	"github.com/katalvlaran/statespace/smoother"
)

// New builds a Simulator for rep. fres and sres are the filter and smoother
// output of the observed series; either may be nil, in which case the
// missing passes are run here with the configured options. opts == nil
// selects DefaultOptions.
func New(rep *core.Representation, fres *kalman.Result, sres *smoother.Result, opts *Options) (*Simulator, error) {
	if rep == nil {
		return nil, core.ErrNilRepresentation
	}

	o := DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.Parallel < 0 {
		return nil, fmt.Errorf("Parallel must be ≥ 0: %w", ErrBadOptions)
	}

	fopts := kalman.DefaultOptions()
	if o.Filter != nil {
		fopts = *o.Filter
	}
	sopts := smoother.DefaultOptions()
	if o.Smoother != nil {
		sopts = *o.Smoother
	}

	var err error
	if sres == nil {
		if fres == nil {
			if fres, err = kalman.Filter(rep, &fopts); err != nil {
				return nil, err
			}
		}
		if sres, err = smoother.Smooth(rep, fres, &sopts); err != nil {
			return nil, err
		}
	}
	if len(sres.Smoothed) != rep.NumPeriods() {
		return nil, fmt.Errorf("smoother output holds %d periods, representation %d: %w",
			len(sres.Smoothed), rep.NumPeriods(), core.ErrDimensionMismatch)
	}

	return &Simulator{
		rep:      rep,
		real:     sres,
		fopts:    fopts,
		sopts:    sopts,
		seed:     o.Seed,
		parallel: o.Parallel,
	}, nil
}

// Run produces nDraws independent posterior draws. The sequence is finite
// and restartable: running twice with the same Simulator yields identical
// draws, and draw i never depends on the Parallel setting.
func (s *Simulator) Run(nDraws int) ([]Draw, error) {
	if nDraws <= 0 {
		return nil, ErrBadDrawCount
	}

	draws := make([]Draw, nDraws)

	if s.parallel <= 1 {
		for i := 0; i < nDraws; i++ {
			d, err := s.draw(uint64(i))
			if err != nil {
				return nil, err
			}
			draws[i] = d
		}

		return draws, nil
	}

	var g errgroup.Group
	g.SetLimit(s.parallel)
	for i := 0; i < nDraws; i++ {
		i := i
		g.Go(func() error {
			d, err := s.draw(uint64(i))
			if err != nil {
				return err
			}
			draws[i] = d

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return draws, nil
}

// draw produces posterior draw number idx.
func (s *Simulator) draw(idx uint64) (Draw, error) {
	src := drawSource(s.seed, idx)

	traj, err := s.unconditional(src)
	if err != nil {
		return Draw{}, err
	}

	// Filter + smooth the synthetic series with the real system matrices.
	synthRep, err := s.rep.WithObservations(traj.y)
	if err != nil {
		return Draw{}, err
	}
	fres, err := kalman.Filter(synthRep, &s.fopts)
	if err != nil {
		return Draw{}, err
	}
	sres, err := smoother.Smooth(synthRep, fres, &s.sopts)
	if err != nil {
		return Draw{}, err
	}

	// Mean correction: draw = real smoothed + (synthetic truth − synthetic
	// smoothed).
	n := s.rep.NumPeriods()
	out := Draw{
		States:            make([]*mat.VecDense, n),
		StateDisturbances: make([]*mat.VecDense, n),
		ObsDisturbances:   make([]*mat.VecDense, n),
	}
	for t := 0; t < n; t++ {
		out.States[t] = correct(s.real.Smoothed[t], traj.alpha[t], sres.Smoothed[t])
		out.StateDisturbances[t] = correct(s.real.StateDisturbance[t], traj.eta[t], sres.StateDisturbance[t])
		out.ObsDisturbances[t] = correct(s.real.ObsDisturbance[t], traj.eps[t], sres.ObsDisturbance[t])
	}

	return out, nil
}

// trajectory is one unconditional simulation of the model.
type trajectory struct {
	y     *mat.Dense      // synthetic observations, real missing pattern applied
	alpha []*mat.VecDense // α⁺_t
	eta   []*mat.VecDense // η⁺_t
	eps   []*mat.VecDense // ε⁺_t
}

// unconditional simulates (α⁺, ε⁺, η⁺, y⁺) forward from the initial
// distribution. Samplers are cached per covariance slice, so time-invariant
// systems factorize each covariance once per draw.
func (s *Simulator) unconditional(src rand.Source) (*trajectory, error) {
	rep := s.rep
	n, p := rep.NumPeriods(), rep.ObsDim()

	initSampler, ok := newMVN(rep.InitialCov(), src)
	if !ok {
		return nil, fmt.Errorf("simsmooth: initial state covariance: %w", core.ErrNonPositiveDefinite)
	}

	samplers := make(map[*mat.SymDense]*mvn)
	sampler := func(sigma *mat.SymDense, role string) (*mvn, error) {
		if m, hit := samplers[sigma]; hit {
			return m, nil
		}
		m, okS := newMVN(sigma, src)
		if !okS {
			return nil, fmt.Errorf("simsmooth: %s: %w", role, core.ErrNonPositiveDefinite)
		}
		samplers[sigma] = m

		return m, nil
	}

	traj := &trajectory{
		y:     mat.NewDense(n, p, nil),
		alpha: make([]*mat.VecDense, n),
		eta:   make([]*mat.VecDense, n),
		eps:   make([]*mat.VecDense, n),
	}

	// α⁺_1 = a1 + draw from N(0, P1)
	alpha := initSampler.sample(nil)
	alpha.AddVec(alpha, rep.InitialState())

	yRow := mat.NewVecDense(p, nil)
	for t := 0; t < n; t++ {
		traj.alpha[t] = mat.VecDenseCopyOf(alpha)

		hs, err := sampler(rep.ObsCov(t), "observation covariance")
		if err != nil {
			return nil, err
		}
		eps := hs.sample(nil)
		traj.eps[t] = eps

		// y⁺ = Z·α⁺ + d + ε⁺, then mask to the real missing pattern.
		yRow.MulVec(rep.Design(t), alpha)
		yRow.AddVec(yRow, rep.ObsIntercept(t))
		yRow.AddVec(yRow, eps)
		for i := 0; i < p; i++ {
			traj.y.Set(t, i, yRow.AtVec(i))
		}
		nanMask(traj.y, t, rep.ObservedAt(t))

		qs, err := sampler(rep.StateCov(t), "state covariance")
		if err != nil {
			return nil, err
		}
		eta := qs.sample(nil)
		traj.eta[t] = eta

		if t < n-1 {
			// α⁺_{t+1} = T·α⁺ + c + R·η⁺
			var next, re mat.VecDense
			next.MulVec(rep.Transition(t), alpha)
			next.AddVec(&next, rep.StateIntercept(t))
			re.MulVec(rep.Selection(t), eta)
			next.AddVec(&next, &re)
			alpha.CopyVec(&next)
		}
	}

	return traj, nil
}

// correct computes real + (truth − synthetic) into a fresh vector.
func correct(real, truth, synthetic *mat.VecDense) *mat.VecDense {
	out := mat.NewVecDense(real.Len(), nil)
	out.SubVec(truth, synthetic)
	out.AddVec(real, out)

	return out
}
