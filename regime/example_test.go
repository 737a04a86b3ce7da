package regime_test

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
	"github.com/katalvlaran/statespace/regime"
)

// Scenario:
//
//	A series that jumps from a level near 0 to a level near 5 halfway
//	through, modeled as two regimes differing only in their observation
//	intercept, under a persistent two-state chain.
//
// ExampleFilter demonstrates regime classification with the Hamilton
// filter followed by Kim smoothing.
func ExampleFilter() {
	const n = 20
	obs := make([]float64, n)
	for i := range obs {
		obs[i] = 0.2 * math.Sin(float64(i))
		if i >= n/2 {
			obs[i] += 5
		}
	}

	build := func(d float64) *core.Representation {
		rep, err := core.NewTimeInvariant(mat.NewDense(n, 1, obs),
			mat.NewDense(1, 1, []float64{1}),
			mat.NewVecDense(1, []float64{d}),
			mat.NewSymDense(1, []float64{0.5}),
			mat.NewDense(1, 1, []float64{0.9}), nil,
			mat.NewDense(1, 1, []float64{1}),
			mat.NewSymDense(1, []float64{0.02}),
			mat.NewVecDense(1, []float64{0}),
			mat.NewSymDense(1, []float64{0.5}))
		if err != nil {
			panic(err)
		}

		return rep
	}
	reps := []*core.Representation{build(0), build(5)}
	transition := mat.NewDense(2, 2, []float64{0.95, 0.05, 0.05, 0.95})

	fres, err := regime.Filter(reps, transition, nil)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	sres, err := regime.KimSmooth(fres, nil)
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	fmt.Printf("regime 0 early: %t\n", sres.SmoothedProbs[3][0] > 0.9)
	fmt.Printf("regime 1 late:  %t\n", sres.SmoothedProbs[n-3][1] > 0.9)
	// Output:
	// regime 0 early: true
	// regime 1 late:  true
}
