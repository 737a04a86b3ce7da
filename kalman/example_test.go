package kalman_test

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
	"github.com/katalvlaran/statespace/kalman"
)

// Scenario:
//
//	One noisy measurement y = 1.5 of a random-walk level starting at
//	N(0, 2) with measurement variance 1. The forecast-error variance is
//	F = P1 + H = 3, so the filtered level is P1/F·y = 1.
//
// ExampleFilter demonstrates a single conventional filter pass.
func ExampleFilter() {
	y := mat.NewDense(1, 1, []float64{1.5})
	rep, err := core.NewTimeInvariant(y,
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewSymDense(1, []float64{1}),
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewDense(1, 1, []float64{1}),
		mat.NewSymDense(1, []float64{0.5}),
		mat.NewVecDense(1, []float64{0}),
		mat.NewSymDense(1, []float64{2}))
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	res, err := kalman.Filter(rep, nil)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	fmt.Printf("filtered level: %.4f\n", res.Filtered[0].AtVec(0))
	fmt.Printf("log-likelihood: %.4f\n", res.LogLikelihood)
	// Output:
	// filtered level: 1.0000
	// log-likelihood: -1.8432
}

// Scenario:
//
//	The same series filtered by all three methods; the likelihood is
//	method-independent.
//
// ExampleFilter_methods demonstrates method selection through Options.
func ExampleFilter_methods() {
	obs := make([]float64, 30)
	for i := range obs {
		obs[i] = math.Sin(0.5 * float64(i))
	}
	rep, err := core.NewTimeInvariant(mat.NewDense(30, 1, obs),
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewSymDense(1, []float64{1}),
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewDense(1, 1, []float64{1}),
		mat.NewSymDense(1, []float64{0.5}),
		mat.NewVecDense(1, []float64{0}),
		mat.NewSymDense(1, []float64{100}))
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	base, _ := kalman.Filter(rep, nil)
	for _, method := range []kalman.Method{kalman.MethodInversion, kalman.MethodUnivariate} {
		opts := kalman.DefaultOptions()
		opts.Method = method
		res, ferr := kalman.Filter(rep, &opts)
		if ferr != nil {
			fmt.Println("error:", ferr)

			return
		}
		fmt.Printf("%s agrees: %t\n", method, math.Abs(res.LogLikelihood-base.LogLikelihood) < 1e-9)
	}
	// Output:
	// inversion agrees: true
	// univariate agrees: true
}
