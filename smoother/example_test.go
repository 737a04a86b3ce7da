package smoother_test

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
	"github.com/katalvlaran/statespace/kalman"
	"github.com/katalvlaran/statespace/smoother"
)

// Scenario:
//
//	A constant level observed twice under unit noise. Smoothing pools both
//	observations into every period, so the smoothed level is the same at
//	t=0 and t=1 even though the filtered level at t=0 has seen only y_0.
//
// ExampleSmooth demonstrates a filter pass followed by a smoother pass.
func ExampleSmooth() {
	y := mat.NewDense(2, 1, []float64{0, 2})
	rep, err := core.NewTimeInvariant(y,
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewSymDense(1, []float64{1}),
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewDense(1, 1, []float64{1}),
		mat.NewSymDense(1, []float64{0}),
		mat.NewVecDense(1, []float64{0}),
		mat.NewSymDense(1, []float64{1}))
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	fres, err := kalman.Filter(rep, nil)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	sres, err := smoother.Smooth(rep, fres, nil)
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	fmt.Printf("filtered: %.4f %.4f\n", fres.Filtered[0].AtVec(0), fres.Filtered[1].AtVec(0))
	fmt.Printf("smoothed: %.4f %.4f\n", sres.Smoothed[0].AtVec(0), sres.Smoothed[1].AtVec(0))
	// Output:
	// filtered: 0.0000 0.6667
	// smoothed: 0.6667 0.6667
}
