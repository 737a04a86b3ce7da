package kalman_test

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/statespace/core"
	"github.com/katalvlaran/statespace/kalman"
)

// benchmarkFilter runs one filter pass per iteration on a univariate
// local-level series of length n with the given method.
func benchmarkFilter(b *testing.B, n int, method kalman.Method) {
	obs := make([]float64, n)
	for i := 0; i < n; i++ {
		obs[i] = math.Sin(0.3 * float64(i))
	}
	rep, err := core.NewTimeInvariant(mat.NewDense(n, 1, obs),
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewSymDense(1, []float64{1}),
		mat.NewDense(1, 1, []float64{1}), nil,
		mat.NewDense(1, 1, []float64{1}),
		mat.NewSymDense(1, []float64{0.3}),
		mat.NewVecDense(1, []float64{0}),
		mat.NewSymDense(1, []float64{100}))
	if err != nil {
		b.Fatalf("representation: %v", err)
	}
	opts := kalman.DefaultOptions()
	opts.Method = method

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err = kalman.Filter(rep, &opts); err != nil {
			b.Fatalf("filter: %v", err)
		}
	}
}

// BenchmarkFilter_Conventional200 benchmarks the conventional method on a
// 200-period series.
func BenchmarkFilter_Conventional200(b *testing.B) {
	benchmarkFilter(b, 200, kalman.MethodConventional)
}

// BenchmarkFilter_Inversion200 benchmarks the solve-based method on a
// 200-period series.
func BenchmarkFilter_Inversion200(b *testing.B) {
	benchmarkFilter(b, 200, kalman.MethodInversion)
}

// BenchmarkFilter_Univariate200 benchmarks the sequential scalar method on
// a 200-period series.
func BenchmarkFilter_Univariate200(b *testing.B) {
	benchmarkFilter(b, 200, kalman.MethodUnivariate)
}
