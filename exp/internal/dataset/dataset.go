package dataset

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Normal returns an m×d matrix of independent standard normal entries.
// The same seed always yields the same matrix.
func Normal(seed int64, m, d int) *mat.Dense {
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewPCG(uint64(seed), 0)}
	data := make([]float64, m*d)
	for i := range data {
		data[i] = dist.Rand()
	}
	return mat.NewDense(m, d, data)
}

// Seeds returns n consecutive seeds starting at first.
func Seeds(first int64, n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		seeds[i] = first + int64(i)
	}
	return seeds
}
