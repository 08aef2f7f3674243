package prox

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// L1 places in dst the soft threshold of b,
//
//	sign(b_ij) * max(|b_ij| - lamb_j, 0),
//
// with lamb_j broadcast down column j. dst may alias b.
// L1 panics if len(lamb) differs from the column count of b.
func L1(dst *mat.Dense, b mat.Matrix, lamb []float64) {
	if _, c := b.Dims(); len(lamb) != c {
		panic("prox: threshold length does not match column count")
	}
	dst.Apply(func(_, j int, v float64) float64 {
		a := math.Abs(v) - lamb[j]
		if a <= 0 {
			return 0
		}
		return math.Copysign(a, v)
	}, b)
}

// Thresholds scales the per-column weights mu by the step size t.
func Thresholds(mu []float64, t float64) []float64 {
	out := make([]float64, len(mu))
	for j, m := range mu {
		out[j] = m * t
	}
	return out
}
