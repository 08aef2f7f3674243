package amanpg

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Loadings returns a copy of y with every non-zero column scaled to unit
// Euclidean norm. Zero columns stay zero.
func Loadings(y mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(y)
	r, c := out.Dims()
	col := make([]float64, r)
	for j := range c {
		mat.Col(col, j, out)
		norm := floats.Norm(col, 2)
		if norm == 0 {
			norm = 1
		}
		floats.Scale(1/norm, col)
		out.SetCol(j, col)
	}
	return out
}

// Sparsity returns the fraction of entries of y that are exactly zero.
func Sparsity(y mat.Matrix) float64 {
	r, c := y.Dims()
	if r*c == 0 {
		return 0
	}
	var zeros int
	for i := range r {
		for j := range c {
			if y.At(i, j) == 0 {
				zeros++
			}
		}
	}
	return float64(zeros) / float64(r*c)
}
