package svd

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrFactorize = errors.New("cannot factorize")
	ErrRank      = errors.New("not enough singular vectors")
)

// Right holds the singular values and thin right singular vectors of a matrix.
type Right struct {
	values []float64
	v      *mat.Dense
}

// NewRight factorizes a and keeps its singular values (descending) together
// with the thin V factor.
func NewRight(a mat.Matrix) (*Right, error) {
	var result mat.SVD
	if ok := result.Factorize(a, mat.SVDThinV); !ok {
		return nil, ErrFactorize
	}
	var v mat.Dense
	result.VTo(&v)
	return &Right{values: result.Values(nil), v: &v}, nil
}

// Largest returns the leading singular value.
func (r *Right) Largest() float64 {
	return r.values[0]
}

// Values returns a copy of all singular values.
func (r *Right) Values() []float64 {
	return append([]float64(nil), r.values...)
}

// Rank returns the number of right singular vectors available.
func (r *Right) Rank() int {
	return len(r.values)
}

// Leading returns a copy of the first n right singular vectors as columns.
func (r *Right) Leading(n int) (*mat.Dense, error) {
	if n < 1 || n > len(r.values) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrRank, n, len(r.values))
	}
	d, _ := r.v.Dims()
	return mat.DenseCopyOf(r.v.Slice(0, d, 0, n)), nil
}

// Polar returns U*Vᵀ from the thin SVD a = U*Σ*Vᵀ, the column-orthonormal
// matrix nearest to a in Frobenius norm.
func Polar(a mat.Matrix) (*mat.Dense, error) {
	var result mat.SVD
	if ok := result.Factorize(a, mat.SVDThin); !ok {
		return nil, ErrFactorize
	}
	var u, v mat.Dense
	result.UTo(&u)
	result.VTo(&v)

	var res mat.Dense
	res.Mul(&u, v.T())
	return &res, nil
}
