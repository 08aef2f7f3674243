// Package manifold holds the tangent projections and retractions used to keep
// the x variable on, or near, the set of column-orthonormal matrices.
package manifold

import (
	"errors"
	"fmt"
	"math"

	"github.com/yyyoichi/sparsepca/internal/svd"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotPositiveDefinite = errors.New("gram matrix of the step is not positive definite")
	ErrFactorize           = errors.New("cannot factorize")
)

// Retraction maps a point off the manifold back onto it.
type Retraction func(tx *mat.Dense) (*mat.Dense, error)

// Projection maps a Euclidean gradient gx at x to a tangent direction.
type Projection func(x, gx *mat.Dense) *mat.Dense

// ProjectSymmetric returns gx - ½·x·(gxᵀx + xᵀgx), the projection of gx onto
// the tangent space at x under the Euclidean metric.
func ProjectSymmetric(x, gx *mat.Dense) *mat.Dense {
	var xgx, sym mat.Dense
	xgx.Mul(gx.T(), x)
	sym.Add(&xgx, xgx.T())

	var rg mat.Dense
	rg.Mul(x, &sym)
	rg.Scale(-0.5, &rg)
	rg.Add(gx, &rg)
	return &rg
}

// ProjectCanonical returns gx - x·(gxᵀx), the Riemannian gradient under the
// canonical metric.
func ProjectCanonical(x, gx *mat.Dense) *mat.Dense {
	var xgx mat.Dense
	xgx.Mul(gx.T(), x)

	var rg mat.Dense
	rg.Mul(x, &xgx)
	rg.Sub(gx, &rg)
	return &rg
}

// Step returns x - tau·rg.
func Step(x, rg *mat.Dense, tau float64) *mat.Dense {
	var tx mat.Dense
	tx.Scale(-tau, rg)
	tx.Add(x, &tx)
	return &tx
}

// InverseSqrt retracts tx to tx·(txᵀtx)^(-1/2), computing the inverse square
// root from the symmetric eigendecomposition of txᵀtx.
func InverseSqrt(tx *mat.Dense) (*mat.Dense, error) {
	_, n := tx.Dims()
	var g mat.SymDense
	g.SymOuterK(1, tx.T())

	var eig mat.EigenSym
	if ok := eig.Factorize(&g, true); !ok {
		return nil, ErrFactorize
	}
	values := eig.Values(nil)
	inv := make([]float64, n)
	for i, v := range values {
		if !(v > 0) || math.IsInf(v, 1) {
			return nil, fmt.Errorf("%w: eigenvalue %g", ErrNotPositiveDefinite, v)
		}
		inv[i] = 1 / math.Sqrt(v)
	}
	var u mat.Dense
	eig.VectorsTo(&u)

	var us, j mat.Dense
	us.Mul(&u, mat.NewDiagDense(n, inv))
	j.Mul(&us, u.T())

	var res mat.Dense
	res.Mul(tx, &j)
	return &res, nil
}

// Polar retracts tx to its polar factor U·Vᵀ, which is exactly
// column-orthonormal.
func Polar(tx *mat.Dense) (*mat.Dense, error) {
	res, err := svd.Polar(tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFactorize, err)
	}
	return res, nil
}

// OrthonormalityError returns ‖xᵀx - I‖_F.
func OrthonormalityError(x mat.Matrix) float64 {
	_, n := x.Dims()
	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for i := range n {
		xtx.Set(i, i, xtx.At(i, i)-1)
	}
	return mat.Norm(&xtx, 2)
}
