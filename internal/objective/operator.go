package objective

import "gonum.org/v1/gonum/mat"

// Operator applies the symmetric matrix A that defines the smooth part of
// the objective. In covariance form A is b itself, otherwise A = bᵀb and
// is applied as bᵀ(b·y) without ever forming the product.
//
// Operator holds no scratch buffers, so it is safe to share between
// concurrent solves.
type Operator struct {
	b          *mat.Dense
	covariance bool
}

func NewOperator(b *mat.Dense, covariance bool) *Operator {
	return &Operator{b: b, covariance: covariance}
}

// Covariance reports whether A is applied by a single multiplication.
func (o *Operator) Covariance() bool { return o.covariance }

// Dim returns d, the side of A.
func (o *Operator) Dim() int {
	_, c := o.b.Dims()
	return c
}

// Apply returns A·y.
func (o *Operator) Apply(y mat.Matrix) *mat.Dense {
	var dst mat.Dense
	if o.covariance {
		dst.Mul(o.b, y)
		return &dst
	}
	var by mat.Dense
	by.Mul(o.b, y)
	dst.Mul(o.b.T(), &by)
	return &dst
}
