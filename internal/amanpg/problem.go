package amanpg

import (
	"errors"
	"fmt"
	"math"

	"github.com/yyyoichi/sparsepca/internal/normalize"
	"github.com/yyyoichi/sparsepca/internal/objective"
	"github.com/yyyoichi/sparsepca/internal/svd"
	"gonum.org/v1/gonum/mat"
)

// Problem is the prepared, read-only input of a solve: the operator A, the
// right singular vectors used for the default starting point, and the
// leading singular value used for the initial proximal step.
type Problem struct {
	op    *objective.Operator
	right *svd.Right
	dim   int
}

// Prepare normalizes b when asked, picks the product convention and
// factorizes the result. Data-form input with d < 2m (fewer than twice as
// many columns as rows) is converted to its Gram matrix bᵀb. Input declared
// as covariance must be square and is used as is.
func Prepare(b mat.Matrix, normalizeRows, covariance bool) (*Problem, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil matrix", ErrInvalidInput)
	}
	m, d := b.Dims()
	if m == 0 || d == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrInvalidInput)
	}
	if covariance && m != d {
		return nil, fmt.Errorf("%w: covariance form must be square, got %dx%d", ErrInvalidInput, m, d)
	}

	var work *mat.Dense
	if normalizeRows && !covariance {
		var err error
		work, err = normalize.Rows(b)
		switch {
		case errors.Is(err, normalize.ErrZeroRow):
			return nil, fmt.Errorf("%w: %w", ErrNumericalDegeneracy, err)
		case err != nil:
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	} else {
		work = mat.DenseCopyOf(b)
		if !allFinite(work) {
			return nil, fmt.Errorf("%w: matrix contains non-finite values", ErrInvalidInput)
		}
	}

	if !covariance && d < 2*m {
		var gram mat.Dense
		gram.Mul(work.T(), work)
		work = &gram
		covariance = true
	}

	right, err := svd.NewRight(work)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNumericalDegeneracy, err)
	}
	return &Problem{
		op:    objective.NewOperator(work, covariance),
		right: right,
		dim:   d,
	}, nil
}

// Dim returns d, the number of variables (columns of the input).
func (p *Problem) Dim() int { return p.dim }

// Rank returns how many right singular vectors are available as a
// default starting point.
func (p *Problem) Rank() int { return p.right.Rank() }

// Covariance reports whether products use a single multiplication by A.
func (p *Problem) Covariance() bool { return p.op.Covariance() }

// Operator returns the A operator.
func (p *Problem) Operator() *objective.Operator { return p.op }

// Lipschitz returns the Lipschitz constant of the smooth y-gradient,
// 2σ₁ + 2·ridge in covariance form and 2σ₁² + 2·ridge otherwise.
func (p *Problem) Lipschitz(ridge float64) float64 {
	s := p.right.Largest()
	if p.op.Covariance() {
		return 2*s + 2*ridge
	}
	return 2*s*s + 2*ridge
}

// Initial returns the first n right singular vectors.
func (p *Problem) Initial(n int) (*mat.Dense, error) {
	v, err := p.right.Leading(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return v, nil
}

func allFinite(m *mat.Dense) bool {
	r, _ := m.Dims()
	for i := range r {
		for _, v := range m.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
