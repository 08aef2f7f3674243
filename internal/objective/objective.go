package objective

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Evaluator computes the composite objective
//
//	f(x, y) = -2<x, Ay> + fy(y)
//
// where fy is <y, Ay> + ridge·‖y‖² + h(y) for a finite ridge and ‖y‖² + h(y)
// otherwise, and h(y) = Σ_j mu_j Σ_i |y_ij|.
type Evaluator struct {
	mu    []float64
	ridge float64
}

func NewEvaluator(mu []float64, ridge float64) *Evaluator {
	return &Evaluator{mu: mu, ridge: ridge}
}

// Finite reports whether the ridge parameter is finite.
func (e *Evaluator) Finite() bool { return !math.IsInf(e.ridge, 1) }

func (e *Evaluator) Ridge() float64 { return e.ridge }

func (e *Evaluator) Weights() []float64 { return e.mu }

// Penalty returns h(y).
func (e *Evaluator) Penalty(y *mat.Dense) float64 {
	r, _ := y.Dims()
	var h float64
	for i := range r {
		for j, v := range y.RawRowView(i) {
			h += e.mu[j] * math.Abs(v)
		}
	}
	return h
}

// Fx returns the cross term -2<x, ay> for ay = A·y.
func (e *Evaluator) Fx(x, ay *mat.Dense) float64 {
	return -2 * Inner(x, ay)
}

// Fy returns the y-only part of the objective for ay = A·y.
func (e *Evaluator) Fy(y, ay *mat.Dense) float64 {
	if !e.Finite() {
		return Inner(y, y) + e.Penalty(y)
	}
	return Inner(y, ay) + e.ridge*Inner(y, y) + e.Penalty(y)
}

// Value returns f(x, y) for ay = A·y.
func (e *Evaluator) Value(x, y, ay *mat.Dense) float64 {
	return e.Fx(x, ay) + e.Fy(y, ay)
}

// GradY places in dst the gradient in y of the smooth part of f:
// 2(Ay - Ax + ridge·y) for a finite ridge, 2(y - Ax) otherwise.
func (e *Evaluator) GradY(dst, y, ax, ay *mat.Dense) {
	if !e.Finite() {
		dst.Sub(y, ax)
		dst.Scale(2, dst)
		return
	}
	dst.Sub(ay, ax)
	if e.ridge != 0 {
		var ry mat.Dense
		ry.Scale(e.ridge, y)
		dst.Add(dst, &ry)
	}
	dst.Scale(2, dst)
}

// GradX returns the Euclidean gradient of f in x, -2·Ay.
func (e *Evaluator) GradX(ay *mat.Dense) *mat.Dense {
	var g mat.Dense
	g.Scale(-2, ay)
	return &g
}

// Inner returns the Frobenius inner product Σ a_ij·b_ij.
func Inner(a, b *mat.Dense) float64 {
	r, _ := a.Dims()
	var s float64
	for i := range r {
		s += floats.Dot(a.RawRowView(i), b.RawRowView(i))
	}
	return s
}
