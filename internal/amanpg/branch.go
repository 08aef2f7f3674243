package amanpg

import (
	"math"

	"github.com/yyyoichi/sparsepca/internal/linesearch"
	"github.com/yyyoichi/sparsepca/internal/manifold"
	"github.com/yyyoichi/sparsepca/internal/objective"
	"github.com/yyyoichi/sparsepca/internal/prox"
	"github.com/yyyoichi/sparsepca/internal/trace"
	"gonum.org/v1/gonum/mat"
)

// branch holds what differs between a finite and an infinite ridge.
type branch interface {
	name() string
	stepY(s *state) error
	project(x, gx *mat.Dense) *mat.Dense
	retract(tx *mat.Dense) (*mat.Dense, error)
	xFloor(d int) float64
	done(tr *trace.Trace) bool
}

type finiteRidge struct {
	tol, bound float64
}

func (finiteRidge) name() string { return "finite" }

// stepY takes a proximal gradient step in y with backtracking on t. Trials
// are measured against the full objective at the current point.
func (finiteRidge) stepY(s *state) error {
	s.t = s.ySched.Next(s.t, s.lastY)

	var gy mat.Dense
	s.eval.GradY(&gy, s.y, s.ax, s.ay)
	mu := s.eval.Weights()
	ctrl := linesearch.Controller{Contraction: s.gamma, Floor: 1e-5 / float64(s.p.Dim())}

	type cand struct{ y, ay *mat.Dense }
	next, _, out, err := linesearch.Search(ctrl, s.t, s.trace.Last(),
		func(step float64) (cand, float64, float64, error) {
			var yt mat.Dense
			yt.Scale(-step, &gy)
			yt.Add(s.y, &yt)
			prox.L1(&yt, &yt, prox.Thresholds(mu, step))
			ayt := s.p.op.Apply(&yt)

			var diff mat.Dense
			diff.Sub(&yt, s.y)
			normSq := objective.Inner(&diff, &diff) / (step * step)
			return cand{&yt, ayt}, s.eval.Value(s.x, &yt, ayt), normSq, nil
		})
	if err != nil {
		return err
	}
	s.t, s.lastY = out.Step, out
	s.backtracks += out.Backtracks
	if out.Improved {
		s.y, s.ay = next.y, next.ay
	}
	return nil
}

func (finiteRidge) project(x, gx *mat.Dense) *mat.Dense { return manifold.ProjectSymmetric(x, gx) }

func (finiteRidge) retract(tx *mat.Dense) (*mat.Dense, error) { return manifold.InverseSqrt(tx) }

func (finiteRidge) xFloor(d int) float64 { return 1e-5 / float64(d) }

func (b finiteRidge) done(tr *trace.Trace) bool {
	diff := math.Abs(tr.Diff())
	return (diff < b.tol && tr.Last() < b.bound) || diff < absoluteTol
}

type infiniteRidge struct {
	tol float64
}

func (infiniteRidge) name() string { return "infinite" }

// stepY minimizes the y part exactly: with f_y = ‖y‖² + h(y) the
// proximal step at t = 1/2 lands on prox(Ax, μ/2).
func (infiniteRidge) stepY(s *state) error {
	s.t = 0.5
	var y mat.Dense
	prox.L1(&y, s.ax, prox.Thresholds(s.eval.Weights(), 0.5))
	s.y = &y
	s.ay = s.p.op.Apply(s.y)
	return nil
}

func (infiniteRidge) project(x, gx *mat.Dense) *mat.Dense { return manifold.ProjectCanonical(x, gx) }

func (infiniteRidge) retract(tx *mat.Dense) (*mat.Dense, error) { return manifold.Polar(tx) }

func (infiniteRidge) xFloor(d int) float64 { return 1e-3 / float64(d) }

func (b infiniteRidge) done(tr *trace.Trace) bool {
	return math.Abs(tr.Diff()) < b.tol
}
