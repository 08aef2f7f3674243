// Package amanpg implements the alternating manifold proximal gradient
// method for sparse principal components.
//
// Each iteration first takes a proximal gradient step in y, then a
// retraction step in x, each with its own backtracking line search. The
// ridge parameter selects one of two branches: a finite ridge couples x and
// y through a ridge term and retracts with an inverse square root, an
// infinite ridge enforces exact orthonormality of x through the polar
// factor.
package amanpg

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/yyyoichi/sparsepca/internal/linesearch"
	"github.com/yyyoichi/sparsepca/internal/manifold"
	"github.com/yyyoichi/sparsepca/internal/objective"
	"github.com/yyyoichi/sparsepca/internal/trace"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidOption       = errors.New("invalid option")
	ErrNumericalDegeneracy = errors.New("numerical degeneracy")
)

const (
	// absoluteTol stops the finite branch regardless of the target bound.
	absoluteTol = 1e-12
	// orthonormalTol is the largest ‖xᵀx - I‖_F accepted for a starting x.
	orthonormalTol = 1e-10

	yGrowth = 1.01
	xGrowth = 1.1
)

// Config holds the parameters of one run.
type Config struct {
	Penalties   []float64
	Ridge       float64
	TargetBound float64

	Components int
	Gamma      float64
	MaxIter    int
	Tolerance  float64

	// X0 and Y0 override the default starting point independently.
	X0, Y0 *mat.Dense

	Logger   zerolog.Logger
	Progress func(Progress)
}

// Progress is reported after every iteration. X and Y are the current
// iterates and must not be modified.
type Progress struct {
	Iteration  int
	Objective  float64
	Diff       float64
	StepY      float64
	StepX      float64
	Backtracks int
	X, Y       mat.Matrix
}

// Output is the terminal state of a run.
type Output struct {
	Loadings   *mat.Dense
	X, Y       *mat.Dense
	Iterations int
	Converged  bool
	Objective  float64
	Sparsity   float64
	Trace      []float64
	Backtracks int
}

// state is the loop state of a single run and is owned by it.
type state struct {
	p    *Problem
	eval *objective.Evaluator

	x, y   *mat.Dense
	ax, ay *mat.Dense

	t, tau       float64
	lastY, lastX linesearch.Outcome
	ySched       linesearch.Schedule
	xSched       linesearch.Schedule
	gamma        float64

	trace      *trace.Trace
	backtracks int
}

// Run solves the problem with the given configuration.
func Run(p *Problem, c Config) (*Output, error) {
	if err := c.validate(p); err != nil {
		return nil, err
	}
	x, y, err := c.start(p)
	if err != nil {
		return nil, err
	}

	d := float64(p.Dim())
	eval := objective.NewEvaluator(c.Penalties, c.Ridge)
	var br branch = finiteRidge{tol: c.Tolerance, bound: c.TargetBound}
	if !eval.Finite() {
		br = infiniteRidge{tol: c.Tolerance}
	}
	// a caller supplied x0 may lie off the manifold
	if manifold.OrthonormalityError(x) > orthonormalTol {
		if x, err = br.retract(x); err != nil {
			return nil, fmt.Errorf("%w: initial x: %w", ErrNumericalDegeneracy, err)
		}
	}
	lip := p.Lipschitz(c.Ridge)

	s := &state{
		p:     p,
		eval:  eval,
		x:     x,
		y:     y,
		ax:    p.op.Apply(x),
		ay:    p.op.Apply(y),
		t:     1 / lip,
		tau:   100 / d,
		gamma: c.Gamma,
		// the first iteration starts from the initial steps unchanged
		lastY:  linesearch.Outcome{Shrunk: true},
		lastX:  linesearch.Outcome{Shrunk: true},
		ySched: linesearch.Schedule{Growth: yGrowth, Relax: yGrowth, Lower: 1 / lip},
		xSched: linesearch.Schedule{Growth: xGrowth, Reset: 1 / d},
	}
	f0 := eval.Value(s.x, s.y, s.ay)
	if !finite(f0) {
		return nil, fmt.Errorf("%w: objective %g at the starting point", ErrNumericalDegeneracy, f0)
	}
	s.trace = trace.New(f0)

	log := c.Logger.With().Str("branch", br.name()).Logger()
	log.Debug().
		Int("dim", p.Dim()).
		Int("components", c.Components).
		Bool("covariance", p.Covariance()).
		Float64("objective", f0).
		Msg("initialized")

	var (
		iter      int
		converged bool
	)
	for iter = 1; iter <= c.MaxIter; iter++ {
		s.backtracks = 0
		if err := br.stepY(s); err != nil {
			return nil, err
		}
		if err := s.stepX(br); err != nil {
			return nil, err
		}
		f := eval.Value(s.x, s.y, s.ay)
		if !finite(f) {
			return nil, fmt.Errorf("%w: objective %g at iteration %d", ErrNumericalDegeneracy, f, iter)
		}
		s.trace.Append(f)
		s.trace.AddBacktracks(s.backtracks)

		diff := s.trace.Diff()
		log.Debug().
			Int("iter", iter).
			Float64("objective", f).
			Float64("diff", diff).
			Float64("t", s.t).
			Float64("tau", s.tau).
			Int("backtracks", s.backtracks).
			Msg("iteration")
		if c.Progress != nil {
			c.Progress(Progress{
				Iteration:  iter,
				Objective:  f,
				Diff:       diff,
				StepY:      s.t,
				StepX:      s.tau,
				Backtracks: s.backtracks,
				X:          s.x,
				Y:          s.y,
			})
		}
		if br.done(s.trace) {
			converged = true
			break
		}
	}
	if !converged {
		iter = c.MaxIter
	}

	out := &Output{
		Loadings:   Loadings(s.y),
		X:          s.x,
		Y:          s.y,
		Iterations: iter,
		Converged:  converged,
		Objective:  s.trace.Last(),
		Sparsity:   Sparsity(s.y),
		Trace:      s.trace.Values(),
		Backtracks: s.trace.Backtracks(),
	}
	log.Info().
		Int("iterations", out.Iterations).
		Bool("converged", out.Converged).
		Float64("objective", out.Objective).
		Float64("sparsity", out.Sparsity).
		Int("backtracks", out.Backtracks).
		Msg("finished")
	return out, nil
}

// stepX takes the retraction step in x and refreshes A·x.
func (s *state) stepX(br branch) error {
	s.tau = s.xSched.Next(s.tau, s.lastX)

	rgx := br.project(s.x, s.eval.GradX(s.ay))
	normSq := objective.Inner(rgx, rgx)
	ctrl := linesearch.Controller{Contraction: s.gamma, Floor: br.xFloor(s.p.Dim())}

	next, _, out, err := linesearch.Search(ctrl, s.tau, s.eval.Fx(s.x, s.ay),
		func(step float64) (*mat.Dense, float64, float64, error) {
			xt, err := br.retract(manifold.Step(s.x, rgx, step))
			if err != nil {
				return nil, 0, 0, err
			}
			return xt, s.eval.Fx(xt, s.ay), normSq, nil
		})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNumericalDegeneracy, err)
	}
	s.tau, s.lastX = out.Step, out
	s.backtracks += out.Backtracks
	if out.Improved {
		s.x = next
	}
	s.ax = s.p.op.Apply(s.x)
	return nil
}

func (c *Config) validate(p *Problem) error {
	d, n := p.Dim(), c.Components
	if n < 1 || n > d {
		return fmt.Errorf("%w: %d components for %d variables", ErrInvalidInput, n, d)
	}
	if len(c.Penalties) != n {
		return fmt.Errorf("%w: %d penalties for %d components", ErrInvalidInput, len(c.Penalties), n)
	}
	for j, mu := range c.Penalties {
		if !(mu >= 0) || math.IsInf(mu, 1) {
			return fmt.Errorf("%w: penalty[%d] = %g", ErrInvalidInput, j, mu)
		}
	}
	if !(c.Ridge >= 0) {
		return fmt.Errorf("%w: ridge %g", ErrInvalidInput, c.Ridge)
	}
	if math.IsNaN(c.TargetBound) {
		return fmt.Errorf("%w: target bound is NaN", ErrInvalidInput)
	}
	if !(c.Gamma > 0 && c.Gamma < 1) {
		return fmt.Errorf("%w: gamma %g outside (0, 1)", ErrInvalidOption, c.Gamma)
	}
	if c.MaxIter < 1 {
		return fmt.Errorf("%w: max iterations %d", ErrInvalidOption, c.MaxIter)
	}
	if !(c.Tolerance >= 0) {
		return fmt.Errorf("%w: tolerance %g", ErrInvalidOption, c.Tolerance)
	}
	for _, m := range []struct {
		name string
		v    *mat.Dense
	}{{"x0", c.X0}, {"y0", c.Y0}} {
		if m.v == nil {
			continue
		}
		if r, cols := m.v.Dims(); r != d || cols != n {
			return fmt.Errorf("%w: %s is %dx%d, want %dx%d", ErrInvalidInput, m.name, r, cols, d, n)
		}
		if !allFinite(m.v) {
			return fmt.Errorf("%w: %s contains non-finite values", ErrInvalidInput, m.name)
		}
	}
	return nil
}

// start returns copies of the starting point, defaulting each of x and y
// to the leading right singular vectors.
func (c *Config) start(p *Problem) (x, y *mat.Dense, err error) {
	if c.X0 != nil {
		x = mat.DenseCopyOf(c.X0)
	} else if x, err = p.Initial(c.Components); err != nil {
		return nil, nil, err
	}
	if c.Y0 != nil {
		y = mat.DenseCopyOf(c.Y0)
	} else if y, err = p.Initial(c.Components); err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
