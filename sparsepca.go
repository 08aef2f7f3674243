package sparsepca

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yyyoichi/sparsepca/internal/amanpg"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidInput reports non-conforming shapes between the input, the
	// penalties, the component count and the initial guesses, or values
	// outside their domain.
	ErrInvalidInput = amanpg.ErrInvalidInput
	// ErrNumericalDegeneracy reports a zero row during normalization, a
	// failed factorization or a non-finite objective.
	ErrNumericalDegeneracy = amanpg.ErrNumericalDegeneracy
	// ErrInvalidOption reports an option value out of range.
	ErrInvalidOption = amanpg.ErrInvalidOption
)

const (
	DefaultGamma     = 0.5
	DefaultMaxIter   = 10000
	DefaultTolerance = 1e-5
)

// Progress is passed to the WithProgress callback after every iteration.
type Progress = amanpg.Progress

// Solve computes sparse loadings of b with the specified options.
// This is a convenience function that creates an SPCA instance and calls its Solve method.
//
// penalties holds one non-negative L1 weight per component. ridge selects the
// branch: math.Inf(1) enforces orthonormal loadings, a finite value couples
// the two working variables through a ridge term. targetBound is used by the
// finite branch only: the tolerance test succeeds once the objective is below it.
func Solve(ctx context.Context, b mat.Matrix, penalties []float64, ridge, targetBound float64, opts ...Option) (*Result, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return s.Solve(ctx, b, penalties, ridge, targetBound)
}

type SPCA struct {
	components int
	gamma      float64
	maxIter    int
	tolerance  float64
	normalize  bool
	covariance bool
	x0, y0     *mat.Dense

	// normalizeSet records an explicit WithNormalize
	normalizeSet bool

	verbose  bool
	logger   *zerolog.Logger
	progress func(Progress)
}

// New initializes a solver. For default values, refer to the init function.
func New(opts ...Option) (*SPCA, error) {
	s := new(SPCA)
	if err := s.init(opts...); err != nil {
		return nil, err
	}
	return s, nil
}

// Solve runs AManPG on b.
//
// Process:
//  1. Centers and scales each row of b to unit norm, unless disabled or b is a covariance matrix.
//  2. Converts data with fewer than twice as many columns as rows to its Gram matrix.
//  3. Starts from the leading right singular vectors, unless initial guesses are given.
//  4. Alternates a proximal gradient step in y and a retraction step in x
//     until the objective stops improving or the iteration limit is reached.
//
// Reaching the iteration limit is not an error: the result reports Converged false.
func (s *SPCA) Solve(ctx context.Context, b mat.Matrix, penalties []float64, ridge, targetBound float64) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	p, err := amanpg.Prepare(b, s.normalize, s.covariance)
	if err != nil {
		return nil, err
	}
	return s.run(p, penalties, ridge, targetBound, start)
}

func (s *SPCA) run(p *amanpg.Problem, penalties []float64, ridge, targetBound float64, start time.Time) (*Result, error) {
	n := s.components
	if n == 0 {
		n = p.Dim()
	}
	out, err := amanpg.Run(p, amanpg.Config{
		Penalties:   penalties,
		Ridge:       ridge,
		TargetBound: targetBound,
		Components:  n,
		Gamma:       s.gamma,
		MaxIter:     s.maxIter,
		Tolerance:   s.tolerance,
		X0:          s.x0,
		Y0:          s.y0,
		Logger:      s.log(),
		Progress:    s.progress,
	})
	if err != nil {
		return nil, err
	}
	return newResult(out, time.Since(start)), nil
}

func (s *SPCA) init(opts ...Option) error {
	s.gamma = DefaultGamma
	s.maxIter = DefaultMaxIter
	s.tolerance = DefaultTolerance
	s.normalize = true
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return err
		}
	}
	if s.covariance {
		if s.normalizeSet && s.normalize {
			return wrapOption("normalization of covariance input")
		}
		s.normalize = false
	}
	// the component count follows the initial guess when not given
	for _, g := range []*mat.Dense{s.x0, s.y0} {
		if g != nil && s.components == 0 {
			_, s.components = g.Dims()
		}
	}
	return nil
}

// log returns the configured logger. Verbose without an explicit logger
// writes human-readable debug output to stderr.
func (s *SPCA) log() zerolog.Logger {
	switch {
	case s.logger != nil:
		return *s.logger
	case s.verbose:
		return consoleLogger()
	}
	return zerolog.Nop()
}

// Batch enables solving many penalty and ridge settings on a single input
// by caching the normalized matrix and its singular value decomposition.
type Batch struct {
	problem *amanpg.Problem
	opts    []Option
}

// NewBatch prepares b once. opts become the defaults of every Solve call;
// normalization and covariance options take effect here only.
func NewBatch(b mat.Matrix, opts ...Option) (*Batch, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	p, err := amanpg.Prepare(b, s.normalize, s.covariance)
	if err != nil {
		return nil, err
	}
	return &Batch{problem: p, opts: opts}, nil
}

// Solve runs AManPG on the prepared input. opts are applied after those
// given to NewBatch. Concurrent calls are safe.
func (b *Batch) Solve(ctx context.Context, penalties []float64, ridge, targetBound float64, opts ...Option) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	all := make([]Option, 0, len(b.opts)+len(opts))
	all = append(all, b.opts...)
	s, err := New(append(all, opts...)...)
	if err != nil {
		return nil, err
	}
	return s.run(b.problem, penalties, ridge, targetBound, start)
}

// Dim returns the number of variables of the prepared input.
func (b *Batch) Dim() int { return b.problem.Dim() }

// UniformPenalty returns n copies of mu.
func UniformPenalty(n int, mu float64) []float64 {
	p := make([]float64, n)
	for i := range p {
		p[i] = mu
	}
	return p
}

func wrapOption(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOption, fmt.Sprintf(format, a...))
}
