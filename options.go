package sparsepca

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

type Option func(*SPCA) error

// WithInitial sets both starting points. x0 and y0 must be d×n.
// They are copied when a solve starts.
func WithInitial(x0, y0 mat.Matrix) Option {
	return func(s *SPCA) error {
		if err := WithInitialX(x0)(s); err != nil {
			return err
		}
		return WithInitialY(y0)(s)
	}
}

// WithInitialX sets the starting point of x. y keeps its default, the
// leading right singular vectors.
func WithInitialX(x0 mat.Matrix) Option {
	return func(s *SPCA) error {
		if x0 == nil {
			return wrapOption("nil initial x")
		}
		s.x0 = mat.DenseCopyOf(x0)
		return nil
	}
}

// WithInitialY sets the starting point of y.
func WithInitialY(y0 mat.Matrix) Option {
	return func(s *SPCA) error {
		if y0 == nil {
			return wrapOption("nil initial y")
		}
		s.y0 = mat.DenseCopyOf(y0)
		return nil
	}
}

// WithComponents sets the number of components n. By default n is the
// column count of the input, or of the initial guess when one is given.
// n cannot exceed the number of right singular vectors of the prepared
// input, min(m, d) for m×d data, so wide data (d > m) must set n
// explicitly or Solve returns ErrInvalidInput.
func WithComponents(n int) Option {
	return func(s *SPCA) error {
		if n < 1 {
			return wrapOption("components %d", n)
		}
		s.components = n
		return nil
	}
}

// WithGamma sets the factor applied to a step size after a failed
// sufficient decrease test. It must lie in (0, 1).
func WithGamma(g float64) Option {
	return func(s *SPCA) error {
		if !(g > 0 && g < 1) {
			return wrapOption("gamma %g outside (0, 1)", g)
		}
		s.gamma = g
		return nil
	}
}

func WithMaxIter(k int) Option {
	return func(s *SPCA) error {
		if k < 1 {
			return wrapOption("max iterations %d", k)
		}
		s.maxIter = k
		return nil
	}
}

// WithTolerance sets the convergence tolerance on the change of the
// objective between two iterations.
func WithTolerance(tol float64) Option {
	return func(s *SPCA) error {
		if !(tol >= 0) || math.IsInf(tol, 1) {
			return wrapOption("tolerance %g", tol)
		}
		s.tolerance = tol
		return nil
	}
}

// WithNormalize switches row centering and scaling. Enabled by default for
// data input and disabled by WithCovariance; enabling it together with
// WithCovariance is an ErrInvalidOption.
func WithNormalize(enable bool) Option {
	return func(s *SPCA) error {
		s.normalize = enable
		s.normalizeSet = true
		return nil
	}
}

// WithCovariance declares the input as a d×d covariance matrix. It is used
// as is, without normalization or Gram conversion.
func WithCovariance() Option {
	return func(s *SPCA) error {
		s.covariance = true
		return nil
	}
}

// WithVerbose logs every iteration to stderr. A logger given by WithLogger
// takes precedence.
func WithVerbose(enable bool) Option {
	return func(s *SPCA) error {
		s.verbose = enable
		return nil
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *SPCA) error {
		s.logger = &l
		return nil
	}
}

// WithProgress registers fn to be called after every iteration. The
// matrices in Progress are the live iterates and must not be modified.
func WithProgress(fn func(Progress)) Option {
	return func(s *SPCA) error {
		s.progress = fn
		return nil
	}
}
