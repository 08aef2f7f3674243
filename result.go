package sparsepca

import (
	"time"

	"github.com/yyyoichi/sparsepca/internal/amanpg"
	"gonum.org/v1/gonum/mat"
)

// Result is the outcome of one solve.
type Result struct {
	// Loadings is Y with every non-zero column scaled to unit norm.
	Loadings *mat.Dense
	// X and Y are the final working variables, both d×n.
	X, Y *mat.Dense

	Iterations int
	Objective  float64
	// Sparsity is the fraction of exactly zero entries of Y.
	Sparsity  float64
	Elapsed   time.Duration
	Converged bool
	// Trace holds the objective at the starting point followed by one value
	// per iteration.
	Trace []float64
	// LineSearches counts step size reductions over the whole run.
	LineSearches int
	// Support is the non-zero pattern of Loadings.
	Support *Support
}

func newResult(out *amanpg.Output, elapsed time.Duration) *Result {
	return &Result{
		Loadings:     out.Loadings,
		X:            out.X,
		Y:            out.Y,
		Iterations:   out.Iterations,
		Objective:    out.Objective,
		Sparsity:     out.Sparsity,
		Elapsed:      elapsed,
		Converged:    out.Converged,
		Trace:        out.Trace,
		LineSearches: out.Backtracks,
		Support:      NewSupport(out.Loadings),
	}
}
