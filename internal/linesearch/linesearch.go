package linesearch

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

const (
	// DecreaseFactor is the constant c of the sufficient decrease test
	// f_trial <= f_prev - c·step·‖g‖².
	DecreaseFactor = 1e-3
	// DefaultContraction is the step multiplier applied after a rejected trial.
	DefaultContraction = 0.5
)

// Controller is a backtracking search that shrinks the step by Contraction
// until the Armijo condition holds or the step drops below Floor.
type Controller struct {
	Contraction float64
	Floor       float64
}

// Outcome describes how a search ended.
type Outcome struct {
	// Step is the last step size tried.
	Step float64
	// Shrunk is set when at least one contraction happened.
	Shrunk bool
	// MinStep is set when the step fell below the floor before the
	// Armijo condition held. The returned trial is then the best one seen.
	MinStep bool
	// Improved is false only when no trial reached f_prev; the caller keeps
	// its current point in that case.
	Improved bool
	// Backtracks counts the trials evaluated after the first.
	Backtracks int
}

// Trial evaluates a candidate at the given step size and returns it together
// with its objective value and the squared norm used in the decrease test.
type Trial[T any] func(step float64) (cand T, f float64, normSq float64, err error)

// Search runs the backtracking loop from step against the reference value
// fPrev. Each trial is tested with optimize.Backtracking, initialized with
// the trial's own squared norm as the negated directional derivative.
// Errors from trial abort the search.
func Search[T any](c Controller, step, fPrev float64, trial Trial[T]) (T, float64, Outcome, error) {
	var out Outcome
	bt := &optimize.Backtracking{DecreaseFactor: DecreaseFactor, ContractionFactor: c.Contraction}
	cand, f, normSq, err := trial(step)
	if err != nil {
		return cand, f, out, err
	}
	best, fBest := cand, f
	for {
		next, ok, lsErr := sufficientDecrease(bt, step, fPrev, f, normSq)
		if ok {
			best, fBest = cand, f
			break
		}
		step = next
		out.Shrunk = true
		if lsErr != nil || step < c.Floor {
			out.MinStep = true
			break
		}
		cand, f, normSq, err = trial(step)
		if err != nil {
			return best, fBest, out, err
		}
		out.Backtracks++
		if f < fBest {
			best, fBest = cand, f
		}
	}
	out.Step = step
	out.Improved = fBest <= fPrev
	return best, fBest, out, nil
}

// sufficientDecrease reports whether f passes the Armijo test at step and
// otherwise returns the contracted step. A zero norm leaves only f <= fPrev,
// which optimize.Backtracking cannot express.
func sufficientDecrease(bt *optimize.Backtracking, step, fPrev, f, normSq float64) (float64, bool, error) {
	if normSq == 0 {
		if f <= fPrev {
			return step, true, nil
		}
		return step * bt.ContractionFactor, false, nil
	}
	bt.Init(fPrev, -normSq, step)
	op, next, err := bt.Iterate(f, 0)
	return next, op == optimize.MajorIteration, err
}

// Schedule adapts an outer step size from one iteration to the next based
// on the previous Outcome.
type Schedule struct {
	// Growth multiplies the step after a search with no contraction.
	Growth float64
	// Reset, when positive, replaces the step after a search hit the floor.
	Reset float64
	// Relax, when positive, divides the step after a contraction, bounded
	// below by Lower.
	Relax float64
	Lower float64
}

// Next returns the step size to start the next search from.
func (s Schedule) Next(step float64, prev Outcome) float64 {
	switch {
	case prev.MinStep && s.Reset > 0:
		return s.Reset
	case !prev.Shrunk:
		return step * s.Growth
	case s.Relax > 0:
		return math.Max(s.Lower, step/s.Relax)
	}
	return step
}
