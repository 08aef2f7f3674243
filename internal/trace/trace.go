package trace

import "math"

// Trace is the append-only sequence of objective values of one solver run,
// starting with the value at the initial point.
type Trace struct {
	values     []float64
	backtracks int
}

func New(f0 float64) *Trace {
	return &Trace{values: []float64{f0}}
}

func (t *Trace) Append(f float64) { t.values = append(t.values, f) }

func (t *Trace) Last() float64 { return t.values[len(t.values)-1] }

// Diff returns |f_k - f_{k-1}| for the two most recent values, or +Inf when
// only the initial value is present.
func (t *Trace) Diff() float64 {
	if len(t.values) < 2 {
		return math.Inf(1)
	}
	return math.Abs(t.values[len(t.values)-1] - t.values[len(t.values)-2])
}

func (t *Trace) Len() int { return len(t.values) }

// Values returns a copy of the trace.
func (t *Trace) Values() []float64 {
	return append([]float64(nil), t.values...)
}

// AddBacktracks records line-search trials beyond the first.
func (t *Trace) AddBacktracks(n int) { t.backtracks += n }

func (t *Trace) Backtracks() int { return t.backtracks }

// MaxIncrease returns the largest f_k - f_{k-1} over the trace, zero or
// negative for a non-increasing sequence.
func (t *Trace) MaxIncrease() float64 {
	inc := math.Inf(-1)
	for i := 1; i < len(t.values); i++ {
		inc = math.Max(inc, t.values[i]-t.values[i-1])
	}
	if math.IsInf(inc, -1) {
		return 0
	}
	return inc
}
