package normalize

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrZeroRow   = errors.New("row has zero norm after centering")
	ErrNonFinite = errors.New("row contains non-finite values")
)

// zeroRowTol is relative to the norm of the row before centering, so that a
// constant row whose centered residue is pure rounding noise still counts as zero.
const zeroRowTol = 1e-12

// Rows returns a copy of a with every row centered to mean zero and scaled to
// unit Euclidean length.
func Rows(a mat.Matrix) (*mat.Dense, error) {
	dst := mat.DenseCopyOf(a)
	r, _ := dst.Dims()
	for i := range r {
		row := dst.RawRowView(i)
		before := floats.Norm(row, 2)
		if math.IsNaN(before) || math.IsInf(before, 0) {
			return nil, fmt.Errorf("%w: row %d", ErrNonFinite, i)
		}
		floats.AddConst(-stat.Mean(row, nil), row)
		norm := floats.Norm(row, 2)
		if norm <= zeroRowTol*math.Max(1, before) {
			return nil, fmt.Errorf("%w: row %d", ErrZeroRow, i)
		}
		floats.Scale(1/norm, row)
	}
	return dst, nil
}
