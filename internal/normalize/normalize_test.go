package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestRows(t *testing.T) {
	a := mat.NewDense(3, 4, []float64{
		1, 2, 3, 4,
		-5, 0, 5, 10,
		0.1, 0.1, 0.1, 0.3,
	})
	orig := mat.DenseCopyOf(a)

	got, err := Rows(a)
	require.NoError(t, err)

	r, c := got.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 4, c)
	for i := range r {
		row := got.RawRowView(i)
		assert.InDelta(t, 0, stat.Mean(row, nil), 1e-15, "row %d mean", i)
		assert.InDelta(t, 1, floats.Norm(row, 2), 1e-14, "row %d norm", i)
	}
	// first row: centered (-1.5,-0.5,0.5,1.5) has norm sqrt(5)
	s := math.Sqrt(5)
	assert.InDeltaSlice(t, []float64{-1.5 / s, -0.5 / s, 0.5 / s, 1.5 / s}, got.RawRowView(0), 1e-15)

	// input is not modified
	assert.True(t, mat.Equal(orig, a))
}

func TestRows_Idempotent(t *testing.T) {
	a := mat.NewDense(2, 3, []float64{
		3, 1, 2,
		0, 7, -1,
	})
	once, err := Rows(a)
	require.NoError(t, err)
	twice, err := Rows(once)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(once, twice, 1e-14))
}

func TestRows_Degenerate(t *testing.T) {
	test := []struct {
		name string
		data []float64
		err  error
	}{
		{"zero_row", []float64{1, 2, 3, 0, 0, 0}, ErrZeroRow},
		{"constant_row", []float64{1, 2, 3, 0.1, 0.1, 0.1}, ErrZeroRow},
		{"large_constant_row", []float64{5e3, 5e3, 5e3, 1, 2, 4}, ErrZeroRow},
		{"nan", []float64{1, math.NaN(), 3, 1, 2, 4}, ErrNonFinite},
		{"inf", []float64{1, 2, 3, math.Inf(-1), 2, 4}, ErrNonFinite},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rows(mat.NewDense(2, 3, tt.data))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
