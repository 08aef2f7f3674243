package svd

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestRight(t *testing.T) {
	testCases := []struct {
		name   string
		rows   int
		cols   int
		data   []float64
		values []float64
	}{
		{
			name:   "3x3_diagonal",
			rows:   3,
			cols:   3,
			data:   []float64{5, 0, 0, 0, 3, 0, 0, 0, 1},
			values: []float64{5, 3, 1},
		},
		{
			name:   "3x3_identity",
			rows:   3,
			cols:   3,
			data:   []float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
			values: []float64{1, 1, 1},
		},
		{
			name:   "2x2_symmetric",
			rows:   2,
			cols:   2,
			data:   []float64{3, 1, 1, 3},
			values: []float64{4, 2},
		},
		{
			name:   "2x3_wide",
			rows:   2,
			cols:   3,
			data:   []float64{3, 0, 0, 0, 0, 2},
			values: []float64{3, 2},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewRight(mat.NewDense(tc.rows, tc.cols, tc.data))
			require.NoError(t, err)

			assert.Equal(t, len(tc.values), r.Rank())
			assert.InDeltaSlice(t, tc.values, r.Values(), 1e-12)
			assert.InDelta(t, tc.values[0], r.Largest(), 1e-12)

			v, err := r.Leading(r.Rank())
			require.NoError(t, err)
			d, n := v.Dims()
			assert.Equal(t, tc.cols, d)
			assert.Equal(t, r.Rank(), n)

			// columns are orthonormal
			var vtv mat.Dense
			vtv.Mul(v.T(), v)
			assert.True(t, mat.EqualApprox(&vtv, eye(n), 1e-12))
		})
	}
}

func TestRight_Leading(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{
		0, 0, 2,
		0, 7, 0,
		1, 0, 0,
	})
	r, err := NewRight(a)
	require.NoError(t, err)

	v, err := r.Leading(2)
	require.NoError(t, err)
	// leading right vectors are ±e2 then ±e3
	assert.InDelta(t, 1, math.Abs(v.At(1, 0)), 1e-12)
	assert.InDelta(t, 1, math.Abs(v.At(2, 1)), 1e-12)

	// the copy does not share storage
	v.Set(0, 0, 42)
	again, err := r.Leading(2)
	require.NoError(t, err)
	assert.NotEqual(t, 42.0, again.At(0, 0))

	_, err = r.Leading(4)
	assert.ErrorIs(t, err, ErrRank)
	_, err = r.Leading(0)
	assert.ErrorIs(t, err, ErrRank)
}

func TestPolar(t *testing.T) {
	t.Run("orthonormal_columns", func(t *testing.T) {
		a := mat.NewDense(4, 2, []float64{
			1, 2,
			3, 4,
			5, 6,
			7, 9,
		})
		p, err := Polar(a)
		require.NoError(t, err)

		var ptp mat.Dense
		ptp.Mul(p.T(), p)
		assert.True(t, mat.EqualApprox(&ptp, eye(2), 1e-12))
	})

	t.Run("fixed_point", func(t *testing.T) {
		// an already orthonormal matrix is its own polar factor
		s := 1 / math.Sqrt2
		q := mat.NewDense(3, 2, []float64{
			s, 0,
			s, 0,
			0, 1,
		})
		p, err := Polar(q)
		require.NoError(t, err)
		assert.True(t, mat.EqualApprox(q, p, 1e-12))
	})

	t.Run("scale_invariant", func(t *testing.T) {
		a := mat.NewDense(3, 2, []float64{
			2, 1,
			0, 3,
			1, 1,
		})
		var scaled mat.Dense
		scaled.Scale(10, a)
		p1, err := Polar(a)
		require.NoError(t, err)
		p2, err := Polar(&scaled)
		require.NoError(t, err)
		assert.True(t, mat.EqualApprox(p1, p2, 1e-12))
	})
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := range n {
		m.Set(i, i, 1)
	}
	return m
}
