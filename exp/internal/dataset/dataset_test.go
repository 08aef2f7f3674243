package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

func TestNormal(t *testing.T) {
	a := Normal(1, 200, 50)
	b := Normal(1, 200, 50)
	c := Normal(2, 200, 50)

	assert.True(t, mat.Equal(a, b))
	assert.False(t, mat.Equal(a, c))

	r, d := a.Dims()
	assert.Equal(t, 200, r)
	assert.Equal(t, 50, d)

	mean, std := stat.MeanStdDev(a.RawMatrix().Data, nil)
	assert.InDelta(t, 0, mean, 0.05)
	assert.InDelta(t, 1, std, 0.05)
}

func TestSeeds(t *testing.T) {
	assert.Equal(t, []int64{5, 6, 7}, Seeds(5, 3))
	assert.Empty(t, Seeds(5, 0))
}
