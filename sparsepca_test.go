package sparsepca_test

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/sparsepca"
	"gonum.org/v1/gonum/mat"
)

func normalData(seed int64, m, d int) *mat.Dense {
	rnd := rand.New(rand.NewSource(seed))
	b := mat.NewDense(m, d, nil)
	b.Apply(func(_, _ int, _ float64) float64 { return rnd.NormFloat64() }, b)
	return b
}

func orthonormalityError(x mat.Matrix) float64 {
	_, n := x.Dims()
	var g mat.Dense
	g.Mul(x.T(), x)
	for i := range n {
		g.Set(i, i, g.At(i, i)-1)
	}
	return mat.Norm(&g, 2)
}

func nonIncreasing(t *testing.T, trace []float64) {
	t.Helper()
	for i := 1; i < len(trace); i++ {
		assert.LessOrEqual(t, trace[i], trace[i-1]+1e-9, "iteration %d", i)
	}
}

func TestSolve_Scenario(t *testing.T) {
	if testing.Short() {
		t.Skip("1000x500 input")
	}
	b := normalData(2024, 1000, 500)
	penalties := sparsepca.UniformPenalty(4, 0.1)

	t.Run("finite ridge", func(t *testing.T) {
		res, err := sparsepca.Solve(context.Background(), b, penalties, 1, 1e5,
			sparsepca.WithComponents(4))
		require.NoError(t, err)
		assert.True(t, res.Converged)
		assert.Less(t, res.Iterations, sparsepca.DefaultMaxIter)
		assert.Greater(t, res.Sparsity, 0.0)
		assert.Less(t, res.Sparsity, 1.0)
		nonIncreasing(t, res.Trace)
	})
	t.Run("infinite ridge", func(t *testing.T) {
		var worst float64
		res, err := sparsepca.Solve(context.Background(), b, penalties, math.Inf(1), 1e5,
			sparsepca.WithComponents(4),
			sparsepca.WithProgress(func(p sparsepca.Progress) {
				worst = math.Max(worst, orthonormalityError(p.X))
			}))
		require.NoError(t, err)
		assert.True(t, res.Converged)
		assert.Less(t, res.Iterations, sparsepca.DefaultMaxIter)
		assert.InDelta(t, 0, orthonormalityError(res.X), 1e-8)
		assert.InDelta(t, 0, worst, 1e-8)
		nonIncreasing(t, res.Trace)
	})
}

func TestSolve_ZeroPenalty(t *testing.T) {
	b := normalData(3, 120, 15)
	var svd mat.SVD
	require.True(t, svd.Factorize(b, mat.SVDThinV))
	var v mat.Dense
	svd.VTo(&v)

	res, err := sparsepca.Solve(context.Background(), b, sparsepca.UniformPenalty(3, 0), 1, 0,
		sparsepca.WithComponents(3),
		sparsepca.WithNormalize(false),
		sparsepca.WithTolerance(1e-10))
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Sparsity)
	for j := range 3 {
		dot := mat.Dot(res.Loadings.ColView(j), v.ColView(j))
		assert.InDelta(t, 1, math.Abs(dot), 1e-6, "component %d", j)
	}
}

func TestSolve_Loadings(t *testing.T) {
	b := normalData(4, 60, 20)
	for _, ridge := range []float64{0, 0.5, math.Inf(1)} {
		for _, mu := range []float64{0, 0.3, 2} {
			res, err := sparsepca.Solve(context.Background(), b, sparsepca.UniformPenalty(3, mu), ridge, 0,
				sparsepca.WithComponents(3))
			require.NoError(t, err)
			nonIncreasing(t, res.Trace)

			_, n := res.Loadings.Dims()
			for j := range n {
				col := res.Loadings.ColView(j)
				if norm := mat.Norm(col, 2); norm != 0 {
					assert.InDelta(t, 1, norm, 1e-12)
				}
			}
			assert.Equal(t, res.Support.Count(), int(math.Round((1-res.Sparsity)*float64(20*3))))
		}
	}
}

func TestSolve_SparsityGrowsWithPenalty(t *testing.T) {
	b := normalData(5, 100, 20)
	batch, err := sparsepca.NewBatch(b, sparsepca.WithComponents(2))
	require.NoError(t, err)

	prev := -1.0
	for _, mu := range []float64{0, 0.1, 1, 1e6} {
		res, err := batch.Solve(context.Background(), sparsepca.UniformPenalty(2, mu), math.Inf(1), 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.Sparsity, 0.0)
		assert.LessOrEqual(t, res.Sparsity, 1.0)
		assert.GreaterOrEqual(t, res.Sparsity, prev, "mu %g", mu)
		prev = res.Sparsity
	}
	assert.Equal(t, 1.0, prev)
}

func TestSolve_Idempotent(t *testing.T) {
	b := normalData(6, 80, 12)
	penalties := sparsepca.UniformPenalty(2, 0.2)
	ctx := context.Background()

	test := []struct {
		name  string
		ridge float64
		bound float64
	}{
		{"infinite", math.Inf(1), 0},
		{"finite", 1, 1e5},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			first, err := sparsepca.Solve(ctx, b, penalties, tt.ridge, tt.bound,
				sparsepca.WithComponents(2), sparsepca.WithTolerance(1e-8))
			require.NoError(t, err)
			require.True(t, first.Converged)

			again, err := sparsepca.Solve(ctx, b, penalties, tt.ridge, tt.bound,
				sparsepca.WithInitial(first.X, first.Y))
			require.NoError(t, err)
			assert.True(t, again.Converged)
			assert.LessOrEqual(t, again.Iterations, 1)
			assert.InDelta(t, first.Objective, again.Objective, sparsepca.DefaultTolerance)
		})
	}
}

func TestSolve_InitialOffManifold(t *testing.T) {
	b := normalData(8, 80, 12)
	penalties := sparsepca.UniformPenalty(2, 0.1)
	ctx := context.Background()

	first, err := sparsepca.Solve(ctx, b, penalties, math.Inf(1), 0, sparsepca.WithComponents(2))
	require.NoError(t, err)
	var x0 mat.Dense
	x0.Scale(2, first.X)

	var worst float64
	res, err := sparsepca.Solve(ctx, b, penalties, math.Inf(1), 0,
		sparsepca.WithInitial(&x0, first.Y),
		sparsepca.WithProgress(func(p sparsepca.Progress) {
			worst = max(worst, orthonormalityError(p.X))
		}))
	require.NoError(t, err)
	assert.Less(t, worst, 1e-8)
	assert.Less(t, orthonormalityError(res.X), 1e-8)
}

func TestSolve_Errors(t *testing.T) {
	constant := normalData(7, 10, 30)
	constant.SetRow(4, sparsepca.UniformPenalty(30, 2.5))
	ctx := context.Background()

	test := []struct {
		name      string
		b         mat.Matrix
		penalties []float64
		ridge     float64
		opts      []sparsepca.Option
		err       error
	}{
		{"constant row", constant, sparsepca.UniformPenalty(30, 0.1), 1, nil, sparsepca.ErrNumericalDegeneracy},
		{"penalty count", normalData(7, 10, 30), sparsepca.UniformPenalty(2, 0.1), 1, []sparsepca.Option{sparsepca.WithComponents(3)}, sparsepca.ErrInvalidInput},
		{"wide input default components", normalData(7, 10, 30), sparsepca.UniformPenalty(30, 0.1), 1, nil, sparsepca.ErrInvalidInput},
		{"components above rank", normalData(7, 10, 30), sparsepca.UniformPenalty(12, 0.1), 1, []sparsepca.Option{sparsepca.WithComponents(12)}, sparsepca.ErrInvalidInput},
		{"negative ridge", normalData(7, 10, 30), sparsepca.UniformPenalty(2, 0.1), -1, []sparsepca.Option{sparsepca.WithComponents(2)}, sparsepca.ErrInvalidInput},
		{"initial shape", normalData(7, 10, 30), sparsepca.UniformPenalty(2, 0.1), 1, []sparsepca.Option{sparsepca.WithInitialX(mat.NewDense(29, 2, nil))}, sparsepca.ErrInvalidInput},
		{"covariance not square", normalData(7, 10, 30), sparsepca.UniformPenalty(2, 0.1), 1, []sparsepca.Option{sparsepca.WithCovariance(), sparsepca.WithComponents(2)}, sparsepca.ErrInvalidInput},
		{"gamma", normalData(7, 10, 30), sparsepca.UniformPenalty(2, 0.1), 1, []sparsepca.Option{sparsepca.WithGamma(1.5)}, sparsepca.ErrInvalidOption},
		{"max iter", normalData(7, 10, 30), sparsepca.UniformPenalty(2, 0.1), 1, []sparsepca.Option{sparsepca.WithMaxIter(0)}, sparsepca.ErrInvalidOption},
		{"tolerance", normalData(7, 10, 30), sparsepca.UniformPenalty(2, 0.1), 1, []sparsepca.Option{sparsepca.WithTolerance(math.NaN())}, sparsepca.ErrInvalidOption},
		{"components", normalData(7, 10, 30), sparsepca.UniformPenalty(2, 0.1), 1, []sparsepca.Option{sparsepca.WithComponents(0)}, sparsepca.ErrInvalidOption},
		{"normalized covariance", mat.NewDense(2, 2, []float64{2, 1, 1, 2}), sparsepca.UniformPenalty(1, 0.1), 1, []sparsepca.Option{sparsepca.WithCovariance(), sparsepca.WithNormalize(true), sparsepca.WithComponents(1)}, sparsepca.ErrInvalidOption},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			res, err := sparsepca.Solve(ctx, tt.b, tt.penalties, tt.ridge, 0, tt.opts...)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, res)
		})
	}
}

func TestSolve_MaxIter(t *testing.T) {
	res, err := sparsepca.Solve(context.Background(), normalData(8, 40, 10), sparsepca.UniformPenalty(2, 0.1), math.Inf(1), 0,
		sparsepca.WithComponents(2),
		sparsepca.WithMaxIter(2),
		sparsepca.WithTolerance(0))
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 2, res.Iterations)
	assert.Len(t, res.Trace, 3)
}

func TestSolve_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sparsepca.Solve(ctx, normalData(9, 20, 5), sparsepca.UniformPenalty(5, 0.1), 1, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatch(t *testing.T) {
	b := normalData(10, 50, 10)
	ctx := context.Background()
	batch, err := sparsepca.NewBatch(b, sparsepca.WithComponents(2))
	require.NoError(t, err)
	assert.Equal(t, 10, batch.Dim())

	settings := []struct{ mu, ridge float64 }{
		{0.1, 1}, {0.5, 1}, {0.1, math.Inf(1)}, {0.5, math.Inf(1)},
	}
	results := make([]*sparsepca.Result, len(settings))
	var wg sync.WaitGroup
	for i, s := range settings {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := batch.Solve(ctx, sparsepca.UniformPenalty(2, s.mu), s.ridge, 0)
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	wg.Wait()

	for i, s := range settings {
		want, err := sparsepca.Solve(ctx, b, sparsepca.UniformPenalty(2, s.mu), s.ridge, 0, sparsepca.WithComponents(2))
		require.NoError(t, err)
		require.NotNil(t, results[i])
		assert.Equal(t, want.Iterations, results[i].Iterations)
		assert.Equal(t, want.Objective, results[i].Objective)
		assert.True(t, mat.Equal(want.Loadings, results[i].Loadings))
	}

	// options given to Solve override the batch defaults
	res, err := batch.Solve(ctx, sparsepca.UniformPenalty(3, 0.1), 1, 0, sparsepca.WithComponents(3))
	require.NoError(t, err)
	_, n := res.Loadings.Dims()
	assert.Equal(t, 3, n)
}

func TestSolve_Covariance(t *testing.T) {
	b := normalData(11, 60, 8)
	var cov mat.Dense
	cov.Mul(b.T(), b)
	ctx := context.Background()

	data, err := sparsepca.Solve(ctx, b, sparsepca.UniformPenalty(2, 0.2), 1, 0,
		sparsepca.WithComponents(2), sparsepca.WithNormalize(false))
	require.NoError(t, err)
	fromCov, err := sparsepca.Solve(ctx, &cov, sparsepca.UniformPenalty(2, 0.2), 1, 0,
		sparsepca.WithComponents(2), sparsepca.WithCovariance())
	require.NoError(t, err)
	assert.InDelta(t, data.Objective, fromCov.Objective, 1e-9)
	assert.True(t, mat.EqualApprox(data.Loadings, fromCov.Loadings, 1e-9))

	explicit, err := sparsepca.Solve(ctx, &cov, sparsepca.UniformPenalty(2, 0.2), 1, 0,
		sparsepca.WithComponents(2), sparsepca.WithCovariance(), sparsepca.WithNormalize(false))
	require.NoError(t, err)
	assert.Equal(t, fromCov.Objective, explicit.Objective)
}

func TestUniformPenalty(t *testing.T) {
	assert.Equal(t, []float64{0.3, 0.3, 0.3}, sparsepca.UniformPenalty(3, 0.3))
	assert.Empty(t, sparsepca.UniformPenalty(0, 1))
}
