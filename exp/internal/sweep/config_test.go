package sweep

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	test := []struct {
		name  string
		yaml  string
		err   error
		check func(t *testing.T, c Config)
	}{
		{
			name: "defaults",
			yaml: "",
			check: func(t *testing.T, c Config) {
				assert.Equal(t, Default(), c)
			},
		},
		{
			name: "override",
			yaml: `
seeds: {first: 3, count: 2}
rows: 50
cols: 20
components: 2
penalties: [0.05, 0.5]
ridges: [0.5, .inf]
workers: 4
`,
			check: func(t *testing.T, c Config) {
				assert.Equal(t, int64(3), c.Seeds.First)
				assert.Equal(t, 2, c.Seeds.Count)
				assert.Equal(t, 50, c.Rows)
				assert.Equal(t, []float64{0.05, 0.5}, c.Penalties)
				require.Len(t, c.Ridges, 2)
				assert.True(t, math.IsInf(c.Ridges[1], 1))
				assert.Equal(t, 1e5, c.TargetBound)
				assert.Len(t, c.Grid(), 4)
			},
		},
		{name: "too many components", yaml: "cols: 3\ncomponents: 4", err: ErrConfig},
		{name: "no penalties", yaml: "penalties: []", err: ErrConfig},
		{name: "bad yaml", yaml: "rows: [", err: ErrConfig},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sweep.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			c, err := Load(path)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			tt.check(t, c)
		})
	}
}

func TestGrid(t *testing.T) {
	c := Default()
	c.Penalties = []float64{0.1, 0.2}
	c.Ridges = []float64{1, math.Inf(1)}
	assert.Equal(t, []Point{
		{0.1, 1}, {0.2, 1}, {0.1, math.Inf(1)}, {0.2, math.Inf(1)},
	}, c.Grid())
}
