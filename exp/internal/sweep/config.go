package sweep

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrConfig = errors.New("invalid sweep config")

// Config describes a grid of solves. Ridges accept .inf for the
// orthonormal branch.
type Config struct {
	Seeds struct {
		First int64 `yaml:"first"`
		Count int   `yaml:"count"`
	} `yaml:"seeds"`
	Rows        int       `yaml:"rows"`
	Cols        int       `yaml:"cols"`
	Components  int       `yaml:"components"`
	Penalties   []float64 `yaml:"penalties"`
	Ridges      []float64 `yaml:"ridges"`
	TargetBound float64   `yaml:"target_bound"`
	MaxIter     int       `yaml:"max_iter"`
	Tolerance   float64   `yaml:"tolerance"`
	Workers     int       `yaml:"workers"`
}

// Default mirrors the ten seed demonstration: a 1000×500 normal matrix,
// four components and a uniform penalty of 0.1 for both branches.
func Default() Config {
	var c Config
	c.Seeds.First = 1
	c.Seeds.Count = 10
	c.Rows, c.Cols = 1000, 500
	c.Components = 4
	c.Penalties = []float64{0.1}
	c.Ridges = []float64{1, math.Inf(1)}
	c.TargetBound = 1e5
	c.MaxIter = 10000
	c.Tolerance = 1e-5
	return c
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Seeds.Count < 1:
		return fmt.Errorf("%w: seeds.count %d", ErrConfig, c.Seeds.Count)
	case c.Rows < 1 || c.Cols < 1:
		return fmt.Errorf("%w: shape %dx%d", ErrConfig, c.Rows, c.Cols)
	case c.Components < 1 || c.Components > c.Cols:
		return fmt.Errorf("%w: components %d", ErrConfig, c.Components)
	case len(c.Penalties) == 0:
		return fmt.Errorf("%w: no penalties", ErrConfig)
	case len(c.Ridges) == 0:
		return fmt.Errorf("%w: no ridges", ErrConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d", ErrConfig, c.Workers)
	}
	return nil
}

// Grid returns every (penalty, ridge) pair of the sweep.
func (c Config) Grid() []Point {
	grid := make([]Point, 0, len(c.Penalties)*len(c.Ridges))
	for _, ridge := range c.Ridges {
		for _, mu := range c.Penalties {
			grid = append(grid, Point{Penalty: mu, Ridge: ridge})
		}
	}
	return grid
}

type Point struct {
	Penalty float64
	Ridge   float64
}
