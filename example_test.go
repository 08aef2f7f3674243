package sparsepca_test

import (
	"context"
	"fmt"
	"math"

	"github.com/yyyoichi/sparsepca"
	"gonum.org/v1/gonum/mat"
)

func Example_sparsepca() {
	// Two groups of variables, each driven by its own latent factor
	const m, d = 40, 6
	b := mat.NewDense(m, d, nil)
	for i := range m {
		f1 := math.Sin(float64(i))
		f2 := math.Cos(3 * float64(i))
		for j := range d {
			noise := 0.01 * math.Sin(float64(7*i+13*j))
			if j < 3 {
				b.Set(i, j, f1+noise)
			} else {
				b.Set(i, j, f2+noise)
			}
		}
	}

	// Two components with orthonormal loadings and a moderate penalty
	res, err := sparsepca.Solve(context.Background(), b,
		sparsepca.UniformPenalty(2, 0.5), math.Inf(1), 0,
		sparsepca.WithComponents(2),
	)
	if err != nil {
		fmt.Printf("Error solving: %v\n", err)
		return
	}

	r, c := res.Loadings.Dims()
	fmt.Printf("loadings: %dx%d\n", r, c)
	fmt.Println("converged:", res.Converged)

	// Output:
	// loadings: 6x2
	// converged: true
}
