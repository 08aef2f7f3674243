package sweep

import (
	"context"
	"exp/internal/dataset"
	"exp/internal/db"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"github.com/yyyoichi/sparsepca"
)

// Store receives the outcome of every solve.
type Store interface {
	InsertDataset(seed int64, rows, cols int) (int64, error)
	InsertParam(components int, penalty, ridge, targetBound float64) (int64, error)
	InsertRun(run *db.Run) (int64, error)
}

// Summary counts the runs of one sweep.
type Summary struct {
	Runs      int
	Converged int
	Failed    int
}

type job struct {
	seed      int64
	datasetID int64
	paramID   int64
	point     Point
	batch     *sparsepca.Batch
}

type outcome struct {
	job job
	res *sparsepca.Result
	err error
}

// Run solves every grid point on every seeded dataset and stores the
// results. Each dataset is prepared once and shared by its solves.
func Run(ctx context.Context, c Config, store Store, log zerolog.Logger) (Summary, error) {
	var sum Summary
	if err := c.Validate(); err != nil {
		return sum, err
	}
	numWorkers := c.Workers
	if numWorkers == 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	opts := []sparsepca.Option{
		sparsepca.WithComponents(c.Components),
		sparsepca.WithMaxIter(c.MaxIter),
		sparsepca.WithTolerance(c.Tolerance),
	}

	for _, seed := range dataset.Seeds(c.Seeds.First, c.Seeds.Count) {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		datasetID, err := store.InsertDataset(seed, c.Rows, c.Cols)
		if err != nil {
			return sum, err
		}
		batch, err := sparsepca.NewBatch(dataset.Normal(seed, c.Rows, c.Cols), opts...)
		if err != nil {
			return sum, fmt.Errorf("failed to prepare seed %d: %w", seed, err)
		}

		var jobs []job
		for _, p := range c.Grid() {
			paramID, err := store.InsertParam(c.Components, p.Penalty, p.Ridge, c.TargetBound)
			if err != nil {
				return sum, err
			}
			jobs = append(jobs, job{seed: seed, datasetID: datasetID, paramID: paramID, point: p, batch: batch})
		}

		// Create channels
		jobCh := make(chan job, numWorkers)
		resultCh := make(chan outcome, len(jobs))

		// Start worker goroutines
		var wg sync.WaitGroup
		wg.Add(numWorkers)
		for range numWorkers {
			go func() {
				defer wg.Done()
				for j := range jobCh {
					l := log.With().Int64("seed", j.seed).Float64("penalty", j.point.Penalty).Logger()
					res, err := j.batch.Solve(ctx, sparsepca.UniformPenalty(c.Components, j.point.Penalty), j.point.Ridge, c.TargetBound,
						sparsepca.WithLogger(l))
					resultCh <- outcome{job: j, res: res, err: err}
				}
			}()
		}
		go func() {
			defer close(resultCh)
			wg.Wait()
		}()

		// Send jobs
		go func() {
			defer close(jobCh)
			for _, j := range jobs {
				jobCh <- j
			}
		}()

		// Collect results
		for o := range resultCh {
			sum.Runs++
			l := log.With().
				Int64("seed", o.job.seed).
				Float64("penalty", o.job.point.Penalty).
				Float64("ridge", o.job.point.Ridge).
				Logger()
			if o.err != nil {
				sum.Failed++
				l.Error().Err(o.err).Msg("solve failed")
				continue
			}
			if o.res.Converged {
				sum.Converged++
			}
			r, cols := o.res.Support.Dims()
			_, err := store.InsertRun(&db.Run{
				DatasetID:    o.job.datasetID,
				ParamID:      o.job.paramID,
				Iterations:   o.res.Iterations,
				Converged:    o.res.Converged,
				Objective:    o.res.Objective,
				Sparsity:     o.res.Sparsity,
				ElapsedMs:    float64(o.res.Elapsed.Microseconds()) / 1000,
				LineSearches: o.res.LineSearches,
				Support:      o.res.Support.Data(),
				SupportRows:  r,
				SupportCols:  cols,
				Trace:        o.res.Trace,
			})
			if err != nil {
				l.Error().Err(err).Msg("failed to store run")
				continue
			}
			l.Info().
				Int("iterations", o.res.Iterations).
				Bool("converged", o.res.Converged).
				Float64("objective", o.res.Objective).
				Float64("sparsity", o.res.Sparsity).
				Dur("elapsed", o.res.Elapsed).
				Msg("run")
		}
	}
	return sum, nil
}
