package main

import (
	"exp/internal/sweep"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	runConfigPath string
	runWorkers    int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Solve every grid point and store the runs",
	Long: `Solve the grid described by a YAML config on every seeded dataset.
Without --config the ten seed 1000x500 demonstration is run with a finite
ridge of 1 and an infinite ridge.

Examples:
  sweep run
  sweep run --config path.yaml --workers 4
  sweep run --db ./sweep.db --verbose`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "YAML sweep config")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "Concurrent solves (default GOMAXPROCS)")
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg := sweep.Default()
	if runConfigPath != "" {
		var err error
		if cfg, err = sweep.Load(runConfigPath); err != nil {
			return err
		}
	}
	if runWorkers > 0 {
		cfg.Workers = runWorkers
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	log.Info().
		Int("seeds", cfg.Seeds.Count).
		Str("shape", fmt.Sprintf("%dx%d", cfg.Rows, cfg.Cols)).
		Int("components", cfg.Components).
		Int("grid", len(cfg.Grid())).
		Msg("starting sweep")

	sum, err := sweep.Run(cmd.Context(), cfg, database, log.Logger)
	if err != nil {
		return err
	}
	log.Info().
		Int("runs", sum.Runs).
		Int("converged", sum.Converged).
		Int("failed", sum.Failed).
		Str("db", dbPath).
		Msg("sweep finished")
	return nil
}
