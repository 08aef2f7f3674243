package main

import (
	"exp/internal/db"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	dbPath  string
	verbose bool
)

// rootCmd is the base command of the sweep tool
var rootCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run and inspect sparse PCA parameter sweeps",
	Long: `sweep solves grids of penalty and ridge settings on seeded standard
normal matrices, stores every run in SQLite and renders the results.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		zerolog.SetGlobalLevel(level)
	},
}

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "/tmp/sparsepca/sweep.db", "Path to database file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log every solver iteration")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openDatabase creates the database directory when needed
func openDatabase() (*db.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", dbPath).Msg("database opened")
	return database, nil
}
