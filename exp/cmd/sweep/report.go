package main

import (
	"encoding/json"
	"exp/internal/db"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	reportFormat string
	reportSQL    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print aggregates per parameter set",
	Long: `Print run counts, convergence rate and average iterations, objective,
sparsity and time for every parameter set in the database.

Examples:
  sweep report
  sweep report --format json
  sweep report --sql "SELECT seed, sparsity FROM runs_detailed WHERE ridge IS NULL"`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportFormat, "format", "table", "Output format: table, json")
	reportCmd.Flags().StringVar(&reportSQL, "sql", "", "Raw SQL query to execute instead")
}

func runReport(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	if reportSQL != "" {
		rows, err := database.ExecuteRawQuery(reportSQL)
		if err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("failed to get columns: %w", err)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, strings.Join(cols, "\t"))
		for rows.Next() {
			values := make([]any, len(cols))
			valuePtrs := make([]any, len(cols))
			for i := range values {
				valuePtrs[i] = &values[i]
			}
			if err := rows.Scan(valuePtrs...); err != nil {
				return fmt.Errorf("failed to scan row: %w", err)
			}
			cells := make([]string, len(values))
			for i, v := range values {
				cells[i] = fmt.Sprint(v)
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
		if err := rows.Err(); err != nil {
			return err
		}
		return w.Flush()
	}

	stats, err := database.GetParamStats()
	if err != nil {
		return err
	}
	switch strings.ToLower(reportFormat) {
	case "json":
		// JSON has no infinity, ridges are written as strings
		type row struct {
			*db.ParamStats
			Ridge string
		}
		out := make([]row, len(stats))
		for i, s := range stats {
			out[i] = row{s, ridgeLabel(s.Ridge)}
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	default:
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "N\tPENALTY\tRIDGE\tRUNS\tCONVERGED\tITER\tOBJECTIVE\tSPARSITY\tMS")
		for _, s := range stats {
			fmt.Fprintf(w, "%d\t%g\t%s\t%d\t%.0f%%\t%.1f\t%.4f\t%.3f\t%.1f\n",
				s.Components, s.Penalty, ridgeLabel(s.Ridge), s.Runs, s.ConvergedRate*100,
				s.AvgIterations, s.AvgObjective, s.AvgSparsity, s.AvgElapsedMs)
		}
		return w.Flush()
	}
}

func ridgeLabel(ridge float64) string {
	if math.IsInf(ridge, 1) {
		return "inf"
	}
	return fmt.Sprintf("%g", ridge)
}
