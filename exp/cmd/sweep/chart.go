package main

import (
	"exp/internal/db"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	chartOutDir  string
	chartPenalty float64
	chartSeed    int64
)

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render objective traces and sparsity paths as HTML",
	Long: `Render two kinds of charts from the stored runs:
  traces_<penalty>_<ridge>.html   objective per iteration, one series per seed
  path_<seed>.html                sparsity against penalty, one series per ridge

Examples:
  sweep chart --penalty 0.1
  sweep chart --seed 3 --out ./charts`,
	RunE: runChart,
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVar(&chartOutDir, "out", "/tmp/sparsepca/charts", "Output directory")
	chartCmd.Flags().Float64Var(&chartPenalty, "penalty", 0.1, "Penalty whose traces are drawn")
	chartCmd.Flags().Int64Var(&chartSeed, "seed", 1, "Dataset seed whose sparsity path is drawn")
}

func runChart(cmd *cobra.Command, args []string) error {
	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := os.MkdirAll(chartOutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// 1. Objective traces per ridge
	runs, err := database.GetRunsByPenalty(chartPenalty)
	if err != nil {
		return err
	}
	byRidge := make(map[string][]*db.DetailedRun)
	var ridges []string
	for _, r := range runs {
		key := ridgeLabel(r.Ridge)
		if _, ok := byRidge[key]; !ok {
			ridges = append(ridges, key)
		}
		byRidge[key] = append(byRidge[key], r)
	}
	for _, ridge := range ridges {
		path := filepath.Join(chartOutDir, fmt.Sprintf("traces_%g_%s.html", chartPenalty, ridge))
		if err := generateTraceChart(database, byRidge[ridge], ridge, path); err != nil {
			log.Error().Err(err).Str("ridge", ridge).Msg("failed to generate trace chart")
			continue
		}
		log.Info().Str("path", path).Msg("generated")
	}

	// 2. Sparsity against penalty
	path := filepath.Join(chartOutDir, fmt.Sprintf("path_%d.html", chartSeed))
	if err := generatePathChart(database, chartSeed, path); err != nil {
		return fmt.Errorf("failed to generate path chart: %w", err)
	}
	log.Info().Str("path", path).Msg("generated")
	return nil
}

// generateTraceChart draws the objective of every run against its iteration
func generateTraceChart(database *db.DB, runs []*db.DetailedRun, ridge, outputPath string) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Objective trace (penalty=%g, ridge=%s)", chartPenalty, ridge),
			Subtitle: "Iteration 0 is the starting point",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Iteration",
			Type: "category",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  "Objective",
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "5%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "slider",
			Start: 0,
			End:   100,
		}),
	)

	var longest int
	for _, r := range runs {
		trace, err := database.GetTrace(r.ID)
		if err != nil {
			return err
		}
		longest = max(longest, len(trace))
		data := make([]opts.LineData, len(trace))
		for i, f := range trace {
			data[i] = opts.LineData{Value: f}
		}
		line.AddSeries(fmt.Sprintf("seed %d", r.Seed), data,
			charts.WithLineChartOpts(opts.LineChart{
				ShowSymbol: opts.Bool(false),
			}),
		)
	}
	xAxisData := make([]string, longest)
	for i := range xAxisData {
		xAxisData[i] = strconv.Itoa(i)
	}
	line.SetXAxis(xAxisData)

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return line.Render(f)
}

// generatePathChart draws sparsity against penalty for every ridge of one dataset
func generatePathChart(database *db.DB, seed int64, outputPath string) error {
	runs, err := database.GetRunsBySeed(seed)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no runs for seed %d", seed)
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Sparsity path (seed=%d)", seed),
			Subtitle: "Fraction of zero loadings against the penalty weight",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Penalty",
			Type: "log",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Sparsity",
			Type: "value",
			Min:  0,
			Max:  1,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "5%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
	)

	groups := make(map[string][]opts.ScatterData)
	var ridges []string
	for _, r := range runs {
		key := "ridge=" + ridgeLabel(r.Ridge)
		if _, ok := groups[key]; !ok {
			ridges = append(ridges, key)
		}
		groups[key] = append(groups[key], opts.ScatterData{
			Value: []any{r.Penalty, r.Sparsity},
			Name:  fmt.Sprintf("penalty=%g iterations=%d", r.Penalty, r.Iterations),
		})
	}
	for _, key := range ridges {
		scatter.AddSeries(key, groups[key])
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return scatter.Render(f)
}
