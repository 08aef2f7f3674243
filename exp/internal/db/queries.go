package db

import (
	"database/sql"
	"fmt"
)

// DetailedRun contains all joined information for a run
type DetailedRun struct {
	ID int64

	// Dataset info
	Seed int64
	Rows int
	Cols int

	// Parameters
	Components  int
	Penalty     float64
	Ridge       float64
	TargetBound float64

	// Metrics
	Iterations   int
	Converged    bool
	Objective    float64
	Sparsity     float64
	ElapsedMs    float64
	LineSearches int
}

// QueryDetailed executes a query on the runs_detailed view
func (d *DB) QueryDetailed(query string, args ...any) ([]*DetailedRun, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var results []*DetailedRun
	for rows.Next() {
		var (
			r     DetailedRun
			ridge sql.NullFloat64
		)
		err := rows.Scan(
			&r.ID,
			&r.Seed,
			&r.Rows,
			&r.Cols,
			&r.Components,
			&r.Penalty,
			&ridge,
			&r.TargetBound,
			&r.Iterations,
			&r.Converged,
			&r.Objective,
			&r.Sparsity,
			&r.ElapsedMs,
			&r.LineSearches,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		r.Ridge = nullToRidge(ridge)
		results = append(results, &r)
	}
	return results, rows.Err()
}

// ListRuns returns every run ordered by dataset and penalty
func (d *DB) ListRuns() ([]*DetailedRun, error) {
	return d.QueryDetailed(`
		SELECT * FROM runs_detailed
		ORDER BY seed, n_rows, n_cols, ridge IS NULL, ridge, penalty
	`)
}

// GetRunsBySeed returns the runs on one dataset
func (d *DB) GetRunsBySeed(seed int64) ([]*DetailedRun, error) {
	return d.QueryDetailed(`
		SELECT * FROM runs_detailed
		WHERE seed = ?
		ORDER BY ridge IS NULL, ridge, penalty
	`, seed)
}

// GetPenaltyPath returns the runs of one dataset and ridge ordered by penalty
func (d *DB) GetPenaltyPath(seed int64, ridge float64) ([]*DetailedRun, error) {
	return d.QueryDetailed(`
		SELECT * FROM runs_detailed
		WHERE seed = ? AND ridge IS ?
		ORDER BY penalty
	`, seed, ridgeToNull(ridge))
}

// GetRunsByPenalty returns the runs with one penalty across datasets and ridges
func (d *DB) GetRunsByPenalty(penalty float64) ([]*DetailedRun, error) {
	return d.QueryDetailed(`
		SELECT * FROM runs_detailed
		WHERE penalty = ?
		ORDER BY ridge IS NULL, ridge, seed
	`, penalty)
}

// ParamStats aggregates runs sharing the same parameters across datasets
type ParamStats struct {
	Components    int
	Penalty       float64
	Ridge         float64
	Runs          int
	ConvergedRate float64
	AvgIterations float64
	AvgObjective  float64
	AvgSparsity   float64
	AvgElapsedMs  float64
}

// GetParamStats returns aggregates per parameter set
func (d *DB) GetParamStats() ([]*ParamStats, error) {
	rows, err := d.db.Query(`
		SELECT components, penalty, ridge,
		       COUNT(*),
		       AVG(CAST(converged AS REAL)),
		       AVG(iterations),
		       AVG(objective),
		       AVG(sparsity),
		       AVG(elapsed_ms)
		FROM runs_detailed
		GROUP BY components, penalty, ridge
		ORDER BY components, ridge IS NULL, ridge, penalty
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query param stats: %w", err)
	}
	defer rows.Close()

	var stats []*ParamStats
	for rows.Next() {
		var (
			s     ParamStats
			ridge sql.NullFloat64
		)
		if err := rows.Scan(
			&s.Components, &s.Penalty, &ridge,
			&s.Runs, &s.ConvergedRate, &s.AvgIterations,
			&s.AvgObjective, &s.AvgSparsity, &s.AvgElapsedMs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan param stats: %w", err)
		}
		s.Ridge = nullToRidge(ridge)
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// ExecuteRawQuery executes a raw SQL query
func (d *DB) ExecuteRawQuery(query string) (*sql.Rows, error) {
	return d.db.Query(query)
}
