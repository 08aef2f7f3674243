package db

import (
	"database/sql"
	"fmt"
)

// InsertDataset inserts or gets an existing dataset
func (d *DB) InsertDataset(seed int64, rows, cols int) (int64, error) {
	// Try to get existing
	var id int64
	err := d.db.QueryRow(
		"SELECT id FROM datasets WHERE seed = ? AND n_rows = ? AND n_cols = ?",
		seed, rows, cols,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query dataset: %w", err)
	}

	// Insert new
	result, err := d.db.Exec(
		"INSERT INTO datasets (seed, n_rows, n_cols) VALUES (?, ?, ?)",
		seed, rows, cols,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert dataset: %w", err)
	}
	return result.LastInsertId()
}

// InsertParam inserts or gets existing solver parameters
func (d *DB) InsertParam(components int, penalty, ridge, targetBound float64) (int64, error) {
	// Try to get existing; IS matches a NULL ridge
	var id int64
	err := d.db.QueryRow(
		"SELECT id FROM params WHERE components = ? AND penalty = ? AND ridge IS ? AND target_bound = ?",
		components, penalty, ridgeToNull(ridge), targetBound,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query param: %w", err)
	}

	// Insert new
	result, err := d.db.Exec(
		"INSERT INTO params (components, penalty, ridge, target_bound) VALUES (?, ?, ?, ?)",
		components, penalty, ridgeToNull(ridge), targetBound,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert param: %w", err)
	}
	return result.LastInsertId()
}

// InsertRun inserts a run with its trace (or replaces an existing one)
func (d *DB) InsertRun(run *Run) (int64, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Check if run already exists
	var id int64
	err = tx.QueryRow(
		"SELECT id FROM runs WHERE dataset_id = ? AND param_id = ?",
		run.DatasetID, run.ParamID,
	).Scan(&id)

	switch {
	case err == nil:
		// Update existing
		_, err = tx.Exec(`
			UPDATE runs SET
				iterations = ?,
				converged = ?,
				objective = ?,
				sparsity = ?,
				elapsed_ms = ?,
				line_searches = ?,
				support = ?,
				support_rows = ?,
				support_cols = ?
			WHERE id = ?`,
			run.Iterations,
			run.Converged,
			run.Objective,
			run.Sparsity,
			run.ElapsedMs,
			run.LineSearches,
			Uint64SliceToBytes(run.Support),
			run.SupportRows,
			run.SupportCols,
			id,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to update run: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM traces WHERE run_id = ?", id); err != nil {
			return 0, fmt.Errorf("failed to clear trace: %w", err)
		}
	case err == sql.ErrNoRows:
		// Insert new
		res, err := tx.Exec(`
			INSERT INTO runs (
				dataset_id, param_id,
				iterations, converged, objective, sparsity, elapsed_ms, line_searches,
				support, support_rows, support_cols
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.DatasetID,
			run.ParamID,
			run.Iterations,
			run.Converged,
			run.Objective,
			run.Sparsity,
			run.ElapsedMs,
			run.LineSearches,
			Uint64SliceToBytes(run.Support),
			run.SupportRows,
			run.SupportCols,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert run: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("failed to query existing run: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO traces (run_id, iteration, objective) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare trace insert: %w", err)
	}
	defer stmt.Close()
	for i, f := range run.Trace {
		if _, err := stmt.Exec(id, i, f); err != nil {
			return 0, fmt.Errorf("failed to insert trace: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	run.ID = id
	return id, nil
}

// GetRun retrieves a run with its trace by ID
func (d *DB) GetRun(id int64) (*Run, error) {
	var (
		r       Run
		support []byte
	)
	err := d.db.QueryRow(`
		SELECT id, dataset_id, param_id,
		       iterations, converged, objective, sparsity, elapsed_ms, line_searches,
		       support, support_rows, support_cols
		FROM runs WHERE id = ?`, id,
	).Scan(
		&r.ID, &r.DatasetID, &r.ParamID,
		&r.Iterations, &r.Converged, &r.Objective, &r.Sparsity, &r.ElapsedMs, &r.LineSearches,
		&support, &r.SupportRows, &r.SupportCols,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	r.Support = BytesToUint64Slice(support)

	if r.Trace, err = d.GetTrace(id); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetTrace retrieves the objective trace of a run
func (d *DB) GetTrace(runID int64) ([]float64, error) {
	rows, err := d.db.Query(
		"SELECT objective FROM traces WHERE run_id = ? ORDER BY iteration", runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query trace: %w", err)
	}
	defer rows.Close()

	var trace []float64
	for rows.Next() {
		var f float64
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("failed to scan trace: %w", err)
		}
		trace = append(trace, f)
	}
	return trace, rows.Err()
}

// GetParam retrieves solver parameters by ID
func (d *DB) GetParam(id int64) (*Param, error) {
	var (
		p     Param
		ridge sql.NullFloat64
	)
	err := d.db.QueryRow(
		"SELECT id, components, penalty, ridge, target_bound FROM params WHERE id = ?", id,
	).Scan(&p.ID, &p.Components, &p.Penalty, &ridge, &p.TargetBound)
	if err != nil {
		return nil, fmt.Errorf("failed to get param: %w", err)
	}
	p.Ridge = nullToRidge(ridge)
	return &p, nil
}

// CountRuns counts total runs
func (d *DB) CountRuns() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}
