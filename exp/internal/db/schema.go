package db

const schema = `
-- Datasets table (seeded standard normal matrices)
CREATE TABLE IF NOT EXISTS datasets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    seed INTEGER NOT NULL,
    n_rows INTEGER NOT NULL,
    n_cols INTEGER NOT NULL,
    UNIQUE(seed, n_rows, n_cols)
);

-- Solver parameters table
-- ridge is NULL for an infinite ridge
CREATE TABLE IF NOT EXISTS params (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    components INTEGER NOT NULL,
    penalty REAL NOT NULL,
    ridge REAL,
    target_bound REAL NOT NULL,
    UNIQUE(components, penalty, ridge, target_bound)
);

-- Runs table
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dataset_id INTEGER NOT NULL,
    param_id INTEGER NOT NULL,

    iterations INTEGER NOT NULL,
    converged BOOLEAN NOT NULL,
    objective REAL NOT NULL,
    sparsity REAL NOT NULL,
    elapsed_ms REAL NOT NULL,
    line_searches INTEGER NOT NULL,

    support BLOB NOT NULL,
    support_rows INTEGER NOT NULL,
    support_cols INTEGER NOT NULL,

    FOREIGN KEY (dataset_id) REFERENCES datasets(id) ON DELETE CASCADE,
    FOREIGN KEY (param_id) REFERENCES params(id) ON DELETE CASCADE,
    UNIQUE(dataset_id, param_id)
);

-- Objective trace per run, iteration 0 is the starting point
CREATE TABLE IF NOT EXISTS traces (
    run_id INTEGER NOT NULL,
    iteration INTEGER NOT NULL,
    objective REAL NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE,
    PRIMARY KEY (run_id, iteration)
);

-- Indexes for performance
CREATE INDEX IF NOT EXISTS idx_runs_dataset ON runs(dataset_id);
CREATE INDEX IF NOT EXISTS idx_runs_param ON runs(param_id);
CREATE INDEX IF NOT EXISTS idx_params_penalty ON params(penalty);

-- View for easy querying with all details
CREATE VIEW IF NOT EXISTS runs_detailed AS
SELECT
    r.id,

    ds.seed,
    ds.n_rows,
    ds.n_cols,

    p.components,
    p.penalty,
    p.ridge,
    p.target_bound,

    r.iterations,
    r.converged,
    r.objective,
    r.sparsity,
    r.elapsed_ms,
    r.line_searches
FROM runs r
JOIN datasets ds ON r.dataset_id = ds.id
JOIN params p ON r.param_id = p.id;
`
