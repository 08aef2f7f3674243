package db

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// busyTimeout is how long a connection waits on a locked database, in
// milliseconds.
const busyTimeout = 5000

// pragmas are applied by the driver to every pooled connection.
var pragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(ON)",
	fmt.Sprintf("busy_timeout(%d)", busyTimeout),
	"synchronous(NORMAL)",
}

type DB struct {
	db *sql.DB
}

// Open opens or creates the run store at dbPath. A sweep has a single
// writer, so the pool is limited to one connection.
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &DB{db: db}, nil
}

func dsn(dbPath string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	return dbPath + "?" + q.Encode()
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}
