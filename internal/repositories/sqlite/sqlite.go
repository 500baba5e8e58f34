package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chrisdamba/campussim/internal/repositories"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id             TEXT PRIMARY KEY,
    started_at         TIMESTAMP NOT NULL,
    start_clock        TEXT NOT NULL,
    end_clock          TEXT NOT NULL,
    simulated_minutes  REAL NOT NULL,
    students           INTEGER NOT NULL,
    arrivals           INTEGER NOT NULL,
    late_arrivals      INTEGER NOT NULL,
    on_time_rate       REAL NOT NULL,
    replans            INTEGER NOT NULL,
    reroutes           INTEGER NOT NULL,
    route_failures     INTEGER NOT NULL,
    total_wait         REAL NOT NULL,
    enqueued           INTEGER NOT NULL,
    dequeued           INTEGER NOT NULL,
    overflow           INTEGER NOT NULL,
    max_queue_depth    INTEGER NOT NULL,
    average_queue_wait REAL NOT NULL,
    released           INTEGER NOT NULL,
    release_batches    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS edge_stats (
    run_id        TEXT NOT NULL,
    edge_id       INTEGER NOT NULL,
    from_location TEXT NOT NULL,
    to_location   TEXT NOT NULL,
    enqueued      INTEGER NOT NULL,
    dequeued      INTEGER NOT NULL,
    max_depth     INTEGER NOT NULL,
    total_wait    REAL NOT NULL,
    average_wait  REAL NOT NULL,
    overflow      INTEGER NOT NULL,
    PRIMARY KEY (run_id, edge_id)
);
CREATE TABLE IF NOT EXISTS events (
    run_id      TEXT NOT NULL,
    seq         INTEGER NOT NULL,
    minutes     REAL NOT NULL,
    clock       TEXT NOT NULL,
    topic       TEXT NOT NULL,
    kind        TEXT NOT NULL,
    student_id  TEXT NOT NULL,
    class       TEXT NOT NULL,
    location    TEXT NOT NULL,
    edge_id     INTEGER NOT NULL,
    description TEXT NOT NULL,
    PRIMARY KEY (run_id, seq)
);`

// Open opens (or creates) the database file at path and its tables.
func Open(ctx context.Context, path string) (*repositories.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// a single connection keeps writes serialised
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}
	return &repositories.Store{
		Runs:      NewRunRepository(db),
		EdgeStats: NewEdgeStatsRepository(db),
		Events:    NewEventRepository(db),
		Close:     func() { db.Close() },
	}, nil
}

// execTx runs stmt once per argument list inside one transaction.
func execTx(ctx context.Context, db *sql.DB, stmt string, args [][]any) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return err
	}
	defer prepared.Close()

	for _, a := range args {
		if _, err := prepared.ExecContext(ctx, a...); err != nil {
			return err
		}
	}
	return tx.Commit()
}
