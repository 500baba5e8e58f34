package postgres

import (
	"context"
	"fmt"

	"github.com/chrisdamba/campussim/internal/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    run_id             TEXT PRIMARY KEY,
    started_at         TIMESTAMPTZ NOT NULL,
    start_clock        TEXT NOT NULL,
    end_clock          TEXT NOT NULL,
    simulated_minutes  DOUBLE PRECISION NOT NULL,
    students           INTEGER NOT NULL,
    arrivals           INTEGER NOT NULL,
    late_arrivals      INTEGER NOT NULL,
    on_time_rate       DOUBLE PRECISION NOT NULL,
    replans            INTEGER NOT NULL,
    reroutes           INTEGER NOT NULL,
    route_failures     INTEGER NOT NULL,
    total_wait         DOUBLE PRECISION NOT NULL,
    enqueued           INTEGER NOT NULL,
    dequeued           INTEGER NOT NULL,
    overflow           INTEGER NOT NULL,
    max_queue_depth    INTEGER NOT NULL,
    average_queue_wait DOUBLE PRECISION NOT NULL,
    released           INTEGER NOT NULL,
    release_batches    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS edge_stats (
    run_id        TEXT NOT NULL REFERENCES runs (run_id) ON DELETE CASCADE,
    edge_id       INTEGER NOT NULL,
    from_location TEXT NOT NULL,
    to_location   TEXT NOT NULL,
    enqueued      INTEGER NOT NULL,
    dequeued      INTEGER NOT NULL,
    max_depth     INTEGER NOT NULL,
    total_wait    DOUBLE PRECISION NOT NULL,
    average_wait  DOUBLE PRECISION NOT NULL,
    overflow      INTEGER NOT NULL,
    PRIMARY KEY (run_id, edge_id)
);
CREATE TABLE IF NOT EXISTS events (
    run_id      TEXT NOT NULL REFERENCES runs (run_id) ON DELETE CASCADE,
    seq         INTEGER NOT NULL,
    minutes     DOUBLE PRECISION NOT NULL,
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

// Open connects a pool, creates the tables and returns the repositories.
func Open(ctx context.Context, url string) (*repositories.Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error pinging database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}
	return &repositories.Store{
		Runs:      NewRunRepository(pool),
		EdgeStats: NewEdgeStatsRepository(pool),
		Events:    NewEventRepository(pool),
		Close:     pool.Close,
	}, nil
}
