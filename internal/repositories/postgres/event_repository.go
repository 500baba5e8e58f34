package postgres

import (
	"context"

	"github.com/chrisdamba/campussim/internal/models"
	"github.com/chrisdamba/campussim/internal/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// BulkCreate streams the rows with COPY; an event log runs to tens of
// thousands of rows per day.
func (r *EventRepository) BulkCreate(ctx context.Context, events []*models.EventRow) error {
	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"events"},
		repositories.EventColumns,
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			return repositories.EventValues(events[i]), nil
		}),
	)
	return err
}

func (r *EventRepository) GetByRunID(ctx context.Context, runID string) ([]*models.EventRow, error) {
	rows, err := r.pool.Query(ctx,
		repositories.SelectStatement("events", repositories.EventColumns)+" WHERE run_id = $1 ORDER BY seq",
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.EventRow
	for rows.Next() {
		e, err := repositories.ScanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventRepository) CountByKind(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, "SELECT kind, COUNT(*) FROM events WHERE run_id = $1 GROUP BY kind", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

func (r *EventRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM events")
	return err
}
