package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/chrisdamba/campussim/internal/models"
	"github.com/chrisdamba/campussim/internal/repositories"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(ctx context.Context, run *models.RunSummary) error {
	_, err := r.db.ExecContext(ctx,
		repositories.InsertStatement("runs", repositories.RunColumns, false),
		repositories.RunValues(run)...)
	return err
}

func (r *RunRepository) GetByID(ctx context.Context, runID string) (*models.RunSummary, error) {
	row := r.db.QueryRowContext(ctx,
		repositories.SelectStatement("runs", repositories.RunColumns)+" WHERE run_id = ?", runID)
	run, err := repositories.ScanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	return run, err
}

func (r *RunRepository) GetAll(ctx context.Context) ([]*models.RunSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		repositories.SelectStatement("runs", repositories.RunColumns)+" ORDER BY started_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.RunSummary
	for rows.Next() {
		run, err := repositories.ScanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *RunRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

func (r *RunRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM runs")
	return err
}

type EdgeStatsRepository struct {
	db *sql.DB
}

func NewEdgeStatsRepository(db *sql.DB) *EdgeStatsRepository {
	return &EdgeStatsRepository{db: db}
}

func (r *EdgeStatsRepository) BulkCreate(ctx context.Context, stats []*models.EdgeQueueStats) error {
	args := make([][]any, len(stats))
	for i, s := range stats {
		args[i] = repositories.EdgeStatsValues(s)
	}
	return execTx(ctx, r.db, repositories.InsertStatement("edge_stats", repositories.EdgeStatsColumns, false), args)
}

func (r *EdgeStatsRepository) GetByRunID(ctx context.Context, runID string) ([]*models.EdgeQueueStats, error) {
	rows, err := r.db.QueryContext(ctx,
		repositories.SelectStatement("edge_stats", repositories.EdgeStatsColumns)+" WHERE run_id = ? ORDER BY edge_id",
		runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.EdgeQueueStats
	for rows.Next() {
		s, err := repositories.ScanEdgeStats(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *EdgeStatsRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM edge_stats")
	return err
}

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) BulkCreate(ctx context.Context, events []*models.EventRow) error {
	args := make([][]any, len(events))
	for i, e := range events {
		args[i] = repositories.EventValues(e)
	}
	return execTx(ctx, r.db, repositories.InsertStatement("events", repositories.EventColumns, false), args)
}

func (r *EventRepository) GetByRunID(ctx context.Context, runID string) ([]*models.EventRow, error) {
	rows, err := r.db.QueryContext(ctx,
		repositories.SelectStatement("events", repositories.EventColumns)+" WHERE run_id = ? ORDER BY seq",
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
	rows, err := r.db.QueryContext(ctx, "SELECT kind, COUNT(*) FROM events WHERE run_id = ? GROUP BY kind", runID)
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
	_, err := r.db.ExecContext(ctx, "DELETE FROM events")
	return err
}
