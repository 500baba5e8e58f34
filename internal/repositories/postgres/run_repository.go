package postgres

import (
	"context"
	"errors"

	"github.com/chrisdamba/campussim/internal/models"
	"github.com/chrisdamba/campussim/internal/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RunRepository struct {
	pool *pgxpool.Pool
}

func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

func (r *RunRepository) Create(ctx context.Context, run *models.RunSummary) error {
	_, err := r.pool.Exec(ctx,
		repositories.InsertStatement("runs", repositories.RunColumns, true),
		repositories.RunValues(run)...)
	return err
}

func (r *RunRepository) GetByID(ctx context.Context, runID string) (*models.RunSummary, error) {
	row := r.pool.QueryRow(ctx,
		repositories.SelectStatement("runs", repositories.RunColumns)+" WHERE run_id = $1", runID)
	run, err := repositories.ScanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	return run, err
}

func (r *RunRepository) GetAll(ctx context.Context) ([]*models.RunSummary, error) {
	rows, err := r.pool.Query(ctx,
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
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}

func (r *RunRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM runs")
	return err
}
