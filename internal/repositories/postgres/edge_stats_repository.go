package postgres

import (
	"context"

	"github.com/chrisdamba/campussim/internal/models"
	"github.com/chrisdamba/campussim/internal/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EdgeStatsRepository struct {
	pool *pgxpool.Pool
}

func NewEdgeStatsRepository(pool *pgxpool.Pool) *EdgeStatsRepository {
	return &EdgeStatsRepository{pool: pool}
}

func (r *EdgeStatsRepository) BulkCreate(ctx context.Context, stats []*models.EdgeQueueStats) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	stmt := repositories.InsertStatement("edge_stats", repositories.EdgeStatsColumns, true)
	for _, s := range stats {
		if _, err = tx.Exec(ctx, stmt, repositories.EdgeStatsValues(s)...); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *EdgeStatsRepository) GetByRunID(ctx context.Context, runID string) ([]*models.EdgeQueueStats, error) {
	rows, err := r.pool.Query(ctx,
		repositories.SelectStatement("edge_stats", repositories.EdgeStatsColumns)+" WHERE run_id = $1 ORDER BY edge_id",
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
	_, err := r.pool.Exec(ctx, "DELETE FROM edge_stats")
	return err
}
