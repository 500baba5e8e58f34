package repositories

import (
	"context"
	"errors"

	"github.com/chrisdamba/campussim/internal/models"
)

var ErrNotFound = errors.New("not found")

type RunRepository interface {
	Create(ctx context.Context, run *models.RunSummary) error
	GetByID(ctx context.Context, runID string) (*models.RunSummary, error)
	GetAll(ctx context.Context) ([]*models.RunSummary, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type EdgeStatsRepository interface {
	BulkCreate(ctx context.Context, stats []*models.EdgeQueueStats) error
	GetByRunID(ctx context.Context, runID string) ([]*models.EdgeQueueStats, error)
	DeleteAll(ctx context.Context) error
}

type EventRepository interface {
	BulkCreate(ctx context.Context, events []*models.EventRow) error
	GetByRunID(ctx context.Context, runID string) ([]*models.EventRow, error)
	CountByKind(ctx context.Context, runID string) (map[string]int, error)
	DeleteAll(ctx context.Context) error
}

// Store groups the repositories of one database.
type Store struct {
	Runs      RunRepository
	EdgeStats EdgeStatsRepository
	Events    EventRepository
	Close     func()
}
