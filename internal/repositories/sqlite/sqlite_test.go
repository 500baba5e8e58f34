package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrisdamba/campussim/internal/models"
	"github.com/chrisdamba/campussim/internal/repositories"
)

func openStore(t *testing.T) *repositories.Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "campus.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestRunRepository(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	run := &models.RunSummary{
		RunID:            "run-1",
		StartedAt:        time.Date(2024, 9, 2, 7, 0, 0, 0, time.UTC),
		StartClock:       "07:00",
		EndClock:         "18:00",
		SimulatedMinutes: 660,
		Students:         150,
		Arrivals:         600,
		LateArrivals:     12,
		OnTimeRate:       0.98,
		TotalWait:        42.5,
		MaxQueueDepth:    7,
	}
	if err := store.Runs.Create(ctx, run); err != nil {
		t.Fatal(err)
	}
	if err := store.Runs.Create(ctx, run); err == nil {
		t.Error("duplicate run id should fail")
	}

	got, err := store.Runs.GetByID(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Arrivals != 600 || got.OnTimeRate != 0.98 || got.EndClock != "18:00" || !got.StartedAt.Equal(run.StartedAt) {
		t.Errorf("GetByID = %+v", got)
	}
	if _, err := store.Runs.GetByID(ctx, "missing"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("missing run error = %v", err)
	}

	all, err := store.Runs.GetAll(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("GetAll = %v, %v", all, err)
	}
	if err := store.Runs.DeleteAll(ctx); err != nil {
		t.Fatal(err)
	}
	if n, err := store.Runs.Count(ctx); err != nil || n != 0 {
		t.Errorf("Count after delete = %d, %v", n, err)
	}
}

func TestEdgeStatsRepository(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	stats := []*models.EdgeQueueStats{
		{RunID: "run-1", EdgeID: 7, From: "bridge_n", To: "bridge_s", Enqueued: 30, Dequeued: 30, MaxDepth: 9, TotalWait: 12, AverageWait: 0.4},
		{RunID: "run-1", EdgeID: 3, From: "library", To: "quad", Enqueued: 2, Dequeued: 1, MaxDepth: 2, Overflow: 1},
		{RunID: "run-2", EdgeID: 3, From: "library", To: "quad"},
	}
	if err := store.EdgeStats.BulkCreate(ctx, stats); err != nil {
		t.Fatal(err)
	}
	got, err := store.EdgeStats.GetByRunID(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].EdgeID != 3 || got[1].MaxDepth != 9 || got[1].AverageWait != 0.4 {
		t.Errorf("GetByRunID = %+v", got)
	}

	// a failing row rolls back the whole batch
	dup := []*models.EdgeQueueStats{{RunID: "run-3", EdgeID: 1}, {RunID: "run-3", EdgeID: 1}}
	if err := store.EdgeStats.BulkCreate(ctx, dup); err == nil {
		t.Fatal("duplicate key should fail")
	}
	if got, _ := store.EdgeStats.GetByRunID(ctx, "run-3"); len(got) != 0 {
		t.Errorf("partial batch committed: %+v", got)
	}
}

func TestEventRepository(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	events := []*models.EventRow{
		{RunID: "run-1", Seq: 0, Minutes: 420.1, Clock: "07:00", Topic: models.TopicMovement, Kind: models.EventDeparture, StudentID: "CS1-000", EdgeID: -1},
		{RunID: "run-1", Seq: 1, Minutes: 431, Clock: "07:11", Topic: models.TopicActivity, Kind: models.EventArrival, StudentID: "CS1-000", EdgeID: -1},
		{RunID: "run-1", Seq: 2, Minutes: 432, Clock: "07:12", Topic: models.TopicMovement, Kind: models.EventDeparture, StudentID: "CS1-001", EdgeID: -1},
	}
	if err := store.Events.BulkCreate(ctx, events); err != nil {
		t.Fatal(err)
	}
	got, err := store.Events.GetByRunID(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[1].Kind != models.EventArrival || got[0].Minutes != 420.1 {
		t.Errorf("GetByRunID = %+v", got)
	}
	counts, err := store.Events.CountByKind(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if counts[models.EventDeparture] != 2 || counts[models.EventArrival] != 1 {
		t.Errorf("CountByKind = %v", counts)
	}
	if err := store.Events.DeleteAll(ctx); err != nil {
		t.Fatal(err)
	}
}
