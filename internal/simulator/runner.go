package simulator

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/chrisdamba/campussim/internal/models"
	"github.com/chrisdamba/campussim/internal/repositories"
	"github.com/lucsky/cuid"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
)

// Runner drives a Simulation headless from the configured start to end time,
// streaming new log entries to an output destination.
type Runner struct {
	Config   *models.Config
	Sim      *Simulation
	Output   OutputDestination
	Store    *repositories.Store
	Progress io.Writer
	RunID    string

	flushed int
	written int
}

func NewRunner(config *models.Config, sim *Simulation, output OutputDestination) *Runner {
	return &Runner{
		Config:   config,
		Sim:      sim,
		Output:   output,
		Progress: io.Discard,
		RunID:    cuid.New(),
	}
}

// Run steps until the clock reaches the end time or ctx is cancelled. With
// Realtime set each step waits for a ticker, otherwise the loop runs flat out.
// The output destination is closed on return.
func (r *Runner) Run(ctx context.Context) (models.RunSummary, error) {
	defer func() {
		if err := r.Output.Close(); err != nil {
			log.Printf("Error closing output: %v", err)
		}
	}()

	startedAt := time.Now().UTC()
	start, end := r.Config.Window()
	log.Printf("Simulation %s starts at %s and ends at %s", r.RunID, r.Sim.Clock.TimeString(), r.Config.EndTime)

	bar := progressbar.NewOptions64(int64(end-start),
		progressbar.OptionSetWriter(r.Progress),
		progressbar.OptionSetDescription("simulated minutes"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	var tick <-chan time.Time
	if r.Config.Realtime {
		ticker := time.NewTicker(time.Duration(r.Config.TickSeconds * float64(time.Second)))
		defer ticker.Stop()
		tick = ticker.C
	}

	for r.Sim.Clock.Minutes() < end {
		if tick != nil {
			select {
			case <-ctx.Done():
				return models.RunSummary{}, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return models.RunSummary{}, err
		}

		if _, err := r.Sim.Step(r.Config.TickSeconds); err != nil {
			return models.RunSummary{}, fmt.Errorf("run %s: %w", r.RunID, err)
		}
		r.flush()
		_ = bar.Set64(int64(r.Sim.Clock.Minutes() - start))
	}
	_ = bar.Finish()

	summary := r.Sim.Summary()
	summary.RunID = r.RunID
	summary.StartedAt = startedAt
	log.Printf("Simulation completed at %s: %d arrivals (%d late), %d replans, %d reroutes, %d events written",
		summary.EndClock, summary.Arrivals, summary.LateArrivals, summary.Replans, summary.Reroutes, r.written)

	if err := r.persist(ctx, &summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// flush writes the log entries appended since the last flush. Failed writes
// are logged and skipped.
func (r *Runner) flush() {
	for _, entry := range r.Sim.Log[r.flushed:] {
		eventMsg, err := r.serializeEvent(entry)
		if err != nil {
			log.Printf("Error serializing event: %v", err)
			continue
		}
		if err := r.Output.WriteMessage(eventMsg.Topic, eventMsg.Message); err != nil {
			log.Printf("Failed to write message: %v", err)
			continue
		}
		r.written++
	}
	r.flushed = len(r.Sim.Log)
}

func (r *Runner) Written() int { return r.written }

func (r *Runner) persist(ctx context.Context, summary *models.RunSummary) error {
	if r.Store == nil {
		return nil
	}
	if err := r.Store.Runs.Create(ctx, summary); err != nil {
		return fmt.Errorf("failed to save run %s: %w", r.RunID, err)
	}
	stats := r.Sim.EdgeStats(r.RunID)
	if len(stats) > 0 {
		if err := r.Store.EdgeStats.BulkCreate(ctx, lo.ToSlicePtr(stats)); err != nil {
			return fmt.Errorf("failed to save edge stats of run %s: %w", r.RunID, err)
		}
	}
	if r.Store.Events != nil && len(r.Sim.Log) > 0 {
		rows := lo.Map(r.Sim.Log, func(e LogEntry, i int) *models.EventRow {
			return &models.EventRow{
				RunID:       r.RunID,
				Seq:         i,
				Minutes:     e.Minutes,
				Clock:       e.Clock,
				Topic:       models.TopicFor(e.Kind),
				Kind:        e.Kind,
				StudentID:   e.StudentID,
				Class:       e.Class,
				Location:    e.Location,
				EdgeID:      int(e.Edge),
				Description: e.Description,
			}
		})
		if err := r.Store.Events.BulkCreate(ctx, rows); err != nil {
			return fmt.Errorf("failed to save events of run %s: %w", r.RunID, err)
		}
	}
	log.Printf("Saved run %s with %d edge stats", r.RunID, len(stats))
	return nil
}
