package repositories

import (
	"fmt"
	"strings"

	"github.com/chrisdamba/campussim/internal/models"
)

// Scanner is satisfied by pgx rows and database/sql rows alike.
type Scanner interface {
	Scan(dest ...any) error
}

var RunColumns = []string{
	"run_id", "started_at", "start_clock", "end_clock", "simulated_minutes",
	"students", "arrivals", "late_arrivals", "on_time_rate", "replans",
	"reroutes", "route_failures", "total_wait", "enqueued", "dequeued",
	"overflow", "max_queue_depth", "average_queue_wait", "released", "release_batches",
}

func RunValues(r *models.RunSummary) []any {
	return []any{
		r.RunID, r.StartedAt, r.StartClock, r.EndClock, r.SimulatedMinutes,
		r.Students, r.Arrivals, r.LateArrivals, r.OnTimeRate, r.Replans,
		r.Reroutes, r.RouteFailures, r.TotalWait, r.Enqueued, r.Dequeued,
		r.Overflow, r.MaxQueueDepth, r.AverageQueueWait, r.Released, r.ReleaseBatches,
	}
}

func ScanRun(row Scanner) (*models.RunSummary, error) {
	r := &models.RunSummary{}
	err := row.Scan(
		&r.RunID, &r.StartedAt, &r.StartClock, &r.EndClock, &r.SimulatedMinutes,
		&r.Students, &r.Arrivals, &r.LateArrivals, &r.OnTimeRate, &r.Replans,
		&r.Reroutes, &r.RouteFailures, &r.TotalWait, &r.Enqueued, &r.Dequeued,
		&r.Overflow, &r.MaxQueueDepth, &r.AverageQueueWait, &r.Released, &r.ReleaseBatches,
	)
	return r, err
}

var EdgeStatsColumns = []string{
	"run_id", "edge_id", "from_location", "to_location", "enqueued",
	"dequeued", "max_depth", "total_wait", "average_wait", "overflow",
}

func EdgeStatsValues(s *models.EdgeQueueStats) []any {
	return []any{
		s.RunID, s.EdgeID, s.From, s.To, s.Enqueued,
		s.Dequeued, s.MaxDepth, s.TotalWait, s.AverageWait, s.Overflow,
	}
}

func ScanEdgeStats(row Scanner) (*models.EdgeQueueStats, error) {
	s := &models.EdgeQueueStats{}
	err := row.Scan(
		&s.RunID, &s.EdgeID, &s.From, &s.To, &s.Enqueued,
		&s.Dequeued, &s.MaxDepth, &s.TotalWait, &s.AverageWait, &s.Overflow,
	)
	return s, err
}

var EventColumns = []string{
	"run_id", "seq", "minutes", "clock", "topic", "kind",
	"student_id", "class", "location", "edge_id", "description",
}

func EventValues(e *models.EventRow) []any {
	return []any{
		e.RunID, e.Seq, e.Minutes, e.Clock, e.Topic, e.Kind,
		e.StudentID, e.Class, e.Location, e.EdgeID, e.Description,
	}
}

func ScanEvent(row Scanner) (*models.EventRow, error) {
	e := &models.EventRow{}
	err := row.Scan(
		&e.RunID, &e.Seq, &e.Minutes, &e.Clock, &e.Topic, &e.Kind,
		&e.StudentID, &e.Class, &e.Location, &e.EdgeID, &e.Description,
	)
	return e, err
}

// InsertStatement builds an INSERT for columns. numbered selects $1 style
// placeholders instead of ?.
func InsertStatement(table string, columns []string, numbered bool) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		if numbered {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		} else {
			placeholders[i] = "?"
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

func SelectStatement(table string, columns []string) string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), table)
}
