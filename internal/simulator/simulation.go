package simulator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/chrisdamba/campussim/internal/graph"
	"github.com/chrisdamba/campussim/internal/models"
	"github.com/chrisdamba/campussim/internal/release"
	"github.com/chrisdamba/campussim/internal/schedule"
	"github.com/chrisdamba/campussim/internal/student"
	"github.com/samber/lo"
)

// NoEdge marks log entries that are not about a particular edge.
const NoEdge graph.EdgeID = -1

type LogEntry struct {
	Minutes     float64
	Clock       string
	StudentID   string
	Class       string
	Kind        string
	Location    string
	Edge        graph.EdgeID
	Description string
}

// Simulation owns the graph, the clock and every student. Queues and Release
// are optional; nil disables queueing or batch release.
type Simulation struct {
	Graph    *graph.Graph
	Clock    *Clock
	Students []*student.Student
	Queues   *student.Queues
	Release  *release.Controller[*student.Student]
	Log      []LogEntry

	routeFailures int
	failedTarget  map[string]float64
}

func NewSimulation(g *graph.Graph, clock *Clock, q *student.Queues, rel *release.Controller[*student.Student]) *Simulation {
	return &Simulation{
		Graph:        g,
		Clock:        clock,
		Queues:       q,
		Release:      rel,
		failedTarget: make(map[string]float64),
	}
}

func (s *Simulation) AddStudents(students ...*student.Student) {
	s.Students = append(s.Students, students...)
}

func (s *Simulation) RouteFailures() int { return s.routeFailures }

// Step advances the simulation by dtReal seconds and returns the simulated
// minutes that elapsed.
func (s *Simulation) Step(dtReal float64) (float64, error) {
	dt, err := s.Clock.Tick(dtReal)
	if err != nil {
		return 0, err
	}
	now := s.Clock.Minutes()

	if err := s.drainQueues(now); err != nil {
		return dt, err
	}

	if s.Release != nil {
		for _, st := range s.Release.Update(dt) {
			s.record(now, st, models.EventReleased, NoEdge, "released from "+st.Location())
		}
	}

	var finished []*student.Student
	for _, st := range s.Students {
		before := st.State()
		counters := st.Counters()

		if before == student.Moving && st.ReplanIfNeeded(now, s.Queues) {
			s.record(now, st, models.EventReplan, NoEdge, fmt.Sprintf("new route of %d edges", len(st.Route())))
		}
		if st.State() == student.Waiting && s.Queues != nil {
			if _, queued := st.Queued(); !queued && st.JoinQueue(s.Queues, now) {
				edge, _ := st.Queued()
				s.record(now, st, models.EventQueueJoin, edge,
					fmt.Sprintf("position %d", s.Queues.Position(edge, st)))
			}
		}
		if st.State() == student.Idle && !s.pending(st) {
			if err := s.plan(now, st); err != nil {
				return dt, fmt.Errorf("step at %s: %w", s.Clock.TimeString(), err)
			}
		}
		if err := st.Update(now, dt, s.Queues); err != nil {
			return dt, fmt.Errorf("step at %s: %w", s.Clock.TimeString(), err)
		}

		after := st.Counters()
		if after.Arrivals > counters.Arrivals {
			desc := "on time"
			if after.LateArrivals > counters.LateArrivals {
				desc = "late"
			}
			s.record(now, st, models.EventArrival, NoEdge, desc)
		}
		if after.Reroutes > counters.Reroutes {
			s.record(now, st, models.EventReroute, NoEdge, fmt.Sprintf("new route of %d edges", len(st.Route())))
		}
		if before == student.InActivity && st.State() == student.Idle {
			s.record(now, st, models.EventActivityEnd, NoEdge, "")
			finished = append(finished, st)
		}
	}

	if s.Release != nil && len(finished) > 0 {
		s.Release.Add(finished...)
	}
	return dt, nil
}

// drainQueues admits queued students in ascending edge order while their
// edge has room.
func (s *Simulation) drainQueues(now float64) error {
	if s.Queues == nil {
		return nil
	}
	for _, edge := range s.Queues.Edges() {
		for s.Queues.Len(edge) > 0 && s.Graph.HasCapacity(edge) {
			st, ok := s.Queues.Dequeue(edge, now)
			if !ok {
				break
			}
			if err := st.Admit(edge); err != nil {
				return fmt.Errorf("admitting from queue at %s: %w", s.Graph.Edge(edge), err)
			}
			s.record(now, st, models.EventQueueAdmit, edge, s.Graph.Edge(edge).String())
		}
	}
	return nil
}

// plan counts an unreachable target once per event and leaves the student
// in place. Any other error is a construction defect and aborts the step.
func (s *Simulation) plan(now float64, st *student.Student) error {
	err := st.Plan(now, s.Queues)
	if errors.Is(err, graph.ErrNoPath) {
		next, _ := st.Schedule().Next(now)
		if start, seen := s.failedTarget[st.ID()]; !seen || start != next.Start {
			s.failedTarget[st.ID()] = next.Start
			s.routeFailures++
		}
		return nil
	}
	if err != nil {
		return err
	}
	if st.State() == student.Moving {
		event, _ := st.ActiveEvent()
		s.record(now, st, models.EventDeparture, NoEdge, "to "+event.Location)
	}
	return nil
}

func (s *Simulation) pending(st *student.Student) bool {
	return s.Release != nil && s.Release.IsPending(st)
}

func (s *Simulation) record(now float64, st *student.Student, kind string, edge graph.EdgeID, desc string) {
	s.Log = append(s.Log, LogEntry{
		Minutes:     now,
		Clock:       schedule.FormatClock(now),
		StudentID:   st.ID(),
		Class:       st.Class(),
		Kind:        kind,
		Location:    st.Location(),
		Edge:        edge,
		Description: desc,
	})
}

// Reset returns the clock, every student, queue and edge to the start of
// the day and empties the log.
func (s *Simulation) Reset() {
	s.Clock.Reset()
	for _, st := range s.Students {
		st.Reset(st.Home())
	}
	s.Graph.ResetOccupancy()
	if s.Queues != nil {
		s.Queues.Reset()
	}
	if s.Release != nil {
		s.Release.Reset()
	}
	s.Log = nil
	s.routeFailures = 0
	s.failedTarget = make(map[string]float64)
}

// Summary aggregates the counters of the run so far.
func (s *Simulation) Summary() models.RunSummary {
	counters := lo.Map(s.Students, func(st *student.Student, _ int) student.Counters {
		return st.Counters()
	})
	sum := models.RunSummary{
		EndClock:         s.Clock.TimeString(),
		SimulatedMinutes: s.Clock.Minutes() - s.Clock.start,
		Students:         len(s.Students),
		Arrivals:         lo.SumBy(counters, func(c student.Counters) int { return c.Arrivals }),
		LateArrivals:     lo.SumBy(counters, func(c student.Counters) int { return c.LateArrivals }),
		Replans:          lo.SumBy(counters, func(c student.Counters) int { return c.Replans }),
		Reroutes:         lo.SumBy(counters, func(c student.Counters) int { return c.Reroutes }),
		TotalWait:        lo.SumBy(counters, func(c student.Counters) float64 { return c.TotalWait }),
		RouteFailures:    s.routeFailures,
		StartClock:       schedule.FormatClock(s.Clock.start),
	}
	if sum.Arrivals > 0 {
		sum.OnTimeRate = float64(sum.Arrivals-sum.LateArrivals) / float64(sum.Arrivals)
	}
	if s.Queues != nil {
		agg := s.Queues.Aggregate()
		sum.Enqueued = agg.Enqueued
		sum.Dequeued = agg.Dequeued
		sum.Overflow = agg.Overflow
		sum.MaxQueueDepth = agg.MaxDepth
		sum.AverageQueueWait = agg.AverageWait()
	}
	if s.Release != nil {
		stats := s.Release.Statistics()
		sum.Released = stats.TotalReleased
		sum.ReleaseBatches = stats.TotalBatches
	}
	return sum
}

// EdgeStats lists the queue statistics of every edge that ever had a queue,
// in edge id order.
func (s *Simulation) EdgeStats(runID string) []models.EdgeQueueStats {
	if s.Queues == nil {
		return nil
	}
	all := s.Queues.AllStats()
	ids := lo.Keys(all)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return lo.Map(ids, func(id graph.EdgeID, _ int) models.EdgeQueueStats {
		st := all[id]
		e := s.Graph.Edge(id)
		return models.EdgeQueueStats{
			RunID:       runID,
			EdgeID:      int(id),
			From:        e.From,
			To:          e.To,
			Enqueued:    st.Enqueued,
			Dequeued:    st.Dequeued,
			MaxDepth:    st.MaxDepth,
			TotalWait:   st.TotalWait,
			AverageWait: st.AverageWait(),
			Overflow:    st.Overflow,
		}
	})
}
