package simulator

import (
	"errors"
	"testing"

	"github.com/chrisdamba/campussim/internal/graph"
	"github.com/chrisdamba/campussim/internal/models"
	"github.com/chrisdamba/campussim/internal/queue"
	"github.com/chrisdamba/campussim/internal/release"
	"github.com/chrisdamba/campussim/internal/schedule"
	"github.com/chrisdamba/campussim/internal/student"
)

type slot struct {
	clock    string
	location string
	duration float64
}

func newSchedule(t *testing.T, class string, slots ...slot) *schedule.Schedule {
	t.Helper()
	s := schedule.New(class)
	for _, sl := range slots {
		if err := s.Add(sl.clock, sl.location, sl.duration); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

// bridgeGraph is a - b - c where b-c holds one walker at a time. Every edge
// takes one minute to cross when empty.
func bridgeGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	for i, id := range []string{"a", "b", "c"} {
		if err := g.AddLocation(id, id, float64(i)*80, 0); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := g.Connect("a", "b", 80); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Connect("b", "c", 80, graph.WithCapacity(1), graph.WithConstraint(1)); err != nil {
		t.Fatal(err)
	}
	return g
}

func newSim(t *testing.T, g *graph.Graph, start string, queues bool, rel release.Config) *Simulation {
	t.Helper()
	clock, err := NewClock(start, 1)
	if err != nil {
		t.Fatal(err)
	}
	var q *student.Queues
	if queues {
		q = queue.NewManager[*student.Student](queue.DefaultConfig())
	}
	return NewSimulation(g, clock, q, release.NewController[*student.Student](rel))
}

func addStudents(t *testing.T, sim *Simulation, sched *schedule.Schedule, home string, ids ...string) {
	t.Helper()
	for _, id := range ids {
		s, err := student.New(id, sched.Class, sched, home, sim.Graph, student.DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		sim.AddStudents(s)
	}
}

// runUntil steps half a minute at a time, checking edge capacity after every step.
func runUntil(t *testing.T, sim *Simulation, minutes float64) {
	t.Helper()
	for sim.Clock.Minutes() < minutes {
		if _, err := sim.Step(0.5); err != nil {
			t.Fatal(err)
		}
		for _, e := range sim.Graph.Edges() {
			if e.Capacitated() && sim.Graph.Occupancy(e.ID) > e.Capacity {
				t.Fatalf("%s over capacity at %s: %d > %d", e, sim.Clock.TimeString(), sim.Graph.Occupancy(e.ID), e.Capacity)
			}
		}
	}
}

func entriesOf(sim *Simulation, kind string) []LogEntry {
	var out []LogEntry
	for _, e := range sim.Log {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestStepSingleTrip(t *testing.T) {
	g := bridgeGraph(t)
	sim := newSim(t, g, "07:50", true, release.DefaultConfig())
	addStudents(t, sim, newSchedule(t, "CS1", slot{"08:00", "b", 30}), "a", "CS1-000")

	dt, err := sim.Step(0.5)
	if err != nil {
		t.Fatal(err)
	}
	if dt != 0.5 {
		t.Errorf("dt = %v", dt)
	}
	st := sim.Students[0]
	if st.State() != student.Moving {
		t.Fatalf("after first step: %s", st)
	}

	runUntil(t, sim, 471)
	if st.State() != student.InActivity || st.Location() != "b" {
		t.Fatalf("after one minute: %s", st)
	}

	runUntil(t, sim, 511)
	kinds := make([]string, 0, len(sim.Log))
	for _, e := range sim.Log {
		kinds = append(kinds, e.Kind)
	}
	want := []string{models.EventDeparture, models.EventArrival, models.EventActivityEnd, models.EventReleased}
	if len(kinds) != len(want) {
		t.Fatalf("log = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("log = %v, want %v", kinds, want)
		}
	}
	if end := sim.Log[2]; end.Minutes != 510 || end.Clock != "08:30" {
		t.Errorf("activity ended at %v (%s)", end.Minutes, end.Clock)
	}
	if sim.Log[1].Description != "on time" || sim.Log[0].Edge != NoEdge {
		t.Errorf("log = %+v", sim.Log)
	}

	sum := sim.Summary()
	if sum.Arrivals != 1 || sum.LateArrivals != 0 || sum.OnTimeRate != 1 || sum.Released != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if sum.StartClock != "07:50" || sum.SimulatedMinutes != 41 {
		t.Errorf("summary window = %s, %v", sum.StartClock, sum.SimulatedMinutes)
	}
}

func TestStepQueuesAtFullBridge(t *testing.T) {
	g := bridgeGraph(t)
	sim := newSim(t, g, "07:50", true, release.DefaultConfig())
	addStudents(t, sim, newSchedule(t, "CS1", slot{"08:00", "c", 30}), "a", "CS1-000", "CS1-001")

	runUntil(t, sim, 471.5)
	first, second := sim.Students[0], sim.Students[1]
	if edge, queued := second.Queued(); !queued || second.State() != student.Waiting {
		t.Fatalf("second student should queue at the bridge: %s queued=%v edge=%d", second, queued, edge)
	}
	bridge, _ := g.EdgeBetween("b", "c")
	if sim.Queues.Len(bridge.ID) != 1 || g.Occupancy(bridge.ID) != 1 {
		t.Fatalf("queue %d occupancy %d", sim.Queues.Len(bridge.ID), g.Occupancy(bridge.ID))
	}

	snap := sim.Snapshot()
	view := snap.Edges[bridge.ID]
	if view.Queue != 1 || view.Occupancy != 1 || view.Congestion != graph.CongestionFull {
		t.Errorf("bridge view = %+v", view)
	}
	if snap.Students[0].Edge != int(bridge.ID) || snap.Students[1].Edge != int(NoEdge) {
		t.Errorf("student views = %+v", snap.Students)
	}

	runUntil(t, sim, 474)
	if first.Location() != "c" || second.Location() != "c" {
		t.Fatalf("both should have crossed: %s %s", first, second)
	}
	joins, admits := entriesOf(sim, models.EventQueueJoin), entriesOf(sim, models.EventQueueAdmit)
	if len(joins) != 1 || len(admits) != 1 || admits[0].StudentID != "CS1-001" || admits[0].Edge != bridge.ID {
		t.Errorf("joins %+v admits %+v", joins, admits)
	}
	if joins[0].Minutes >= admits[0].Minutes {
		t.Errorf("admitted at %v before joining at %v", admits[0].Minutes, joins[0].Minutes)
	}

	sum := sim.Summary()
	if sum.Enqueued != 1 || sum.Dequeued != 1 || sum.Arrivals != 2 || sum.LateArrivals != 0 {
		t.Errorf("summary = %+v", sum)
	}
	stats := sim.EdgeStats("run")
	if len(stats) != 1 || stats[0].From != "b" || stats[0].To != "c" || stats[0].RunID != "run" {
		t.Errorf("edge stats = %+v", stats)
	}
}

func TestStepThrottlesWithoutQueues(t *testing.T) {
	g := bridgeGraph(t)
	sim := newSim(t, g, "07:50", false, release.DefaultConfig())
	addStudents(t, sim, newSchedule(t, "CS1", slot{"08:00", "c", 30}), "a", "A", "B", "C")

	runUntil(t, sim, 476)
	for _, st := range sim.Students {
		if st.Location() != "c" || st.State() != student.InActivity {
			t.Errorf("%s did not arrive", st)
		}
	}
	if len(entriesOf(sim, models.EventQueueJoin)) != 0 || sim.EdgeStats("run") != nil {
		t.Error("no queue manager, no queue events")
	}
}

func TestStepReleasesInBatches(t *testing.T) {
	g := bridgeGraph(t)
	sim := newSim(t, g, "07:50", true, release.Config{BatchSize: 2, Interval: 0.5, Enabled: true})
	sched := newSchedule(t, "CS1", slot{"08:00", "b", 30}, slot{"08:45", "a", 30})
	addStudents(t, sim, sched, "a", "A", "B", "C")

	runUntil(t, sim, 512)
	released := entriesOf(sim, models.EventReleased)
	if len(released) != 3 {
		t.Fatalf("released = %+v", released)
	}
	if released[0].Minutes != 510.5 || released[1].Minutes != 510.5 || released[2].Minutes != 511 {
		t.Errorf("release times = %v %v %v", released[0].Minutes, released[1].Minutes, released[2].Minutes)
	}

	// a student waiting for release does not set off early
	var late float64
	for _, d := range entriesOf(sim, models.EventDeparture) {
		if d.Minutes > 500 && d.StudentID == released[2].StudentID {
			late = d.Minutes
		}
	}
	if late != 511 {
		t.Errorf("third student departed at %v, want 511", late)
	}
	if stats := sim.Release.Statistics(); stats.TotalBatches != 2 || stats.TotalReleased != 3 {
		t.Errorf("release stats = %+v", stats)
	}
}

func TestStepCountsUnreachableTargetsOnce(t *testing.T) {
	g := graph.New()
	for _, id := range []string{"a", "island"} {
		if err := g.AddLocation(id, id, 0, 0); err != nil {
			t.Fatal(err)
		}
	}
	sim := newSim(t, g, "07:50", true, release.DefaultConfig())
	addStudents(t, sim, newSchedule(t, "CS1", slot{"08:00", "island", 30}), "a", "A")

	runUntil(t, sim, 475)
	st := sim.Students[0]
	if st.Location() != "a" || st.State() != student.Idle {
		t.Errorf("student should hold position: %s", st)
	}
	if sim.RouteFailures() != 1 || sim.Summary().RouteFailures != 1 {
		t.Errorf("route failures = %d", sim.RouteFailures())
	}
	if len(sim.Log) != 0 {
		t.Errorf("log = %+v", sim.Log)
	}
}

func TestStepRejectsNegativeDelta(t *testing.T) {
	sim := newSim(t, bridgeGraph(t), "07:50", true, release.DefaultConfig())
	if _, err := sim.Step(-0.1); !errors.Is(err, ErrNegativeTimeDelta) {
		t.Errorf("Step(-0.1) error = %v", err)
	}
}

func TestReset(t *testing.T) {
	g := bridgeGraph(t)
	sim := newSim(t, g, "07:50", true, release.DefaultConfig())
	addStudents(t, sim, newSchedule(t, "CS1", slot{"08:00", "c", 30}), "a", "A", "B")

	runUntil(t, sim, 471.5)
	sim.Reset()

	if sim.Clock.TimeString() != "07:50" || len(sim.Log) != 0 {
		t.Errorf("clock %s, log %d", sim.Clock.TimeString(), len(sim.Log))
	}
	for _, e := range g.Edges() {
		if g.Occupancy(e.ID) != 0 || sim.Queues.Len(e.ID) != 0 {
			t.Errorf("%s not cleared", e)
		}
	}
	for _, st := range sim.Students {
		if _, queued := st.Queued(); st.Location() != "a" || st.State() != student.Idle || queued {
			t.Errorf("%s not reset", st)
		}
	}
	if sum := sim.Summary(); sum.Enqueued != 0 || sum.Arrivals != 0 {
		t.Errorf("summary after reset = %+v", sum)
	}

	runUntil(t, sim, 474)
	if sim.Summary().Arrivals != 2 {
		t.Errorf("second run arrivals = %d", sim.Summary().Arrivals)
	}
}
