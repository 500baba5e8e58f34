package student

import (
	"fmt"

	"github.com/chrisdamba/campussim/internal/graph"
	"github.com/chrisdamba/campussim/internal/queue"
	"github.com/chrisdamba/campussim/internal/schedule"
)

type State string

const (
	Idle       State = "idle"
	Moving     State = "moving"
	Waiting    State = "waiting"
	InActivity State = "in_activity"
)

// Queues is the queue manager shared by every student of a simulation.
type Queues = queue.Manager[*Student]

type Options struct {
	Buffer              float64 `mapstructure:"buffer"`
	RiskThreshold       float64 `mapstructure:"risk_threshold"`
	ReplanCooldown      float64 `mapstructure:"replan_cooldown"`
	MaxWait             float64 `mapstructure:"max_wait"`
	CongestionThreshold float64 `mapstructure:"congestion_threshold"`
}

func DefaultOptions() Options {
	return Options{
		Buffer:              5,
		RiskThreshold:       0.8,
		ReplanCooldown:      2,
		MaxWait:             2,
		CongestionThreshold: 0.7,
	}
}

type segment struct {
	edge      graph.EdgeID
	remaining float64
	total     float64
	entered   bool
}

type Counters struct {
	Arrivals     int
	LateArrivals int
	Replans      int
	Reroutes     int
	TotalWait    float64
}

// Student walks between the locations of its class schedule. The graph
// handle is used for lookups and occupancy only; the graph outlives it.
type Student struct {
	Name   string
	Policy Policy

	id       string
	class    string
	schedule *schedule.Schedule
	home     string
	graph    *graph.Graph
	opts     Options

	location string
	state    State
	segments []segment

	active      schedule.Event
	hasActive   bool
	deadline    float64
	hasDeadline bool

	lastReplan   float64
	hasReplanned bool

	wait       float64
	queued     bool
	queuedEdge graph.EdgeID

	counters Counters
}

func New(id, class string, sched *schedule.Schedule, home string, g *graph.Graph, opts Options) (*Student, error) {
	if !g.HasLocation(home) {
		return nil, fmt.Errorf("student %s: %w: %s", id, graph.ErrUnknownLocation, home)
	}
	return &Student{
		id:       id,
		class:    class,
		schedule: sched,
		home:     home,
		graph:    g,
		opts:     opts,
		location: home,
		state:    Idle,
	}, nil
}

func (s *Student) ID() string                   { return s.id }
func (s *Student) Class() string                { return s.class }
func (s *Student) Home() string                 { return s.home }
func (s *Student) Location() string             { return s.location }
func (s *Student) State() State                 { return s.state }
func (s *Student) Schedule() *schedule.Schedule { return s.schedule }
func (s *Student) WaitTime() float64            { return s.wait }
func (s *Student) Counters() Counters           { return s.counters }

func (s *Student) ActiveEvent() (schedule.Event, bool) {
	return s.active, s.hasActive
}

// Deadline is the start of the targeted event minus the buffer.
func (s *Student) Deadline() (float64, bool) {
	return s.deadline, s.hasDeadline
}

// Route returns the edges still to be crossed, head first.
func (s *Student) Route() []graph.EdgeID {
	out := make([]graph.EdgeID, len(s.segments))
	for i, seg := range s.segments {
		out[i] = seg.edge
	}
	return out
}

// SetQueued is called by the queue manager.
func (s *Student) SetQueued(edge graph.EdgeID, queued bool) {
	s.queued = queued
	s.queuedEdge = edge
}

func (s *Student) Queued() (graph.EdgeID, bool) {
	return s.queuedEdge, s.queued
}

// Plan targets the next event starting strictly after now. A student still
// on its way to an event that has not ended keeps that event as the target,
// even after it has started. An unreachable target returns the routing error
// and leaves the student where it is.
func (s *Student) Plan(now float64, q *Queues) error {
	event, ok := s.schedule.Next(now)
	if s.travelling(now) {
		event, ok = s.active, true
	}
	if !ok {
		s.clearPlan(q)
		s.hasActive = false
		s.hasDeadline = false
		s.state = Idle
		return nil
	}
	if s.Policy != nil {
		return s.planWithPolicy(now, event, q)
	}
	if event.Location == s.location {
		s.clearPlan(q)
		s.target(event)
		s.attend(now)
		return nil
	}

	route, err := s.graph.ShortestPath(s.location, event.Location)
	if err != nil {
		return fmt.Errorf("student %s: %w", s.id, err)
	}
	s.clearPlan(q)
	s.target(event)
	s.adopt(route.Edges)
	s.state = Moving
	s.wait = 0
	return nil
}

// Update advances the student by dt minutes ending at now.
func (s *Student) Update(now, dt float64, q *Queues) error {
	switch s.state {
	case Waiting:
		s.updateWaiting(dt, q)
	case Moving:
		return s.advance(now, dt, q)
	case InActivity:
		if !s.hasActive || now >= s.active.End() {
			s.hasActive = false
			s.hasDeadline = false
			s.state = Idle
		}
	}
	return nil
}

func (s *Student) updateWaiting(dt float64, q *Queues) {
	s.wait += dt
	s.counters.TotalWait += dt
	if len(s.segments) == 0 {
		s.state = Idle
		s.wait = 0
		return
	}
	if s.wait >= s.opts.MaxWait {
		s.reroute(q)
		return
	}
	if !s.queued && s.canEnter(s.segments[0].edge, q) {
		s.state = Moving
		s.wait = 0
	}
}

// reroute looks for a route that avoids the edge the student is stuck at.
// Without one the wait counter starts over.
func (s *Student) reroute(q *Queues) {
	stuck := s.segments[0].edge
	if !s.hasActive {
		s.wait = 0
		return
	}
	route, err := s.graph.ShortestPath(s.location, s.active.Location)
	if err != nil || len(route.Edges) == 0 || route.Edges[0] == stuck {
		s.wait = 0
		return
	}
	s.clearPlan(q)
	s.adopt(route.Edges)
	s.state = Moving
	s.wait = 0
	s.counters.Reroutes++
}

func (s *Student) advance(now, dt float64, q *Queues) error {
	left := dt
	for len(s.segments) > 0 {
		seg := &s.segments[0]
		if !seg.entered {
			if !s.canEnter(seg.edge, q) {
				s.state = Waiting
				s.wait = 0
				return nil
			}
			if err := s.graph.Enter(seg.edge, s.id); err != nil {
				return fmt.Errorf("student %s: %w", s.id, err)
			}
			seg.entered = true
		}
		if left < seg.remaining {
			seg.remaining -= left
			return nil
		}
		left -= seg.remaining
		s.graph.Leave(seg.edge, s.id)
		s.location = s.graph.Edge(seg.edge).To
		s.segments = s.segments[1:]
	}

	if s.hasActive && s.location == s.active.Location {
		s.attend(now)
		return nil
	}
	s.state = Idle
	return nil
}

// canEnter is the admission check for the next edge. With a queue manager a
// non-empty queue keeps newcomers out so waiting students go first.
func (s *Student) canEnter(id graph.EdgeID, q *Queues) bool {
	e := s.graph.Edge(id)
	if !e.Capacitated() {
		return true
	}
	if !s.graph.HasCapacity(id) {
		return false
	}
	if q != nil {
		return q.Len(id) == 0
	}
	return !e.Constrained || s.graph.OccupancyRatio(id) < s.opts.CongestionThreshold
}

// JoinQueue enqueues a waiting student at its blocked edge.
func (s *Student) JoinQueue(q *Queues, now float64) bool {
	if q == nil || s.queued || len(s.segments) == 0 || s.segments[0].entered {
		return false
	}
	return q.Enqueue(s.segments[0].edge, s, now)
}

// Admit puts a student just dequeued from edge onto it.
func (s *Student) Admit(edge graph.EdgeID) error {
	if len(s.segments) == 0 || s.segments[0].edge != edge || s.segments[0].entered {
		return nil
	}
	if err := s.graph.Enter(edge, s.id); err != nil {
		return fmt.Errorf("student %s: %w", s.id, err)
	}
	s.segments[0].entered = true
	s.state = Moving
	s.wait = 0
	return nil
}

// ETA adds the head segment's remaining time to the current cost of every
// later segment.
func (s *Student) ETA(now float64) (float64, bool) {
	if len(s.segments) == 0 {
		return 0, false
	}
	eta := now + s.segments[0].remaining
	for _, seg := range s.segments[1:] {
		eta += s.graph.EdgeCost(seg.edge)
	}
	return eta, true
}

func (s *Student) IsDeadlineAtRisk(now, threshold float64) bool {
	if !s.hasDeadline {
		return false
	}
	eta, ok := s.ETA(now)
	if !ok {
		return false
	}
	return eta-now > (s.deadline-now)*threshold
}

// ResidualCost is the current cost of the segments not yet entered.
func (s *Student) ResidualCost() float64 {
	var cost float64
	for _, seg := range s.segments {
		if !seg.entered {
			cost += s.graph.EdgeCost(seg.edge)
		}
	}
	return cost
}

// ReplanIfNeeded swaps in a fresh shortest route when the deadline is at
// risk and the second-best route from here is cheaper than what is left of
// the current plan. An edge already entered is always finished first.
func (s *Student) ReplanIfNeeded(now float64, q *Queues) bool {
	if s.hasReplanned && now-s.lastReplan < s.opts.ReplanCooldown {
		return false
	}
	if !s.hasActive || !s.IsDeadlineAtRisk(now, s.opts.RiskThreshold) {
		return false
	}

	from := s.location
	var keep []segment
	if len(s.segments) > 0 && s.segments[0].entered {
		keep = []segment{s.segments[0]}
		from = s.graph.Edge(keep[0].edge).To
	}
	if from == s.active.Location {
		return false
	}

	alt, err := s.graph.SecondBestPath(from, s.active.Location)
	if err != nil || alt.Cost >= s.ResidualCost() {
		return false
	}
	best, err := s.graph.ShortestPath(from, s.active.Location)
	if err != nil {
		return false
	}

	s.leaveQueue(q)
	s.segments = keep
	s.adopt(best.Edges)
	s.lastReplan = now
	s.hasReplanned = true
	s.counters.Replans++
	return true
}

// Reset puts the student back at home with no plan and zeroed counters.
func (s *Student) Reset(home string) {
	for _, seg := range s.segments {
		if seg.entered {
			s.graph.Leave(seg.edge, s.id)
		}
	}
	s.home = home
	s.location = home
	s.state = Idle
	s.segments = nil
	s.hasActive = false
	s.hasDeadline = false
	s.hasReplanned = false
	s.wait = 0
	s.queued = false
	s.counters = Counters{}
}

func (s *Student) travelling(now float64) bool {
	return s.hasActive && s.state != InActivity && s.location != s.active.Location && now < s.active.End()
}

func (s *Student) target(event schedule.Event) {
	s.active = event
	s.hasActive = true
	s.deadline = event.Start - s.opts.Buffer
	s.hasDeadline = true
}

func (s *Student) attend(now float64) {
	s.state = InActivity
	s.counters.Arrivals++
	if now > s.active.Start {
		s.counters.LateArrivals++
	}
}

// adopt appends segments for edges, costed at their current occupancy.
func (s *Student) adopt(edges []graph.EdgeID) {
	for _, id := range edges {
		cost := s.graph.EdgeCost(id)
		s.segments = append(s.segments, segment{edge: id, remaining: cost, total: cost})
	}
}

// clearPlan drops every segment, leaving entered edges and any queue.
func (s *Student) clearPlan(q *Queues) {
	for _, seg := range s.segments {
		if seg.entered {
			s.graph.Leave(seg.edge, s.id)
		}
	}
	s.leaveQueue(q)
	s.segments = nil
	if s.state == Moving || s.state == Waiting {
		s.state = Idle
	}
}

func (s *Student) leaveQueue(q *Queues) {
	if !s.queued {
		return
	}
	if q == nil || !q.Remove(s.queuedEdge, s) {
		s.queued = false
	}
}

func (s *Student) String() string {
	return fmt.Sprintf("%s(%s@%s)", s.id, s.state, s.location)
}
