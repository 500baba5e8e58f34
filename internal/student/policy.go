package student

import (
	"fmt"
	"math"

	"github.com/chrisdamba/campussim/internal/graph"
	"github.com/chrisdamba/campussim/internal/schedule"
)

type ActionKind int

const (
	TakeEdge ActionKind = iota
	Wait
	Attend
)

func (k ActionKind) String() string {
	switch k {
	case TakeEdge:
		return "take_edge"
	case Wait:
		return "wait"
	case Attend:
		return "attend"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Action is a decision offered to a Policy. Option indexes
// Observation.Options and is only meaningful for TakeEdge.
type Action struct {
	Kind   ActionKind
	Option int
}

// EdgeOption describes one outgoing edge of the student's location.
type EdgeOption struct {
	Edge             graph.EdgeID
	To               string
	Occupancy        int
	Capacity         int
	Cost             float64
	DistanceToTarget float64
}

type Observation struct {
	StudentID string
	Location  string
	Target    string
	Now       float64
	Deadline  float64
	EdgeCount int
	Options   []EdgeOption
}

// Policy picks one of the offered actions each time a student plans.
type Policy interface {
	Decide(obs Observation, actions []Action) Action
}

// ShortestPathPolicy follows the first hop of the current shortest route.
type ShortestPathPolicy struct {
	Graph *graph.Graph
}

func (p ShortestPathPolicy) Decide(obs Observation, actions []Action) Action {
	for _, a := range actions {
		if a.Kind == Attend {
			return a
		}
	}
	route, err := p.Graph.ShortestPath(obs.Location, obs.Target)
	if err == nil && len(route.Edges) > 0 {
		for _, a := range actions {
			if a.Kind == TakeEdge && obs.Options[a.Option].Edge == route.Edges[0] {
				return a
			}
		}
	}
	return Action{Kind: Wait}
}

// GreedyPolicy takes the open edge whose far end is physically closest to
// the target, breaking ties by crossing time.
type GreedyPolicy struct{}

func (GreedyPolicy) Decide(obs Observation, actions []Action) Action {
	choice := Action{Kind: Wait}
	best, bestCost := math.Inf(1), math.Inf(1)
	for _, a := range actions {
		switch a.Kind {
		case Attend:
			return a
		case TakeEdge:
			opt := obs.Options[a.Option]
			if opt.DistanceToTarget < best || (opt.DistanceToTarget == best && opt.Cost < bestCost) {
				best, bestCost = opt.DistanceToTarget, opt.Cost
				choice = a
			}
		}
	}
	return choice
}

// Observe builds the policy view of the student heading for event.
func (s *Student) Observe(now float64, event schedule.Event) (Observation, []Action) {
	obs := Observation{
		StudentID: s.id,
		Location:  s.location,
		Target:    event.Location,
		Now:       now,
		Deadline:  event.Start - s.opts.Buffer,
		EdgeCount: s.graph.EdgeCount(),
	}
	if s.location == event.Location {
		return obs, []Action{{Kind: Attend}, {Kind: Wait}}
	}

	edges, _ := s.graph.OutgoingEdges(s.location)
	var actions []Action
	for i, e := range edges {
		dist, err := s.graph.PhysicalDistance(e.To, event.Location)
		if err != nil {
			dist = math.Inf(1)
		}
		obs.Options = append(obs.Options, EdgeOption{
			Edge:             e.ID,
			To:               e.To,
			Occupancy:        s.graph.Occupancy(e.ID),
			Capacity:         e.Capacity,
			Cost:             s.graph.EdgeCost(e.ID),
			DistanceToTarget: dist,
		})
		if s.graph.HasCapacity(e.ID) {
			actions = append(actions, Action{Kind: TakeEdge, Option: i})
		}
	}
	return obs, append(actions, Action{Kind: Wait})
}

func (s *Student) planWithPolicy(now float64, event schedule.Event, q *Queues) error {
	obs, actions := s.Observe(now, event)
	choice := s.Policy.Decide(obs, actions)
	if !offered(choice, actions) {
		return fmt.Errorf("student %s: policy chose %s/%d which was not offered", s.id, choice.Kind, choice.Option)
	}

	s.clearPlan(q)
	s.target(event)
	switch choice.Kind {
	case Attend:
		s.attend(now)
	case Wait:
		s.state = Idle
	case TakeEdge:
		s.adopt([]graph.EdgeID{obs.Options[choice.Option].Edge})
		s.state = Moving
		s.wait = 0
	}
	return nil
}

func offered(choice Action, actions []Action) bool {
	for _, a := range actions {
		if a.Kind != choice.Kind {
			continue
		}
		if a.Kind != TakeEdge || a.Option == choice.Option {
			return true
		}
	}
	return false
}
