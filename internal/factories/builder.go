package factories

import (
	"fmt"

	"github.com/chrisdamba/campussim/internal/graph"
	"github.com/chrisdamba/campussim/internal/models"
	"github.com/chrisdamba/campussim/internal/schedule"
	"github.com/chrisdamba/campussim/internal/student"
	"github.com/paulmach/orb/planar"
)

// BuildGraph creates the campus graph described by m.
func BuildGraph(m *models.MapConfig) (*graph.Graph, error) {
	g := graph.New()
	if m.BaseSpeed > 0 {
		g.BaseSpeed = m.BaseSpeed
	}
	for _, l := range m.Locations {
		if err := g.AddLocation(l.ID, l.Name, l.X, l.Y); err != nil {
			return nil, fmt.Errorf("map: %w", err)
		}
	}
	for _, r := range m.Routes {
		length := r.Length
		if length == 0 {
			d, err := straightLine(g, r.From, r.To)
			if err != nil {
				return nil, fmt.Errorf("map route %s-%s: %w", r.From, r.To, err)
			}
			length = d
		}
		if _, err := g.Connect(r.From, r.To, length, routeOptions(r)...); err != nil {
			return nil, fmt.Errorf("map route %s-%s: %w", r.From, r.To, err)
		}
	}
	return g, nil
}

func routeOptions(r models.RouteConfig) []graph.ConnectOption {
	var opts []graph.ConnectOption
	if r.Difficulty != 0 {
		opts = append(opts, graph.WithDifficulty(r.Difficulty))
	}
	if r.Capacity != 0 {
		opts = append(opts, graph.WithCapacity(r.Capacity))
	}
	if r.Constrained {
		factor := 1.0
		if r.CongestionFactor != nil {
			factor = *r.CongestionFactor
		}
		opts = append(opts, graph.WithConstraint(factor))
	}
	if r.OneWay {
		opts = append(opts, graph.OneWay())
	}
	return opts
}

func straightLine(g *graph.Graph, a, b string) (float64, error) {
	from, err := g.Location(a)
	if err != nil {
		return 0, err
	}
	to, err := g.Location(b)
	if err != nil {
		return 0, err
	}
	return planar.Distance(from.Point, to.Point), nil
}

// ClassPlan is a parsed class schedule and the location its students start from.
type ClassPlan struct {
	Schedule *schedule.Schedule
	Home     string
}

// BuildSchedules parses every schedule and checks that its locations exist in g.
func BuildSchedules(g *graph.Graph, configs []models.ScheduleConfig) ([]ClassPlan, error) {
	plans := make([]ClassPlan, 0, len(configs))
	for _, sc := range configs {
		if !g.HasLocation(sc.Home) {
			return nil, fmt.Errorf("schedule %s home: %w: %s", sc.Class, graph.ErrUnknownLocation, sc.Home)
		}
		sched := schedule.New(sc.Class)
		for _, ev := range sc.Events {
			if !g.HasLocation(ev.Location) {
				return nil, fmt.Errorf("schedule %s at %s: %w: %s", sc.Class, ev.Time, graph.ErrUnknownLocation, ev.Location)
			}
			if err := sched.Add(ev.Time, ev.Location, ev.Duration); err != nil {
				return nil, fmt.Errorf("schedule %s: %w", sc.Class, err)
			}
		}
		plans = append(plans, ClassPlan{Schedule: sched, Home: sc.Home})
	}
	return plans, nil
}

// PolicyFor returns the decision policy named in the config. The default
// planner needs none and returns nil.
func PolicyFor(name string, g *graph.Graph) (student.Policy, error) {
	switch name {
	case "", models.PolicyShortestPath:
		return nil, nil
	case models.PolicyStepwise:
		return student.ShortestPathPolicy{Graph: g}, nil
	case models.PolicyGreedy:
		return student.GreedyPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}

func clockGap(from, to string) float64 {
	a, errA := schedule.ParseClock(from)
	b, errB := schedule.ParseClock(to)
	if errA != nil || errB != nil {
		return 0
	}
	return b - a
}
