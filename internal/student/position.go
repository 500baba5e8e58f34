package student

import (
	"math"

	"github.com/chrisdamba/campussim/internal/graph"
	"github.com/paulmach/orb"
)

// Position reports the edge being crossed and how far along it the student is.
func (s *Student) Position() (graph.EdgeID, float64, bool) {
	if len(s.segments) == 0 || !s.segments[0].entered {
		return 0, 0, false
	}
	seg := s.segments[0]
	fraction := 1.0
	if seg.total > 0 {
		fraction = 1 - seg.remaining/seg.total
	}
	return seg.edge, math.Max(0, math.Min(1, fraction)), true
}

// Coordinates interpolates a map position. Edges between points that are not
// axis aligned are walked horizontally first, then vertically.
func (s *Student) Coordinates() orb.Point {
	edge, fraction, ok := s.Position()
	if !ok {
		return s.pointOf(s.location)
	}
	e := s.graph.Edge(edge)
	return lShape(s.pointOf(e.From), s.pointOf(e.To), fraction)
}

func (s *Student) pointOf(id string) orb.Point {
	loc, err := s.graph.Location(id)
	if err != nil {
		return orb.Point{}
	}
	return loc.Point
}

func lShape(from, to orb.Point, fraction float64) orb.Point {
	if from.X() == to.X() || from.Y() == to.Y() {
		return orb.Point{
			from.X() + (to.X()-from.X())*fraction,
			from.Y() + (to.Y()-from.Y())*fraction,
		}
	}
	dx := math.Abs(to.X() - from.X())
	dy := math.Abs(to.Y() - from.Y())
	travelled := (dx + dy) * fraction
	if travelled <= dx {
		return orb.Point{from.X() + (to.X()-from.X())*travelled/dx, from.Y()}
	}
	return orb.Point{to.X(), from.Y() + (to.Y()-from.Y())*(travelled-dx)/dy}
}
