package graph

import "fmt"

const (
	CongestionClear    = "clear"
	CongestionModerate = "moderate"
	CongestionHeavy    = "heavy"
	CongestionFull     = "full"
)

func (g *Graph) Occupancy(id EdgeID) int {
	return len(g.edges[id].occupants)
}

// HasCapacity reports whether one more agent may enter the edge.
func (g *Graph) HasCapacity(id EdgeID) bool {
	e := g.edges[id]
	return !e.Capacitated() || len(e.occupants) < e.Capacity
}

// OccupancyRatio is occupants/capacity, or 0 for uncapacitated edges.
func (g *Graph) OccupancyRatio(id EdgeID) float64 {
	e := g.edges[id]
	if !e.Capacitated() {
		return 0
	}
	return float64(len(e.occupants)) / float64(e.Capacity)
}

func (g *Graph) CongestionLevel(id EdgeID) string {
	ratio := g.OccupancyRatio(id)
	switch {
	case ratio >= 1:
		return CongestionFull
	case ratio >= 0.7:
		return CongestionHeavy
	case ratio >= 0.3:
		return CongestionModerate
	default:
		return CongestionClear
	}
}

// Enter places an agent on the edge. Admission control happens before this
// call, so a full edge here means the caller skipped a capacity check.
func (g *Graph) Enter(id EdgeID, agent string) error {
	e := g.edges[id]
	if !g.HasCapacity(id) {
		return fmt.Errorf("%w: %s holds %d/%d, %s cannot enter", ErrCapacityExceeded, e, len(e.occupants), e.Capacity, agent)
	}
	e.occupants = append(e.occupants, agent)
	return nil
}

// Leave removes an agent from the edge and reports whether it was there.
func (g *Graph) Leave(id EdgeID, agent string) bool {
	e := g.edges[id]
	for i, occupant := range e.occupants {
		if occupant == agent {
			e.occupants = append(e.occupants[:i], e.occupants[i+1:]...)
			return true
		}
	}
	return false
}

// ResetOccupancy empties every edge, for a fresh run.
func (g *Graph) ResetOccupancy() {
	for _, e := range g.edges {
		e.occupants = nil
	}
}
