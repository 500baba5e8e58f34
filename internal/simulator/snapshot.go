package simulator

import (
	"github.com/chrisdamba/campussim/internal/student"
	"github.com/samber/lo"
)

type StudentView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Class    string  `json:"class"`
	State    string  `json:"state"`
	Location string  `json:"location"`
	Edge     int     `json:"edge"`
	Fraction float64 `json:"fraction"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type EdgeView struct {
	ID         int    `json:"id"`
	From       string `json:"from"`
	To         string `json:"to"`
	Occupancy  int    `json:"occupancy"`
	Capacity   int    `json:"capacity"`
	Congestion string `json:"congestion"`
	Queue      int    `json:"queue"`
}

// Snapshot is a read-only view of one instant for renderers.
type Snapshot struct {
	Minutes  float64       `json:"minutes"`
	Clock    string        `json:"clock"`
	Students []StudentView `json:"students"`
	Edges    []EdgeView    `json:"edges"`
}

func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Minutes: s.Clock.Minutes(),
		Clock:   s.Clock.TimeString(),
	}
	snap.Students = lo.Map(s.Students, func(st *student.Student, _ int) StudentView {
		v := StudentView{
			ID:       st.ID(),
			Name:     st.Name,
			Class:    st.Class(),
			State:    string(st.State()),
			Location: st.Location(),
			Edge:     int(NoEdge),
		}
		if edge, fraction, ok := st.Position(); ok {
			v.Edge = int(edge)
			v.Fraction = fraction
		}
		p := st.Coordinates()
		v.X, v.Y = p.X(), p.Y()
		return v
	})
	for _, e := range s.Graph.Edges() {
		v := EdgeView{
			ID:         int(e.ID),
			From:       e.From,
			To:         e.To,
			Occupancy:  s.Graph.Occupancy(e.ID),
			Capacity:   e.Capacity,
			Congestion: s.Graph.CongestionLevel(e.ID),
		}
		if s.Queues != nil {
			v.Queue = s.Queues.Len(e.ID)
		}
		snap.Edges = append(snap.Edges, v)
	}
	return snap
}
