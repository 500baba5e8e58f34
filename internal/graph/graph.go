package graph

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// DefaultBaseSpeed is the walking speed used to turn metres into minutes.
const DefaultBaseSpeed = 80.0

var (
	ErrDuplicateLocation = errors.New("duplicate location")
	ErrUnknownLocation   = errors.New("unknown location")
	ErrInvalidEdge       = errors.New("invalid edge")
	ErrNoPath            = errors.New("no path")
	ErrNoAlternatePath   = errors.New("no alternate path")
	ErrCapacityExceeded  = errors.New("edge capacity exceeded")
)

// EdgeID indexes an edge in the graph's edge arena.
type EdgeID int

// Location is a node of the campus map. Point is only used for rendering.
type Location struct {
	ID    string
	Name  string
	Point orb.Point
	edges []EdgeID
}

// Edges returns the ids of the location's outgoing edges in creation order.
func (l *Location) Edges() []EdgeID {
	return append([]EdgeID(nil), l.edges...)
}

// Edge is a directed route between two locations. Capacity 0 means unlimited.
type Edge struct {
	ID               EdgeID
	From             string
	To               string
	Length           float64
	Difficulty       float64
	Capacity         int
	Constrained      bool
	CongestionFactor float64

	occupants []string
}

// Capacitated reports whether the edge limits simultaneous crossings.
func (e *Edge) Capacitated() bool {
	return e.Capacity > 0
}

// Occupants returns the ids of the agents on the edge in entry order.
func (e *Edge) Occupants() []string {
	return append([]string(nil), e.occupants...)
}

func (e *Edge) String() string {
	return fmt.Sprintf("%s->%s", e.From, e.To)
}

// Graph owns all locations and edges. It is not safe for concurrent use.
type Graph struct {
	BaseSpeed float64

	locations map[string]*Location
	order     []string
	edges     []*Edge

	distances *distanceTable
}

func New() *Graph {
	return &Graph{
		BaseSpeed: DefaultBaseSpeed,
		locations: make(map[string]*Location),
	}
}

// AddLocation registers a new location.
func (g *Graph) AddLocation(id, name string, x, y float64) error {
	if _, ok := g.locations[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateLocation, id)
	}
	g.locations[id] = &Location{ID: id, Name: name, Point: orb.Point{x, y}}
	g.order = append(g.order, id)
	g.distances = nil
	return nil
}

type connectOptions struct {
	difficulty       float64
	capacity         int
	capacitySet      bool
	constrained      bool
	congestionFactor float64
	bidirectional    bool
}

// ConnectOption customises an edge created by Connect.
type ConnectOption func(*connectOptions)

func WithDifficulty(d float64) ConnectOption {
	return func(o *connectOptions) { o.difficulty = d }
}

func WithCapacity(n int) ConnectOption {
	return func(o *connectOptions) {
		o.capacity = n
		o.capacitySet = true
	}
}

// WithConstraint marks the edge as a narrow crossing whose cost grows with occupancy.
func WithConstraint(congestionFactor float64) ConnectOption {
	return func(o *connectOptions) {
		o.constrained = true
		o.congestionFactor = congestionFactor
	}
}

func OneWay() ConnectOption {
	return func(o *connectOptions) { o.bidirectional = false }
}

// Connect creates an edge from a to b, and the reverse edge unless OneWay is given.
func (g *Graph) Connect(a, b string, length float64, opts ...ConnectOption) ([]EdgeID, error) {
	o := connectOptions{difficulty: 1.0, congestionFactor: 1.0, bidirectional: true}
	for _, opt := range opts {
		opt(&o)
	}

	from, ok := g.locations[a]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocation, a)
	}
	to, ok := g.locations[b]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocation, b)
	}
	switch {
	case a == b:
		return nil, fmt.Errorf("%w: self loop at %s", ErrInvalidEdge, a)
	case length <= 0:
		return nil, fmt.Errorf("%w: length must be positive, got %v", ErrInvalidEdge, length)
	case o.difficulty <= 0:
		return nil, fmt.Errorf("%w: difficulty must be positive, got %v", ErrInvalidEdge, o.difficulty)
	case o.capacitySet && o.capacity <= 0:
		return nil, fmt.Errorf("%w: capacity must be positive when set, got %d", ErrInvalidEdge, o.capacity)
	case o.congestionFactor < 0:
		return nil, fmt.Errorf("%w: congestion factor must not be negative", ErrInvalidEdge)
	}

	ids := []EdgeID{g.addEdge(from, to, length, o)}
	if o.bidirectional {
		ids = append(ids, g.addEdge(to, from, length, o))
	}
	g.distances = nil
	return ids, nil
}

func (g *Graph) addEdge(from, to *Location, length float64, o connectOptions) EdgeID {
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, &Edge{
		ID:               id,
		From:             from.ID,
		To:               to.ID,
		Length:           length,
		Difficulty:       o.difficulty,
		Capacity:         o.capacity,
		Constrained:      o.constrained,
		CongestionFactor: o.congestionFactor,
	})
	from.edges = append(from.edges, id)
	return id
}

func (g *Graph) Location(id string) (*Location, error) {
	loc, ok := g.locations[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocation, id)
	}
	return loc, nil
}

func (g *Graph) HasLocation(id string) bool {
	_, ok := g.locations[id]
	return ok
}

// Locations returns every location in insertion order.
func (g *Graph) Locations() []*Location {
	out := make([]*Location, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.locations[id])
	}
	return out
}

// Edge resolves an edge id. It panics on ids that were not issued by this graph.
func (g *Graph) Edge(id EdgeID) *Edge {
	return g.edges[id]
}

func (g *Graph) Edges() []*Edge {
	return append([]*Edge(nil), g.edges...)
}

func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// OutgoingEdges returns the edges leaving a location.
func (g *Graph) OutgoingEdges(id string) ([]*Edge, error) {
	loc, err := g.Location(id)
	if err != nil {
		return nil, err
	}
	out := make([]*Edge, 0, len(loc.edges))
	for _, eid := range loc.edges {
		out = append(out, g.edges[eid])
	}
	return out, nil
}

// EdgeBetween returns the first edge created from a to b.
func (g *Graph) EdgeBetween(a, b string) (*Edge, error) {
	loc, err := g.Location(a)
	if err != nil {
		return nil, err
	}
	for _, eid := range loc.edges {
		if g.edges[eid].To == b {
			return g.edges[eid], nil
		}
	}
	return nil, fmt.Errorf("%w: no edge %s->%s", ErrNoPath, a, b)
}

// EdgeCost returns the time in minutes to cross the edge under current occupancy.
func (g *Graph) EdgeCost(id EdgeID) float64 {
	e := g.edges[id]
	cost := e.Length * e.Difficulty / g.BaseSpeed
	if e.Constrained && e.Capacitated() {
		cost *= 1 + e.CongestionFactor*float64(len(e.occupants))/float64(e.Capacity)
	}
	return cost
}

// BaseCost is the crossing time of an empty edge.
func (g *Graph) BaseCost(id EdgeID) float64 {
	e := g.edges[id]
	return e.Length * e.Difficulty / g.BaseSpeed
}
