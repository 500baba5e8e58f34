package queue

import (
	"sort"

	"github.com/chrisdamba/campussim/internal/graph"
	"github.com/samber/lo"
)

const (
	DefaultMaxLength    = 50
	DefaultCrossingTime = 0.5
)

// Member is anything that can wait in an edge queue.
type Member interface {
	ID() string
	SetQueued(edge graph.EdgeID, queued bool)
}

type Config struct {
	MaxLength    int     `mapstructure:"max_length"`
	CrossingTime float64 `mapstructure:"crossing_time"`
}

func DefaultConfig() Config {
	return Config{MaxLength: DefaultMaxLength, CrossingTime: DefaultCrossingTime}
}

// Stats are the counters kept for one edge queue.
type Stats struct {
	Enqueued  int
	Dequeued  int
	MaxDepth  int
	TotalWait float64
	Overflow  int
	// Abandoned counts members that left through Remove or Clear.
	Abandoned int
}

// AverageWait is the mean time between enqueue and dequeue.
func (s Stats) AverageWait() float64 {
	if s.Dequeued == 0 {
		return 0
	}
	return s.TotalWait / float64(s.Dequeued)
}

// Waiting is the number of members enqueued but not yet dequeued or removed.
func (s Stats) Waiting() int {
	return s.Enqueued - s.Dequeued - s.Abandoned
}

type entry[M Member] struct {
	member M
	since  float64
}

// Manager holds one FIFO queue per edge. Edge capacity is checked by the
// caller before Dequeue.
type Manager[M Member] struct {
	cfg    Config
	queues map[graph.EdgeID][]entry[M]
	stats  map[graph.EdgeID]*Stats
}

func NewManager[M Member](cfg Config) *Manager[M] {
	return &Manager[M]{
		cfg:    cfg,
		queues: make(map[graph.EdgeID][]entry[M]),
		stats:  make(map[graph.EdgeID]*Stats),
	}
}

func (m *Manager[M]) Config() Config {
	return m.cfg
}

// CanEnqueue reports whether the queue has room and does not already hold member.
func (m *Manager[M]) CanEnqueue(edge graph.EdgeID, member M) bool {
	q := m.queues[edge]
	if m.cfg.MaxLength > 0 && len(q) >= m.cfg.MaxLength {
		return false
	}
	return m.index(edge, member.ID()) < 0
}

func (m *Manager[M]) Enqueue(edge graph.EdgeID, member M, now float64) bool {
	st := m.statsFor(edge)
	if !m.CanEnqueue(edge, member) {
		st.Overflow++
		return false
	}
	m.queues[edge] = append(m.queues[edge], entry[M]{member: member, since: now})
	member.SetQueued(edge, true)
	st.Enqueued++
	if depth := len(m.queues[edge]); depth > st.MaxDepth {
		st.MaxDepth = depth
	}
	return true
}

// Dequeue pops the head of the edge's queue.
func (m *Manager[M]) Dequeue(edge graph.EdgeID, now float64) (M, bool) {
	q := m.queues[edge]
	if len(q) == 0 {
		var zero M
		return zero, false
	}
	head := q[0]
	m.setQueue(edge, q[1:])

	head.member.SetQueued(edge, false)
	st := m.statsFor(edge)
	st.Dequeued++
	st.TotalWait += now - head.since
	return head.member, true
}

// Remove takes member out of the queue without counting it as dequeued.
func (m *Manager[M]) Remove(edge graph.EdgeID, member M) bool {
	i := m.index(edge, member.ID())
	if i < 0 {
		return false
	}
	q := m.queues[edge]
	m.setQueue(edge, append(q[:i:i], q[i+1:]...))
	member.SetQueued(edge, false)
	m.statsFor(edge).Abandoned++
	return true
}

// Clear drops every waiting member of one edge and returns them in queue order.
func (m *Manager[M]) Clear(edge graph.EdgeID) []M {
	q := m.queues[edge]
	removed := make([]M, 0, len(q))
	for _, e := range q {
		e.member.SetQueued(edge, false)
		removed = append(removed, e.member)
	}
	delete(m.queues, edge)
	if st, ok := m.stats[edge]; ok {
		st.Abandoned += len(q)
	}
	return removed
}

// Position is the zero-based place of member in the queue, or -1.
func (m *Manager[M]) Position(edge graph.EdgeID, member M) int {
	return m.index(edge, member.ID())
}

// EstimatedWait extrapolates from the member's position. The head waits 0.
func (m *Manager[M]) EstimatedWait(edge graph.EdgeID, member M) float64 {
	pos := m.Position(edge, member)
	if pos < 0 {
		return 0
	}
	return float64(pos) * m.cfg.CrossingTime
}

func (m *Manager[M]) Len(edge graph.EdgeID) int {
	return len(m.queues[edge])
}

// Edges lists the edges with waiting members in ascending id order.
func (m *Manager[M]) Edges() []graph.EdgeID {
	return sortedKeys(m.queues)
}

func (m *Manager[M]) Stats(edge graph.EdgeID) Stats {
	if st, ok := m.stats[edge]; ok {
		return *st
	}
	return Stats{}
}

func (m *Manager[M]) AllStats() map[graph.EdgeID]Stats {
	return lo.MapValues(m.stats, func(st *Stats, _ graph.EdgeID) Stats { return *st })
}

// Aggregate sums the counters of every edge. MaxDepth is the largest single depth.
func (m *Manager[M]) Aggregate() Stats {
	edges := sortedKeys(m.stats)
	return lo.Reduce(edges, func(acc Stats, edge graph.EdgeID, _ int) Stats {
		st := m.stats[edge]
		acc.Enqueued += st.Enqueued
		acc.Dequeued += st.Dequeued
		acc.TotalWait += st.TotalWait
		acc.Overflow += st.Overflow
		acc.Abandoned += st.Abandoned
		acc.MaxDepth = lo.Max([]int{acc.MaxDepth, st.MaxDepth})
		return acc
	}, Stats{})
}

// Reset clears all queues and statistics.
func (m *Manager[M]) Reset() {
	for edge := range m.queues {
		m.Clear(edge)
	}
	m.stats = make(map[graph.EdgeID]*Stats)
}

func (m *Manager[M]) index(edge graph.EdgeID, id string) int {
	for i, e := range m.queues[edge] {
		if e.member.ID() == id {
			return i
		}
	}
	return -1
}

func (m *Manager[M]) setQueue(edge graph.EdgeID, q []entry[M]) {
	if len(q) == 0 {
		delete(m.queues, edge)
		return
	}
	m.queues[edge] = q
}

func (m *Manager[M]) statsFor(edge graph.EdgeID) *Stats {
	st, ok := m.stats[edge]
	if !ok {
		st = &Stats{}
		m.stats[edge] = st
	}
	return st
}

func sortedKeys[V any](in map[graph.EdgeID]V) []graph.EdgeID {
	keys := lo.Keys(in)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
