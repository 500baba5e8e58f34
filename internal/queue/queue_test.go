package queue

import (
	"fmt"
	"testing"

	"github.com/chrisdamba/campussim/internal/graph"
)

type walker struct {
	id     string
	queued map[graph.EdgeID]bool
}

func newWalker(id string) *walker {
	return &walker{id: id, queued: make(map[graph.EdgeID]bool)}
}

func (w *walker) ID() string { return w.id }

func (w *walker) SetQueued(edge graph.EdgeID, queued bool) {
	w.queued[edge] = queued
}

func TestFIFOOrder(t *testing.T) {
	m := NewManager[*walker](DefaultConfig())
	const edge graph.EdgeID = 3

	var walkers []*walker
	for i := 0; i < 5; i++ {
		w := newWalker(fmt.Sprintf("w%d", i))
		walkers = append(walkers, w)
		if !m.Enqueue(edge, w, float64(i)) {
			t.Fatalf("enqueue %s refused", w.id)
		}
		if !w.queued[edge] {
			t.Errorf("%s should be marked queued", w.id)
		}
	}

	for i, want := range walkers {
		got, ok := m.Dequeue(edge, 10)
		if !ok {
			t.Fatalf("dequeue %d returned nothing", i)
		}
		if got != want {
			t.Errorf("dequeue %d = %s, want %s", i, got.id, want.id)
		}
		if got.queued[edge] {
			t.Errorf("%s still marked queued", got.id)
		}
	}
	if _, ok := m.Dequeue(edge, 10); ok {
		t.Error("empty queue should return nothing")
	}

	st := m.Stats(edge)
	if st.Enqueued != 5 || st.Dequeued != 5 || st.MaxDepth != 5 {
		t.Errorf("stats = %+v", st)
	}
	// waits are 10,9,8,7,6
	if st.TotalWait != 40 || st.AverageWait() != 8 {
		t.Errorf("total wait %v, average %v", st.TotalWait, st.AverageWait())
	}
	if len(m.Edges()) != 0 {
		t.Errorf("drained queue should not be listed, got %v", m.Edges())
	}
}

func TestEnqueueRefusals(t *testing.T) {
	m := NewManager[*walker](Config{MaxLength: 2, CrossingTime: 0.5})
	a, b, c := newWalker("a"), newWalker("b"), newWalker("c")

	m.Enqueue(0, a, 0)
	if m.CanEnqueue(0, a) {
		t.Error("a is already queued")
	}
	if m.Enqueue(0, a, 0) {
		t.Error("duplicate enqueue must fail")
	}
	m.Enqueue(0, b, 0)
	if m.Enqueue(0, c, 0) {
		t.Error("full queue must refuse")
	}
	if c.queued[0] {
		t.Error("refused member must not be marked queued")
	}
	if got := m.Stats(0).Overflow; got != 2 {
		t.Errorf("overflow = %d, want 2", got)
	}
}

func TestUnboundedQueue(t *testing.T) {
	m := NewManager[*walker](Config{MaxLength: 0})
	for i := 0; i < 200; i++ {
		if !m.Enqueue(1, newWalker(fmt.Sprint(i)), 0) {
			t.Fatalf("enqueue %d refused with unbounded queue", i)
		}
	}
	if m.Len(1) != 200 {
		t.Errorf("len = %d", m.Len(1))
	}
}

func TestPositionAndEstimatedWait(t *testing.T) {
	m := NewManager[*walker](DefaultConfig())
	a, b, c := newWalker("a"), newWalker("b"), newWalker("c")
	for _, w := range []*walker{a, b, c} {
		m.Enqueue(7, w, 0)
	}
	if m.Position(7, c) != 2 {
		t.Errorf("position of c = %d", m.Position(7, c))
	}
	if got := m.EstimatedWait(7, c); got != 1.0 {
		t.Errorf("estimated wait = %v, want 1.0", got)
	}
	if got := m.EstimatedWait(7, newWalker("x")); got != 0 {
		t.Errorf("absent member wait = %v", got)
	}
}

func TestRemoveAndClear(t *testing.T) {
	m := NewManager[*walker](DefaultConfig())
	a, b, c := newWalker("a"), newWalker("b"), newWalker("c")
	for _, w := range []*walker{a, b, c} {
		m.Enqueue(2, w, 0)
	}
	if !m.Remove(2, b) {
		t.Fatal("remove b failed")
	}
	if b.queued[2] || m.Position(2, c) != 1 {
		t.Error("remove should unmark b and close the gap")
	}
	if m.Remove(2, b) {
		t.Error("second remove should fail")
	}
	if st := m.Stats(2); st.Waiting() != 2 || st.Enqueued != 3 || st.Abandoned != 1 {
		t.Errorf("stats after remove = %+v, want 3 enqueued, 1 abandoned, 2 waiting", st)
	}

	removed := m.Clear(2)
	if len(removed) != 2 || removed[0] != a || removed[1] != c {
		t.Errorf("clear returned %v", removed)
	}
	if a.queued[2] || c.queued[2] || m.Len(2) != 0 {
		t.Error("clear should empty the queue")
	}
	if st := m.Stats(2); st.Waiting() != 0 || st.Enqueued != 3 || st.Abandoned != 3 {
		t.Errorf("stats after clear = %+v", st)
	}
	if agg := m.Aggregate(); agg.Enqueued != 3 || agg.Abandoned != 3 {
		t.Errorf("aggregate = %+v", agg)
	}
}

func TestEdgesAndAggregate(t *testing.T) {
	m := NewManager[*walker](DefaultConfig())
	m.Enqueue(9, newWalker("a"), 0)
	m.Enqueue(4, newWalker("b"), 0)
	m.Enqueue(4, newWalker("c"), 0)
	m.Enqueue(1, newWalker("d"), 0)

	edges := m.Edges()
	want := []graph.EdgeID{1, 4, 9}
	if len(edges) != len(want) {
		t.Fatalf("edges = %v", edges)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("edges = %v, want %v", edges, want)
		}
	}

	m.Dequeue(4, 2)
	agg := m.Aggregate()
	if agg.Enqueued != 4 || agg.Dequeued != 1 || agg.MaxDepth != 2 || agg.TotalWait != 2 {
		t.Errorf("aggregate = %+v", agg)
	}
	if len(m.AllStats()) != 3 {
		t.Errorf("all stats = %v", m.AllStats())
	}

	m.Reset()
	if len(m.Edges()) != 0 || m.Aggregate() != (Stats{}) {
		t.Error("reset should clear queues and statistics")
	}
}
