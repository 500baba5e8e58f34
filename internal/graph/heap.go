package graph

import "container/heap"

// frontierItem is a tentative distance to a location during a search.
type frontierItem struct {
	cost     float64
	seq      int
	location string
}

// frontierHeap implements heap.Interface. Equal costs pop in push order.
type frontierHeap []frontierItem

func (h frontierHeap) Len() int { return len(h) }
func (h frontierHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].seq < h[j].seq
}
func (h frontierHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *frontierHeap) Push(x interface{}) {
	*h = append(*h, x.(frontierItem))
}

func (h *frontierHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// frontier is a priority queue of locations keyed by accumulated cost.
type frontier struct {
	items frontierHeap
	seq   int
}

func (f *frontier) push(location string, cost float64) {
	f.seq++
	heap.Push(&f.items, frontierItem{cost: cost, seq: f.seq, location: location})
}

func (f *frontier) pop() frontierItem {
	return heap.Pop(&f.items).(frontierItem)
}

func (f *frontier) empty() bool {
	return len(f.items) == 0
}
