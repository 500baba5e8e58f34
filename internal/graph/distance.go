package graph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// distanceTable caches all-pairs shortest physical distances.
type distanceTable struct {
	index map[string]int64
	paths path.AllShortest
}

// PhysicalDistance returns the shortest distance in metres between two
// locations, ignoring difficulty and congestion. The all-pairs table is
// built on first use and dropped whenever the topology changes.
// Unreachable pairs are +Inf.
func (g *Graph) PhysicalDistance(a, b string) (float64, error) {
	if _, ok := g.locations[a]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLocation, a)
	}
	if _, ok := g.locations[b]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownLocation, b)
	}
	if g.distances == nil {
		table, err := g.buildDistances()
		if err != nil {
			return 0, err
		}
		g.distances = table
	}
	return g.distances.paths.Weight(g.distances.index[a], g.distances.index[b]), nil
}

func (g *Graph) buildDistances() (*distanceTable, error) {
	wg := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	index := make(map[string]int64, len(g.order))
	for i, id := range g.order {
		index[id] = int64(i)
		wg.AddNode(simple.Node(i))
	}
	for _, e := range g.edges {
		u, v := index[e.From], index[e.To]
		if existing := wg.WeightedEdge(u, v); existing != nil && existing.Weight() <= e.Length {
			continue
		}
		wg.SetWeightedEdge(wg.NewWeightedEdge(simple.Node(u), simple.Node(v), e.Length))
	}

	paths, ok := path.FloydWarshall(wg)
	if !ok {
		return nil, fmt.Errorf("distance table: negative cycle in edge lengths")
	}
	return &distanceTable{index: index, paths: paths}, nil
}

// distanceCached reports whether the distance table is currently built.
func (g *Graph) distanceCached() bool {
	return g.distances != nil
}
