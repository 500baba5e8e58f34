package graph

import (
	"fmt"
	"math"
)

// Route is a sequence of edges between two locations and its total time cost.
type Route struct {
	Stops []string
	Edges []EdgeID
	Cost  float64
}

// ShortestPath finds the lowest time-cost route under current occupancy.
// Edges that are at capacity are not traversable.
func (g *Graph) ShortestPath(start, end string) (Route, error) {
	return g.search(start, end, nil)
}

// SecondBestPath approximates the next-best route by blocking each edge of
// the best route in turn and keeping the cheapest alternative that costs
// strictly more than the best.
func (g *Graph) SecondBestPath(start, end string) (Route, error) {
	best, err := g.search(start, end, nil)
	if err != nil {
		return Route{}, err
	}

	var (
		alt   Route
		found bool
	)
	for _, blocked := range best.Edges {
		candidate, err := g.search(start, end, map[EdgeID]bool{blocked: true})
		if err != nil {
			continue
		}
		if candidate.Cost <= best.Cost {
			continue
		}
		if !found || candidate.Cost < alt.Cost {
			alt = candidate
			found = true
		}
	}
	if !found {
		return Route{}, fmt.Errorf("%w: %s->%s", ErrNoAlternatePath, start, end)
	}
	return alt, nil
}

func (g *Graph) search(start, end string, blocked map[EdgeID]bool) (Route, error) {
	if _, ok := g.locations[start]; !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownLocation, start)
	}
	if _, ok := g.locations[end]; !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownLocation, end)
	}

	dist := map[string]float64{start: 0}
	via := make(map[string]EdgeID)
	visited := make(map[string]bool)
	f := &frontier{}
	f.push(start, 0)

	for !f.empty() {
		cur := f.pop()
		if visited[cur.location] {
			continue
		}
		visited[cur.location] = true
		if cur.location == end {
			break
		}

		for _, eid := range g.locations[cur.location].edges {
			if blocked[eid] || !g.HasCapacity(eid) {
				continue
			}
			next := g.edges[eid].To
			if visited[next] {
				continue
			}
			cost := cur.cost + g.EdgeCost(eid)
			known, ok := dist[next]
			if !ok {
				known = math.Inf(1)
			}
			if cost < known {
				dist[next] = cost
				via[next] = eid
				f.push(next, cost)
			}
		}
	}

	total, ok := dist[end]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s->%s", ErrNoPath, start, end)
	}

	route := Route{Cost: total, Stops: []string{end}}
	for at := end; at != start; {
		eid := via[at]
		route.Edges = append(route.Edges, eid)
		at = g.edges[eid].From
		route.Stops = append(route.Stops, at)
	}
	reverse(route.Edges)
	reverse(route.Stops)
	return route, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
