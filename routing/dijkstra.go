package routing

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/mohamedthameursassi/flightroutes/models"
)

// Path is a solver result. An empty Waypoints slice means the arrival is not
// reachable from the departure.
type Path struct {
	Waypoints models.RouteKey
	Cost      float64
}

func (p Path) Found() bool {
	return len(p.Waypoints) > 0
}

// ShortestPath runs Dijkstra's algorithm from departure to arrival. Both ids
// must be registered. The graph is only read, so concurrent runs over the same
// graph are safe.
//
// Equal tentative distances are popped in insertion order. That ordering only
// makes results reproducible; optimality does not depend on it.
func ShortestPath(g *Graph, departure, arrival int64) (Path, error) {
	if _, ok := g.nodes[departure]; !ok {
		return Path{}, fmt.Errorf("%w: departure %d", models.ErrUnknownWaypoint, departure)
	}
	if _, ok := g.nodes[arrival]; !ok {
		return Path{}, fmt.Errorf("%w: arrival %d", models.ErrUnknownWaypoint, arrival)
	}

	distances := map[int64]float64{departure: 0}
	previous := make(map[int64]int64)
	visited := make(map[int64]bool)

	pq := &priorityQueue{}
	heap.Init(pq)
	pq.push(departure, 0)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*pqItem)
		current := item.node

		// Lazy deletion: an improved distance re-inserts the node, older
		// entries are dropped here.
		if visited[current] {
			continue
		}
		if current == arrival {
			path, err := reconstructPath(g, previous, departure, arrival)
			if err != nil {
				return Path{}, err
			}
			return Path{Waypoints: path, Cost: distances[arrival]}, nil
		}
		visited[current] = true

		for _, e := range g.edges[current] {
			if visited[e.ToID] {
				continue
			}
			tentative := distances[current] + e.Cost
			if old, ok := distances[e.ToID]; !ok || tentative < old {
				distances[e.ToID] = tentative
				previous[e.ToID] = current
				pq.push(e.ToID, tentative)
			}
		}
	}

	return Path{Waypoints: models.RouteKey{}}, nil
}

// reconstructPath walks predecessors back from arrival and returns the
// departure-first sequence, both endpoints included.
func reconstructPath(g *Graph, previous map[int64]int64, departure, arrival int64) (models.RouteKey, error) {
	var reversed models.RouteKey
	current := arrival
	for {
		if _, ok := g.nodes[current]; !ok {
			return nil, fmt.Errorf("%w: %d while reconstructing path", models.ErrUnknownWaypoint, current)
		}
		reversed = append(reversed, current)
		if current == departure {
			break
		}
		prev, ok := previous[current]
		if !ok {
			return nil, fmt.Errorf("%w: no predecessor for %d", models.ErrUnknownWaypoint, current)
		}
		current = prev
	}

	path := make(models.RouteKey, len(reversed))
	for i, id := range reversed {
		path[len(reversed)-1-i] = id
	}
	return path, nil
}

// PathCost sums the cheapest edge between each consecutive pair of path. It
// returns +Inf when two consecutive waypoints are not connected.
func PathCost(g *Graph, path models.RouteKey) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		best := math.Inf(1)
		for _, e := range g.edges[path[i-1]] {
			if e.ToID == path[i] && e.Cost < best {
				best = e.Cost
			}
		}
		total += best
	}
	return total
}

type pqItem struct {
	node     int64
	priority float64
	seq      uint64
}

type priorityQueue struct {
	items []*pqItem
	next  uint64
}

func (pq *priorityQueue) push(node int64, priority float64) {
	heap.Push(pq, &pqItem{node: node, priority: priority, seq: pq.next})
	pq.next++
}

func (pq priorityQueue) Len() int { return len(pq.items) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq.items[i].priority != pq.items[j].priority {
		return pq.items[i].priority < pq.items[j].priority
	}
	return pq.items[i].seq < pq.items[j].seq
}

func (pq priorityQueue) Swap(i, j int) { pq.items[i], pq.items[j] = pq.items[j], pq.items[i] }

func (pq *priorityQueue) Push(x interface{}) {
	pq.items = append(pq.items, x.(*pqItem))
}

func (pq *priorityQueue) Pop() interface{} {
	old := pq.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	pq.items = old[0 : n-1]
	return item
}
