// Package routing holds the waypoint graph, the shortest-path solver and the
// helpers that turn waypoint id sequences into readable routes.
//
// A Graph is built once and then only read. Read-only graphs may be shared by
// any number of concurrent solver runs.
package routing

import (
	"fmt"
	"math"

	"github.com/mohamedthameursassi/flightroutes/models"
)

// Edge is a directed connection between two waypoints.
type Edge struct {
	FromID int64
	ToID   int64
	Cost   float64 // non-negative, e.g. geodesic distance in km
}

// Graph is a directed, weighted graph of waypoints.
type Graph struct {
	nodes map[int64]models.Waypoint
	edges map[int64][]Edge // outgoing edges by source id
}

func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[int64]models.Waypoint),
		edges: make(map[int64][]Edge),
	}
}

// AddWaypoint registers wp. Registering an id twice fails with ErrDuplicateKey.
func (g *Graph) AddWaypoint(wp models.Waypoint) error {
	if _, exists := g.nodes[wp.ID]; exists {
		return fmt.Errorf("%w: waypoint %d", models.ErrDuplicateKey, wp.ID)
	}
	g.nodes[wp.ID] = wp
	return nil
}

// AddEdge adds a directed edge. Both endpoints must already be registered and
// the cost must be finite and non-negative.
func (g *Graph) AddEdge(source, target int64, cost float64) error {
	if _, ok := g.nodes[source]; !ok {
		return fmt.Errorf("%w: edge source %d", models.ErrUnknownWaypoint, source)
	}
	if _, ok := g.nodes[target]; !ok {
		return fmt.Errorf("%w: edge target %d", models.ErrUnknownWaypoint, target)
	}
	if math.IsNaN(cost) || math.IsInf(cost, 0) || cost < 0 {
		return fmt.Errorf("%w: %v on edge %d->%d", models.ErrInvalidCost, cost, source, target)
	}
	g.edges[source] = append(g.edges[source], Edge{FromID: source, ToID: target, Cost: cost})
	return nil
}

// Neighbors returns a copy of the outgoing edges of id, empty if it has none.
func (g *Graph) Neighbors(id int64) ([]Edge, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: %d", models.ErrUnknownWaypoint, id)
	}
	out := make([]Edge, len(g.edges[id]))
	copy(out, g.edges[id])
	return out, nil
}

// Waypoint implements WaypointLookup.
func (g *Graph) Waypoint(id int64) (models.Waypoint, bool) {
	wp, ok := g.nodes[id]
	return wp, ok
}

func (g *Graph) WaypointCount() int {
	return len(g.nodes)
}

func (g *Graph) EdgeCount() int {
	n := 0
	for _, out := range g.edges {
		n += len(out)
	}
	return n
}
