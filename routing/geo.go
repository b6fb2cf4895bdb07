package routing

import (
	"fmt"
	"math"
	"sort"

	"github.com/mohamedthameursassi/flightroutes/models"
)

const (
	EarthRadiusKm = 6371.0

	// DefaultMaxWaypoints bounds the complete pairwise edge build, which is
	// quadratic in the number of waypoints.
	DefaultMaxWaypoints = 2000
)

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// HaversineKm returns the great-circle distance between two waypoints.
func HaversineKm(a, b models.Waypoint) float64 {
	phi1 := toRadians(a.Latitude)
	phi2 := toRadians(b.Latitude)
	deltaPhi := toRadians(b.Latitude - a.Latitude)
	deltaLambda := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	// Rounding can push h just past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// BuildOptions bounds geodesic graph construction.
type BuildOptions struct {
	// MaxWaypoints rejects larger inputs with ErrGraphTooLarge. Zero or
	// negative disables the bound.
	MaxWaypoints int
	// Neighbors, when positive, connects each waypoint only to its k nearest
	// waypoints (in both directions). Zero builds the complete graph.
	Neighbors int
}

// DefaultBuildOptions returns the complete graph bounded by DefaultMaxWaypoints.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{MaxWaypoints: DefaultMaxWaypoints}
}

// BuildGraph registers every waypoint and derives directed edges weighted by
// haversine distance. Without a neighbor limit every distinct ordered pair
// gets an edge, which is O(n²) in time and memory.
func BuildGraph(waypoints []models.Waypoint, opts BuildOptions) (*Graph, error) {
	if opts.MaxWaypoints > 0 && len(waypoints) > opts.MaxWaypoints {
		return nil, fmt.Errorf("%w: %d waypoints, limit %d",
			models.ErrGraphTooLarge, len(waypoints), opts.MaxWaypoints)
	}

	g := NewGraph()
	for _, wp := range waypoints {
		if err := g.AddWaypoint(wp); err != nil {
			return nil, err
		}
	}

	if opts.Neighbors <= 0 || opts.Neighbors >= len(waypoints)-1 {
		for _, source := range waypoints {
			for _, target := range waypoints {
				if source.ID == target.ID {
					continue
				}
				if err := g.AddEdge(source.ID, target.ID, HaversineKm(source, target)); err != nil {
					return nil, err
				}
			}
		}
		return g, nil
	}

	return g, addNearestEdges(g, waypoints, opts.Neighbors)
}

type candidate struct {
	wp   models.Waypoint
	dist float64
}

// addNearestEdges links every waypoint with its k nearest others, in both
// directions. Ties in distance go to the smaller id.
func addNearestEdges(g *Graph, waypoints []models.Waypoint, k int) error {
	type pair struct{ from, to int64 }
	seen := make(map[pair]bool)

	link := func(a, b models.Waypoint, cost float64) error {
		if seen[pair{a.ID, b.ID}] {
			return nil
		}
		seen[pair{a.ID, b.ID}] = true
		return g.AddEdge(a.ID, b.ID, cost)
	}

	candidates := make([]candidate, 0, len(waypoints))
	for _, source := range waypoints {
		candidates = candidates[:0]
		for _, target := range waypoints {
			if target.ID == source.ID {
				continue
			}
			candidates = append(candidates, candidate{wp: target, dist: HaversineKm(source, target)})
		}
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].dist != candidates[j].dist {
				return candidates[i].dist < candidates[j].dist
			}
			return candidates[i].wp.ID < candidates[j].wp.ID
		})

		for _, c := range candidates[:k] {
			if err := link(source, c.wp, c.dist); err != nil {
				return err
			}
			if err := link(c.wp, source, c.dist); err != nil {
				return err
			}
		}
	}
	return nil
}
