package routing

import (
	"fmt"
	"time"

	"github.com/mohamedthameursassi/flightroutes/models"
)

// WaypointLookup resolves waypoint ids. Both *Graph and Waypoints implement it.
type WaypointLookup interface {
	Waypoint(id int64) (models.Waypoint, bool)
}

// Waypoints is a map-backed WaypointLookup.
type Waypoints map[int64]models.Waypoint

func NewWaypoints(wps []models.Waypoint) Waypoints {
	out := make(Waypoints, len(wps))
	for _, wp := range wps {
		out[wp.ID] = wp
	}
	return out
}

func (w Waypoints) Waypoint(id int64) (models.Waypoint, bool) {
	wp, ok := w[id]
	return wp, ok
}

// ResolveNames maps ids to waypoint names, keeping order and repeats. Any
// unknown id aborts the whole resolution.
func ResolveNames(lookup WaypointLookup, ids []int64) ([]string, error) {
	names := make([]string, len(ids))
	for i, id := range ids {
		wp, ok := lookup.Waypoint(id)
		if !ok {
			return nil, fmt.Errorf("%w: %d at position %d", models.ErrUnknownWaypoint, id, i)
		}
		names[i] = wp.Name
	}
	return names, nil
}

// FormatDuration renders whole seconds as H:MM:SS, with a leading minus for
// negative values. Hours are not wrapped into days.
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	return fmt.Sprintf("%s%d:%02d:%02d", sign, secs/3600, (secs%3600)/60, secs%60)
}

// TruncateFuel drops the fractional part of a fuel quantity, toward zero.
func TruncateFuel(fuel float64) int64 {
	return int64(fuel)
}
