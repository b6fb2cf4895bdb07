// Package store provides the data sources that feed the route engine:
// an in-memory store, a Badger embedded store and a PostgreSQL store.
//
// Every store hands out copies. Callers may keep and read the returned
// records while new flights are being added.
package store

import (
	"fmt"
	"sort"

	"github.com/mohamedthameursassi/flightroutes/models"
)

func sortWaypoints(wps []models.Waypoint) {
	sort.Slice(wps, func(i, j int) bool { return wps[i].ID < wps[j].ID })
}

func sortFlights(fs []models.FlightRecord) {
	sort.Slice(fs, func(i, j int) bool { return fs[i].ID < fs[j].ID })
}

func cloneFlight(f models.FlightRecord) models.FlightRecord {
	f.FlightPlan = append(models.RouteKey(nil), f.FlightPlan...)
	return f
}

func validateIDs(kind string, id int64) error {
	if id < 0 {
		return fmt.Errorf("%w: negative %s id %d", models.ErrInvalidFilter, kind, id)
	}
	return nil
}
