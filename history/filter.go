// Package history aggregates historical flight records into ranked and
// compared routes. All functions are pure: they read the records they are
// given and never retain or modify them.
package history

import (
	"fmt"
	"time"

	"github.com/mohamedthameursassi/flightroutes/models"
)

// Predicate selects flight records.
type Predicate func(models.FlightRecord) bool

// All combines predicates with logical AND. No predicates matches everything.
func All(preds ...Predicate) Predicate {
	return func(f models.FlightRecord) bool {
		for _, p := range preds {
			if !p(f) {
				return false
			}
		}
		return true
	}
}

func DepartsFrom(id int64) Predicate {
	return func(f models.FlightRecord) bool { return f.Departure == id }
}

func ArrivesAt(id int64) Predicate {
	return func(f models.FlightRecord) bool { return f.Arrival == id }
}

func OperatedBy(airlineID int64) Predicate {
	return func(f models.FlightRecord) bool { return f.AirlineID == airlineID }
}

func FlownWith(aircraftID int64) Predicate {
	return func(f models.FlightRecord) bool { return f.AircraftID == aircraftID }
}

// DepartedFrom matches departures at or after t.
func DepartedFrom(t time.Time) Predicate {
	return func(f models.FlightRecord) bool { return !f.DepartureTime.Before(t) }
}

// DepartedUntil matches departures at or before t.
func DepartedUntil(t time.Time) Predicate {
	return func(f models.FlightRecord) bool { return !f.DepartureTime.After(t) }
}

func NotFlight(id int64) Predicate {
	return func(f models.FlightRecord) bool { return f.ID != id }
}

// Select returns the records matching pred, in input order.
func Select(records []models.FlightRecord, pred Predicate) []models.FlightRecord {
	var out []models.FlightRecord
	for _, f := range records {
		if pred(f) {
			out = append(out, f)
		}
	}
	return out
}

// Query is the filter shared by the aggregations. Zero ids and nil times are
// "not set" and impose no constraint.
type Query struct {
	Departure       int64
	Arrival         int64
	AirlineID       int64
	AircraftID      int64
	Start           *time.Time
	End             *time.Time
	ExcludeFlightID int64
}

// RouteQuery filters by endpoints only.
func RouteQuery(departure, arrival int64) Query {
	return Query{Departure: departure, Arrival: arrival}
}

func (q Query) Validate() error {
	if q.Departure <= 0 || q.Arrival <= 0 {
		return fmt.Errorf("%w: departure and arrival are required", models.ErrInvalidFilter)
	}
	if q.AirlineID < 0 || q.AircraftID < 0 {
		return fmt.Errorf("%w: negative airline or aircraft id", models.ErrInvalidFilter)
	}
	if q.Start != nil && q.End != nil && q.End.Before(*q.Start) {
		return fmt.Errorf("%w: end %s before start %s", models.ErrInvalidFilter,
			q.End.Format(time.RFC3339), q.Start.Format(time.RFC3339))
	}
	return nil
}

// Condition is one named constraint of a Query, in a form a storage backend
// can translate into a parameterized clause.
type Condition struct {
	Name  string
	Field string
	Op    string // one of "=", "!=", ">=", "<="
	Value any
}

// Conditions lists the constraints that are set, in a fixed order.
func (q Query) Conditions() []Condition {
	conds := []Condition{
		{Name: "departure", Field: "departure", Op: "=", Value: q.Departure},
		{Name: "arrival", Field: "arrival", Op: "=", Value: q.Arrival},
	}
	if q.AirlineID != 0 {
		conds = append(conds, Condition{Name: "airline", Field: "airline_id", Op: "=", Value: q.AirlineID})
	}
	if q.AircraftID != 0 {
		conds = append(conds, Condition{Name: "aircraft", Field: "aircraft_id", Op: "=", Value: q.AircraftID})
	}
	if q.Start != nil {
		conds = append(conds, Condition{Name: "start", Field: "departure_time", Op: ">=", Value: q.Start.UTC()})
	}
	if q.End != nil {
		conds = append(conds, Condition{Name: "end", Field: "departure_time", Op: "<=", Value: q.End.UTC()})
	}
	if q.ExcludeFlightID != 0 {
		conds = append(conds, Condition{Name: "exclude", Field: "id", Op: "!=", Value: q.ExcludeFlightID})
	}
	return conds
}

// Predicate builds the in-memory equivalent of Conditions.
func (q Query) Predicate() Predicate {
	preds := []Predicate{DepartsFrom(q.Departure), ArrivesAt(q.Arrival)}
	if q.AirlineID != 0 {
		preds = append(preds, OperatedBy(q.AirlineID))
	}
	if q.AircraftID != 0 {
		preds = append(preds, FlownWith(q.AircraftID))
	}
	if q.Start != nil {
		preds = append(preds, DepartedFrom(*q.Start))
	}
	if q.End != nil {
		preds = append(preds, DepartedUntil(*q.End))
	}
	if q.ExcludeFlightID != 0 {
		preds = append(preds, NotFlight(q.ExcludeFlightID))
	}
	return All(preds...)
}
