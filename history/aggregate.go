package history

import (
	"fmt"
	"sort"
	"time"

	"github.com/mohamedthameursassi/flightroutes/models"
	"github.com/mohamedthameursassi/flightroutes/routing"
)

// EfficiencyMode selects the metric ranked by MostEfficient.
type EfficiencyMode int

const (
	ByTime EfficiencyMode = iota
	ByFuel
)

func (m EfficiencyMode) String() string {
	if m == ByFuel {
		return "fuel"
	}
	return "time"
}

// ModeFromFlags honors exactly one flag. Neither or both fall back to ByTime.
func ModeFromFlags(byTime, byFuel bool) EfficiencyMode {
	if byFuel && !byTime {
		return ByFuel
	}
	return ByTime
}

// RankedRoute is a route with its aggregate metric: the usage count for
// MostUsed, the average duration in seconds or average fuel for MostEfficient.
type RankedRoute struct {
	Key    models.RouteKey
	Count  int
	Metric float64
}

// SavingsEntry is the average advantage of a route over a reference flight.
// Positive values mean the candidate arrived earlier or burned less fuel.
type SavingsEntry struct {
	Key         models.RouteKey
	Flights     int
	TimeSavings time.Duration
	FuelSavings int64
}

type routeGroup struct {
	key     models.RouteKey
	flights []models.FlightRecord
}

// groupByRoute groups records by their exact flight plan. Groups come back
// sorted by key; records keep their input order within a group.
func groupByRoute(records []models.FlightRecord) []*routeGroup {
	index := make(map[string]*routeGroup)
	var groups []*routeGroup
	for _, f := range records {
		k := f.FlightPlan.String()
		g, ok := index[k]
		if !ok {
			g = &routeGroup{key: append(models.RouteKey(nil), f.FlightPlan...)}
			index[k] = g
			groups = append(groups, g)
		}
		g.flights = append(g.flights, f)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].key.Compare(groups[j].key) < 0
	})
	return groups
}

// MostUsed returns the route flown most often among records matching q. Equal
// counts resolve to the lexicographically smallest route key.
func MostUsed(records []models.FlightRecord, q Query) (RankedRoute, error) {
	if err := q.Validate(); err != nil {
		return RankedRoute{}, err
	}
	groups := groupByRoute(Select(records, q.Predicate()))
	if len(groups) == 0 {
		return RankedRoute{}, fmt.Errorf("%w: no flights from %d to %d", models.ErrNotFound, q.Departure, q.Arrival)
	}

	best := groups[0]
	for _, g := range groups[1:] {
		if len(g.flights) > len(best.flights) {
			best = g
		}
	}
	return RankedRoute{Key: best.key, Count: len(best.flights), Metric: float64(len(best.flights))}, nil
}

// MostEfficient ranks the routes between two waypoints by average duration or
// average fuel, smaller first, and returns the best. Only the endpoints filter
// the records. Equal averages resolve to the smallest route key.
func MostEfficient(records []models.FlightRecord, departure, arrival int64, mode EfficiencyMode) (RankedRoute, error) {
	q := RouteQuery(departure, arrival)
	if err := q.Validate(); err != nil {
		return RankedRoute{}, err
	}
	groups := groupByRoute(Select(records, q.Predicate()))
	if len(groups) == 0 {
		return RankedRoute{}, fmt.Errorf("%w: no flights from %d to %d", models.ErrNotFound, departure, arrival)
	}

	var best RankedRoute
	for i, g := range groups {
		sum := 0.0
		for _, f := range g.flights {
			if mode == ByFuel {
				sum += f.FuelConsumption
			} else {
				sum += f.Duration().Seconds()
			}
		}
		avg := sum / float64(len(g.flights))
		if i == 0 || avg < best.Metric {
			best = RankedRoute{Key: g.key, Count: len(g.flights), Metric: avg}
		}
	}
	return best, nil
}

// Alternatives compares every other route flown between the reference
// flight's endpoints against that flight. Time savings are the average of
// reference arrival minus candidate arrival, truncated to whole seconds; fuel
// savings the average of reference fuel minus candidate fuel, truncated to
// whole units. The result is sorted by route key and empty when no other
// flight shares the endpoints.
func Alternatives(records []models.FlightRecord, reference models.FlightRecord) ([]SavingsEntry, error) {
	q := RouteQuery(reference.Departure, reference.Arrival)
	q.ExcludeFlightID = reference.ID
	if err := q.Validate(); err != nil {
		return nil, err
	}

	groups := groupByRoute(Select(records, q.Predicate()))
	out := make([]SavingsEntry, 0, len(groups))
	for _, g := range groups {
		timeSum, fuelSum := 0.0, 0.0
		for _, f := range g.flights {
			timeSum += reference.ArrivalTime.Sub(f.ArrivalTime).Seconds()
			fuelSum += reference.FuelConsumption - f.FuelConsumption
		}
		n := float64(len(g.flights))
		out = append(out, SavingsEntry{
			Key:         g.key,
			Flights:     len(g.flights),
			TimeSavings: time.Duration(int64(timeSum/n)) * time.Second,
			FuelSavings: routing.TruncateFuel(fuelSum / n),
		})
	}
	return out, nil
}
