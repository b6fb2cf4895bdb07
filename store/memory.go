package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/mohamedthameursassi/flightroutes/history"
	"github.com/mohamedthameursassi/flightroutes/models"
)

// Memory keeps everything in maps guarded by a RWMutex.
type Memory struct {
	mu        sync.RWMutex
	waypoints map[int64]models.Waypoint
	airlines  map[int64]models.Airline
	aircrafts map[int64]models.Aircraft
	flights   map[int64]models.FlightRecord

	nextWaypoint, nextAirline, nextAircraft, nextFlight int64
}

func NewMemory() *Memory {
	return &Memory{
		waypoints:    make(map[int64]models.Waypoint),
		airlines:     make(map[int64]models.Airline),
		aircrafts:    make(map[int64]models.Aircraft),
		flights:      make(map[int64]models.FlightRecord),
		nextWaypoint: 1,
		nextAirline:  1,
		nextAircraft: 1,
		nextFlight:   1,
	}
}

// assign picks the id for a new row: the requested one if set, otherwise the
// next free one. next is advanced past any explicit id.
func assign(requested int64, next *int64, exists func(int64) bool, kind string) (int64, error) {
	if err := validateIDs(kind, requested); err != nil {
		return 0, err
	}
	id := requested
	if id == 0 {
		id = *next
	}
	if exists(id) {
		return 0, fmt.Errorf("%w: %s %d", models.ErrDuplicateKey, kind, id)
	}
	if id >= *next {
		*next = id + 1
	}
	return id, nil
}

func (m *Memory) AddWaypoint(_ context.Context, wp models.Waypoint) (models.Waypoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := assign(wp.ID, &m.nextWaypoint, func(id int64) bool { _, ok := m.waypoints[id]; return ok }, "waypoint")
	if err != nil {
		return models.Waypoint{}, err
	}
	wp.ID = id
	m.waypoints[id] = wp
	return wp, nil
}

func (m *Memory) AddAirline(_ context.Context, a models.Airline) (models.Airline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := assign(a.ID, &m.nextAirline, func(id int64) bool { _, ok := m.airlines[id]; return ok }, "airline")
	if err != nil {
		return models.Airline{}, err
	}
	a.ID = id
	m.airlines[id] = a
	return a, nil
}

func (m *Memory) AddAircraft(_ context.Context, a models.Aircraft) (models.Aircraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := assign(a.ID, &m.nextAircraft, func(id int64) bool { _, ok := m.aircrafts[id]; return ok }, "aircraft")
	if err != nil {
		return models.Aircraft{}, err
	}
	a.ID = id
	m.aircrafts[id] = a
	return a, nil
}

// AddFlight stores f. Its endpoints and flight plan must reference known
// waypoints; a non-zero airline or aircraft id must be registered.
func (m *Memory) AddFlight(_ context.Context, f models.FlightRecord) (models.FlightRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range append([]int64{f.Departure, f.Arrival}, f.FlightPlan...) {
		if _, ok := m.waypoints[id]; !ok {
			return models.FlightRecord{}, fmt.Errorf("%w: %d", models.ErrUnknownWaypoint, id)
		}
	}
	if _, ok := m.airlines[f.AirlineID]; f.AirlineID != 0 && !ok {
		return models.FlightRecord{}, fmt.Errorf("%w: unknown airline %d", models.ErrInvalidFlight, f.AirlineID)
	}
	if _, ok := m.aircrafts[f.AircraftID]; f.AircraftID != 0 && !ok {
		return models.FlightRecord{}, fmt.Errorf("%w: unknown aircraft %d", models.ErrInvalidFlight, f.AircraftID)
	}

	id, err := assign(f.ID, &m.nextFlight, func(id int64) bool { _, ok := m.flights[id]; return ok }, "flight")
	if err != nil {
		return models.FlightRecord{}, err
	}
	f = cloneFlight(f)
	f.ID = id
	m.flights[id] = f
	return cloneFlight(f), nil
}

func (m *Memory) Waypoints(_ context.Context) ([]models.Waypoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Waypoint, 0, len(m.waypoints))
	for _, wp := range m.waypoints {
		out = append(out, wp)
	}
	sortWaypoints(out)
	return out, nil
}

func (m *Memory) Flight(_ context.Context, id int64) (models.FlightRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.flights[id]
	if !ok {
		return models.FlightRecord{}, fmt.Errorf("%w: flight %d", models.ErrNotFound, id)
	}
	return cloneFlight(f), nil
}

// Flights returns the flights matching q, ordered by id.
func (m *Memory) Flights(_ context.Context, q history.Query) ([]models.FlightRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pred := q.Predicate()
	var out []models.FlightRecord
	for _, f := range m.flights {
		if pred(f) {
			out = append(out, cloneFlight(f))
		}
	}
	sortFlights(out)
	return out, nil
}

func (m *Memory) Close() error { return nil }
