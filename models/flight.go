package models

import (
	"fmt"
	"math"
	"time"
)

// FlightRecord is one historical flight and the route it actually flew.
// Records are immutable once stored; the engine only reads them.
type FlightRecord struct {
	ID              int64     `json:"id"`
	Departure       int64     `json:"departure"`
	Arrival         int64     `json:"arrival"`
	AirlineID       int64     `json:"airline_id"`
	AircraftID      int64     `json:"aircraft_id"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	FuelConsumption float64   `json:"fuel_consumption"`
	FlightPlan      RouteKey  `json:"fpl"`
}

// Duration is the block time of the flight.
func (f FlightRecord) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}

// FlightCreate is the ingestion body for a new historical flight.
type FlightCreate struct {
	Departure       int64     `json:"departure" binding:"required"`
	Arrival         int64     `json:"arrival" binding:"required"`
	AirlineID       int64     `json:"airline_id"`
	AircraftID      int64     `json:"aircraft_id"`
	FuelConsumption float64   `json:"fuel_consumption"`
	DepartureTime   time.Time `json:"departure_time" binding:"required"`
	ArrivalTime     time.Time `json:"arrival_time" binding:"required"`
	FlightPlan      []int64   `json:"fpl" binding:"required"`
}

// Validate checks the record-local invariants. Waypoint existence is checked
// by the service against the repository.
func (f FlightCreate) Validate() error {
	if len(f.FlightPlan) == 0 {
		return fmt.Errorf("%w: empty flight plan", ErrInvalidFlight)
	}
	if f.FlightPlan[0] != f.Departure || f.FlightPlan[len(f.FlightPlan)-1] != f.Arrival {
		return fmt.Errorf("%w: flight plan must start at departure %d and end at arrival %d",
			ErrInvalidFlight, f.Departure, f.Arrival)
	}
	if math.IsNaN(f.FuelConsumption) || math.IsInf(f.FuelConsumption, 0) || f.FuelConsumption < 0 {
		return fmt.Errorf("%w: fuel consumption %v", ErrInvalidFlight, f.FuelConsumption)
	}
	if f.ArrivalTime.Before(f.DepartureTime) {
		return fmt.Errorf("%w: arrival before departure", ErrInvalidFlight)
	}
	return nil
}

// Record builds the stored form of the flight with the given id.
func (f FlightCreate) Record(id int64) FlightRecord {
	return FlightRecord{
		ID:              id,
		Departure:       f.Departure,
		Arrival:         f.Arrival,
		AirlineID:       f.AirlineID,
		AircraftID:      f.AircraftID,
		DepartureTime:   f.DepartureTime.UTC(),
		ArrivalTime:     f.ArrivalTime.UTC(),
		FuelConsumption: f.FuelConsumption,
		FlightPlan:      append(RouteKey(nil), f.FlightPlan...),
	}
}
