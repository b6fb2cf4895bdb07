package models

import (
	"fmt"
	"math"
)

// Waypoint is a named geographic fix usable as a route endpoint or
// intermediate point.
type Waypoint struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type WaypointCreate struct {
	Name      string  `json:"name" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that the coordinates are finite and within range.
func (w WaypointCreate) Validate() error {
	if math.IsNaN(w.Latitude) || w.Latitude < -90 || w.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidWaypoint, w.Latitude)
	}
	if math.IsNaN(w.Longitude) || w.Longitude < -180 || w.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidWaypoint, w.Longitude)
	}
	return nil
}

type Airline struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Aircraft struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NamedCreate is the request body for airlines and aircrafts.
type NamedCreate struct {
	Name string `json:"name" binding:"required"`
}
