package models

import (
	"strconv"
	"strings"
)

// RouteKey is the ordered sequence of waypoint ids identifying a distinct
// route. Two keys are equal only if they hold the same ids in the same order.
type RouteKey []int64

// String renders the key as "1-2-3"; it is injective and used as a map key.
func (k RouteKey) String() string {
	parts := make([]string, len(k))
	for i, id := range k {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, "-")
}

// Compare orders keys lexicographically by id, shorter prefixes first.
func (k RouteKey) Compare(other RouteKey) int {
	for i := 0; i < len(k) && i < len(other); i++ {
		switch {
		case k[i] < other[i]:
			return -1
		case k[i] > other[i]:
			return 1
		}
	}
	switch {
	case len(k) < len(other):
		return -1
	case len(k) > len(other):
		return 1
	}
	return 0
}

func (k RouteKey) Equal(other RouteKey) bool {
	return k.Compare(other) == 0
}

// FlightRoute is the body returned for the most-used route.
type FlightRoute struct {
	FPL        []string `json:"fpl"`
	Waypoints  RouteKey `json:"waypoints"`
	UsageCount int      `json:"usage_count"`
}

// EfficientRoute is the body returned for the most-efficient route. Score is
// the average duration in seconds or the average fuel consumption.
type EfficientRoute struct {
	FPL       []string `json:"fpl"`
	Waypoints RouteKey `json:"waypoints"`
	Mode      string   `json:"mode"`
	Score     float64  `json:"score"`
}

// AlternativeRoute reports the savings of a route against a reference flight.
type AlternativeRoute struct {
	FPL         []string `json:"fpl"`
	Waypoints   RouteKey `json:"waypoints"`
	Flights     int      `json:"flights"`
	TimeSavings string   `json:"time_savings"`
	FuelSavings int64    `json:"fuel_savings"`
}

// ShortestRoute is the solver output resolved to names.
type ShortestRoute struct {
	FPL        []string `json:"fpl"`
	Waypoints  RouteKey `json:"waypoints"`
	DistanceKm float64  `json:"distance_km"`
}
