package models

// MostUsedRequest carries the query parameters of /flights/most_used. Zero ids
// and empty dates mean "no filter".
type MostUsedRequest struct {
	Departure  int64  `form:"departure" binding:"required"`
	Arrival    int64  `form:"arrival" binding:"required"`
	AirlineID  int64  `form:"airline_id"`
	AircraftID int64  `form:"aircraft_id"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
}

// MostEfficientRequest selects the ranking either with Mode ("time" or
// "fuel") or with the by_time/by_fuel flags. Mode wins when both are given.
type MostEfficientRequest struct {
	Departure int64  `form:"departure" binding:"required"`
	Arrival   int64  `form:"arrival" binding:"required"`
	Mode      string `form:"mode"`
	ByTime    bool   `form:"by_time"`
	ByFuel    bool   `form:"by_fuel"`
}

type AlternativesRequest struct {
	FlightID int64 `form:"flight_id" binding:"required"`
}

type ShortestRequest struct {
	Departure int64 `form:"departure" binding:"required"`
	Arrival   int64 `form:"arrival" binding:"required"`
}
