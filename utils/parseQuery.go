package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/mohamedthameursassi/flightroutes/history"
	"github.com/mohamedthameursassi/flightroutes/models"
)

const naiveLayout = "2006-01-02T15:04:05"

// ParseTime accepts RFC 3339 timestamps and naive "2006-01-02T15:04:05"
// datetimes, the latter read as UTC. An empty string yields nil.
func ParseTime(input string) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, naiveLayout, "2006-01-02"} {
		if t, err := time.Parse(layout, input); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: cannot parse date %q", models.ErrInvalidFilter, input)
}

// ParseMostUsed turns the query parameters of /flights/most_used into a
// history query.
func ParseMostUsed(req models.MostUsedRequest) (history.Query, error) {
	q := history.Query{
		Departure:  req.Departure,
		Arrival:    req.Arrival,
		AirlineID:  req.AirlineID,
		AircraftID: req.AircraftID,
	}
	var err error
	if q.Start, err = ParseTime(req.StartDate); err != nil {
		return history.Query{}, err
	}
	if q.End, err = ParseTime(req.EndDate); err != nil {
		return history.Query{}, err
	}
	return q, q.Validate()
}

// ParseEfficiency resolves the ranking mode of /flights/most_efficient.
func ParseEfficiency(req models.MostEfficientRequest) (history.EfficiencyMode, error) {
	if strings.TrimSpace(req.Mode) != "" {
		return ParseMode(req.Mode)
	}
	return history.ModeFromFlags(req.ByTime, req.ByFuel), nil
}

// ParseMode maps a textual mode ("time", "fuel") to an efficiency mode.
func ParseMode(input string) (history.EfficiencyMode, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "time", "by_time":
		return history.ByTime, nil
	case "fuel", "by_fuel":
		return history.ByFuel, nil
	default:
		return history.ByTime, fmt.Errorf("%w: unknown efficiency mode %q", models.ErrInvalidFilter, input)
	}
}
