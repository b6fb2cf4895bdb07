// Package dataset reads waypoint and flight history files and seeds them into
// a repository.
//
// JSON files hold {waypoints, airlines, aircrafts, flights}. Waypoints may be
// flat objects with latitude/longitude, GeoJSON-like features whose
// geometry.coordinates are [lon, lat], or an operational flight plan document
// whose lastOfp.waypoints list is numbered 1..n. Gob files are snapshots
// produced by WriteSnapshot.
package dataset

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/mohamedthameursassi/flightroutes/models"
	"github.com/mohamedthameursassi/flightroutes/utils"
)

type Dataset struct {
	Waypoints []models.Waypoint
	Airlines  []models.Airline
	Aircrafts []models.Aircraft
	Flights   []models.FlightRecord
}

// Repository is the write side of a store.
type Repository interface {
	AddWaypoint(ctx context.Context, wp models.Waypoint) (models.Waypoint, error)
	AddAirline(ctx context.Context, a models.Airline) (models.Airline, error)
	AddAircraft(ctx context.Context, a models.Aircraft) (models.Aircraft, error)
	AddFlight(ctx context.Context, f models.FlightRecord) (models.FlightRecord, error)
}

// Load picks the decoder from the file extension.
func Load(path string) (*Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gob":
		return ReadSnapshot(path)
	case ".json", ".geojson":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read dataset %s: %w", path, err)
		}
		ds, err := Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse dataset %s: %w", path, err)
		}
		return ds, nil
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
}

// Parse decodes a JSON dataset.
func Parse(raw []byte) (*Dataset, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid JSON")
	}
	doc := gjson.ParseBytes(raw)
	ds := &Dataset{}

	var err error
	switch {
	case doc.Get("lastOfp.waypoints").Exists():
		ds.Waypoints, err = parseWaypoints(doc.Get("lastOfp.waypoints"), true)
	case doc.Get("waypoints").Exists():
		ds.Waypoints, err = parseWaypoints(doc.Get("waypoints"), false)
	default:
		ds.Waypoints, err = parseWaypoints(doc.Get("features"), false)
	}
	if err != nil {
		return nil, err
	}

	doc.Get("airlines").ForEach(func(_, item gjson.Result) bool {
		ds.Airlines = append(ds.Airlines, models.Airline{ID: item.Get("id").Int(), Name: item.Get("name").String()})
		return true
	})
	doc.Get("aircrafts").ForEach(func(_, item gjson.Result) bool {
		ds.Aircrafts = append(ds.Aircrafts, models.Aircraft{ID: item.Get("id").Int(), Name: item.Get("name").String()})
		return true
	})

	for i, item := range doc.Get("flights").Array() {
		f, err := parseFlight(item)
		if err != nil {
			return nil, fmt.Errorf("flight %d: %w", i, err)
		}
		ds.Flights = append(ds.Flights, f)
	}
	return ds, nil
}

func parseWaypoints(list gjson.Result, numbered bool) ([]models.Waypoint, error) {
	var out []models.Waypoint
	for i, item := range list.Array() {
		wp := models.Waypoint{ID: item.Get("id").Int(), Name: item.Get("name").String()}
		if numbered {
			wp.ID = int64(i + 1)
		}
		if !item.Get("name").Exists() {
			wp.Name = item.Get("properties.name").String()
		}
		if coords := item.Get("geometry.coordinates"); coords.Exists() {
			pair := coords.Array()
			if len(pair) < 2 {
				return nil, fmt.Errorf("waypoint %d: coordinates need [lon, lat]", i)
			}
			wp.Longitude, wp.Latitude = pair[0].Float(), pair[1].Float()
		} else {
			wp.Latitude, wp.Longitude = item.Get("latitude").Float(), item.Get("longitude").Float()
		}
		if wp.Name == "" {
			return nil, fmt.Errorf("waypoint %d: missing name", i)
		}
		create := models.WaypointCreate{Name: wp.Name, Latitude: wp.Latitude, Longitude: wp.Longitude}
		if err := create.Validate(); err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", i, err)
		}
		out = append(out, wp)
	}
	return out, nil
}

func parseFlight(item gjson.Result) (models.FlightRecord, error) {
	req := models.FlightCreate{
		Departure:       item.Get("departure").Int(),
		Arrival:         item.Get("arrival").Int(),
		AirlineID:       item.Get("airline_id").Int(),
		AircraftID:      item.Get("aircraft_id").Int(),
		FuelConsumption: item.Get("fuel_consumption").Float(),
	}
	item.Get("fpl").ForEach(func(_, id gjson.Result) bool {
		req.FlightPlan = append(req.FlightPlan, id.Int())
		return true
	})
	dep, err := utils.ParseTime(item.Get("departure_time").String())
	if err != nil {
		return models.FlightRecord{}, err
	}
	arr, err := utils.ParseTime(item.Get("arrival_time").String())
	if err != nil {
		return models.FlightRecord{}, err
	}
	if dep == nil || arr == nil {
		return models.FlightRecord{}, fmt.Errorf("%w: departure_time and arrival_time are required", models.ErrInvalidFlight)
	}
	req.DepartureTime, req.ArrivalTime = *dep, *arr
	if err := req.Validate(); err != nil {
		return models.FlightRecord{}, err
	}
	return req.Record(item.Get("id").Int()), nil
}

// WriteSnapshot stores ds as a gob file.
func WriteSnapshot(path string, ds *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot %s: %w", path, err)
	}
	if err := gob.NewEncoder(f).Encode(ds); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return f.Close()
}

func ReadSnapshot(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer f.Close()

	var ds Dataset
	if err := gob.NewDecoder(f).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return &ds, nil
}

// Seed writes ds into repo. Explicit ids are kept so flight plans stay valid.
func Seed(ctx context.Context, repo Repository, ds *Dataset) error {
	for _, wp := range ds.Waypoints {
		if _, err := repo.AddWaypoint(ctx, wp); err != nil {
			return fmt.Errorf("seed waypoint %q: %w", wp.Name, err)
		}
	}
	for _, a := range ds.Airlines {
		if _, err := repo.AddAirline(ctx, a); err != nil {
			return fmt.Errorf("seed airline %q: %w", a.Name, err)
		}
	}
	for _, a := range ds.Aircrafts {
		if _, err := repo.AddAircraft(ctx, a); err != nil {
			return fmt.Errorf("seed aircraft %q: %w", a.Name, err)
		}
	}
	for _, f := range ds.Flights {
		if _, err := repo.AddFlight(ctx, f); err != nil {
			return fmt.Errorf("seed flight %d: %w", f.ID, err)
		}
	}
	return nil
}
