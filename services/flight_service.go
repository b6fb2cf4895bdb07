package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mohamedthameursassi/flightroutes/history"
	"github.com/mohamedthameursassi/flightroutes/metrics"
	"github.com/mohamedthameursassi/flightroutes/models"
	"github.com/mohamedthameursassi/flightroutes/routing"
)

// Repository is the data source the service reads flights and waypoints from.
type Repository interface {
	AddWaypoint(ctx context.Context, wp models.Waypoint) (models.Waypoint, error)
	AddAirline(ctx context.Context, a models.Airline) (models.Airline, error)
	AddAircraft(ctx context.Context, a models.Aircraft) (models.Aircraft, error)
	AddFlight(ctx context.Context, f models.FlightRecord) (models.FlightRecord, error)
	Waypoints(ctx context.Context) ([]models.Waypoint, error)
	Flight(ctx context.Context, id int64) (models.FlightRecord, error)
	Flights(ctx context.Context, q history.Query) ([]models.FlightRecord, error)
}

// FlightService fetches snapshots from the repository, runs the route engine
// on them and resolves the results to waypoint names.
type FlightService struct {
	repo      Repository
	logger    *slog.Logger
	graphOpts routing.BuildOptions
}

func NewFlightService(repo Repository, logger *slog.Logger, graphOpts routing.BuildOptions) *FlightService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlightService{
		repo:      repo,
		logger:    logger.With(slog.String("component", "flight_service")),
		graphOpts: graphOpts,
	}
}

// observe records metrics and a log line for one operation.
func (fs *FlightService) observe(ctx context.Context, operation string, start time.Time, err error, attrs ...slog.Attr) {
	metrics.ObserveQuery(operation, start, err)
	attrs = append(attrs,
		slog.String("operation", operation),
		slog.String("result", metrics.Result(err)),
		slog.Duration("duration", time.Since(start)))
	if err != nil && metrics.Result(err) == "error" {
		attrs = append(attrs, slog.String("error", err.Error()))
		fs.logger.LogAttrs(ctx, slog.LevelError, "route query failed", attrs...)
		return
	}
	fs.logger.LogAttrs(ctx, slog.LevelInfo, "route query", attrs...)
}

func (fs *FlightService) lookup(ctx context.Context) (routing.Waypoints, error) {
	wps, err := fs.repo.Waypoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("load waypoints: %w", err)
	}
	return routing.NewWaypoints(wps), nil
}

func (fs *FlightService) CreateWaypoint(ctx context.Context, req models.WaypointCreate) (models.Waypoint, error) {
	if err := req.Validate(); err != nil {
		return models.Waypoint{}, err
	}
	return fs.repo.AddWaypoint(ctx, models.Waypoint{Name: req.Name, Latitude: req.Latitude, Longitude: req.Longitude})
}

func (fs *FlightService) ListWaypoints(ctx context.Context) ([]models.Waypoint, error) {
	return fs.repo.Waypoints(ctx)
}

func (fs *FlightService) CreateAirline(ctx context.Context, req models.NamedCreate) (models.Airline, error) {
	return fs.repo.AddAirline(ctx, models.Airline{Name: req.Name})
}

func (fs *FlightService) CreateAircraft(ctx context.Context, req models.NamedCreate) (models.Aircraft, error) {
	return fs.repo.AddAircraft(ctx, models.Aircraft{Name: req.Name})
}

// CreateFlight validates and stores a historical flight.
func (fs *FlightService) CreateFlight(ctx context.Context, req models.FlightCreate) (models.FlightRecord, error) {
	start := time.Now()
	flight, err := fs.createFlight(ctx, req)
	fs.observe(ctx, "create_flight", start, err, slog.Int64("departure", req.Departure), slog.Int64("arrival", req.Arrival))
	return flight, err
}

func (fs *FlightService) createFlight(ctx context.Context, req models.FlightCreate) (models.FlightRecord, error) {
	if err := req.Validate(); err != nil {
		return models.FlightRecord{}, err
	}
	return fs.repo.AddFlight(ctx, req.Record(0))
}

// MostUsedRoute returns the most flown route matching q.
func (fs *FlightService) MostUsedRoute(ctx context.Context, q history.Query) (models.FlightRoute, error) {
	start := time.Now()
	route, err := fs.mostUsedRoute(ctx, q)
	fs.observe(ctx, "most_used", start, err, slog.Int64("departure", q.Departure), slog.Int64("arrival", q.Arrival))
	return route, err
}

func (fs *FlightService) mostUsedRoute(ctx context.Context, q history.Query) (models.FlightRoute, error) {
	if err := q.Validate(); err != nil {
		return models.FlightRoute{}, err
	}
	records, err := fs.repo.Flights(ctx, q)
	if err != nil {
		return models.FlightRoute{}, fmt.Errorf("load flights: %w", err)
	}
	ranked, err := history.MostUsed(records, q)
	if err != nil {
		return models.FlightRoute{}, err
	}
	names, err := fs.resolve(ctx, ranked.Key)
	if err != nil {
		return models.FlightRoute{}, err
	}
	return models.FlightRoute{FPL: names, Waypoints: ranked.Key, UsageCount: ranked.Count}, nil
}

// MostEfficientRoute ranks the routes between two waypoints by average
// duration or fuel.
func (fs *FlightService) MostEfficientRoute(ctx context.Context, departure, arrival int64, mode history.EfficiencyMode) (models.EfficientRoute, error) {
	start := time.Now()
	route, err := fs.mostEfficientRoute(ctx, departure, arrival, mode)
	fs.observe(ctx, "most_efficient", start, err,
		slog.Int64("departure", departure), slog.Int64("arrival", arrival), slog.String("mode", mode.String()))
	return route, err
}

func (fs *FlightService) mostEfficientRoute(ctx context.Context, departure, arrival int64, mode history.EfficiencyMode) (models.EfficientRoute, error) {
	q := history.RouteQuery(departure, arrival)
	if err := q.Validate(); err != nil {
		return models.EfficientRoute{}, err
	}
	records, err := fs.repo.Flights(ctx, q)
	if err != nil {
		return models.EfficientRoute{}, fmt.Errorf("load flights: %w", err)
	}
	ranked, err := history.MostEfficient(records, departure, arrival, mode)
	if err != nil {
		return models.EfficientRoute{}, err
	}
	names, err := fs.resolve(ctx, ranked.Key)
	if err != nil {
		return models.EfficientRoute{}, err
	}
	return models.EfficientRoute{FPL: names, Waypoints: ranked.Key, Mode: mode.String(), Score: ranked.Metric}, nil
}

// Alternatives compares the other routes flown between a flight's endpoints
// against that flight.
func (fs *FlightService) Alternatives(ctx context.Context, flightID int64) ([]models.AlternativeRoute, error) {
	start := time.Now()
	routes, err := fs.alternatives(ctx, flightID)
	fs.observe(ctx, "alternatives", start, err, slog.Int64("flight_id", flightID))
	return routes, err
}

func (fs *FlightService) alternatives(ctx context.Context, flightID int64) ([]models.AlternativeRoute, error) {
	reference, err := fs.repo.Flight(ctx, flightID)
	if err != nil {
		return nil, err
	}
	q := history.RouteQuery(reference.Departure, reference.Arrival)
	q.ExcludeFlightID = reference.ID
	records, err := fs.repo.Flights(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load flights: %w", err)
	}
	entries, err := history.Alternatives(records, reference)
	if err != nil {
		return nil, err
	}

	lookup, err := fs.lookup(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.AlternativeRoute, 0, len(entries))
	for _, e := range entries {
		names, err := routing.ResolveNames(lookup, e.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, models.AlternativeRoute{
			FPL:         names,
			Waypoints:   e.Key,
			Flights:     e.Flights,
			TimeSavings: routing.FormatDuration(e.TimeSavings),
			FuelSavings: e.FuelSavings,
		})
	}
	return out, nil
}

// ShortestRoute builds a geodesic graph over every stored waypoint and solves
// it. An unreachable arrival yields empty lists rather than an error.
func (fs *FlightService) ShortestRoute(ctx context.Context, departure, arrival int64) (models.ShortestRoute, error) {
	start := time.Now()
	route, err := fs.shortestRoute(ctx, departure, arrival)
	fs.observe(ctx, "shortest", start, err, slog.Int64("departure", departure), slog.Int64("arrival", arrival))
	return route, err
}

func (fs *FlightService) shortestRoute(ctx context.Context, departure, arrival int64) (models.ShortestRoute, error) {
	wps, err := fs.repo.Waypoints(ctx)
	if err != nil {
		return models.ShortestRoute{}, fmt.Errorf("load waypoints: %w", err)
	}
	g, err := routing.BuildGraph(wps, fs.graphOpts)
	if err != nil {
		return models.ShortestRoute{}, err
	}
	metrics.ObserveGraph(g.EdgeCount())

	path, err := routing.ShortestPath(g, departure, arrival)
	if err != nil {
		return models.ShortestRoute{}, err
	}
	names, err := routing.ResolveNames(g, path.Waypoints)
	if err != nil {
		return models.ShortestRoute{}, err
	}
	return models.ShortestRoute{FPL: names, Waypoints: path.Waypoints, DistanceKm: path.Cost}, nil
}

func (fs *FlightService) resolve(ctx context.Context, key models.RouteKey) ([]string, error) {
	lookup, err := fs.lookup(ctx)
	if err != nil {
		return nil, err
	}
	return routing.ResolveNames(lookup, key)
}
