package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedthameursassi/flightroutes/history"
	"github.com/mohamedthameursassi/flightroutes/models"
)

type repository interface {
	AddWaypoint(ctx context.Context, wp models.Waypoint) (models.Waypoint, error)
	AddAirline(ctx context.Context, a models.Airline) (models.Airline, error)
	AddAircraft(ctx context.Context, a models.Aircraft) (models.Aircraft, error)
	AddFlight(ctx context.Context, f models.FlightRecord) (models.FlightRecord, error)
	Waypoints(ctx context.Context) ([]models.Waypoint, error)
	Flight(ctx context.Context, id int64) (models.FlightRecord, error)
	Flights(ctx context.Context, q history.Query) ([]models.FlightRecord, error)
	Close() error
}

var departed = time.Date(2024, 1, 5, 14, 30, 0, 0, time.UTC)

// exerciseRepository runs the contract every store must honor.
func exerciseRepository(t *testing.T, repo repository) {
	ctx := context.Background()

	t.Run("waypoints get sequential ids", func(t *testing.T) {
		a, err := repo.AddWaypoint(ctx, models.Waypoint{Name: "dep", Latitude: 1, Longitude: 2})
		require.NoError(t, err)
		b, err := repo.AddWaypoint(ctx, models.Waypoint{Name: "wp"})
		require.NoError(t, err)
		assert.Equal(t, a.ID+1, b.ID)
	})

	t.Run("explicit ids and duplicates", func(t *testing.T) {
		wp, err := repo.AddWaypoint(ctx, models.Waypoint{ID: 10, Name: "arr"})
		require.NoError(t, err)
		assert.Equal(t, int64(10), wp.ID)

		_, err = repo.AddWaypoint(ctx, models.Waypoint{ID: 10, Name: "again"})
		assert.True(t, errors.Is(err, models.ErrDuplicateKey), "got %v", err)

		next, err := repo.AddWaypoint(ctx, models.Waypoint{Name: "after"})
		require.NoError(t, err)
		assert.Equal(t, int64(11), next.ID)
	})

	t.Run("waypoints listed by id", func(t *testing.T) {
		wps, err := repo.Waypoints(ctx)
		require.NoError(t, err)
		require.Len(t, wps, 4)
		assert.Equal(t, "dep", wps[0].Name)
		assert.Equal(t, 1.0, wps[0].Latitude)
		assert.Equal(t, "after", wps[3].Name)
	})

	t.Run("reference data", func(t *testing.T) {
		airline, err := repo.AddAirline(ctx, models.Airline{Name: "Test Airline"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), airline.ID)
		aircraft, err := repo.AddAircraft(ctx, models.Aircraft{Name: "A320"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), aircraft.ID)
	})

	t.Run("flights", func(t *testing.T) {
		f := models.FlightRecord{
			Departure: 1, Arrival: 10, AirlineID: 1, AircraftID: 1,
			DepartureTime: departed, ArrivalTime: departed.Add(time.Hour),
			FuelConsumption: 500, FlightPlan: models.RouteKey{1, 2, 10},
		}
		first, err := repo.AddFlight(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(1), first.ID)

		f.FlightPlan = models.RouteKey{1, 10}
		f.DepartureTime = departed.Add(24 * time.Hour)
		f.ArrivalTime = f.DepartureTime.Add(time.Hour)
		second, err := repo.AddFlight(ctx, f)
		require.NoError(t, err)

		got, err := repo.Flight(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, models.RouteKey{1, 2, 10}, got.FlightPlan)
		assert.True(t, got.DepartureTime.Equal(departed))
		assert.Equal(t, 500.0, got.FuelConsumption)

		_, err = repo.Flight(ctx, 999)
		assert.True(t, errors.Is(err, models.ErrNotFound))

		all, err := repo.Flights(ctx, history.RouteQuery(1, 10))
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, first.ID, all[0].ID)
		assert.Equal(t, second.ID, all[1].ID)

		end := departed.Add(time.Hour)
		q := history.RouteQuery(1, 10)
		q.End = &end
		early, err := repo.Flights(ctx, q)
		require.NoError(t, err)
		require.Len(t, early, 1)
		assert.Equal(t, first.ID, early[0].ID)

		none, err := repo.Flights(ctx, history.RouteQuery(10, 1))
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("flight with unknown waypoint", func(t *testing.T) {
		_, err := repo.AddFlight(ctx, models.FlightRecord{
			Departure: 1, Arrival: 10,
			DepartureTime: departed, ArrivalTime: departed,
			FlightPlan: models.RouteKey{1, 77, 10},
		})
		assert.True(t, errors.Is(err, models.ErrUnknownWaypoint), "got %v", err)
	})

	t.Run("flight with unknown airline or aircraft", func(t *testing.T) {
		f := models.FlightRecord{
			Departure: 1, Arrival: 10, AirlineID: 42, AircraftID: 1,
			DepartureTime: departed, ArrivalTime: departed,
			FlightPlan: models.RouteKey{1, 10},
		}
		_, err := repo.AddFlight(ctx, f)
		assert.True(t, errors.Is(err, models.ErrInvalidFlight), "got %v", err)

		f.AirlineID, f.AircraftID = 1, 42
		_, err = repo.AddFlight(ctx, f)
		assert.True(t, errors.Is(err, models.ErrInvalidFlight), "got %v", err)

		f.AirlineID, f.AircraftID = 0, 0
		_, err = repo.AddFlight(ctx, f)
		assert.NoError(t, err)
	})
}

func TestMemory(t *testing.T) {
	repo := NewMemory()
	defer repo.Close()
	exerciseRepository(t, repo)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	_, _ = repo.AddWaypoint(ctx, models.Waypoint{ID: 1})
	_, _ = repo.AddWaypoint(ctx, models.Waypoint{ID: 2})
	f, err := repo.AddFlight(ctx, models.FlightRecord{Departure: 1, Arrival: 2, FlightPlan: models.RouteKey{1, 2}})
	require.NoError(t, err)

	f.FlightPlan[0] = 99
	stored, err := repo.Flight(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RouteKey{1, 2}, stored.FlightPlan)
}

func TestBadger(t *testing.T) {
	repo, err := OpenBadger("")
	require.NoError(t, err)
	defer repo.Close()
	exerciseRepository(t, repo)
}

func TestBadger_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := OpenBadger(dir)
	require.NoError(t, err)
	_, err = repo.AddWaypoint(ctx, models.Waypoint{Name: "persisted"})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = OpenBadger(dir)
	require.NoError(t, err)
	defer repo.Close()
	wps, err := repo.Waypoints(ctx)
	require.NoError(t, err)
	require.Len(t, wps, 1)
	assert.Equal(t, "persisted", wps[0].Name)
}

// TestPostgres needs a disposable database; it is skipped unless
// FLIGHTROUTES_TEST_DSN is set.
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("FLIGHTROUTES_TEST_DSN")
	if dsn == "" {
		t.Skip("FLIGHTROUTES_TEST_DSN not set")
	}
	ctx := context.Background()
	repo, err := NewPostgres(ctx, dsn)
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.db.ExecContext(ctx, `DROP TABLE IF EXISTS flights, waypoints, airlines, aircrafts`)
	require.NoError(t, err)
	require.NoError(t, repo.EnsureSchema(ctx))
	exerciseRepository(t, repo)
}

func TestWhereClause(t *testing.T) {
	start := departed
	q := history.Query{Departure: 1, Arrival: 2, AirlineID: 3, Start: &start, ExcludeFlightID: 4}

	where, args, err := whereClause(q.Conditions())
	require.NoError(t, err)
	assert.Equal(t, "WHERE departure = $1 AND arrival = $2 AND airline_id = $3 AND departure_time >= $4 AND id != $5", where)
	assert.Equal(t, []any{int64(1), int64(2), int64(3), departed, int64(4)}, args)

	_, _, err = whereClause([]history.Condition{{Field: "name; DROP TABLE flights", Op: "="}})
	assert.True(t, errors.Is(err, models.ErrInvalidFilter))
}
