package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mohamedthameursassi/flightroutes/history"
	"github.com/mohamedthameursassi/flightroutes/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS airlines (
    id   BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS aircrafts (
    id   BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS waypoints (
    id        BIGSERIAL PRIMARY KEY,
    name      TEXT NOT NULL,
    latitude  DOUBLE PRECISION NOT NULL,
    longitude DOUBLE PRECISION NOT NULL
);
CREATE TABLE IF NOT EXISTS flights (
    id               BIGSERIAL PRIMARY KEY,
    airline_id       BIGINT REFERENCES airlines (id),
    aircraft_id      BIGINT REFERENCES aircrafts (id),
    departure        BIGINT NOT NULL REFERENCES waypoints (id),
    arrival          BIGINT NOT NULL REFERENCES waypoints (id),
    departure_time   TIMESTAMPTZ NOT NULL,
    arrival_time     TIMESTAMPTZ NOT NULL,
    fuel_consumption DOUBLE PRECISION NOT NULL,
    fpl              BIGINT[] NOT NULL
);
CREATE INDEX IF NOT EXISTS flights_route_idx ON flights (departure, arrival);
`

// Postgres stores rows in PostgreSQL through the pgx database/sql driver.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// EnsureSchema creates the tables if they do not exist yet.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// translate maps constraint violations onto the shared sentinel errors.
func translate(err error, kind string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s (%s)", models.ErrDuplicateKey, kind, pgErr.Detail)
		case "23503":
			if strings.Contains(pgErr.ConstraintName, "airline") || strings.Contains(pgErr.ConstraintName, "aircraft") {
				return fmt.Errorf("%w: %s (%s)", models.ErrInvalidFlight, kind, pgErr.Detail)
			}
			return fmt.Errorf("%w: %s (%s)", models.ErrUnknownWaypoint, kind, pgErr.Detail)
		}
	}
	return err
}

func nullIfZero(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

// insertRow inserts into table, with an explicit id when requested is set.
// The serial sequence is moved past explicit ids so later inserts do not
// collide with them.
func (p *Postgres) insertRow(ctx context.Context, table, kind string, requested int64, cols []string, args []any) (int64, error) {
	if err := validateIDs(kind, requested); err != nil {
		return 0, err
	}
	if requested != 0 {
		cols = append([]string{"id"}, cols...)
		args = append([]any{requested}, args...)
	}
	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, translate(err, kind)
	}
	if requested != 0 {
		bump := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), GREATEST((SELECT MAX(id) FROM %s), 1))`, table, table)
		if _, err := tx.ExecContext(ctx, bump); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit()
}

func (p *Postgres) AddWaypoint(ctx context.Context, wp models.Waypoint) (models.Waypoint, error) {
	id, err := p.insertRow(ctx, "waypoints", "waypoint", wp.ID,
		[]string{"name", "latitude", "longitude"},
		[]any{wp.Name, wp.Latitude, wp.Longitude})
	if err != nil {
		return models.Waypoint{}, err
	}
	wp.ID = id
	return wp, nil
}

func (p *Postgres) AddAirline(ctx context.Context, a models.Airline) (models.Airline, error) {
	id, err := p.insertRow(ctx, "airlines", "airline", a.ID, []string{"name"}, []any{a.Name})
	if err != nil {
		return models.Airline{}, err
	}
	a.ID = id
	return a, nil
}

func (p *Postgres) AddAircraft(ctx context.Context, a models.Aircraft) (models.Aircraft, error) {
	id, err := p.insertRow(ctx, "aircrafts", "aircraft", a.ID, []string{"name"}, []any{a.Name})
	if err != nil {
		return models.Aircraft{}, err
	}
	a.ID = id
	return a, nil
}

// AddFlight stores f. The foreign keys cover the endpoints; the flight plan
// ids are checked against the waypoints table first.
func (p *Postgres) AddFlight(ctx context.Context, f models.FlightRecord) (models.FlightRecord, error) {
	var missing sql.NullInt64
	err := p.db.QueryRowContext(ctx,
		`SELECT MIN(wp) FROM unnest($1::bigint[]) AS wp WHERE wp NOT IN (SELECT id FROM waypoints)`,
		[]int64(f.FlightPlan)).Scan(&missing)
	if err != nil {
		return models.FlightRecord{}, err
	}
	if missing.Valid {
		return models.FlightRecord{}, fmt.Errorf("%w: %d", models.ErrUnknownWaypoint, missing.Int64)
	}

	id, err := p.insertRow(ctx, "flights", "flight", f.ID,
		[]string{"airline_id", "aircraft_id", "departure", "arrival", "departure_time", "arrival_time", "fuel_consumption", "fpl"},
		[]any{nullIfZero(f.AirlineID), nullIfZero(f.AircraftID), f.Departure, f.Arrival,
			f.DepartureTime.UTC(), f.ArrivalTime.UTC(), f.FuelConsumption, []int64(f.FlightPlan)})
	if err != nil {
		return models.FlightRecord{}, err
	}
	f = cloneFlight(f)
	f.ID = id
	return f, nil
}

func (p *Postgres) Waypoints(ctx context.Context) ([]models.Waypoint, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, name, latitude, longitude FROM waypoints ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Waypoint{}
	for rows.Next() {
		var wp models.Waypoint
		if err := rows.Scan(&wp.ID, &wp.Name, &wp.Latitude, &wp.Longitude); err != nil {
			return nil, err
		}
		out = append(out, wp)
	}
	return out, rows.Err()
}

const flightColumns = `id, COALESCE(airline_id, 0), COALESCE(aircraft_id, 0), departure, arrival,
       departure_time, arrival_time, fuel_consumption, fpl`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanFlight reads one flights row. types decodes the fpl array; a pgtype.Map
// is not shared between goroutines, so each query brings its own.
func scanFlight(types *pgtype.Map, row rowScanner) (models.FlightRecord, error) {
	var (
		f   models.FlightRecord
		fpl []int64
		dep time.Time
		arr time.Time
	)
	err := row.Scan(&f.ID, &f.AirlineID, &f.AircraftID, &f.Departure, &f.Arrival,
		&dep, &arr, &f.FuelConsumption, types.SQLScanner(&fpl))
	if err != nil {
		return f, err
	}
	f.DepartureTime, f.ArrivalTime = dep.UTC(), arr.UTC()
	f.FlightPlan = models.RouteKey(fpl)
	return f, nil
}

func (p *Postgres) Flight(ctx context.Context, id int64) (models.FlightRecord, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+flightColumns+` FROM flights WHERE id = $1`, id)
	f, err := scanFlight(pgtype.NewMap(), row)
	if errors.Is(err, sql.ErrNoRows) {
		return f, fmt.Errorf("%w: flight %d", models.ErrNotFound, id)
	}
	return f, err
}

// filterColumns whitelists the columns a history.Condition may reference.
var filterColumns = map[string]bool{
	"id": true, "departure": true, "arrival": true,
	"airline_id": true, "aircraft_id": true, "departure_time": true,
}

var filterOps = map[string]bool{"=": true, "!=": true, ">=": true, "<=": true}

// whereClause renders conditions as a parameterized WHERE clause. Values are
// always bound as arguments, never spliced into the SQL text.
func whereClause(conds []history.Condition) (string, []any, error) {
	parts := make([]string, 0, len(conds))
	args := make([]any, 0, len(conds))
	for _, c := range conds {
		if !filterColumns[c.Field] || !filterOps[c.Op] {
			return "", nil, fmt.Errorf("%w: unsupported condition %s %s", models.ErrInvalidFilter, c.Field, c.Op)
		}
		args = append(args, c.Value)
		parts = append(parts, fmt.Sprintf("%s %s $%d", c.Field, c.Op, len(args)))
	}
	if len(parts) == 0 {
		return "", args, nil
	}
	return "WHERE " + strings.Join(parts, " AND "), args, nil
}

func (p *Postgres) Flights(ctx context.Context, q history.Query) ([]models.FlightRecord, error) {
	where, args, err := whereClause(q.Conditions())
	if err != nil {
		return nil, err
	}
	rows, err := p.db.QueryContext(ctx, `SELECT `+flightColumns+` FROM flights `+where+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := pgtype.NewMap()
	var out []models.FlightRecord
	for rows.Next() {
		f, err := scanFlight(types, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
