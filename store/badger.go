package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/mohamedthameursassi/flightroutes/history"
	"github.com/mohamedthameursassi/flightroutes/models"
)

const (
	prefixWaypoint = "waypoint/"
	prefixAirline  = "airline/"
	prefixAircraft = "aircraft/"
	prefixFlight   = "flight/"
	// route index: route/<departure>/<arrival>/<flight id>, empty value
	prefixRoute = "route/"
)

// Badger persists rows as JSON values under zero-padded id keys, so that key
// order is id order. Flights are also indexed by departure and arrival.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a store in dir. An empty dir opens an
// in-memory database.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &Badger{db: db}, nil
}

func idKey(prefix string, id int64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefix, id))
}

func routePrefix(departure, arrival int64) []byte {
	return []byte(fmt.Sprintf("%s%020d/%020d/", prefixRoute, departure, arrival))
}

func routeKey(f models.FlightRecord) []byte {
	return append(routePrefix(f.Departure, f.Arrival), []byte(fmt.Sprintf("%020d", f.ID))...)
}

// lastID returns the highest id stored under prefix, 0 if none.
func lastID(txn *badger.Txn, prefix string) (int64, error) {
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	it.Seek(append([]byte(prefix), 0xff))
	if !it.ValidForPrefix([]byte(prefix)) {
		return 0, nil
	}
	id, err := strconv.ParseInt(string(it.Item().Key()[len(prefix):]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt key %q: %w", it.Item().Key(), err)
	}
	return id, nil
}

func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// insert stores v under prefix with the requested id, or the next free id
// when requested is 0. setID receives the final id before v is encoded.
func insert(txn *badger.Txn, prefix, kind string, requested int64, setID func(int64), v any) (int64, error) {
	if err := validateIDs(kind, requested); err != nil {
		return 0, err
	}
	id := requested
	if id == 0 {
		last, err := lastID(txn, prefix)
		if err != nil {
			return 0, err
		}
		id = last + 1
	}
	found, err := exists(txn, idKey(prefix, id))
	if err != nil {
		return 0, err
	}
	if found {
		return 0, fmt.Errorf("%w: %s %d", models.ErrDuplicateKey, kind, id)
	}
	setID(id)
	data, err := json.Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", kind, err)
	}
	return id, txn.Set(idKey(prefix, id), data)
}

func (b *Badger) AddWaypoint(_ context.Context, wp models.Waypoint) (models.Waypoint, error) {
	err := b.db.Update(func(txn *badger.Txn) error {
		_, err := insert(txn, prefixWaypoint, "waypoint", wp.ID, func(id int64) { wp.ID = id }, &wp)
		return err
	})
	if err != nil {
		return models.Waypoint{}, err
	}
	return wp, nil
}

func (b *Badger) AddAirline(_ context.Context, a models.Airline) (models.Airline, error) {
	err := b.db.Update(func(txn *badger.Txn) error {
		_, err := insert(txn, prefixAirline, "airline", a.ID, func(id int64) { a.ID = id }, &a)
		return err
	})
	if err != nil {
		return models.Airline{}, err
	}
	return a, nil
}

func (b *Badger) AddAircraft(_ context.Context, a models.Aircraft) (models.Aircraft, error) {
	err := b.db.Update(func(txn *badger.Txn) error {
		_, err := insert(txn, prefixAircraft, "aircraft", a.ID, func(id int64) { a.ID = id }, &a)
		return err
	})
	if err != nil {
		return models.Aircraft{}, err
	}
	return a, nil
}

// requireRef fails with ErrInvalidFlight when a non-zero reference id is not stored.
func requireRef(txn *badger.Txn, prefix, kind string, id int64) error {
	if id == 0 {
		return nil
	}
	found, err := exists(txn, idKey(prefix, id))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: unknown %s %d", models.ErrInvalidFlight, kind, id)
	}
	return nil
}

func (b *Badger) AddFlight(_ context.Context, f models.FlightRecord) (models.FlightRecord, error) {
	f = cloneFlight(f)
	err := b.db.Update(func(txn *badger.Txn) error {
		for _, id := range append([]int64{f.Departure, f.Arrival}, f.FlightPlan...) {
			found, err := exists(txn, idKey(prefixWaypoint, id))
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%w: %d", models.ErrUnknownWaypoint, id)
			}
		}
		if err := requireRef(txn, prefixAirline, "airline", f.AirlineID); err != nil {
			return err
		}
		if err := requireRef(txn, prefixAircraft, "aircraft", f.AircraftID); err != nil {
			return err
		}
		if _, err := insert(txn, prefixFlight, "flight", f.ID, func(id int64) { f.ID = id }, &f); err != nil {
			return err
		}
		return txn.Set(routeKey(f), []byte{})
	})
	if err != nil {
		return models.FlightRecord{}, err
	}
	return f, nil
}

func (b *Badger) Waypoints(_ context.Context) ([]models.Waypoint, error) {
	var out []models.Waypoint
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixWaypoint)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var wp models.Waypoint
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &wp)
			}); err != nil {
				return fmt.Errorf("decode waypoint: %w", err)
			}
			out = append(out, wp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Waypoint{}
	}
	return out, nil
}

func getFlight(txn *badger.Txn, id int64) (models.FlightRecord, error) {
	var f models.FlightRecord
	item, err := txn.Get(idKey(prefixFlight, id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return f, fmt.Errorf("%w: flight %d", models.ErrNotFound, id)
	}
	if err != nil {
		return f, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &f)
	})
	if err != nil {
		return f, fmt.Errorf("decode flight %d: %w", id, err)
	}
	return f, nil
}

func (b *Badger) Flight(_ context.Context, id int64) (models.FlightRecord, error) {
	var f models.FlightRecord
	err := b.db.View(func(txn *badger.Txn) error {
		var err error
		f, err = getFlight(txn, id)
		return err
	})
	return f, err
}

// Flights walks the route index for q's endpoints and applies the rest of
// q in memory. Index keys end with the zero-padded id, so results come out in
// id order.
func (b *Badger) Flights(_ context.Context, q history.Query) ([]models.FlightRecord, error) {
	pred := q.Predicate()
	prefix := routePrefix(q.Departure, q.Arrival)

	var out []models.FlightRecord
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			id, err := strconv.ParseInt(string(it.Item().Key()[len(prefix):]), 10, 64)
			if err != nil {
				return fmt.Errorf("corrupt route index key %q: %w", it.Item().Key(), err)
			}
			f, err := getFlight(txn, id)
			if err != nil {
				return err
			}
			if pred(f) {
				out = append(out, f)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}
