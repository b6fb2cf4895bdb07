// Package config loads server settings from a .env file, the environment and
// a secrets directory, in increasing order of precedence.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mohamedthameursassi/flightroutes/routing"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreBadger   = "badger"
)

type Settings struct {
	HTTPAddr    string
	Store       string
	DBHost      string
	DBName      string
	DBUser      string
	DBPassword  string
	BadgerDir   string
	SeedFile    string
	CORSOrigins []string
	Graph       routing.BuildOptions
	LogLevel    string
	LogFormat   string
}

// DSN is the postgres connection string for the pgx driver.
func (s Settings) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(s.DBUser, s.DBPassword),
		Host:   s.DBHost,
		Path:   "/" + s.DBName,
	}
	return u.String()
}

type source func(key string) (string, bool)

// Load reads .env (missing is fine), then resolves every key.
func Load(envFiles ...string) (Settings, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return Settings{}, fmt.Errorf("load env file: %w", err)
	}
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	return resolve(lookup(secretsDir))
}

// lookup prefers a file named after the key in secretsDir over the environment.
func lookup(secretsDir string) source {
	return func(key string) (string, bool) {
		if raw, err := os.ReadFile(filepath.Join(secretsDir, strings.ToLower(key))); err == nil {
			return strings.TrimSpace(string(raw)), true
		}
		if raw, err := os.ReadFile(filepath.Join(secretsDir, key)); err == nil {
			return strings.TrimSpace(string(raw)), true
		}
		return os.LookupEnv(key)
	}
}

func resolve(get source) (Settings, error) {
	str := func(key, def string) string {
		if v, ok := get(key); ok && v != "" {
			return v
		}
		return def
	}
	num := func(key string, def int) (int, error) {
		v, ok := get(key)
		if !ok || v == "" {
			return def, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return n, nil
	}

	s := Settings{
		HTTPAddr:   str("HTTP_ADDR", ":8080"),
		Store:      strings.ToLower(str("STORE", StoreMemory)),
		DBHost:     str("DB_HOST", "db"),
		DBName:     str("DB_NAME", "postgres"),
		DBUser:     str("DB_USER", "flightsuser"),
		DBPassword: str("DB_PASSWORD", "flightsuser"),
		BadgerDir:  str("BADGER_DIR", filepath.Join("data", "badger")),
		SeedFile:   str("SEED_FILE", ""),
		LogLevel:   str("LOG_LEVEL", "info"),
		LogFormat:  str("LOG_FORMAT", "text"),
	}
	for _, origin := range strings.Split(str("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			s.CORSOrigins = append(s.CORSOrigins, origin)
		}
	}

	var err error
	if s.Graph.MaxWaypoints, err = num("GRAPH_MAX_WAYPOINTS", routing.DefaultMaxWaypoints); err != nil {
		return Settings{}, err
	}
	if s.Graph.Neighbors, err = num("GRAPH_NEIGHBORS", 0); err != nil {
		return Settings{}, err
	}

	switch s.Store {
	case StoreMemory, StorePostgres, StoreBadger:
	default:
		return Settings{}, fmt.Errorf("STORE: unsupported backend %q", s.Store)
	}
	return s, nil
}

// AllowAllOrigins reports whether CORS is open to every origin.
func (s Settings) AllowAllOrigins() bool {
	for _, o := range s.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return len(s.CORSOrigins) == 0
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (s Settings) NewLogger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(s.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
