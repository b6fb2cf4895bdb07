package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mohamedthameursassi/flightroutes/config"
	"github.com/mohamedthameursassi/flightroutes/dataset"
	"github.com/mohamedthameursassi/flightroutes/handlers"
	"github.com/mohamedthameursassi/flightroutes/services"
	"github.com/mohamedthameursassi/flightroutes/store"
)

// repository is what the server needs from a storage backend.
type repository interface {
	services.Repository
	Close() error
}

func openStore(ctx context.Context, settings config.Settings, logger *slog.Logger) (repository, error) {
	switch settings.Store {
	case config.StorePostgres:
		pg, err := store.NewPostgres(ctx, settings.DSN())
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		logger.Info("using postgres store", slog.String("host", settings.DBHost), slog.String("db", settings.DBName))
		return pg, nil
	case config.StoreBadger:
		bs, err := store.OpenBadger(settings.BadgerDir)
		if err != nil {
			return nil, err
		}
		logger.Info("using badger store", slog.String("dir", settings.BadgerDir))
		return bs, nil
	default:
		logger.Info("using in-memory store")
		return store.NewMemory(), nil
	}
}

func newRouter(settings config.Settings, handler *handlers.FlightHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if settings.AllowAllOrigins() {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = settings.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	r.Use(cors.New(corsConfig))

	handler.RegisterRoutes(r)
	return r
}

func run() error {
	settings, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := settings.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openStore(ctx, settings, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()

	if settings.SeedFile != "" {
		ds, err := dataset.Load(settings.SeedFile)
		if err != nil {
			return err
		}
		if err := dataset.Seed(ctx, repo, ds); err != nil {
			return err
		}
		logger.Info("seeded dataset",
			slog.String("file", settings.SeedFile),
			slog.Int("waypoints", len(ds.Waypoints)),
			slog.Int("flights", len(ds.Flights)))
	}

	svc := services.NewFlightService(repo, logger, settings.Graph)
	srv := &http.Server{
		Addr:              settings.HTTPAddr,
		Handler:           newRouter(settings, handlers.NewFlightHandler(svc, logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("flight routes server starting", slog.String("addr", settings.HTTPAddr), slog.String("store", settings.Store))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
