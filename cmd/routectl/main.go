package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mohamedthameursassi/flightroutes/dataset"
	"github.com/mohamedthameursassi/flightroutes/history"
	"github.com/mohamedthameursassi/flightroutes/models"
	"github.com/mohamedthameursassi/flightroutes/routing"
	"github.com/mohamedthameursassi/flightroutes/services"
	"github.com/mohamedthameursassi/flightroutes/store"
	"github.com/mohamedthameursassi/flightroutes/ui"
	"github.com/mohamedthameursassi/flightroutes/utils"
)

var (
	flagData    string
	flagJSON    bool
	flagVerbose bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		ui.Error(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "routectl",
		Short: "Query flight routes from a dataset file",
		Long: `routectl loads waypoints and historical flights from a JSON dataset or a
gob snapshot and answers route questions offline: shortest geodesic path,
most used and most efficient routes, and alternatives to a given flight.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagData, "data", "", "Dataset file (.json or .gob)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log each query to stderr")
	_ = rootCmd.MarkPersistentFlagRequired("data")

	rootCmd.AddCommand(shortestCmd())
	rootCmd.AddCommand(mostUsedCmd())
	rootCmd.AddCommand(mostEfficientCmd())
	rootCmd.AddCommand(alternativesCmd())
	rootCmd.AddCommand(snapshotCmd())
	return rootCmd
}

// openService loads the dataset into an in-memory store.
func openService(ctx context.Context, opts routing.BuildOptions) (*services.FlightService, error) {
	ds, err := dataset.Load(flagData)
	if err != nil {
		return nil, err
	}
	repo := store.NewMemory()
	if err := dataset.Seed(ctx, repo, ds); err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return services.NewFlightService(repo, logger, opts), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortestCmd() *cobra.Command {
	var from, to int64
	var neighbors, maxWaypoints int

	cmd := &cobra.Command{
		Use:   "shortest",
		Short: "Shortest geodesic path between two waypoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := routing.BuildOptions{MaxWaypoints: maxWaypoints, Neighbors: neighbors}
			svc, err := openService(cmd.Context(), opts)
			if err != nil {
				return err
			}
			route, err := svc.ShortestRoute(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flagJSON {
				return printJSON(out, route)
			}
			ui.Header(out, "Shortest route")
			ui.Field(out, "route", ui.Route(route.FPL))
			ui.Field(out, "distance", fmt.Sprintf("%.1f km", route.DistanceKm))
			return nil
		},
	}
	cmd.Flags().Int64Var(&from, "from", 0, "Departure waypoint id")
	cmd.Flags().Int64Var(&to, "to", 0, "Arrival waypoint id")
	cmd.Flags().IntVar(&neighbors, "neighbors", 0, "Connect each waypoint to its k nearest only (0 = complete graph)")
	cmd.Flags().IntVar(&maxWaypoints, "max-waypoints", routing.DefaultMaxWaypoints, "Refuse graphs with more waypoints")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func mostUsedCmd() *cobra.Command {
	var req models.MostUsedRequest

	cmd := &cobra.Command{
		Use:   "most-used",
		Short: "Most flown route between two waypoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := utils.ParseMostUsed(req)
			if err != nil {
				return err
			}
			svc, err := openService(cmd.Context(), routing.DefaultBuildOptions())
			if err != nil {
				return err
			}
			route, err := svc.MostUsedRoute(cmd.Context(), q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flagJSON {
				return printJSON(out, route)
			}
			ui.Header(out, "Most used route")
			ui.Field(out, "route", ui.Route(route.FPL))
			ui.Field(out, "flights", route.UsageCount)
			return nil
		},
	}
	cmd.Flags().Int64Var(&req.Departure, "departure", 0, "Departure waypoint id")
	cmd.Flags().Int64Var(&req.Arrival, "arrival", 0, "Arrival waypoint id")
	cmd.Flags().Int64Var(&req.AirlineID, "airline", 0, "Only flights of this airline")
	cmd.Flags().Int64Var(&req.AircraftID, "aircraft", 0, "Only flights with this aircraft")
	cmd.Flags().StringVar(&req.StartDate, "start", "", "Earliest departure time (inclusive)")
	cmd.Flags().StringVar(&req.EndDate, "end", "", "Latest departure time (inclusive)")
	_ = cmd.MarkFlagRequired("departure")
	_ = cmd.MarkFlagRequired("arrival")
	return cmd
}

func mostEfficientCmd() *cobra.Command {
	var departure, arrival int64
	var byFuel bool

	cmd := &cobra.Command{
		Use:   "most-efficient",
		Short: "Route with the lowest average block time or fuel burn",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd.Context(), routing.DefaultBuildOptions())
			if err != nil {
				return err
			}
			mode := history.ModeFromFlags(!byFuel, byFuel)
			route, err := svc.MostEfficientRoute(cmd.Context(), departure, arrival, mode)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flagJSON {
				return printJSON(out, route)
			}
			ui.Header(out, "Most efficient route")
			ui.Field(out, "route", ui.Route(route.FPL))
			ui.Field(out, "mode", route.Mode)
			ui.Field(out, "average", fmt.Sprintf("%.1f", route.Score))
			return nil
		},
	}
	cmd.Flags().Int64Var(&departure, "departure", 0, "Departure waypoint id")
	cmd.Flags().Int64Var(&arrival, "arrival", 0, "Arrival waypoint id")
	cmd.Flags().BoolVar(&byFuel, "by-fuel", false, "Rank by average fuel instead of block time")
	_ = cmd.MarkFlagRequired("departure")
	_ = cmd.MarkFlagRequired("arrival")
	return cmd
}

func alternativesCmd() *cobra.Command {
	var flightID int64

	cmd := &cobra.Command{
		Use:   "alternatives",
		Short: "Compare other routes flown between a flight's endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService(cmd.Context(), routing.DefaultBuildOptions())
			if err != nil {
				return err
			}
			routes, err := svc.Alternatives(cmd.Context(), flightID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flagJSON {
				return printJSON(out, routes)
			}
			ui.Header(out, fmt.Sprintf("Alternatives to flight %d", flightID))
			if len(routes) == 0 {
				fmt.Fprintln(out, ui.Dim("  no other routes flown"))
			}
			for _, r := range routes {
				ui.Field(out, "route", ui.Route(r.FPL))
				ui.Field(out, "flights", r.Flights)
				ui.Field(out, "time saved", ui.Savings(r.TimeSavings))
				ui.Field(out, "fuel saved", ui.Savings(fmt.Sprint(r.FuelSavings)))
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&flightID, "flight", 0, "Reference flight id")
	_ = cmd.MarkFlagRequired("flight")
	return cmd
}

func snapshotCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Convert the dataset into a gob snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.Load(flagData)
			if err != nil {
				return err
			}
			if err := dataset.WriteSnapshot(output, ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s (%d waypoints, %d flights)\n",
				ui.BoldGreen("✓"), output, len(ds.Waypoints), len(ds.Flights))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "", "Snapshot file to write")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
