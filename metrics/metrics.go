// Package metrics exposes the Prometheus collectors of the route service.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mohamedthameursassi/flightroutes/models"
)

var (
	queryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flightroutes_queries_total",
		Help: "Total route queries by operation and result",
	}, []string{"operation", "result"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flightroutes_query_duration_seconds",
		Help:    "Route query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
	}, []string{"operation"})

	graphEdges = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "flightroutes_graph_edges",
		Help:    "Edges built per shortest-path query",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	})
)

// Result classifies err into a low-cardinality label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInvalidFilter),
		errors.Is(err, models.ErrUnknownWaypoint),
		errors.Is(err, models.ErrInvalidFlight),
		errors.Is(err, models.ErrInvalidWaypoint),
		errors.Is(err, models.ErrInvalidCost),
		errors.Is(err, models.ErrDuplicateKey),
		errors.Is(err, models.ErrGraphTooLarge):
		return "invalid"
	default:
		return "error"
	}
}

func ObserveQuery(operation string, start time.Time, err error) {
	queryTotal.WithLabelValues(operation, Result(err)).Inc()
	queryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func ObserveGraph(edges int) {
	graphEdges.Observe(float64(edges))
}
