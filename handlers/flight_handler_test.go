package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedthameursassi/flightroutes/models"
	"github.com/mohamedthameursassi/flightroutes/routing"
	"github.com/mohamedthameursassi/flightroutes/services"
	"github.com/mohamedthameursassi/flightroutes/store"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewFlightService(store.NewMemory(), logger, routing.DefaultBuildOptions())
	r := gin.New()
	NewFlightHandler(svc, logger).RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success   bool             `json:"success"`
	Data      json.RawMessage  `json:"data"`
	Error     *models.ApiError `json:"error"`
	RequestID string           `json:"request_id"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && env.Success {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func seed(t *testing.T, r http.Handler) map[string]int64 {
	t.Helper()
	ids := make(map[string]int64)
	for i, name := range []string{"dep", "wp", "alt", "arr"} {
		w := do(r, http.MethodPost, "/waypoints", models.WaypointCreate{Name: name, Latitude: 45, Longitude: float64(i)})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var wp models.Waypoint
		decode(t, w, &wp)
		ids[name] = wp.ID
	}
	for _, path := range []string{"/airlines", "/airlines", "/aircrafts"} {
		w := do(r, http.MethodPost, path, models.NamedCreate{Name: "ref"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	flights := []struct {
		plan      []string
		airline   int64
		departure string
		arrival   string
		fuel      float64
	}{
		{[]string{"dep", "wp", "arr"}, 1, "2024-01-05T14:30:00Z", "2024-01-05T15:30:00Z", 1000},
		{[]string{"dep", "wp", "arr"}, 1, "2024-01-06T14:30:00Z", "2024-01-06T15:30:00Z", 1000},
		{[]string{"dep", "alt", "arr"}, 2, "2024-01-05T14:30:00Z", "2024-01-05T15:00:00Z", 500},
	}
	for _, f := range flights {
		plan := make([]int64, len(f.plan))
		for i, n := range f.plan {
			plan[i] = ids[n]
		}
		body := map[string]interface{}{
			"departure": ids["dep"], "arrival": ids["arr"],
			"airline_id": f.airline, "aircraft_id": 1, "fuel_consumption": f.fuel,
			"departure_time": f.departure, "arrival_time": f.arrival, "fpl": plan,
		}
		w := do(r, http.MethodPost, "/flights/routes", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	return ids
}

func TestHealth(t *testing.T) {
	r := newRouter(t)
	w := do(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestMostUsed(t *testing.T) {
	r := newRouter(t)
	ids := seed(t, r)

	w := do(r, http.MethodGet, fmt.Sprintf("/flights/most_used?departure=%d&arrival=%d", ids["dep"], ids["arr"]), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var route models.FlightRoute
	env := decode(t, w, &route)
	assert.Equal(t, []string{"dep", "wp", "arr"}, route.FPL)
	assert.Equal(t, 2, route.UsageCount)
	assert.NotEmpty(t, env.RequestID)
	assert.Equal(t, env.RequestID, w.Header().Get("X-Request-ID"))
}

func TestMostUsed_Filters(t *testing.T) {
	r := newRouter(t)
	ids := seed(t, r)

	w := do(r, http.MethodGet, fmt.Sprintf("/flights/most_used?departure=%d&arrival=%d&airline_id=2", ids["dep"], ids["arr"]), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var route models.FlightRoute
	decode(t, w, &route)
	assert.Equal(t, []string{"dep", "alt", "arr"}, route.FPL)
	assert.Equal(t, 1, route.UsageCount)

	target := fmt.Sprintf("/flights/most_used?departure=%d&arrival=%d&start_date=2024-01-06T00:00:00&end_date=2024-01-06T23:59:59",
		ids["dep"], ids["arr"])
	w = do(r, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &route)
	assert.Equal(t, []string{"dep", "wp", "arr"}, route.FPL)
	assert.Equal(t, 1, route.UsageCount)
}

func TestMostUsed_Errors(t *testing.T) {
	r := newRouter(t)
	ids := seed(t, r)

	w := do(r, http.MethodGet, "/flights/most_used?arrival=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, fmt.Sprintf("/flights/most_used?departure=%d&arrival=%d", ids["arr"], ids["dep"]), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decode(t, w, nil)
	assert.False(t, env.Success)
	assert.Equal(t, "not_found", env.Error.Code)

	w = do(r, http.MethodGet, fmt.Sprintf("/flights/most_used?departure=%d&arrival=%d&start_date=bogus", ids["dep"], ids["arr"]), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMostEfficient(t *testing.T) {
	r := newRouter(t)
	ids := seed(t, r)

	w := do(r, http.MethodGet, fmt.Sprintf("/flights/most_efficient?departure=%d&arrival=%d&by_fuel=true", ids["dep"], ids["arr"]), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var route models.EfficientRoute
	decode(t, w, &route)
	assert.Equal(t, []string{"dep", "alt", "arr"}, route.FPL)
	assert.Equal(t, "fuel", route.Mode)

	w = do(r, http.MethodGet, fmt.Sprintf("/flights/most_efficient?departure=%d&arrival=%d&mode=fuel", ids["dep"], ids["arr"]), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &route)
	assert.Equal(t, []string{"dep", "alt", "arr"}, route.FPL)
	assert.Equal(t, 500.0, route.Score)

	w = do(r, http.MethodGet, fmt.Sprintf("/flights/most_efficient?departure=%d&arrival=%d&mode=distance", ids["dep"], ids["arr"]), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAlternatives(t *testing.T) {
	r := newRouter(t)
	seed(t, r)

	w := do(r, http.MethodGet, "/flights/alternatives?flight_id=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var routes []models.AlternativeRoute
	decode(t, w, &routes)
	require.Len(t, routes, 2)
	// The other flight on the same plan arrives a day later.
	assert.Equal(t, []string{"dep", "wp", "arr"}, routes[0].FPL)
	assert.Equal(t, "-24:00:00", routes[0].TimeSavings)
	assert.Equal(t, int64(0), routes[0].FuelSavings)
	assert.Equal(t, []string{"dep", "alt", "arr"}, routes[1].FPL)
	assert.Equal(t, "0:30:00", routes[1].TimeSavings)
	assert.Equal(t, int64(500), routes[1].FuelSavings)

	w = do(r, http.MethodGet, "/flights/alternatives?flight_id=99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestShortest(t *testing.T) {
	r := newRouter(t)
	ids := seed(t, r)

	w := do(r, http.MethodGet, fmt.Sprintf("/flights/shortest?departure=%d&arrival=%d", ids["dep"], ids["arr"]), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var route models.ShortestRoute
	decode(t, w, &route)
	assert.Equal(t, "dep", route.FPL[0])
	assert.Equal(t, "arr", route.FPL[len(route.FPL)-1])
	assert.Greater(t, route.DistanceKm, 0.0)

	w = do(r, http.MethodGet, fmt.Sprintf("/flights/shortest?departure=%d&arrival=999", ids["dep"]), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateFlight_Rejected(t *testing.T) {
	r := newRouter(t)
	ids := seed(t, r)

	body := map[string]interface{}{
		"departure": ids["dep"], "arrival": ids["arr"],
		"departure_time": "2024-01-05T14:30:00Z", "arrival_time": "2024-01-05T13:30:00Z",
		"fpl": []int64{ids["dep"], ids["arr"]},
	}
	w := do(r, http.MethodPost, "/flights/routes", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w, nil)
	assert.Equal(t, "invalid_flight", env.Error.Code)

	w = do(r, http.MethodPost, "/flights/routes", map[string]interface{}{"departure": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateWaypoint_OutOfRange(t *testing.T) {
	r := newRouter(t)
	w := do(r, http.MethodPost, "/waypoints", models.WaypointCreate{Name: "pole", Latitude: 95})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w, nil)
	assert.Equal(t, "invalid_waypoint", env.Error.Code)
}

func TestRequestID_Propagated(t *testing.T) {
	r := newRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/waypoints", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	env := decode(t, w, nil)
	assert.Equal(t, "abc-123", env.RequestID)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		models.ErrNotFound:        http.StatusNotFound,
		models.ErrUnknownWaypoint: http.StatusBadRequest,
		models.ErrGraphTooLarge:   http.StatusUnprocessableEntity,
		models.ErrDuplicateKey:    http.StatusConflict,
		io.EOF:                    http.StatusInternalServerError,
	}
	for err, want := range cases {
		got, _ := StatusFor(fmt.Errorf("wrapped: %w", err))
		assert.Equal(t, want, got, err.Error())
	}
}
