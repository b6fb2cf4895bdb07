package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohamedthameursassi/flightroutes/models"
	"github.com/mohamedthameursassi/flightroutes/services"
	"github.com/mohamedthameursassi/flightroutes/utils"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

type FlightHandler struct {
	flightService *services.FlightService
	logger        *slog.Logger
}

func NewFlightHandler(flightService *services.FlightService, logger *slog.Logger) *FlightHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FlightHandler{flightService: flightService, logger: logger}
}

func (h *FlightHandler) RegisterRoutes(router gin.IRouter) {
	router.Use(RequestID())

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/waypoints", h.CreateWaypoint)
	router.GET("/waypoints", h.ListWaypoints)
	router.POST("/airlines", h.CreateAirline)
	router.POST("/aircrafts", h.CreateAircraft)

	flights := router.Group("/flights")
	flights.POST("/routes", h.CreateFlight)
	flights.GET("/most_used", h.MostUsed)
	flights.GET("/most_efficient", h.MostEfficient)
	flights.GET("/alternatives", h.Alternatives)
	flights.GET("/shortest", h.Shortest)
}

// RequestID reuses the caller's X-Request-ID or mints a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrUnknownWaypoint):
		return http.StatusBadRequest, "unknown_waypoint"
	case errors.Is(err, models.ErrInvalidFilter):
		return http.StatusBadRequest, "invalid_filter"
	case errors.Is(err, models.ErrInvalidWaypoint):
		return http.StatusBadRequest, "invalid_waypoint"
	case errors.Is(err, models.ErrInvalidFlight):
		return http.StatusBadRequest, "invalid_flight"
	case errors.Is(err, models.ErrInvalidCost):
		return http.StatusBadRequest, "invalid_cost"
	case errors.Is(err, models.ErrGraphTooLarge):
		return http.StatusUnprocessableEntity, "graph_too_large"
	case errors.Is(err, models.ErrDuplicateKey):
		return http.StatusConflict, "duplicate_key"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (h *FlightHandler) ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, models.ApiResponse{Success: true, Data: data, RequestID: c.GetString(requestIDKey)})
}

func (h *FlightHandler) fail(c *gin.Context, err error) {
	status, code := StatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.FullPath()),
			slog.String("request_id", c.GetString(requestIDKey)),
			slog.String("error", err.Error()))
		message = "internal server error"
	}
	c.JSON(status, models.ApiResponse{
		Error:     &models.ApiError{Code: code, Message: message},
		RequestID: c.GetString(requestIDKey),
	})
}

func (h *FlightHandler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ApiResponse{
		Error:     &models.ApiError{Code: "invalid_request", Message: "Invalid request", Details: err.Error()},
		RequestID: c.GetString(requestIDKey),
	})
}

func (h *FlightHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *FlightHandler) CreateWaypoint(c *gin.Context) {
	var req models.WaypointCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	wp, err := h.flightService.CreateWaypoint(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, wp)
}

func (h *FlightHandler) ListWaypoints(c *gin.Context) {
	wps, err := h.flightService.ListWaypoints(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, wps)
}

func (h *FlightHandler) CreateAirline(c *gin.Context) {
	var req models.NamedCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	airline, err := h.flightService.CreateAirline(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, airline)
}

func (h *FlightHandler) CreateAircraft(c *gin.Context) {
	var req models.NamedCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	aircraft, err := h.flightService.CreateAircraft(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, aircraft)
}

func (h *FlightHandler) CreateFlight(c *gin.Context) {
	var req models.FlightCreate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	flight, err := h.flightService.CreateFlight(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusCreated, flight)
}

func (h *FlightHandler) MostUsed(c *gin.Context) {
	var req models.MostUsedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	q, err := utils.ParseMostUsed(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	route, err := h.flightService.MostUsedRoute(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, route)
}

func (h *FlightHandler) MostEfficient(c *gin.Context) {
	var req models.MostEfficientRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	mode, err := utils.ParseEfficiency(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	route, err := h.flightService.MostEfficientRoute(c.Request.Context(), req.Departure, req.Arrival, mode)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, route)
}

func (h *FlightHandler) Alternatives(c *gin.Context) {
	var req models.AlternativesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	routes, err := h.flightService.Alternatives(c.Request.Context(), req.FlightID)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, routes)
}

func (h *FlightHandler) Shortest(c *gin.Context) {
	var req models.ShortestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	route, err := h.flightService.ShortestRoute(c.Request.Context(), req.Departure, req.Arrival)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.ok(c, http.StatusOK, route)
}
