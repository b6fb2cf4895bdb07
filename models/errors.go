package models

import "errors"

// Sentinel errors shared by the engine, the stores and the HTTP layer.
var (
	// ErrUnknownWaypoint is returned when a referenced waypoint id is not registered.
	ErrUnknownWaypoint = errors.New("unknown waypoint")

	// ErrDuplicateKey is returned when an id is registered twice.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidCost is returned for negative or non-finite edge costs.
	ErrInvalidCost = errors.New("invalid edge cost")

	// ErrNotFound means no historical data matched a query. It is a "no results"
	// outcome rather than a failure of the engine.
	ErrNotFound = errors.New("not found")

	// ErrInvalidFilter is returned for conflicting or out-of-range filter parameters.
	ErrInvalidFilter = errors.New("invalid filter")

	// ErrGraphTooLarge is returned when a waypoint set exceeds the configured
	// bound for pairwise edge generation.
	ErrGraphTooLarge = errors.New("waypoint set too large for graph construction")

	// ErrInvalidWaypoint is returned when a waypoint fails validation on creation.
	ErrInvalidWaypoint = errors.New("invalid waypoint")

	// ErrInvalidFlight is returned when a flight record fails validation on ingestion.
	ErrInvalidFlight = errors.New("invalid flight")
)
