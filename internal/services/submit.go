package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/ports"
)

// ValidationError marks failures caught before any store call. Handlers
// surface these to the user instead of attempting the submission.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// IsValidation reports whether err is a pre-submission validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Everything the requester must have selected before a trip can be
// submitted.
type SubmitInput struct {
	RequesterID string
	DriverID    string
	VehicleID   string
	Reason      string
	StartTime   time.Time
}

// SubmitTrip validates the planner state, persists the trip record, then
// writes each waypoint as an ordered route point. Route-point writes are
// best-effort: a failed write is logged and the remaining points are still
// attempted; the trip record is never rolled back. Returns the trip id.
func SubmitTrip(
	ctx context.Context,
	store ports.TripStore,
	input SubmitInput,
	waypoints []domain.Waypoint,
	totalKm float64,
) (string, error) {
	if len(waypoints) < 2 {
		return "", &ValidationError{Msg: "add at least a start and one destination"}
	}
	if input.RequesterID == "" {
		return "", &ValidationError{Msg: "requester is required"}
	}
	if input.DriverID == "" {
		return "", &ValidationError{Msg: "select a driver"}
	}
	if input.VehicleID == "" {
		return "", &ValidationError{Msg: "select a vehicle"}
	}
	if strings.TrimSpace(input.Reason) == "" {
		return "", &ValidationError{Msg: "provide a reason for the trip"}
	}
	if input.StartTime.IsZero() {
		return "", &ValidationError{Msg: "select a start date and time"}
	}

	req := domain.TripRequest{
		RequesterID: input.RequesterID,
		DriverID:    input.DriverID,
		VehicleID:   input.VehicleID,
		Reason:      strings.TrimSpace(input.Reason),
		StartTime:   input.StartTime,
		Waypoints:   waypoints,
		// The persisted figure is the haversine estimate, rounded the way
		// the trip form displays it.
		TotalKm: math.Round(totalKm*100) / 100,
	}

	tripID, err := store.CreateTrip(ctx, req)
	if err != nil {
		return "", fmt.Errorf("submit trip: create: %w", err)
	}

	for i, wp := range waypoints {
		point := domain.RoutePoint{
			Seq:  i + 1,
			Name: wp.Name,
			Lat:  wp.Lat,
			Lng:  wp.Lng,
		}
		if err := store.AddRoutePoint(ctx, tripID, point); err != nil {
			// Accepted inconsistency: the trip record stands even when
			// some route points fail to persist.
			log.Printf("failed to add route point trip=%s seq=%d err=%v", tripID, point.Seq, err)
		}
	}

	return tripID, nil
}

// CompleteTrip marks an active trip completed. Completion is refused while
// any recorded expense has a non-positive amount.
func CompleteTrip(ctx context.Context, store ports.TripStore, tripID string, expenses []domain.Expense) error {
	for _, e := range expenses {
		if e.Amount <= 0 {
			return &ValidationError{Msg: fmt.Sprintf("expense %q must have a positive amount", e.Reason)}
		}
	}

	for _, e := range expenses {
		if err := store.RecordExpense(ctx, tripID, e); err != nil {
			return fmt.Errorf("complete trip: record expense: %w", err)
		}
	}

	if err := store.CompleteTrip(ctx, tripID); err != nil {
		return fmt.Errorf("complete trip: %w", err)
	}

	return nil
}
