package ports

import (
	"context"

	"fleet-route-service/internal/domain"
)

// Port: the trip persistence boundary. The planner validates before calling
// through; the store itself performs no business validation.
type TripStore interface {
	// Persist a trip record and return its identifier.
	CreateTrip(ctx context.Context, req domain.TripRequest) (string, error)

	// Persist a single ordered route point for a trip. Callers treat
	// failures as best-effort: logged, never rolled back.
	AddRoutePoint(ctx context.Context, tripID string, point domain.RoutePoint) error

	// Retrieve a trip's route points ordered by sequence, for resuming an
	// active trip.
	ListRoutePoints(ctx context.Context, tripID string) ([]domain.RoutePoint, error)

	// Record an expense against an active trip.
	RecordExpense(ctx context.Context, tripID string, expense domain.Expense) error

	// Mark a trip completed.
	CompleteTrip(ctx context.Context, tripID string) error
}
