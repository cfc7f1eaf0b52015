package ports

import (
	"context"

	"fleet-route-service/internal/domain"
)

// Path geometry and travel metrics returned by a routing provider.
type RouteResult struct {
	Geometry        []domain.Coordinates
	DistanceMeters  int
	DurationSeconds int
}

// Contract for computing a drivable path through an ordered waypoint list.
type RouteProvider interface {
	// Return the path through the given coordinates in travel order.
	// Callers must supply at least two coordinates. Route-not-found and
	// transport failures are both reported as errors.
	FetchRoute(ctx context.Context, coords []domain.Coordinates) (RouteResult, error)
}
