package services

import (
	"context"
	"fmt"
	"sync"

	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/geo"
	"fleet-route-service/internal/ports"
)

// Every Nth geometry point becomes a draggable adjustment handle. The first
// and last points are waypoints, never handles.
const handleStride = 20

// RouteComputer keeps the provider-computed path for one planning session.
//
// Recomputes are sequenced by recency: a token is taken synchronously when
// the triggering mutation happens, and a fetch result is applied only if no
// newer token has been issued meanwhile. Late responses from superseded
// fetches are discarded so the map never flashes an outdated route.
//
// On provider failure the previous path is retained and a dismissible
// warning is surfaced instead.
type RouteComputer struct {
	provider ports.RouteProvider

	mu       sync.Mutex
	issued   uint64
	inFlight int
	path     domain.RoutePath
	warning  string
}

func NewRouteComputer(provider ports.RouteProvider) *RouteComputer {
	return &RouteComputer{provider: provider}
}

// Begin registers a new recompute and returns its token. Callers take the
// token synchronously at mutation time, then invoke Run on a goroutine.
func (rc *RouteComputer) Begin() uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.issued++
	return rc.issued
}

// Run performs the recompute registered under token. Sequences shorter than
// two waypoints clear the path without calling the provider. Returns
// whether the result was applied.
func (rc *RouteComputer) Run(ctx context.Context, token uint64, waypoints []domain.Waypoint) bool {
	if len(waypoints) < 2 {
		rc.mu.Lock()
		defer rc.mu.Unlock()
		if token != rc.issued {
			return false
		}
		rc.path = domain.RoutePath{}
		rc.warning = ""
		return true
	}

	coords := make([]domain.Coordinates, 0, len(waypoints))
	for _, wp := range waypoints {
		coords = append(coords, wp.Coordinates)
	}

	rc.mu.Lock()
	rc.inFlight++
	rc.mu.Unlock()

	result, err := rc.provider.FetchRoute(ctx, coords)

	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.inFlight--

	if token != rc.issued {
		// A newer mutation superseded this fetch while it was in flight.
		return false
	}

	if err != nil {
		rc.warning = fmt.Sprintf("route update failed: %v", err)
		return false
	}

	rc.path = domain.RoutePath{
		Geometry:        result.Geometry,
		Handles:         deriveHandles(result.Geometry),
		DistanceMeters:  result.DistanceMeters,
		DurationSeconds: result.DurationSeconds,
	}
	rc.warning = ""
	return true
}

// Path returns the most recently applied route path.
func (rc *RouteComputer) Path() domain.RoutePath {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.path
}

// Warning returns the pending non-fatal routing warning, empty when the
// last recompute succeeded.
func (rc *RouteComputer) Warning() string {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.warning
}

// DismissWarning clears the pending routing warning.
func (rc *RouteComputer) DismissWarning() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.warning = ""
}

// Busy reports whether any route fetch is currently in flight.
func (rc *RouteComputer) Busy() bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.inFlight > 0
}

func deriveHandles(geometry []domain.Coordinates) []domain.RouteHandle {
	var handles []domain.RouteHandle
	for i := handleStride; i < len(geometry)-1; i += handleStride {
		handles = append(handles, domain.RouteHandle{GeometryIndex: i, Position: geometry[i]})
	}
	return handles
}

// InsertPositionForHandle determines where a handle-dragged waypoint
// belongs in the sequence: immediately after the nearest preceding waypoint
// in travel order. The result is always an interior position.
func InsertPositionForHandle(waypoints []domain.Waypoint, geometry []domain.Coordinates, handleGeometryIndex int) int {
	if len(waypoints) < 2 {
		return len(waypoints)
	}

	pos := 1
	for i := 1; i < len(waypoints)-1; i++ {
		if nearestGeometryIndex(geometry, waypoints[i].Coordinates) <= handleGeometryIndex {
			pos = i + 1
		}
	}
	return pos
}

func nearestGeometryIndex(geometry []domain.Coordinates, c domain.Coordinates) int {
	best := 0
	bestDist := -1.0
	for i, g := range geometry {
		d := geo.Distance(g, c)
		if bestDist < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}
