package domain

// A synthetic adjustment point derived from route geometry. Dragging a
// handle inserts a new waypoint; it never moves an existing one.
type RouteHandle struct {
	GeometryIndex int
	Position      Coordinates
}

// Provider-computed path through the current waypoint list, in travel order.
// Derived data only: fully recomputed whenever the waypoint list changes.
type RoutePath struct {
	Geometry        []Coordinates
	Handles         []RouteHandle
	DistanceMeters  int
	DurationSeconds int
}

// Empty reports whether the path carries no geometry (fewer than two
// waypoints, or no route computed yet).
func (p RoutePath) Empty() bool { return len(p.Geometry) == 0 }

// Per-leg haversine estimates between consecutive waypoints plus their sum.
// Independent of the routed path; this is the figure persisted with a trip.
type DistanceSummary struct {
	SegmentsKm []float64
	TotalKm    float64
}
