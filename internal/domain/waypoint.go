package domain

import "fmt"

// Role describes a waypoint's position within the travel order.
// It is always derived from the current index, never stored, so that
// insertions and removals cannot leave a stale label behind.
type Role string

const (
	RoleStart Role = "start"
	RoleStop  Role = "stop"
	RoleEnd   Role = "end"
)

// A single user-placed or search-selected point in a planned route.
// The ID is assigned at creation and stable for the waypoint's lifetime;
// Name starts as a coordinate placeholder until reverse geocoding resolves it.
type Waypoint struct {
	ID   string
	Name string
	Coordinates
}

// RoleAt derives the positional role of the waypoint at index i in a
// sequence of n waypoints.
func RoleAt(i, n int) Role {
	switch {
	case i == 0:
		return RoleStart
	case i == n-1:
		return RoleEnd
	default:
		return RoleStop
	}
}

// MarkerColor maps a role to the marker color used on the map surface.
func MarkerColor(r Role) string {
	switch r {
	case RoleStart:
		return "green"
	case RoleEnd:
		return "red"
	default:
		return "blue"
	}
}

// PlaceholderName formats a coordinate pair as a display name, used until
// reverse geocoding resolves a proper one and as the fallback when it never
// does.
func PlaceholderName(lat, lng float64) string {
	return fmt.Sprintf("Lat: %.5f, Lng: %.5f", lat, lng)
}
