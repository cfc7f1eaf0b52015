package ports

import (
	"context"

	"fleet-route-service/internal/domain"
)

// Queries shorter than this never reach the geocoding provider.
const MinQueryLen = 3

// Contract for resolving coordinates to place names and free-text queries
// to candidate places.
type Geocoder interface {
	// Resolve a coordinate pair to a display name. Never fails: any
	// provider error yields the deterministic coordinate placeholder.
	ReverseGeocode(ctx context.Context, lat, lng float64) string

	// Resolve a free-text query to a ranked list of candidates. Queries
	// shorter than MinQueryLen and provider failures yield an empty list.
	SearchPlaces(ctx context.Context, query string) []domain.Place
}
