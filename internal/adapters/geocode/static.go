package geocode

import (
	"context"
	"sync"

	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/ports"
)

// StaticGeocoder is an in-memory Geocoder for tests and offline runs.
// Unknown coordinates resolve to the placeholder name, matching the real
// client's fallback behavior.
type StaticGeocoder struct {
	Names  map[domain.Coordinates]string
	Places map[string][]domain.Place

	mu            sync.Mutex
	reverseCalls  int
	searchQueries []string
}

func (g *StaticGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) string {
	g.mu.Lock()
	g.reverseCalls++
	g.mu.Unlock()

	if name, ok := g.Names[domain.Coordinates{Lat: lat, Lng: lng}]; ok {
		return name
	}
	return domain.PlaceholderName(lat, lng)
}

func (g *StaticGeocoder) SearchPlaces(ctx context.Context, query string) []domain.Place {
	if len([]rune(query)) < ports.MinQueryLen {
		return nil
	}

	g.mu.Lock()
	g.searchQueries = append(g.searchQueries, query)
	g.mu.Unlock()

	return g.Places[query]
}

// ReverseCalls returns how many reverse lookups have been issued.
func (g *StaticGeocoder) ReverseCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reverseCalls
}

// SearchQueries returns the queries that reached the provider, in order.
func (g *StaticGeocoder) SearchQueries() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.searchQueries))
	copy(out, g.searchQueries)
	return out
}
