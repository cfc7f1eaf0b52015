package routing

import (
	"context"
	"sync"

	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/ports"
)

// MockRouteProvider is a scriptable RouteProvider for tests. Each call
// records its input; Fetch controls the response and may block to simulate
// in-flight requests.
type MockRouteProvider struct {
	Fetch func(ctx context.Context, coords []domain.Coordinates) (ports.RouteResult, error)

	mu    sync.Mutex
	calls [][]domain.Coordinates
}

func (m *MockRouteProvider) FetchRoute(ctx context.Context, coords []domain.Coordinates) (ports.RouteResult, error) {
	m.mu.Lock()
	snapshot := make([]domain.Coordinates, len(coords))
	copy(snapshot, coords)
	m.calls = append(m.calls, snapshot)
	m.mu.Unlock()

	if m.Fetch == nil {
		return ports.RouteResult{}, nil
	}
	return m.Fetch(ctx, coords)
}

// CallCount returns how many times FetchRoute has been invoked.
func (m *MockRouteProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastCall returns the coordinates of the most recent invocation, or nil.
func (m *MockRouteProvider) LastCall() []domain.Coordinates {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1]
}
