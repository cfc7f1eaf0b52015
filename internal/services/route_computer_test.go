package services

import (
	"context"
	"fmt"
	"testing"

	"fleet-route-service/internal/adapters/routing"
	"fleet-route-service/internal/domain"
	"fleet-route-service/internal/ports"
)

func lineGeometry(n int) []domain.Coordinates {
	out := make([]domain.Coordinates, n)
	for i := range out {
		out[i] = domain.Coordinates{Lat: float64(i) * 0.001, Lng: float64(i) * 0.001}
	}
	return out
}

func TestRunClearsPathBelowTwoWaypoints(t *testing.T) {
	provider := &routing.MockRouteProvider{}
	rc := NewRouteComputer(provider)

	token := rc.Begin()
	if !rc.Run(context.Background(), token, []domain.Waypoint{{ID: "a"}}) {
		t.Fatal("clear must apply")
	}

	if provider.CallCount() != 0 {
		t.Fatalf("provider called %d times for a 1-waypoint sequence, want 0", provider.CallCount())
	}
	if !rc.Path().Empty() {
		t.Fatal("path must be empty below two waypoints")
	}
}

func TestRunIssuesOneCallPerRecompute(t *testing.T) {
	provider := &routing.MockRouteProvider{
		Fetch: func(ctx context.Context, coords []domain.Coordinates) (ports.RouteResult, error) {
			return ports.RouteResult{Geometry: lineGeometry(5), DistanceMeters: 100}, nil
		},
	}
	rc := NewRouteComputer(provider)

	waypoints := []domain.Waypoint{
		{ID: "a", Coordinates: domain.Coordinates{Lat: 1, Lng: 1}},
		{ID: "b", Coordinates: domain.Coordinates{Lat: 2, Lng: 2}},
	}

	rc.Run(context.Background(), rc.Begin(), waypoints)
	if provider.CallCount() != 1 {
		t.Fatalf("provider called %d times, want 1", provider.CallCount())
	}
	if rc.Path().DistanceMeters != 100 {
		t.Fatalf("path not applied: %+v", rc.Path())
	}
}

func TestRunRetainsPreviousPathOnFailure(t *testing.T) {
	calls := 0
	provider := &routing.MockRouteProvider{
		Fetch: func(ctx context.Context, coords []domain.Coordinates) (ports.RouteResult, error) {
			calls++
			if calls == 1 {
				return ports.RouteResult{Geometry: lineGeometry(3), DistanceMeters: 500}, nil
			}
			return ports.RouteResult{}, fmt.Errorf("provider unreachable")
		},
	}
	rc := NewRouteComputer(provider)

	waypoints := []domain.Waypoint{{ID: "a"}, {ID: "b"}}

	rc.Run(context.Background(), rc.Begin(), waypoints)
	first := rc.Path()

	if applied := rc.Run(context.Background(), rc.Begin(), waypoints); applied {
		t.Fatal("failed recompute must not report applied")
	}

	if got := rc.Path(); got.DistanceMeters != first.DistanceMeters || len(got.Geometry) != len(first.Geometry) {
		t.Fatal("previous path must be retained after failure")
	}
	if rc.Warning() == "" {
		t.Fatal("failure must surface a warning")
	}

	rc.DismissWarning()
	if rc.Warning() != "" {
		t.Fatal("warning must clear on dismiss")
	}
}

func TestLateResponseFromSupersededFetchDiscarded(t *testing.T) {
	release := make(chan ports.RouteResult, 2)
	provider := &routing.MockRouteProvider{
		Fetch: func(ctx context.Context, coords []domain.Coordinates) (ports.RouteResult, error) {
			return <-release, nil
		},
	}
	rc := NewRouteComputer(provider)

	waypoints := []domain.Waypoint{{ID: "a"}, {ID: "b"}}

	// M1 issued first, M3 issued later; M3's fetch resolves first.
	token1 := rc.Begin()
	token3 := rc.Begin()

	done3 := make(chan bool)
	go func() {
		done3 <- rc.Run(context.Background(), token3, waypoints)
	}()
	release <- ports.RouteResult{Geometry: lineGeometry(4), DistanceMeters: 3333}
	if applied := <-done3; !applied {
		t.Fatal("latest recompute must apply")
	}

	done1 := make(chan bool)
	go func() {
		done1 <- rc.Run(context.Background(), token1, waypoints)
	}()
	release <- ports.RouteResult{Geometry: lineGeometry(4), DistanceMeters: 1111}
	if applied := <-done1; applied {
		t.Fatal("superseded recompute must be discarded")
	}

	if rc.Path().DistanceMeters != 3333 {
		t.Fatalf("path = %d meters, want the latest fetch's 3333", rc.Path().DistanceMeters)
	}
}

func TestDeriveHandlesExcludesEndpoints(t *testing.T) {
	handles := deriveHandles(lineGeometry(61))

	if len(handles) != 2 {
		t.Fatalf("got %d handles for 61 points, want 2 (indexes 20 and 40)", len(handles))
	}
	for _, h := range handles {
		if h.GeometryIndex == 0 || h.GeometryIndex == 60 {
			t.Fatalf("handle at endpoint index %d", h.GeometryIndex)
		}
	}
	if handles[0].GeometryIndex != 20 || handles[1].GeometryIndex != 40 {
		t.Fatalf("handle indexes = %d, %d, want 20, 40", handles[0].GeometryIndex, handles[1].GeometryIndex)
	}
}

func TestDeriveHandlesShortGeometry(t *testing.T) {
	if h := deriveHandles(lineGeometry(15)); len(h) != 0 {
		t.Fatalf("short geometry produced %d handles, want 0", len(h))
	}
	// Index 20 would be the last point: still excluded.
	if h := deriveHandles(lineGeometry(21)); len(h) != 0 {
		t.Fatalf("geometry whose only stride point is the endpoint produced %d handles", len(h))
	}
}

func TestInsertPositionForHandle(t *testing.T) {
	geometry := lineGeometry(100)
	waypoints := []domain.Waypoint{
		{ID: "start", Coordinates: geometry[0]},
		{ID: "mid", Coordinates: geometry[50]},
		{ID: "end", Coordinates: geometry[99]},
	}

	// Handle before the middle waypoint inserts after start.
	if pos := InsertPositionForHandle(waypoints, geometry, 20); pos != 1 {
		t.Fatalf("pos = %d, want 1", pos)
	}
	// Handle past the middle waypoint inserts after it.
	if pos := InsertPositionForHandle(waypoints, geometry, 80); pos != 2 {
		t.Fatalf("pos = %d, want 2", pos)
	}
}

func TestInsertPositionForHandleTwoWaypoints(t *testing.T) {
	geometry := lineGeometry(40)
	waypoints := []domain.Waypoint{
		{ID: "start", Coordinates: geometry[0]},
		{ID: "end", Coordinates: geometry[39]},
	}

	if pos := InsertPositionForHandle(waypoints, geometry, 20); pos != 1 {
		t.Fatalf("pos = %d, want 1 (between start and end)", pos)
	}
}
