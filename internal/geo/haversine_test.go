package geo

import (
	"math"
	"testing"

	"fleet-route-service/internal/domain"
)

func wp(id string, lat, lng float64) domain.Waypoint {
	return domain.Waypoint{ID: id, Coordinates: domain.Coordinates{Lat: lat, Lng: lng}}
}

func TestDistanceSymmetric(t *testing.T) {
	a := domain.Coordinates{Lat: 14.5995, Lng: 120.9842}
	b := domain.Coordinates{Lat: 14.65, Lng: 121.0}

	if d1, d2 := Distance(a, b), Distance(b, a); d1 != d2 {
		t.Fatalf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestDistanceIdenticalPoints(t *testing.T) {
	p := domain.Coordinates{Lat: 48.8566, Lng: 2.3522}
	if d := Distance(p, p); d != 0 {
		t.Fatalf("distance between identical points = %v, want 0", d)
	}
}

func TestDistanceKnownPair(t *testing.T) {
	// Manila city center to Quezon City area, roughly 7.6 km apart.
	a := domain.Coordinates{Lat: 14.6, Lng: 120.9}
	b := domain.Coordinates{Lat: 14.65, Lng: 121.0}

	d := Distance(a, b)
	if math.Abs(d-7.6) > 0.2 {
		t.Fatalf("distance = %v km, want ~7.6 km", d)
	}
}

func TestSegmentsShortSequences(t *testing.T) {
	if s := Segments(nil); s != nil {
		t.Fatalf("segments of empty sequence = %v, want nil", s)
	}
	if s := Segments([]domain.Waypoint{wp("a", 1, 1)}); s != nil {
		t.Fatalf("segments of single waypoint = %v, want nil", s)
	}
}

func TestSummarizeTotalsSegments(t *testing.T) {
	waypoints := []domain.Waypoint{
		wp("a", 14.6, 120.9),
		wp("b", 14.65, 121.0),
		wp("c", 14.7, 121.05),
	}

	summary := Summarize(waypoints)

	if len(summary.SegmentsKm) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(summary.SegmentsKm))
	}

	sum := summary.SegmentsKm[0] + summary.SegmentsKm[1]
	if math.Abs(summary.TotalKm-sum) > 1e-9 {
		t.Fatalf("total = %v, want sum of segments %v", summary.TotalKm, sum)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalKm != 0 || len(summary.SegmentsKm) != 0 {
		t.Fatalf("summary of empty sequence = %+v, want zero", summary)
	}
}
