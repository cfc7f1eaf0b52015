package geo

import (
	"math"

	"fleet-route-service/internal/domain"
)

// Earth radius in kilometers.
const earthRadiusKm = 6371

// Distance computes the great-circle distance in kilometers between two
// coordinates using the haversine formula. Symmetric, non-negative, and
// zero for identical points. This is an estimate independent of any road
// network; routed distances from a provider are expected to diverge.
func Distance(a, b domain.Coordinates) float64 {
	if a == b {
		return 0
	}

	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Segments returns the haversine distance of each consecutive leg.
// Sequences shorter than two waypoints have no legs.
func Segments(waypoints []domain.Waypoint) []float64 {
	if len(waypoints) < 2 {
		return nil
	}

	out := make([]float64, 0, len(waypoints)-1)
	for i := 1; i < len(waypoints); i++ {
		out = append(out, Distance(waypoints[i-1].Coordinates, waypoints[i].Coordinates))
	}
	return out
}

// Summarize computes per-leg distances and their total for a waypoint list.
func Summarize(waypoints []domain.Waypoint) domain.DistanceSummary {
	segments := Segments(waypoints)

	total := 0.0
	for _, s := range segments {
		total += s
	}

	return domain.DistanceSummary{SegmentsKm: segments, TotalKm: total}
}
