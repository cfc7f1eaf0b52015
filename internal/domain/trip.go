package domain

import "time"

// TripRequest carries everything needed to persist a planned trip.
// Validation happens before any store call: at least two waypoints,
// a non-empty reason, a selected driver, vehicle and start time.
type TripRequest struct {
	RequesterID string
	DriverID    string
	VehicleID   string
	Reason      string
	StartTime   time.Time
	Waypoints   []Waypoint
	TotalKm     float64
}

// An ordered route point persisted alongside a trip record.
// Seq is 1-based and reflects travel order.
type RoutePoint struct {
	Seq  int
	Name string
	Lat  float64
	Lng  float64
}

// An expense recorded against an active trip.
type Expense struct {
	ID     string
	Reason string
	Amount float64
}
