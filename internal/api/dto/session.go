package dto

import "time"

type CreateSessionRequest struct {
	TripID string `json:"trip_id"`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

type ClickRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SelectRequest struct {
	Index int `json:"index"`
}

type DragMarkerRequest struct {
	WaypointID string  `json:"waypoint_id"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

type DragHandleRequest struct {
	HandleIndex int     `json:"handle_index"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

type TrackingRequest struct {
	Enabled bool `json:"enabled"`
}

type PositionRequest struct {
	Lat            float64    `json:"lat"`
	Lng            float64    `json:"lng"`
	AccuracyMeters float64    `json:"accuracy_meters"`
	Timestamp      *time.Time `json:"timestamp"`
}

type ExpenseRequest struct {
	Reason string  `json:"reason"`
	Amount float64 `json:"amount"`
}

type SubmitRequest struct {
	RequesterID string    `json:"requester_id"`
	DriverID    string    `json:"driver_id"`
	VehicleID   string    `json:"vehicle_id"`
	Reason      string    `json:"reason"`
	StartTime   time.Time `json:"start_time"`
}

type SubmitResponse struct {
	TripID string `json:"trip_id"`
}

type WaypointResponse struct {
	WaypointID string  `json:"waypoint_id"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}
