package dto

type MarkerResponse struct {
	WaypointID string  `json:"waypoint_id"`
	Number     int     `json:"number"`
	Role       string  `json:"role"`
	Color      string  `json:"color"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

type PointResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type HandleResponse struct {
	Index int     `json:"index"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

type BoundsResponse struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

type PlaceResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

type ExpenseResponse struct {
	ID     string  `json:"id"`
	Reason string  `json:"reason"`
	Amount float64 `json:"amount"`
}

type ViewResponse struct {
	State                 string            `json:"state"`
	Markers               []MarkerResponse  `json:"markers"`
	RouteLine             []PointResponse   `json:"route_line"`
	Handles               []HandleResponse  `json:"handles"`
	SegmentsKm            []float64         `json:"segments_km"`
	TotalKm               float64           `json:"total_km"`
	RoutedDistanceMeters  int               `json:"routed_distance_meters"`
	RoutedDurationSeconds int               `json:"routed_duration_seconds"`
	Center                *PointResponse    `json:"center,omitempty"`
	Bounds                *BoundsResponse   `json:"bounds,omitempty"`
	Tracking              bool              `json:"tracking"`
	Warning               string            `json:"warning,omitempty"`
	SearchQuery           string            `json:"search_query"`
	SearchResults         []PlaceResponse   `json:"search_results"`
	Expenses              []ExpenseResponse `json:"expenses"`
	TripID                string            `json:"trip_id,omitempty"`
}
